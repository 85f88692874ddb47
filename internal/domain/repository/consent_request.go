package repository

import (
	"context"
	"time"
)

// RequestStatus es el estado de un consent request.
// PENDING es el único estado no terminal.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// ConsentRequest representa un pedido de acceso de un usuario (o app) al
// dueño de una identidad. Solo puede existir un PENDING por
// (identityID, requestingUserID, appID).
type ConsentRequest struct {
	ID                 string
	TargetUserID       string
	IdentityID         string
	RequestingUserID   string
	AppID              *string
	RequestedScopes    []string
	ContextDescription string
	Status             RequestStatus
	CreatedAt          time.Time
	ProcessedAt        *time.Time
}

// ConsentRequestInput contiene los datos para crear un consent request.
type ConsentRequestInput struct {
	TargetUserID       string
	IdentityID         string
	RequestingUserID   string
	AppID              *string
	RequestedScopes    []string
	ContextDescription string
}

// ConsentRequestRepository define operaciones sobre consent requests.
type ConsentRequestRepository interface {
	// Create crea un request en estado PENDING.
	Create(ctx context.Context, input ConsentRequestInput) (*ConsentRequest, error)

	// Get obtiene un request por ID. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, requestID string) (*ConsentRequest, error)

	// FindPending busca un PENDING para (identityID, requestingUserID, appID).
	// Retorna ErrNotFound si no hay.
	FindPending(ctx context.Context, identityID, requestingUserID string, appID *string) (*ConsentRequest, error)

	// ListIncoming lista requests dirigidos a un usuario (como target).
	ListIncoming(ctx context.Context, targetUserID string) ([]ConsentRequest, error)

	// ListOutgoing lista requests creados por un usuario (como requester).
	ListOutgoing(ctx context.Context, requestingUserID string) ([]ConsentRequest, error)

	// MarkDecided transiciona PENDING -> status (APPROVED|REJECTED) con un
	// update condicional sobre status = PENDING. Retorna ErrAlreadyDecided
	// si el request ya estaba en estado terminal.
	MarkDecided(ctx context.Context, requestID string, status RequestStatus) error
}
