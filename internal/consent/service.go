// Package consent implementa la máquina de estados de consent requests
// (PENDING -> APPROVED | REJECTED) y las operaciones sobre consent grants
// (upsert, batch grant transaccional, revocación soft).
package consent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/dropDatabas3/personavault/internal/audit"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/scope"
)

// Decision es la resolución de un consent request por el target.
type Decision string

const (
	DecisionApprove Decision = "APPROVE"
	DecisionReject  Decision = "REJECT"
)

// Notifier avisa al dueño de la identidad que llegó un request. Best-effort.
type Notifier interface {
	ConsentRequested(ctx context.Context, req *repository.ConsentRequest)
}

// Service orquesta requests y grants sobre el Store.
type Service struct {
	store  repository.Store
	audit  audit.Sink
	notify Notifier
	log    *zap.Logger
}

// NewService crea el servicio. sink, notifier y log pueden ser nil.
func NewService(store repository.Store, sink audit.Sink, notifier Notifier, log *zap.Logger) *Service {
	if sink == nil {
		sink = audit.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, audit: sink, notify: notifier, log: log}
}

// CreateRequestInput es el input para CreateRequest.
type CreateRequestInput struct {
	IdentityID         string
	RequestingUserID   string
	AppID              *string
	RequestedScopes    []string
	ContextDescription string
}

// CreateRequest valida y crea un consent request PENDING dirigido al dueño de
// la identidad. Retorna PendingExistsError si ya hay un PENDING idéntico.
func (s *Service) CreateRequest(ctx context.Context, input CreateRequestInput) (*repository.ConsentRequest, error) {
	if strings.TrimSpace(input.ContextDescription) == "" {
		return nil, fmt.Errorf("%w: contextDescription is required", repository.ErrInvalidInput)
	}
	if len(input.RequestedScopes) == 0 {
		return nil, fmt.Errorf("%w: requestedScopes must not be empty", repository.ErrInvalidInput)
	}
	for _, sc := range input.RequestedScopes {
		if !scope.ValidName(sc) {
			return nil, fmt.Errorf("%w: malformed scope %q", repository.ErrInvalidInput, sc)
		}
	}

	identity, err := s.store.Identities().Get(ctx, input.IdentityID)
	if err != nil {
		return nil, err
	}
	if identity.UserID == input.RequestingUserID {
		return nil, fmt.Errorf("%w: cannot request access to your own identity", repository.ErrInvalidInput)
	}

	if existing, err := s.store.ConsentRequests().FindPending(ctx, input.IdentityID, input.RequestingUserID, input.AppID); err == nil {
		return nil, &PendingExistsError{ExistingID: existing.ID}
	} else if !repository.IsNotFound(err) {
		return nil, err
	}

	req, err := s.store.ConsentRequests().Create(ctx, repository.ConsentRequestInput{
		TargetUserID:       identity.UserID,
		IdentityID:         input.IdentityID,
		RequestingUserID:   input.RequestingUserID,
		AppID:              input.AppID,
		RequestedScopes:    input.RequestedScopes,
		ContextDescription: input.ContextDescription,
	})
	if err != nil {
		// Backstop: si el índice parcial único ganó una carrera, traducimos
		// al mismo contrato que el chequeo de arriba.
		if repository.IsConflict(err) {
			if existing, ferr := s.store.ConsentRequests().FindPending(ctx, input.IdentityID, input.RequestingUserID, input.AppID); ferr == nil {
				return nil, &PendingExistsError{ExistingID: existing.ID}
			}
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		ActorType:  audit.ActorUser,
		ActorID:    input.RequestingUserID,
		Action:     "consent_request.create",
		TargetType: "consent_request",
		TargetID:   req.ID,
		Outcome:    audit.OutcomeSuccess,
		Details:    map[string]any{"identity_id": input.IdentityID, "scopes": input.RequestedScopes},
	})
	if s.notify != nil {
		s.notify.ConsentRequested(ctx, req)
	}
	return req, nil
}

// DecideRequest aprueba o rechaza un request. Solo el target user puede
// decidir; cualquier otro caller (incluido el requester original) recibe
// ErrForbidden. La aprobación corre en una única transacción: transición de
// estado + upsert del consent, así nunca se observa un APPROVED sin grant.
func (s *Service) DecideRequest(ctx context.Context, requestID, deciderUserID string, decision Decision) (*repository.ConsentRequest, error) {
	req, err := s.store.ConsentRequests().Get(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.TargetUserID != deciderUserID {
		return nil, fmt.Errorf("%w: only the identity owner may decide this request", repository.ErrForbidden)
	}
	if req.Status != repository.RequestPending {
		return nil, &AlreadyDecidedError{Status: req.Status}
	}

	switch decision {
	case DecisionApprove:
		err = s.store.WithTx(ctx, func(tx repository.Store) error {
			if err := tx.ConsentRequests().MarkDecided(ctx, requestID, repository.RequestApproved); err != nil {
				return err
			}
			_, err := tx.Consents().Upsert(ctx, req.TargetUserID, req.AppID, &req.IdentityID, req.RequestedScopes)
			return err
		})
	case DecisionReject:
		err = s.store.ConsentRequests().MarkDecided(ctx, requestID, repository.RequestRejected)
	default:
		return nil, fmt.Errorf("%w: unknown decision %q", repository.ErrInvalidInput, decision)
	}
	if err != nil {
		// Una carrera entre dos decisiones concurrentes la gana una sola; la
		// perdedora ve el estado terminal.
		if repository.IsConflict(err) || repository.IsNotFound(err) {
			if cur, gerr := s.store.ConsentRequests().Get(ctx, requestID); gerr == nil && cur.Status != repository.RequestPending {
				return nil, &AlreadyDecidedError{Status: cur.Status}
			}
		}
		return nil, err
	}

	s.audit.Record(ctx, audit.Event{
		ActorType:  audit.ActorUser,
		ActorID:    deciderUserID,
		Action:     "consent_request." + strings.ToLower(string(decision)),
		TargetType: "consent_request",
		TargetID:   requestID,
		Outcome:    audit.OutcomeSuccess,
		Details:    map[string]any{"identity_id": req.IdentityID},
	})
	return s.store.ConsentRequests().Get(ctx, requestID)
}

// BatchGrant upserta un consent por identidad para una app, todo-o-nada.
// Todas las identidades deben pertenecer al granter; si alguna falla el
// chequeo, el batch entero se rechaza nombrando los IDs ofensores.
func (s *Service) BatchGrant(ctx context.Context, granterUserID, appID string, identityIDs, scopes []string) (int, error) {
	if len(identityIDs) == 0 {
		return 0, fmt.Errorf("%w: identityIds must not be empty", repository.ErrInvalidInput)
	}
	if len(scopes) == 0 {
		return 0, fmt.Errorf("%w: scopes must not be empty", repository.ErrInvalidInput)
	}
	for _, sc := range scopes {
		if !scope.ValidName(sc) {
			return 0, fmt.Errorf("%w: malformed scope %q", repository.ErrInvalidInput, sc)
		}
	}

	app, err := s.store.Apps().Get(ctx, appID)
	if err != nil {
		return 0, err
	}
	if !app.Connectable() {
		return 0, fmt.Errorf("%w: app is not connectable", repository.ErrForbidden)
	}

	var offending []string
	for _, id := range identityIDs {
		identity, err := s.store.Identities().Get(ctx, id)
		if err != nil {
			if repository.IsNotFound(err) {
				offending = append(offending, id)
				continue
			}
			return 0, err
		}
		if identity.UserID != granterUserID {
			offending = append(offending, id)
		}
	}
	if len(offending) > 0 {
		return 0, &OwnershipError{OffendingIDs: offending}
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		for _, id := range identityIDs {
			identityID := id
			if _, err := tx.Consents().Upsert(ctx, granterUserID, &appID, &identityID, scopes); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.audit.Record(ctx, audit.Event{
		ActorType:  audit.ActorUser,
		ActorID:    granterUserID,
		Action:     "consent.batch_grant",
		TargetType: "app",
		TargetID:   appID,
		Outcome:    audit.OutcomeSuccess,
		Details:    map[string]any{"identity_ids": identityIDs, "scopes": scopes},
	})
	return len(identityIDs), nil
}

// Revoke marca un consent como revocado. Autorizado si el caller es el userID
// del consent, o el dueño de la identidad asociada. Revocar algo ya revocado
// es un no-op exitoso para que los retries de clientes sean seguros.
func (s *Service) Revoke(ctx context.Context, consentID, callerUserID string) error {
	c, err := s.store.Consents().Get(ctx, consentID)
	if err != nil {
		return err
	}

	authorized := c.UserID == callerUserID
	if !authorized && c.IdentityID != nil {
		identity, err := s.store.Identities().Get(ctx, *c.IdentityID)
		if err == nil && identity.UserID == callerUserID {
			authorized = true
		}
	}
	if !authorized {
		return fmt.Errorf("%w: caller may not revoke this consent", repository.ErrForbidden)
	}

	if c.RevokedAt == nil {
		if err := s.store.Consents().Revoke(ctx, consentID); err != nil {
			return err
		}
	}

	s.audit.Record(ctx, audit.Event{
		ActorType:  audit.ActorUser,
		ActorID:    callerUserID,
		Action:     "consent.revoke",
		TargetType: "consent",
		TargetID:   consentID,
		Outcome:    audit.OutcomeSuccess,
	})
	return nil
}
