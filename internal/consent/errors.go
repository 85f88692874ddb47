package consent

import (
	"fmt"
	"strings"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

// PendingExistsError se retorna al intentar crear un request cuando ya hay un
// PENDING para el mismo (identity, requester, app). Expone el ID existente
// para que el cliente pueda consultarlo o cancelarlo en vez de re-crear.
type PendingExistsError struct {
	ExistingID string
}

func (e *PendingExistsError) Error() string {
	return fmt.Sprintf("a pending request already exists: %s", e.ExistingID)
}

func (e *PendingExistsError) Unwrap() error { return repository.ErrConflict }

// AlreadyDecidedError se retorna al decidir un request que ya está en estado
// terminal. El estado almacenado no cambia.
type AlreadyDecidedError struct {
	Status repository.RequestStatus
}

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("request already %s", strings.ToLower(string(e.Status)))
}

func (e *AlreadyDecidedError) Unwrap() error { return repository.ErrAlreadyDecided }

// OwnershipError se retorna cuando un batch grant referencia identidades que
// no pertenecen al caller (o no existen). Nombra los IDs ofensores y el batch
// entero se rechaza.
type OwnershipError struct {
	OffendingIDs []string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("identities not owned by caller: %s", strings.Join(e.OffendingIDs, ", "))
}

func (e *OwnershipError) Unwrap() error { return repository.ErrForbidden }
