package repository

import "context"

// Store agrupa los repositorios sobre una misma conexión (pool o tx).
type Store interface {
	Users() UserRepository
	Identities() IdentityRepository
	Apps() AppRepository
	Consents() ConsentRepository
	ConsentRequests() ConsentRequestRepository
	Audit() AuditRepository

	// WithTx ejecuta fn dentro de una transacción. El Store que recibe fn
	// opera sobre la tx; commit si fn retorna nil, rollback si retorna error.
	// Usado por approve-consent y batch-grant para que nunca se observe
	// aplicación parcial.
	WithTx(ctx context.Context, fn func(Store) error) error
}
