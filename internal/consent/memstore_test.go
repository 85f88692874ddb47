package consent

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
)

// memStore es un repository.Store en memoria para los tests del servicio.
// WithTx no simula aislamiento; alcanza para ejercitar la lógica de negocio.
type memStore struct {
	seq        int
	users      map[string]*repository.User
	identities map[string]*repository.Identity
	apps       map[string]*repository.App
	consents   map[string]*repository.Consent
	requests   map[string]*repository.ConsentRequest
	auditLog   []repository.AuditEvent
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*repository.User{},
		identities: map[string]*repository.Identity{},
		apps:       map[string]*repository.App{},
		consents:   map[string]*repository.Consent{},
		requests:   map[string]*repository.ConsentRequest{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func (m *memStore) Users() repository.UserRepository                     { return (*memUsers)(m) }
func (m *memStore) Identities() repository.IdentityRepository            { return (*memIdentities)(m) }
func (m *memStore) Apps() repository.AppRepository                       { return (*memApps)(m) }
func (m *memStore) Consents() repository.ConsentRepository               { return (*memConsents)(m) }
func (m *memStore) ConsentRequests() repository.ConsentRequestRepository { return (*memRequests)(m) }
func (m *memStore) Audit() repository.AuditRepository                    { return (*memAudit)(m) }

func (m *memStore) WithTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(m)
}

// addIdentity es un helper de seed para los tests.
func (m *memStore) addIdentity(userID, label string, vis repository.Visibility) *repository.Identity {
	id := &repository.Identity{
		ID:         m.nextID("idn"),
		UserID:     userID,
		Label:      label,
		Category:   repository.CategorySocial,
		Visibility: vis,
		CreatedAt:  time.Now(),
	}
	m.identities[id.ID] = id
	return id
}

func (m *memStore) addApp(ownerID, name string) *repository.App {
	app := &repository.App{
		ID:              m.nextID("app"),
		OwnerID:         ownerID,
		Name:            name,
		IsEnabled:       true,
		IsAdminApproved: true,
	}
	m.apps[app.ID] = app
	return app
}

type memUsers memStore

func (m *memUsers) Create(_ context.Context, email, name, hash string) (*repository.User, error) {
	u := &repository.User{ID: (*memStore)(m).nextID("u"), Email: email, Name: name, PasswordHash: hash}
	m.users[u.ID] = u
	return u, nil
}

func (m *memUsers) Get(_ context.Context, id string) (*repository.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*repository.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type memIdentities memStore

func (m *memIdentities) Create(_ context.Context, userID string, in repository.IdentityInput) (*repository.Identity, error) {
	id := &repository.Identity{ID: (*memStore)(m).nextID("idn"), UserID: userID, Label: in.Label, Visibility: in.Visibility}
	m.identities[id.ID] = id
	return id, nil
}

func (m *memIdentities) Get(_ context.Context, id string) (*repository.Identity, error) {
	idn, ok := m.identities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return idn, nil
}

func (m *memIdentities) ListByUser(_ context.Context, userID string) ([]repository.Identity, error) {
	var out []repository.Identity
	for _, idn := range m.identities {
		if idn.UserID == userID {
			out = append(out, *idn)
		}
	}
	return out, nil
}

func (m *memIdentities) Update(_ context.Context, id string, in repository.IdentityInput) (*repository.Identity, error) {
	idn, ok := m.identities[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	idn.Label = in.Label
	idn.Visibility = in.Visibility
	return idn, nil
}

func (m *memIdentities) Delete(_ context.Context, id string) error {
	delete(m.identities, id)
	return nil
}

type memApps memStore

func (m *memApps) Create(_ context.Context, ownerID string, in repository.AppInput) (*repository.App, error) {
	app := &repository.App{ID: (*memStore)(m).nextID("app"), OwnerID: ownerID, Name: in.Name}
	m.apps[app.ID] = app
	return app, nil
}

func (m *memApps) Get(_ context.Context, id string) (*repository.App, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return app, nil
}

func (m *memApps) ListByOwner(_ context.Context, ownerID string) ([]repository.App, error) {
	var out []repository.App
	for _, a := range m.apps {
		if a.OwnerID == ownerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memApps) Update(_ context.Context, id string, in repository.AppInput) (*repository.App, error) {
	app, ok := m.apps[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	app.Name = in.Name
	return app, nil
}

func (m *memApps) SetAPIKeyHash(_ context.Context, id, phc string) error {
	app, ok := m.apps[id]
	if !ok {
		return repository.ErrNotFound
	}
	app.APIKeyHash = &phc
	return nil
}

func (m *memApps) Delete(_ context.Context, id string) error {
	delete(m.apps, id)
	return nil
}

type memConsents memStore

func sameKey(a, b *string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func (m *memConsents) Upsert(_ context.Context, userID string, appID, identityID *string, scopes []string) (*repository.Consent, error) {
	for _, c := range m.consents {
		if c.UserID == userID && sameKey(c.AppID, appID) && sameKey(c.IdentityID, identityID) {
			c.GrantedScopes = append([]string(nil), scopes...)
			c.GrantedAt = time.Now()
			c.RevokedAt = nil
			return c, nil
		}
	}
	c := &repository.Consent{
		ID:            (*memStore)(m).nextID("c"),
		UserID:        userID,
		AppID:         appID,
		IdentityID:    identityID,
		GrantedScopes: append([]string(nil), scopes...),
		GrantedAt:     time.Now(),
	}
	m.consents[c.ID] = c
	return c, nil
}

func (m *memConsents) Get(_ context.Context, id string) (*repository.Consent, error) {
	c, ok := m.consents[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (m *memConsents) FindActive(_ context.Context, ownerID, appID string, identityID *string) (*repository.Consent, error) {
	for _, c := range m.consents {
		if c.UserID != ownerID || c.AppID == nil || *c.AppID != appID {
			continue
		}
		if !sameKey(c.IdentityID, identityID) {
			continue
		}
		if c.Active(time.Now()) {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memConsents) ListByUser(_ context.Context, userID string, activeOnly bool) ([]repository.Consent, error) {
	var out []repository.Consent
	for _, c := range m.consents {
		if c.UserID != userID {
			continue
		}
		if activeOnly && !c.Active(time.Now()) {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *memConsents) Revoke(_ context.Context, id string) error {
	c, ok := m.consents[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.RevokedAt == nil {
		now := time.Now()
		c.RevokedAt = &now
	}
	return nil
}

type memRequests memStore

func (m *memRequests) Create(_ context.Context, in repository.ConsentRequestInput) (*repository.ConsentRequest, error) {
	req := &repository.ConsentRequest{
		ID:                 (*memStore)(m).nextID("req"),
		TargetUserID:       in.TargetUserID,
		IdentityID:         in.IdentityID,
		RequestingUserID:   in.RequestingUserID,
		AppID:              in.AppID,
		RequestedScopes:    append([]string(nil), in.RequestedScopes...),
		ContextDescription: in.ContextDescription,
		Status:             repository.RequestPending,
		CreatedAt:          time.Now(),
	}
	m.requests[req.ID] = req
	return req, nil
}

func (m *memRequests) Get(_ context.Context, id string) (*repository.ConsentRequest, error) {
	req, ok := m.requests[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return req, nil
}

func (m *memRequests) FindPending(_ context.Context, identityID, requestingUserID string, appID *string) (*repository.ConsentRequest, error) {
	for _, r := range m.requests {
		if r.Status == repository.RequestPending &&
			r.IdentityID == identityID &&
			r.RequestingUserID == requestingUserID &&
			sameKey(r.AppID, appID) {
			return r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRequests) ListIncoming(_ context.Context, targetUserID string) ([]repository.ConsentRequest, error) {
	var out []repository.ConsentRequest
	for _, r := range m.requests {
		if r.TargetUserID == targetUserID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRequests) ListOutgoing(_ context.Context, requestingUserID string) ([]repository.ConsentRequest, error) {
	var out []repository.ConsentRequest
	for _, r := range m.requests {
		if r.RequestingUserID == requestingUserID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memRequests) MarkDecided(_ context.Context, id string, status repository.RequestStatus) error {
	req, ok := m.requests[id]
	if !ok {
		return repository.ErrNotFound
	}
	if req.Status != repository.RequestPending {
		return repository.ErrAlreadyDecided
	}
	now := time.Now()
	req.Status = status
	req.ProcessedAt = &now
	return nil
}

type memAudit memStore

func (m *memAudit) Insert(_ context.Context, ev repository.AuditEvent) error {
	(*memStore)(m).auditLog = append((*memStore)(m).auditLog, ev)
	return nil
}
