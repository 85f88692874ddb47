package policy

import (
	"context"
	"testing"
	"time"

	"github.com/dropDatabas3/personavault/internal/audit"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/scope"
)

// fakeConsents serves consents keyed by "owner|app|identity" ("" = user-level).
type fakeConsents struct {
	byKey map[string]*repository.Consent
}

func key(owner, app string, identityID *string) string {
	id := ""
	if identityID != nil {
		id = *identityID
	}
	return owner + "|" + app + "|" + id
}

func (f *fakeConsents) FindActive(_ context.Context, owner, app string, identityID *string) (*repository.Consent, error) {
	c, ok := f.byKey[key(owner, app, identityID)]
	if !ok || !c.Active(time.Now()) {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

// captureSink records audit events for assertions.
type captureSink struct{ events []audit.Event }

func (c *captureSink) Record(_ context.Context, ev audit.Event) { c.events = append(c.events, ev) }

func strPtr(s string) *string { return &s }

func testApp() *repository.App {
	return &repository.App{ID: "app-1", OwnerID: "dev-1", Name: "Test App", IsEnabled: true, IsAdminApproved: true}
}

func TestResolve_OwnerGetsFull(t *testing.T) {
	id := sampleIdentity()
	r := NewResolver(&fakeConsents{}, nil)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterUser, UserID: id.UserID}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessFull || d.Full != id {
		t.Fatalf("owner must get FULL, got %v", d.Kind)
	}
}

// Visibility precedence: PUBLIC discloses everything to anyone, even anonymous.
func TestResolve_PublicIsFullForEveryone(t *testing.T) {
	id := sampleIdentity()
	id.Visibility = repository.VisibilityPublic
	r := NewResolver(&fakeConsents{}, nil)

	for _, req := range []Requester{
		{Kind: RequesterAnonymous},
		{Kind: RequesterUser, UserID: "someone-else"},
		{Kind: RequesterApp, App: testApp()},
	} {
		d, err := r.Resolve(context.Background(), id, req, "")
		if err != nil {
			t.Fatal(err)
		}
		if d.Kind != AccessFull {
			t.Fatalf("requester %q on PUBLIC identity: got %v, want FULL", req.Kind, d.Kind)
		}
	}
}

// Scenario: private identity, app without consent -> DENY consent_required.
func TestResolve_AppWithoutConsentDenied(t *testing.T) {
	id := sampleIdentity()
	sink := &captureSink{}
	r := NewResolver(&fakeConsents{byKey: map[string]*repository.Consent{}}, sink)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterApp, App: testApp()}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessDeny || d.Reason != ReasonConsentRequired {
		t.Fatalf("got %v/%q, want DENY/consent_required", d.Kind, d.Reason)
	}
	if len(d.RequiredScopes) != 1 || d.RequiredScopes[0] != scope.IdentityRead {
		t.Fatalf("requiredScopes = %v, want [identity.read]", d.RequiredScopes)
	}
	if len(sink.events) != 1 || sink.events[0].Outcome != audit.OutcomeDeny {
		t.Fatalf("deny must be audited, got %+v", sink.events)
	}
}

func TestResolve_AppWithIdentityConsentProjected(t *testing.T) {
	id := sampleIdentity()
	consent := &repository.Consent{
		ID:            "c-1",
		UserID:        id.UserID,
		AppID:         strPtr("app-1"),
		IdentityID:    &id.ID,
		GrantedScopes: []string{scope.IdentityRead, scope.ProfileDescription},
	}
	sink := &captureSink{}
	r := NewResolver(&fakeConsents{byKey: map[string]*repository.Consent{
		key(id.UserID, "app-1", &id.ID): consent,
	}}, sink)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterApp, App: testApp()}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessProjected {
		t.Fatalf("got %v, want PROJECTED", d.Kind)
	}
	if d.ConsentID != "c-1" {
		t.Fatalf("decision must carry the satisfying consent id, got %q", d.ConsentID)
	}
	if d.Projected.Description != id.Description || d.Projected.IdentityLabel != id.Label {
		t.Fatalf("projection missing granted fields: %+v", d.Projected)
	}
	if d.Projected.ContactDetails != nil {
		t.Fatalf("projection leaked ungranted fields: %+v", d.Projected)
	}
	if len(sink.events) != 1 || sink.events[0].Outcome != audit.OutcomeAllow {
		t.Fatalf("allow must be audited with the consent id, got %+v", sink.events)
	}
	if got := sink.events[0].Details["consent_id"]; got != "c-1" {
		t.Fatalf("audit consent_id = %v, want c-1", got)
	}
}

// User-level grant (identityId = null) covers all of the owner's identities.
func TestResolve_AppFallsBackToUserLevelConsent(t *testing.T) {
	id := sampleIdentity()
	consent := &repository.Consent{
		ID:            "c-user",
		UserID:        id.UserID,
		AppID:         strPtr("app-1"),
		GrantedScopes: []string{scope.IdentityRead},
	}
	r := NewResolver(&fakeConsents{byKey: map[string]*repository.Consent{
		key(id.UserID, "app-1", nil): consent,
	}}, nil)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterApp, App: testApp()}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessProjected || d.ConsentID != "c-user" {
		t.Fatalf("got %v/%q, want PROJECTED via user-level consent", d.Kind, d.ConsentID)
	}
}

// A consent lacking the required scope does not satisfy the read.
func TestResolve_ConsentWithoutRequiredScopeDenied(t *testing.T) {
	id := sampleIdentity()
	consent := &repository.Consent{
		ID:            "c-weak",
		UserID:        id.UserID,
		AppID:         strPtr("app-1"),
		IdentityID:    &id.ID,
		GrantedScopes: []string{scope.ProfileLabel}, // no identity.read
	}
	r := NewResolver(&fakeConsents{byKey: map[string]*repository.Consent{
		key(id.UserID, "app-1", &id.ID): consent,
	}}, nil)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterApp, App: testApp()}, scope.IdentityRead)
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessDeny {
		t.Fatalf("got %v, want DENY when required scope is missing", d.Kind)
	}
}

// A revoked consent is invisible to the resolver.
func TestResolve_RevokedConsentDenied(t *testing.T) {
	id := sampleIdentity()
	now := time.Now()
	consent := &repository.Consent{
		ID:            "c-revoked",
		UserID:        id.UserID,
		AppID:         strPtr("app-1"),
		IdentityID:    &id.ID,
		GrantedScopes: []string{scope.IdentityRead},
		RevokedAt:     &now,
	}
	r := NewResolver(&fakeConsents{byKey: map[string]*repository.Consent{
		key(id.UserID, "app-1", &id.ID): consent,
	}}, nil)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterApp, App: testApp()}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessDeny {
		t.Fatalf("revoked consent must not grant access, got %v", d.Kind)
	}
}

func TestResolve_AuthenticatedUsersTierReducedView(t *testing.T) {
	id := sampleIdentity()
	id.Visibility = repository.VisibilityAuthenticatedUsers
	r := NewResolver(&fakeConsents{}, nil)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterUser, UserID: "other-user"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessProjected {
		t.Fatalf("got %v, want PROJECTED reduced view", d.Kind)
	}
	if d.Projected.IdentityLabel != id.Label || d.Projected.Description != id.Description {
		t.Fatalf("public-safe view missing fixed fields: %+v", d.Projected)
	}
	if d.Projected.ContactDetails != nil || d.Projected.DateOfBirth != nil || d.Projected.AdditionalAttributes != nil {
		t.Fatalf("public-safe view leaked sensitive fields: %+v", d.Projected)
	}
}

// Stub non-disclosure: the true label and picture never appear.
func TestResolve_PrivateStubNonDisclosure(t *testing.T) {
	id := sampleIdentity()
	r := NewResolver(&fakeConsents{}, nil)

	for _, req := range []Requester{
		{Kind: RequesterAnonymous},
		{Kind: RequesterUser, UserID: "other-user"},
	} {
		d, err := r.Resolve(context.Background(), id, req, "")
		if err != nil {
			t.Fatal(err)
		}
		if d.Kind != AccessStub {
			t.Fatalf("requester %q: got %v, want STUB", req.Kind, d.Kind)
		}
		if d.Stub.IdentityLabel == id.Label || d.Stub.ProfilePictureURL == id.ProfilePictureURL {
			t.Fatalf("stub disclosed real label or picture: %+v", d.Stub)
		}
		if d.Stub.IdentityLabel != StubLabelPrivate {
			t.Fatalf("stub label = %q, want %q", d.Stub.IdentityLabel, StubLabelPrivate)
		}
	}
}

func TestResolve_AppSpecificStubLabel(t *testing.T) {
	id := sampleIdentity()
	id.Visibility = repository.VisibilityAppSpecific
	r := NewResolver(&fakeConsents{}, nil)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterUser, UserID: "other"}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessStub || d.Stub.IdentityLabel != StubLabelRestricted {
		t.Fatalf("APP_SPECIFIC stub label = %+v, want %q", d.Stub, StubLabelRestricted)
	}
}

func TestResolve_AnonymousOnAuthenticatedUsersDenied(t *testing.T) {
	id := sampleIdentity()
	id.Visibility = repository.VisibilityAuthenticatedUsers
	r := NewResolver(&fakeConsents{}, nil)

	d, err := r.Resolve(context.Background(), id, Requester{Kind: RequesterAnonymous}, "")
	if err != nil {
		t.Fatal(err)
	}
	if d.Kind != AccessDeny || d.Reason != ReasonAuthenticationRequired {
		t.Fatalf("got %v/%q, want DENY/authentication_required", d.Kind, d.Reason)
	}
}
