package policy

import (
	"context"
	"errors"

	"github.com/dropDatabas3/personavault/internal/audit"
	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/scope"
)

// ConsentFinder is the slice of the consent store the resolver needs.
type ConsentFinder interface {
	// FindActive returns the active consent for (ownerID, appID, identityID),
	// identityID nil meaning the user-level grant. repository.ErrNotFound when
	// there is none.
	FindActive(ctx context.Context, ownerID, appID string, identityID *string) (*repository.Consent, error)
}

// Resolver decides, per request, how much of an identity a requester may see.
// Decisions are never cached: grants can be revoked between requests, so every
// call re-queries current consent state.
type Resolver struct {
	consents ConsentFinder
	audit    audit.Sink
}

// NewResolver builds a Resolver. sink may be nil (audit disabled).
func NewResolver(consents ConsentFinder, sink audit.Sink) *Resolver {
	if sink == nil {
		sink = audit.Nop{}
	}
	return &Resolver{consents: consents, audit: sink}
}

// Resolve applies the access precedence, first match wins:
//
//  1. owner                                      -> FULL
//  2. PUBLIC identity                            -> FULL (any requester)
//  3. app with identity-level consent + scope    -> PROJECTED(consent scopes)
//  4. app with user-level consent + scope        -> PROJECTED(consent scopes)
//  5. authenticated user, AUTHENTICATED_USERS    -> reduced public-safe view
//  6. PRIVATE/APP_SPECIFIC, user or anonymous    -> STUB
//  7. otherwise                                  -> DENY(consent_required)
//
// requiredScope is the scope the caller demands (identity.read for app data
// reads). Every app-authenticated branch emits an audit event.
func (r *Resolver) Resolve(ctx context.Context, identity *repository.Identity, req Requester, requiredScope string) (*Decision, error) {
	if requiredScope == "" {
		requiredScope = scope.IdentityRead
	}

	if req.Kind == RequesterUser && req.UserID == identity.UserID {
		return &Decision{Kind: AccessFull, Full: identity}, nil
	}

	// Public identities disclose everything through this path; the scope
	// table is not consulted.
	if identity.Visibility == repository.VisibilityPublic {
		return &Decision{Kind: AccessFull, Full: identity}, nil
	}

	if req.Kind == RequesterApp {
		return r.resolveApp(ctx, identity, req.App, requiredScope)
	}

	if req.Kind == RequesterUser && identity.Visibility == repository.VisibilityAuthenticatedUsers {
		return &Decision{Kind: AccessProjected, Projected: publicSafeView(identity)}, nil
	}

	switch identity.Visibility {
	case repository.VisibilityPrivate, repository.VisibilityAppSpecific:
		return &Decision{Kind: AccessStub, Stub: stubView(identity)}, nil
	}

	// Anonymous requester on an AUTHENTICATED_USERS identity.
	return &Decision{
		Kind:           AccessDeny,
		Reason:         ReasonAuthenticationRequired,
		RequiredScopes: []string{requiredScope},
	}, nil
}

// resolveApp handles steps 3, 4 and 7: identity-level consent first, then the
// user-level grant, then deny with the scope that would satisfy the read.
func (r *Resolver) resolveApp(ctx context.Context, identity *repository.Identity, app *repository.App, requiredScope string) (*Decision, error) {
	for _, identityID := range []*string{&identity.ID, nil} {
		consent, err := r.consents.FindActive(ctx, identity.UserID, app.ID, identityID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if !consent.HasScope(requiredScope) {
			continue
		}

		r.audit.Record(ctx, audit.Event{
			ActorType:  audit.ActorApp,
			ActorID:    app.ID,
			Action:     "identity.access",
			TargetType: "identity",
			TargetID:   identity.ID,
			Outcome:    audit.OutcomeAllow,
			Details: map[string]any{
				"consent_id": consent.ID,
				"scopes":     consent.GrantedScopes,
			},
		})
		return &Decision{
			Kind:      AccessProjected,
			Projected: Project(identity, consent.GrantedScopes),
			ConsentID: consent.ID,
		}, nil
	}

	r.audit.Record(ctx, audit.Event{
		ActorType:  audit.ActorApp,
		ActorID:    app.ID,
		Action:     "identity.access",
		TargetType: "identity",
		TargetID:   identity.ID,
		Outcome:    audit.OutcomeDeny,
		Details:    map[string]any{"reason": ReasonConsentRequired},
	})
	return &Decision{
		Kind:           AccessDeny,
		Reason:         ReasonConsentRequired,
		RequiredScopes: []string{requiredScope},
	}, nil
}
