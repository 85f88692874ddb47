package consent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/personavault/internal/domain/repository"
	"github.com/dropDatabas3/personavault/internal/policy"
	"github.com/dropDatabas3/personavault/internal/scope"
)

func strPtr(s string) *string { return &s }

func setup() (*memStore, *Service) {
	store := newMemStore()
	return store, NewService(store, nil, nil, nil)
}

func TestCreateRequest_Validations(t *testing.T) {
	store, svc := setup()
	identity := store.addIdentity("owner", "Alice", repository.VisibilityPrivate)
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateRequestInput
	}{
		{"empty context description", CreateRequestInput{
			IdentityID: identity.ID, RequestingUserID: "requester",
			RequestedScopes: []string{scope.ProfileLabel}, ContextDescription: "  ",
		}},
		{"empty scopes", CreateRequestInput{
			IdentityID: identity.ID, RequestingUserID: "requester",
			ContextDescription: "need it",
		}},
		{"malformed scope", CreateRequestInput{
			IdentityID: identity.ID, RequestingUserID: "requester",
			RequestedScopes: []string{"NOT A SCOPE"}, ContextDescription: "need it",
		}},
		{"requester is target", CreateRequestInput{
			IdentityID: identity.ID, RequestingUserID: "owner",
			RequestedScopes: []string{scope.ProfileLabel}, ContextDescription: "need it",
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateRequest(ctx, tc.input)
			assert.ErrorIs(t, err, repository.ErrInvalidInput)
		})
	}

	_, err := svc.CreateRequest(ctx, CreateRequestInput{
		IdentityID: "missing", RequestingUserID: "requester",
		RequestedScopes: []string{scope.ProfileLabel}, ContextDescription: "need it",
	})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateRequest_TargetDerivedFromIdentity(t *testing.T) {
	store, svc := setup()
	identity := store.addIdentity("owner", "Alice", repository.VisibilityPrivate)

	req, err := svc.CreateRequest(context.Background(), CreateRequestInput{
		IdentityID:         identity.ID,
		RequestingUserID:   "requester",
		RequestedScopes:    []string{scope.ProfileLabel},
		ContextDescription: "testing",
	})
	require.NoError(t, err)
	assert.Equal(t, repository.RequestPending, req.Status)
	assert.Equal(t, "owner", req.TargetUserID)
	assert.Nil(t, req.ProcessedAt)
}

// At most one PENDING per (identity, requester, app): the duplicate attempt
// fails with CONFLICT and surfaces the existing request id.
func TestCreateRequest_DuplicatePendingConflict(t *testing.T) {
	store, svc := setup()
	identity := store.addIdentity("owner", "Alice", repository.VisibilityPrivate)
	ctx := context.Background()

	input := CreateRequestInput{
		IdentityID:         identity.ID,
		RequestingUserID:   "requester",
		AppID:              strPtr("app-x"),
		RequestedScopes:    []string{scope.ProfileLabel},
		ContextDescription: "testing",
	}
	first, err := svc.CreateRequest(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateRequest(ctx, input)
	var pending *PendingExistsError
	require.ErrorAs(t, err, &pending)
	assert.Equal(t, first.ID, pending.ExistingID)
	assert.ErrorIs(t, err, repository.ErrConflict)

	// A different app for the same identity+requester is a distinct triple.
	input.AppID = strPtr("app-y")
	_, err = svc.CreateRequest(ctx, input)
	assert.NoError(t, err)
}

// Approval atomicity: once DecideRequest returns, the resolver must see
// PROJECTED access for that (app, identity) pair.
func TestDecideRequest_ApproveCreatesConsent(t *testing.T) {
	store, svc := setup()
	app := store.addApp("dev", "Fitness App")
	identity := store.addIdentity("owner", "Alice", repository.VisibilityPrivate)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, CreateRequestInput{
		IdentityID:         identity.ID,
		RequestingUserID:   "requester",
		AppID:              &app.ID,
		RequestedScopes:    []string{scope.IdentityRead, scope.ProfileLabel},
		ContextDescription: "sync profile",
	})
	require.NoError(t, err)

	decided, err := svc.DecideRequest(ctx, req.ID, "owner", DecisionApprove)
	require.NoError(t, err)
	assert.Equal(t, repository.RequestApproved, decided.Status)
	require.NotNil(t, decided.ProcessedAt)

	consent, err := store.Consents().FindActive(ctx, "owner", app.ID, &identity.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{scope.IdentityRead, scope.ProfileLabel}, consent.GrantedScopes)
	assert.Nil(t, consent.RevokedAt)

	resolver := policy.NewResolver((*memConsents)(store), nil)
	d, err := resolver.Resolve(ctx, identity, policy.Requester{Kind: policy.RequesterApp, App: app}, "")
	require.NoError(t, err)
	assert.Equal(t, policy.AccessProjected, d.Kind)
	assert.Equal(t, consent.ID, d.ConsentID)
}

// Re-approval after revocation refreshes the same consent row.
func TestDecideRequest_ApproveUpsertsExistingConsent(t *testing.T) {
	store, svc := setup()
	app := store.addApp("dev", "Fitness App")
	identity := store.addIdentity("owner", "Alice", repository.VisibilityPrivate)
	ctx := context.Background()

	existing, err := store.Consents().Upsert(ctx, "owner", &app.ID, &identity.ID, []string{scope.ProfileLabel})
	require.NoError(t, err)
	require.NoError(t, store.Consents().Revoke(ctx, existing.ID))

	req, err := svc.CreateRequest(ctx, CreateRequestInput{
		IdentityID:         identity.ID,
		RequestingUserID:   "requester",
		AppID:              &app.ID,
		RequestedScopes:    []string{scope.IdentityRead},
		ContextDescription: "back again",
	})
	require.NoError(t, err)
	_, err = svc.DecideRequest(ctx, req.ID, "owner", DecisionApprove)
	require.NoError(t, err)

	refreshed, err := store.Consents().Get(ctx, existing.ID)
	require.NoError(t, err)
	assert.Nil(t, refreshed.RevokedAt, "upsert must clear revoked_at")
	assert.Equal(t, []string{scope.IdentityRead}, refreshed.GrantedScopes)
	assert.Len(t, store.consents, 1, "re-grant must update, not duplicate")
}

func TestDecideRequest_OnlyTargetMayDecide(t *testing.T) {
	store, svc := setup()
	identity := store.addIdentity("owner", "Alice", repository.VisibilityPrivate)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, CreateRequestInput{
		IdentityID:         identity.ID,
		RequestingUserID:   "requester",
		RequestedScopes:    []string{scope.ProfileLabel},
		ContextDescription: "testing",
	})
	require.NoError(t, err)

	// Not even the original requester may decide.
	for _, caller := range []string{"requester", "bystander"} {
		_, err = svc.DecideRequest(ctx, req.ID, caller, DecisionApprove)
		assert.ErrorIs(t, err, repository.ErrForbidden, "caller %s", caller)
	}

	cur, _ := store.ConsentRequests().Get(ctx, req.ID)
	assert.Equal(t, repository.RequestPending, cur.Status)
}

// Terminal states: the second decision fails and the stored status keeps the
// first decision.
func TestDecideRequest_TerminalStateIsFinal(t *testing.T) {
	store, svc := setup()
	identity := store.addIdentity("owner", "Alice", repository.VisibilityPrivate)
	ctx := context.Background()

	req, err := svc.CreateRequest(ctx, CreateRequestInput{
		IdentityID:         identity.ID,
		RequestingUserID:   "requester",
		RequestedScopes:    []string{scope.ProfileLabel},
		ContextDescription: "testing",
	})
	require.NoError(t, err)

	_, err = svc.DecideRequest(ctx, req.ID, "owner", DecisionReject)
	require.NoError(t, err)

	for _, second := range []Decision{DecisionApprove, DecisionReject} {
		_, err = svc.DecideRequest(ctx, req.ID, "owner", second)
		var already *AlreadyDecidedError
		require.ErrorAs(t, err, &already)
		assert.Equal(t, repository.RequestRejected, already.Status)
	}

	cur, _ := store.ConsentRequests().Get(ctx, req.ID)
	assert.Equal(t, repository.RequestRejected, cur.Status)
	// Reject has no consent side effect.
	assert.Empty(t, store.consents)
}

func TestBatchGrant_AllOrNothing(t *testing.T) {
	store, svc := setup()
	app := store.addApp("dev", "Calendar")
	mine1 := store.addIdentity("owner", "Work", repository.VisibilityPrivate)
	mine2 := store.addIdentity("owner", "Gaming", repository.VisibilityPrivate)
	theirs := store.addIdentity("someone-else", "Other", repository.VisibilityPrivate)
	ctx := context.Background()

	_, err := svc.BatchGrant(ctx, "owner", app.ID, []string{mine1.ID, theirs.ID, mine2.ID, "ghost"}, []string{scope.IdentityRead})
	var ownership *OwnershipError
	require.ErrorAs(t, err, &ownership)
	assert.ElementsMatch(t, []string{theirs.ID, "ghost"}, ownership.OffendingIDs)
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Empty(t, store.consents, "failed batch must grant nothing")

	count, err := svc.BatchGrant(ctx, "owner", app.ID, []string{mine1.ID, mine2.ID}, []string{scope.IdentityRead})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Len(t, store.consents, 2)

	// Idempotent: re-granting upserts the same rows.
	_, err = svc.BatchGrant(ctx, "owner", app.ID, []string{mine1.ID, mine2.ID}, []string{scope.IdentityRead, scope.ProfileLabel})
	require.NoError(t, err)
	assert.Len(t, store.consents, 2)
}

func TestBatchGrant_RejectsNonConnectableApp(t *testing.T) {
	store, svc := setup()
	app := store.addApp("dev", "Disabled App")
	app.IsEnabled = false
	identity := store.addIdentity("owner", "Work", repository.VisibilityPrivate)

	_, err := svc.BatchGrant(context.Background(), "owner", app.ID, []string{identity.ID}, []string{scope.IdentityRead})
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestRevoke_AuthorizationAndIdempotence(t *testing.T) {
	store, svc := setup()
	app := store.addApp("dev", "Calendar")
	identity := store.addIdentity("owner", "Work", repository.VisibilityPrivate)
	ctx := context.Background()

	consent, err := store.Consents().Upsert(ctx, "owner", &app.ID, &identity.ID, []string{scope.IdentityRead})
	require.NoError(t, err)

	err = svc.Revoke(ctx, consent.ID, "stranger")
	assert.ErrorIs(t, err, repository.ErrForbidden)
	assert.Nil(t, consent.RevokedAt)

	require.NoError(t, svc.Revoke(ctx, consent.ID, "owner"))
	require.NotNil(t, consent.RevokedAt)
	first := *consent.RevokedAt

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Revoke(ctx, consent.ID, "owner"), "double revoke must be a no-op success")
	assert.True(t, consent.RevokedAt.Equal(first), "second revoke must not change revoked_at")

	err = svc.Revoke(ctx, "missing", "owner")
	assert.True(t, errors.Is(err, repository.ErrNotFound))
}

// The identity owner may revoke a consent even if someone else is its userID.
// With the current flows userID is always the owner, so this covers the
// identity-ownership branch directly.
func TestRevoke_ByIdentityOwner(t *testing.T) {
	store, svc := setup()
	app := store.addApp("dev", "Calendar")
	identity := store.addIdentity("owner", "Work", repository.VisibilityPrivate)
	ctx := context.Background()

	consent, err := store.Consents().Upsert(ctx, "someone-else", &app.ID, &identity.ID, []string{scope.IdentityRead})
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, consent.ID, "owner"))
	assert.NotNil(t, consent.RevokedAt)
}
