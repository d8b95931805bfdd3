package policy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/identity"
	"github.com/resellhub/storefront/internal/models"
)

type fakeAccounts struct {
	accts map[string]*models.Account
	err   error
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	if a, ok := f.accts[id]; ok {
		return a, nil
	}
	return nil, errors.New("not found")
}

type fakeVerifier struct {
	verified bool
	err      error
	calls    int
}

func (f *fakeVerifier) Verify(context.Context, string) (bool, error) {
	f.calls++
	return f.verified, f.err
}

type fakeDenials struct {
	reasons []string
}

func (f *fakeDenials) RecordPolicyDenial(reason string) {
	f.reasons = append(f.reasons, reason)
}

func session(role models.Role) *identity.Session {
	return &identity.Session{UserID: "u1", Email: "u@example.com", Role: role}
}

func engine(acct *models.Account, v *fakeVerifier) *Engine {
	accts := map[string]*models.Account{}
	if acct != nil {
		accts["u1"] = acct
	}
	return &Engine{Accounts: &fakeAccounts{accts: accts}, Verifier: v}
}

func TestPublicRouteAlwaysAllowed(t *testing.T) {
	e := engine(nil, nil)
	d := e.Decide(context.Background(), Public, nil, "/")
	require.True(t, d.Allow)
}

func TestMissingSessionRedirectsToLoginWithFrom(t *testing.T) {
	e := engine(nil, nil)
	d := e.Decide(context.Background(), Authenticated, nil, "/orders")
	require.False(t, d.Allow)
	require.Equal(t, "/login?from=/orders", d.RedirectTo)
	require.ErrorIs(t, d.Err, fault.ErrNotAuthenticated)
}

func TestAccountLookupFailureDenies(t *testing.T) {
	e := &Engine{Accounts: &fakeAccounts{err: errors.New("network down")}}
	d := e.Decide(context.Background(), Authenticated, session(models.RoleFree), "/orders")
	require.False(t, d.Allow)
	require.True(t, d.SignOut)
	require.ErrorIs(t, d.Err, fault.ErrNotAuthenticated)
}

func TestAdminGateRejectsPremiumSession(t *testing.T) {
	e := engine(&models.Account{ID: "u1", Role: models.RolePremium}, nil)
	d := e.Decide(context.Background(), AdminGated, session(models.RolePremium), "/admin")
	require.False(t, d.Allow)
	require.Equal(t, AdminLoginRoute, d.RedirectTo)
	require.True(t, d.SignOut)
	require.ErrorIs(t, d.Err, fault.ErrPermissionDenied)
}

func TestAdminGateAllowsAdmin(t *testing.T) {
	e := engine(&models.Account{ID: "u1", Role: models.RoleAdmin}, nil)
	d := e.Decide(context.Background(), AdminGated, session(models.RoleAdmin), "/admin")
	require.True(t, d.Allow)
	require.NotNil(t, d.Account)
}

func TestPremiumGateRedirectsIncompletePayment(t *testing.T) {
	e := engine(&models.Account{ID: "u1", Role: models.RolePremium, PaymentStatus: "pending"}, nil)
	d := e.Decide(context.Background(), PremiumGated, session(models.RolePremium), "/premium-dashboard")
	require.False(t, d.Allow)
	require.Equal(t, PaymentRoute, d.RedirectTo)
}

func TestPremiumGateDemotesNonPremium(t *testing.T) {
	e := engine(&models.Account{ID: "u1", Role: models.RoleFree}, nil)
	d := e.Decide(context.Background(), PremiumGated, session(models.RolePremium), "/premium-dashboard")
	require.False(t, d.Allow)
	require.Equal(t, HomeRoute, d.RedirectTo)
	require.True(t, d.SignOut)
}

func TestPremiumGateVerifiesPaymentIntent(t *testing.T) {
	v := &fakeVerifier{verified: true}
	e := engine(&models.Account{
		ID: "u1", Role: models.RolePremium,
		PaymentStatus: models.PaymentCompleted, PaymentIntentID: "pi_123",
	}, v)

	d := e.Decide(context.Background(), PremiumGated, session(models.RolePremium), "/premium-dashboard")
	require.True(t, d.Allow)
	require.Equal(t, 1, v.calls)
}

func TestPremiumGateVerificationFailureRevokes(t *testing.T) {
	v := &fakeVerifier{verified: false}
	e := engine(&models.Account{
		ID: "u1", Role: models.RolePremium,
		PaymentStatus: models.PaymentCompleted, PaymentIntentID: "pi_123",
	}, v)

	d := e.Decide(context.Background(), PremiumGated, session(models.RolePremium), "/premium-dashboard")
	require.False(t, d.Allow)
	require.Equal(t, HomeRoute, d.RedirectTo)
	require.ErrorIs(t, d.Err, fault.ErrVerificationFailed)
}

func TestPremiumGateSkipsVerificationWithoutIntent(t *testing.T) {
	v := &fakeVerifier{}
	e := engine(&models.Account{
		ID: "u1", Role: models.RolePremium, PaymentStatus: models.PaymentCompleted,
	}, v)

	d := e.Decide(context.Background(), PremiumGated, session(models.RolePremium), "/premium-dashboard")
	require.True(t, d.Allow)
	require.Zero(t, v.calls)
}

func TestDenialsReachTheRecorder(t *testing.T) {
	rec := &fakeDenials{}
	e := engine(&models.Account{ID: "u1", Role: models.RoleFree}, nil)
	e.Metrics = rec

	d := e.Decide(context.Background(), Authenticated, nil, "/orders")
	require.False(t, d.Allow)
	require.Equal(t, []string{"no_session"}, rec.reasons)

	d = e.Decide(context.Background(), AdminGated, session(models.RoleFree), "/admin")
	require.False(t, d.Allow)
	require.Equal(t, []string{"no_session", "admin_role"}, rec.reasons)

	d = e.Decide(context.Background(), Authenticated, session(models.RoleFree), "/orders")
	require.True(t, d.Allow)
	require.Len(t, rec.reasons, 2)
}

func TestRequireAdminRevalidates(t *testing.T) {
	e := engine(&models.Account{ID: "u1", Role: models.RolePremium}, nil)

	_, err := e.RequireAdmin(context.Background(), session(models.RoleAdmin))
	require.ErrorIs(t, err, fault.ErrPermissionDenied)

	_, err = e.RequireAdmin(context.Background(), nil)
	require.ErrorIs(t, err, fault.ErrNotAuthenticated)

	e = engine(&models.Account{ID: "u1", Role: models.RoleAdmin}, nil)
	acct, err := e.RequireAdmin(context.Background(), session(models.RoleAdmin))
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, acct.Role)
}
