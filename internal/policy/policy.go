// Package policy is the single place route access is decided. Every gated
// page consults Decide instead of re-deriving role checks, and any error
// while resolving the account is a deny.
package policy

import (
	"context"
	"fmt"

	"github.com/resellhub/storefront/internal/fault"
	"github.com/resellhub/storefront/internal/identity"
	"github.com/resellhub/storefront/internal/logging"
	"github.com/resellhub/storefront/internal/models"
)

// Requirement classifies what a route demands of the caller.
type Requirement int

const (
	Public Requirement = iota
	Authenticated
	PremiumGated
	AdminGated
)

// Well-known routes the engine redirects to.
const (
	HomeRoute       = "/"
	LoginRoute      = "/login"
	AdminLoginRoute = "/admin-login"
	PaymentRoute    = "/payment"
)

// Decision is the outcome of an access check. When Allow is false RedirectTo
// names the surface to send the caller to, SignOut tells the handler to drop
// the stale session, and Err carries the taxonomy reason.
type Decision struct {
	Allow      bool
	Account    *models.Account
	RedirectTo string
	SignOut    bool
	Err        error
}

type AccountSource interface {
	GetByID(ctx context.Context, id string) (*models.Account, error)
}

type PaymentVerifier interface {
	Verify(ctx context.Context, paymentIntentID string) (bool, error)
}

type DenialRecorder interface {
	RecordPolicyDenial(reason string)
}

type Engine struct {
	Accounts AccountSource
	Verifier PaymentVerifier
	Marker   *MarkerCache
	Metrics  DenialRecorder
}

func (e *Engine) deny(reason string) {
	if e.Metrics != nil {
		e.Metrics.RecordPolicyDenial(reason)
	}
}

// Decide runs the evaluation order from the access contract: public routes
// pass, missing sessions bounce to login with the original path preserved,
// and role predicates fail closed with a forced sign-out so a stale session
// cannot loop.
func (e *Engine) Decide(ctx context.Context, req Requirement, sess *identity.Session, fromPath string) Decision {
	if req == Public {
		return Decision{Allow: true}
	}
	if sess == nil {
		e.deny("no_session")
		return Decision{
			RedirectTo: LoginRoute + "?from=" + fromPath,
			Err:        fault.ErrNotAuthenticated,
		}
	}

	// Read navigation inside the admin surface may ride the cached marker
	// instead of re-querying the account store. It is a convenience cache,
	// never a trust boundary: mutating actions go through RequireAdmin.
	if req == AdminGated && e.Marker.Has(ctx, sess.UserID) {
		return Decision{Allow: true}
	}

	acct, err := e.Accounts.GetByID(ctx, sess.UserID)
	if err != nil {
		// Absent or unreadable account: treat as unauthenticated.
		e.deny("account_lookup")
		return Decision{
			RedirectTo: LoginRoute + "?from=" + fromPath,
			SignOut:    true,
			Err:        fmt.Errorf("%w: account lookup failed", fault.ErrNotAuthenticated),
		}
	}

	switch req {
	case Authenticated:
		return Decision{Allow: true, Account: acct}

	case AdminGated:
		if acct.Role != models.RoleAdmin {
			e.deny("admin_role")
			return Decision{
				RedirectTo: AdminLoginRoute,
				SignOut:    true,
				Err:        fmt.Errorf("%w: admin role required", fault.ErrPermissionDenied),
			}
		}
		e.Marker.Set(ctx, sess.UserID)
		return Decision{Allow: true, Account: acct}

	case PremiumGated:
		if acct.Role != models.RolePremium {
			e.deny("premium_role")
			return Decision{
				RedirectTo: HomeRoute,
				SignOut:    true,
				Err:        fmt.Errorf("%w: premium role required", fault.ErrPermissionDenied),
			}
		}
		if acct.PaymentStatus != models.PaymentCompleted {
			e.deny("payment_incomplete")
			return Decision{
				RedirectTo: PaymentRoute,
				Err:        fmt.Errorf("%w: payment not completed", fault.ErrPermissionDenied),
			}
		}
		if acct.PaymentIntentID != "" {
			verified, err := e.Verifier.Verify(ctx, acct.PaymentIntentID)
			if err != nil || !verified {
				logging.FromContext(ctx).Warn("premium verification failed", "user_id", sess.UserID, "error", err)
				e.deny("verification_failed")
				return Decision{
					RedirectTo: HomeRoute,
					Err:        fmt.Errorf("%w: premium access verification failed", fault.ErrVerificationFailed),
				}
			}
		}
		return Decision{Allow: true, Account: acct}
	}

	return Decision{RedirectTo: HomeRoute, Err: fault.ErrPermissionDenied}
}

// RequireAdmin revalidates the admin role against the account store,
// bypassing the marker cache. Every mutating admin action goes through
// here.
func (e *Engine) RequireAdmin(ctx context.Context, sess *identity.Session) (*models.Account, error) {
	if sess == nil {
		e.deny("no_session")
		return nil, fmt.Errorf("%w: no session", fault.ErrNotAuthenticated)
	}
	acct, err := e.Accounts.GetByID(ctx, sess.UserID)
	if err != nil {
		e.deny("account_lookup")
		return nil, fmt.Errorf("%w: account lookup failed", fault.ErrNotAuthenticated)
	}
	if acct.Role != models.RoleAdmin {
		e.deny("admin_role")
		return nil, fmt.Errorf("%w: admin role required", fault.ErrPermissionDenied)
	}
	return acct, nil
}
