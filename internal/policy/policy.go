// Package policy is the plan and role decision engine. It is pure: it consumes
// a user's plan or role plus request parameters and returns a tagged decision,
// so every gated path branches in one place instead of scattering tier
// conditionals across handlers.
package policy

import (
	"errors"

	"petconnect/internal/model"
)

// Unlimited marks a ceiling with no upper bound.
const Unlimited = -1

// BoundedFeedLimit is the fixed window size for basic-tier feed access.
const BoundedFeedLimit = 10

// DefaultPageSize is used when a premium caller supplies no limit.
const DefaultPageSize = 10

var (
	// ErrPlanForbidden is the uniform denial for plan-gated access. It is an
	// authorization failure, distinguishable from a missing resource.
	ErrPlanForbidden = errors.New("your plan does not allow this, upgrade required")

	// ErrRoleForbidden denies access to admin-only surfaces.
	ErrRoleForbidden = errors.New("admin role required")
)

// ProfileCeiling returns the maximum number of pet profiles an owner on the
// given plan may hold, or Unlimited.
func ProfileCeiling(plan model.Plan) int {
	switch plan {
	case model.PlanBasic:
		return 5
	case model.PlanPremium:
		return Unlimited
	default:
		// Unknown plans are treated as free.
		return 1
	}
}

// CanCreateProfile decides whether an owner currently holding ownedCount
// profiles may create one more.
func CanCreateProfile(plan model.Plan, ownedCount int) bool {
	ceiling := ProfileCeiling(plan)
	return ceiling == Unlimited || ownedCount < ceiling
}

// FeedAccessKind tags the shape of a feed decision.
type FeedAccessKind int

const (
	// FeedDenied means the caller's plan has no feed access at all.
	FeedDenied FeedAccessKind = iota
	// FeedBounded grants a fixed top-N window, ignoring caller paging.
	FeedBounded
	// FeedPaginated grants caller-controlled page and limit.
	FeedPaginated
)

// FeedDecision describes how the feed query must be executed for a caller.
// Ordering is always likes descending, then creation time descending; ties on
// likes break strictly toward the newer profile.
type FeedDecision struct {
	Kind   FeedAccessKind
	Limit  int
	Offset int
}

// FeedAccess decides the feed shape for a plan. page and limit are the
// caller-supplied values; they only take effect for premium callers. page
// starts at 1 and non-positive values of either fall back to defaults.
func FeedAccess(plan model.Plan, page, limit int) FeedDecision {
	switch plan {
	case model.PlanBasic:
		return FeedDecision{Kind: FeedBounded, Limit: BoundedFeedLimit}
	case model.PlanPremium:
		if limit <= 0 {
			limit = DefaultPageSize
		}
		if page <= 0 {
			page = 1
		}
		return FeedDecision{Kind: FeedPaginated, Limit: limit, Offset: (page - 1) * limit}
	default:
		return FeedDecision{Kind: FeedDenied}
	}
}

// PremiumGate admits premium callers to premium-only features. Every such
// feature shares this single decision so denials are indistinguishable in
// shape across features.
func PremiumGate(plan model.Plan) error {
	if plan != model.PlanPremium {
		return ErrPlanForbidden
	}
	return nil
}

// RoleGate admits admins to the admin dashboard.
func RoleGate(role model.Role) error {
	if role != model.RoleAdmin {
		return ErrRoleForbidden
	}
	return nil
}
