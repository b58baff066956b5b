package access

import (
	"context"
	"log/slog"

	accessDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/access"
)

// Store is the lookup surface the resolver needs. Implementations return
// (nil, nil) when no row exists; an error means the answer is unknown.
type Store interface {
	ExplicitGrant(ctx context.Context, userID, viewCode string) (*accessDatamodel.UserViewAccess, error)
	Profile(ctx context.Context, userID string) (*accessDatamodel.UserProfile, error)
	DefaultGrant(ctx context.Context, accessTypeCode, viewCode string) (*accessDatamodel.AccessTypeView, error)
}

// Resolver answers "may user U perform action A on view V". It holds no
// state of its own.
//
// Precedence: an explicit per-user grant is authoritative, even when it says
// None; otherwise the user's access-type default applies; otherwise None.
// Every lookup failure also resolves to None — errors favor denial, never
// elevation.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

func NewResolver(store Store, logger *slog.Logger) *Resolver {
	return &Resolver{store: store, logger: logger}
}

func (r *Resolver) Resolve(ctx context.Context, userID, viewCode string) Privilege {
	if userID == "" || viewCode == "" {
		return PrivilegeNone
	}

	grant, err := r.store.ExplicitGrant(ctx, userID, viewCode)
	if err != nil {
		r.logger.Warn("privilege lookup failed, denying",
			"user_id", userID, "view_code", viewCode, "error", err)
		return PrivilegeNone
	}
	if grant != nil {
		return ParsePrivilege(grant.PrivilegeCode)
	}

	profile, err := r.store.Profile(ctx, userID)
	if err != nil {
		r.logger.Warn("user profile lookup failed, denying",
			"user_id", userID, "view_code", viewCode, "error", err)
		return PrivilegeNone
	}
	if profile == nil {
		return PrivilegeNone
	}

	def, err := r.store.DefaultGrant(ctx, profile.AccessTypeCode, viewCode)
	if err != nil {
		r.logger.Warn("default privilege lookup failed, denying",
			"user_id", userID, "view_code", viewCode,
			"access_type", profile.AccessTypeCode, "error", err)
		return PrivilegeNone
	}
	if def == nil {
		return PrivilegeNone
	}
	return ParsePrivilege(def.PrivilegeCode)
}

// Authorize reports whether the user's resolved privilege on the view meets
// the required level.
func (r *Resolver) Authorize(ctx context.Context, userID, viewCode string, required Privilege) bool {
	return r.Resolve(ctx, userID, viewCode).AtLeast(required)
}
