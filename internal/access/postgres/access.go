package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/mlavigne/client-management/internal"
	accessDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/access"
	"github.com/mlavigne/client-management/internal/repository"
)

// AccessStore serves the resolver's lookups and the admin read paths over
// the audited repository. Absent rows come back as (nil, nil): the resolver
// must distinguish "no grant" from "lookup failed".
type AccessStore struct {
	grants   *repository.Repository[accessDatamodel.UserViewAccess, *accessDatamodel.UserViewAccess]
	profiles *repository.Repository[accessDatamodel.UserProfile, *accessDatamodel.UserProfile]
	defaults *repository.Repository[accessDatamodel.AccessTypeView, *accessDatamodel.AccessTypeView]
	views    *repository.Repository[accessDatamodel.AppView, *accessDatamodel.AppView]
	types    *repository.Repository[accessDatamodel.AccessType, *accessDatamodel.AccessType]
}

func NewAccessStore(db *gorm.DB, opts ...repository.Option) *AccessStore {
	return &AccessStore{
		grants:   repository.New[accessDatamodel.UserViewAccess, *accessDatamodel.UserViewAccess](db, opts...),
		profiles: repository.New[accessDatamodel.UserProfile, *accessDatamodel.UserProfile](db, opts...),
		defaults: repository.New[accessDatamodel.AccessTypeView, *accessDatamodel.AccessTypeView](db, opts...),
		views:    repository.New[accessDatamodel.AppView, *accessDatamodel.AppView](db, opts...),
		types:    repository.New[accessDatamodel.AccessType, *accessDatamodel.AccessType](db, opts...),
	}
}

func (s *AccessStore) ExplicitGrant(ctx context.Context, userID, viewCode string) (*accessDatamodel.UserViewAccess, error) {
	grant, err := s.grants.Get(ctx, repository.Key{"user_id": userID, "view_code": viewCode}, false)
	return absentAsNil(grant, err)
}

func (s *AccessStore) Profile(ctx context.Context, userID string) (*accessDatamodel.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, repository.Key{"user_id": userID}, false)
	return absentAsNil(profile, err)
}

func (s *AccessStore) DefaultGrant(ctx context.Context, accessTypeCode, viewCode string) (*accessDatamodel.AccessTypeView, error) {
	def, err := s.defaults.Get(ctx, repository.Key{"access_type_code": accessTypeCode, "view_code": viewCode}, false)
	return absentAsNil(def, err)
}

func (s *AccessStore) GetView(ctx context.Context, viewCode string, includeInactive bool) (*accessDatamodel.AppView, error) {
	return s.views.Get(ctx, repository.Key{"view_code": viewCode}, includeInactive)
}

func (s *AccessStore) ListViews(ctx context.Context, includeInactive bool) ([]*accessDatamodel.AppView, error) {
	return s.views.List(ctx, includeInactive, repository.OrderBy("view_code ASC"))
}

func (s *AccessStore) ListAccessTypes(ctx context.Context, includeInactive bool) ([]*accessDatamodel.AccessType, error) {
	return s.types.List(ctx, includeInactive, repository.OrderBy("access_type_code ASC"))
}

func (s *AccessStore) ListUserGrants(ctx context.Context, userID string) ([]*accessDatamodel.UserViewAccess, error) {
	return s.grants.List(ctx, false,
		repository.Where("user_id = ?", userID),
		repository.OrderBy("view_code ASC"),
	)
}

func absentAsNil[T any](row *T, err error) (*T, error) {
	if err != nil {
		if internal.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return row, nil
}
