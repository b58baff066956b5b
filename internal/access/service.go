package access

import (
	"context"
	"log/slog"

	"github.com/mlavigne/client-management/internal"
	accessDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/access"
	"github.com/mlavigne/client-management/internal/repository"
)

// AdminStoreAPI is the read side for grant administration screens.
type AdminStoreAPI interface {
	GetView(ctx context.Context, viewCode string, includeInactive bool) (*accessDatamodel.AppView, error)
	ListViews(ctx context.Context, includeInactive bool) ([]*accessDatamodel.AppView, error)
	ListAccessTypes(ctx context.Context, includeInactive bool) ([]*accessDatamodel.AccessType, error)
	ListUserGrants(ctx context.Context, userID string) ([]*accessDatamodel.UserViewAccess, error)
}

// Service administers views, access types and grants. Resolution of
// effective privileges is the Resolver's job; this type only mutates the
// tables the Resolver reads.
type Service struct {
	store  AdminStoreAPI
	begin  repository.TxFactory
	logger *slog.Logger
}

func NewService(store AdminStoreAPI, begin repository.TxFactory, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		begin:  begin,
		logger: logger,
	}
}

func (s *Service) ListViews(ctx context.Context, includeInactive bool) ([]ViewResponse, error) {
	rows, err := s.store.ListViews(ctx, includeInactive)
	if err != nil {
		s.logger.Error("failed to list views", "error", err)
		return nil, err
	}
	responses := make([]ViewResponse, len(rows))
	for i, row := range rows {
		responses[i] = ViewFromDataModel(row)
	}
	return responses, nil
}

func (s *Service) ListAccessTypes(ctx context.Context, includeInactive bool) ([]AccessTypeResponse, error) {
	rows, err := s.store.ListAccessTypes(ctx, includeInactive)
	if err != nil {
		s.logger.Error("failed to list access types", "error", err)
		return nil, err
	}
	responses := make([]AccessTypeResponse, len(rows))
	for i, row := range rows {
		responses[i] = AccessTypeFromDataModel(row)
	}
	return responses, nil
}

func (s *Service) ListUserGrants(ctx context.Context, userID string) ([]GrantResponse, error) {
	rows, err := s.store.ListUserGrants(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list user grants", "user_id", userID, "error", err)
		return nil, err
	}
	responses := make([]GrantResponse, len(rows))
	for i, row := range rows {
		responses[i] = GrantFromDataModel(row)
	}
	return responses, nil
}

func (s *Service) CreateView(ctx context.Context, req CreateViewRequest) (*ViewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity := &accessDatamodel.AppView{
		ViewCode:      req.ViewCode,
		DescriptionFr: req.DescriptionFr,
		DescriptionEn: req.DescriptionEn,
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	repo := repository.Of[accessDatamodel.AppView](uow)
	if err := repo.Add(ctx, entity); err != nil {
		return nil, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("view registered", "view_code", entity.ViewCode)
	resp := ViewFromDataModel(entity)
	return &resp, nil
}

func (s *Service) CreateAccessType(ctx context.Context, req CreateAccessTypeRequest) (*AccessTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity := &accessDatamodel.AccessType{
		AccessTypeCode: req.AccessTypeCode,
		DescriptionFr:  req.DescriptionFr,
		DescriptionEn:  req.DescriptionEn,
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	repo := repository.Of[accessDatamodel.AccessType](uow)
	if err := repo.Add(ctx, entity); err != nil {
		return nil, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	resp := AccessTypeFromDataModel(entity)
	return &resp, nil
}

// SetGrant upserts the explicit per-user grant on one view. An explicit
// "none" is a deny that overrides the access-type default.
func (s *Service) SetGrant(ctx context.Context, userID, viewCode string, req SetGrantRequest) (*GrantResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	viewCode = normalizeCode(viewCode)
	if userID == "" {
		return nil, internal.NewValidationError("user id is required", internal.ErrCodeValidationFailed)
	}
	if _, err := s.store.GetView(ctx, viewCode, false); err != nil {
		if internal.IsNotFound(err) {
			return nil, internal.NewNotFoundError("unknown view", internal.ErrCodeViewNotFound)
		}
		return nil, err
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	repo := repository.Of[accessDatamodel.UserViewAccess](uow)
	key := repository.Key{"user_id": userID, "view_code": viewCode}

	existing, err := repo.Get(ctx, key, true)
	switch {
	case internal.IsNotFound(err):
		existing = &accessDatamodel.UserViewAccess{
			UserID:        userID,
			ViewCode:      viewCode,
			PrivilegeCode: req.PrivilegeCode,
		}
		if err := repo.Add(ctx, existing); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if !existing.IsActive {
			if err := repo.Reactivate(ctx, key); err != nil {
				return nil, err
			}
			existing.RowVersion++
		}
		existing.PrivilegeCode = req.PrivilegeCode
		if err := repo.Update(ctx, existing); err != nil {
			return nil, err
		}
	}

	if _, err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("grant set",
		"user_id", userID, "view_code", viewCode, "privilege", req.PrivilegeCode)
	resp := GrantFromDataModel(existing)
	return &resp, nil
}

// RemoveGrant deactivates the explicit grant so the access-type default
// applies again. Removing an absent grant is a no-op.
func (s *Service) RemoveGrant(ctx context.Context, userID, viewCode string) error {
	viewCode = normalizeCode(viewCode)

	uow, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Close()

	repo := repository.Of[accessDatamodel.UserViewAccess](uow)
	err = repo.Deactivate(ctx, repository.Key{"user_id": userID, "view_code": viewCode})
	if internal.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("grant removed", "user_id", userID, "view_code", viewCode)
	return nil
}

// SetDefaultGrant upserts the privilege an access type carries on one view.
func (s *Service) SetDefaultGrant(ctx context.Context, accessTypeCode, viewCode string, req SetGrantRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	accessTypeCode = normalizeCode(accessTypeCode)
	viewCode = normalizeCode(viewCode)
	if _, err := s.store.GetView(ctx, viewCode, false); err != nil {
		if internal.IsNotFound(err) {
			return internal.NewNotFoundError("unknown view", internal.ErrCodeViewNotFound)
		}
		return err
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Close()

	repo := repository.Of[accessDatamodel.AccessTypeView](uow)
	key := repository.Key{"access_type_code": accessTypeCode, "view_code": viewCode}

	existing, err := repo.Get(ctx, key, true)
	switch {
	case internal.IsNotFound(err):
		entity := &accessDatamodel.AccessTypeView{
			AccessTypeCode: accessTypeCode,
			ViewCode:       viewCode,
			PrivilegeCode:  req.PrivilegeCode,
		}
		if err := repo.Add(ctx, entity); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if !existing.IsActive {
			if err := repo.Reactivate(ctx, key); err != nil {
				return err
			}
			existing.RowVersion++
		}
		existing.PrivilegeCode = req.PrivilegeCode
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
	}

	_, err = uow.Commit(ctx)
	return err
}

// AssignAccessType sets or replaces the coarse access type of a user.
func (s *Service) AssignAccessType(ctx context.Context, userID string, req AssignAccessTypeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if userID == "" {
		return internal.NewValidationError("user id is required", internal.ErrCodeValidationFailed)
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Close()

	// The assigned access type must itself exist and be active.
	types := repository.Of[accessDatamodel.AccessType](uow)
	if _, err := types.Get(ctx, repository.Key{"access_type_code": req.AccessTypeCode}, false); err != nil {
		return err
	}

	repo := repository.Of[accessDatamodel.UserProfile](uow)
	key := repository.Key{"user_id": userID}

	existing, err := repo.Get(ctx, key, true)
	switch {
	case internal.IsNotFound(err):
		entity := &accessDatamodel.UserProfile{
			UserID:         userID,
			AccessTypeCode: req.AccessTypeCode,
		}
		if err := repo.Add(ctx, entity); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		if !existing.IsActive {
			if err := repo.Reactivate(ctx, key); err != nil {
				return err
			}
			existing.RowVersion++
		}
		existing.AccessTypeCode = req.AccessTypeCode
		if err := repo.Update(ctx, existing); err != nil {
			return err
		}
	}

	if _, err := uow.Commit(ctx); err != nil {
		return err
	}

	s.logger.Info("access type assigned", "user_id", userID, "access_type", req.AccessTypeCode)
	return nil
}
