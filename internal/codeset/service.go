package codeset

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	codesetDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/codeset"
	"github.com/mlavigne/client-management/internal/repository"
)

// StoreAPI is the read side used by administration screens. Lookup traffic
// goes through the Cache instead.
type StoreAPI interface {
	GetByID(ctx context.Context, id string, includeInactive bool) (*codesetDatamodel.CodeSet, error)
	ListByType(ctx context.Context, typeCode string, includeInactive bool) ([]*codesetDatamodel.CodeSet, error)
}

type Service struct {
	store  StoreAPI
	cache  *Cache
	begin  repository.TxFactory
	logger *slog.Logger
}

func NewService(store StoreAPI, cache *Cache, begin repository.TxFactory, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		begin:  begin,
		logger: logger,
	}
}

// GetGroup serves dropdown options for one group, from cache.
func (s *Service) GetGroup(ctx context.Context, typeCode, culture string) (*GroupResponse, error) {
	c, err := ParseCulture(culture)
	if err != nil {
		return nil, err
	}
	options, err := s.cache.GetGroup(ctx, typeCode, c)
	if err != nil {
		s.logger.Error("failed to get code-set group", "type_code", typeCode, "error", err)
		return nil, err
	}
	return &GroupResponse{
		TypeCode: codesetDatamodel.NormalizeCode(typeCode),
		Culture:  string(c),
		Options:  options,
	}, nil
}

func (s *Service) GetLabel(ctx context.Context, typeCode, code, culture string) (string, error) {
	c, err := ParseCulture(culture)
	if err != nil {
		return "", err
	}
	return s.cache.GetLabel(ctx, typeCode, code, c)
}

// IsValidCode reports whether code is an active member of the group. Lookup
// errors count as invalid; callers must not accept a code they cannot verify.
func (s *Service) IsValidCode(ctx context.Context, typeCode, code string) bool {
	_, err := s.cache.GetLabel(ctx, typeCode, code, CultureFr)
	return err == nil
}

// ListType is the administrative listing, optionally with deactivated rows.
func (s *Service) ListType(ctx context.Context, typeCode string, includeInactive bool) ([]CodeSetResponse, error) {
	rows, err := s.store.ListByType(ctx, typeCode, includeInactive)
	if err != nil {
		s.logger.Error("failed to list code-set entries", "type_code", typeCode, "error", err)
		return nil, err
	}
	responses := make([]CodeSetResponse, len(rows))
	for i, row := range rows {
		responses[i] = FromDataModel(row)
	}
	return responses, nil
}

func (s *Service) Create(ctx context.Context, req CreateCodeSetRequest) (*CodeSetResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity := &codesetDatamodel.CodeSet{
		ID:            uuid.NewString(),
		TypeCode:      req.TypeCode,
		Code:          req.Code,
		DescriptionFr: req.DescriptionFr,
		DescriptionEn: req.DescriptionEn,
		SortOrder:     req.SortOrder,
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	repo := repository.Of[codesetDatamodel.CodeSet](uow)
	if err := repo.Add(ctx, entity); err != nil {
		return nil, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("code-set entry created", "type_code", entity.TypeCode, "code", entity.Code)
	resp := FromDataModel(entity)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateCodeSetRequest) (*CodeSetResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entity, err := s.store.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	entity.DescriptionFr = req.DescriptionFr
	entity.DescriptionEn = req.DescriptionEn
	entity.SortOrder = req.SortOrder
	entity.RowVersion = req.RowVersion

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	repo := repository.Of[codesetDatamodel.CodeSet](uow)
	if err := repo.Update(ctx, entity); err != nil {
		return nil, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	resp := FromDataModel(entity)
	return &resp, nil
}

// Deactivate retires an entry from lookups; history referencing it survives.
func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, false)
}

func (s *Service) Reactivate(ctx context.Context, id string) error {
	return s.setActive(ctx, id, true)
}

func (s *Service) setActive(ctx context.Context, id string, active bool) error {
	uow, err := s.begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Close()

	repo := repository.Of[codesetDatamodel.CodeSet](uow)
	key := repository.Key{"id": id}
	if active {
		err = repo.Reactivate(ctx, key)
	} else {
		err = repo.Deactivate(ctx, key)
	}
	if err != nil {
		return err
	}
	_, err = uow.Commit(ctx)
	return err
}
