package client

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mlavigne/client-management/internal"
	"github.com/mlavigne/client-management/internal/codeset"
	clientDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/client"
	"github.com/mlavigne/client-management/internal/repository"
)

type StoreAPI interface {
	GetByID(ctx context.Context, id string, includeInactive bool) (*clientDatamodel.Client, error)
	GetByCode(ctx context.Context, clientCode string, includeInactive bool) (*clientDatamodel.Client, error)
	List(ctx context.Context, search string, includeInactive bool, limit, offset int) ([]*clientDatamodel.Client, error)
}

// CodeLookup validates and localizes coded fields. Satisfied by the code-set
// service, which answers from cache.
type CodeLookup interface {
	IsValidCode(ctx context.Context, typeCode, code string) bool
	GetLabel(ctx context.Context, typeCode, code, culture string) (string, error)
}

type Service struct {
	store  StoreAPI
	codes  CodeLookup
	begin  repository.TxFactory
	logger *slog.Logger
}

func NewService(store StoreAPI, codes CodeLookup, begin repository.TxFactory, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		codes:  codes,
		begin:  begin,
		logger: logger,
	}
}

// validateCodes rejects coded values that are not active members of their
// group. A code the cache cannot verify counts as invalid.
func (s *Service) validateCodes(ctx context.Context, languageCode, provinceCode string) *internal.AppError {
	if !s.codes.IsValidCode(ctx, codeset.GroupLanguage, languageCode) {
		return internal.NewValidationError("unknown language code: "+languageCode, internal.ErrCodeInvalidCode)
	}
	if !s.codes.IsValidCode(ctx, codeset.GroupProvince, provinceCode) {
		return internal.NewValidationError("unknown province code: "+provinceCode, internal.ErrCodeInvalidCode)
	}
	return nil
}

func (s *Service) decorate(ctx context.Context, m *clientDatamodel.Client, culture codeset.Culture) ClientResponse {
	resp := FromDataModel(m)
	if label, err := s.codes.GetLabel(ctx, codeset.GroupLanguage, m.LanguageCode, string(culture)); err == nil {
		resp.LanguageLabel = label
	}
	if label, err := s.codes.GetLabel(ctx, codeset.GroupProvince, m.ProvinceCode, string(culture)); err == nil {
		resp.ProvinceLabel = label
	}
	return resp
}

func (s *Service) Get(ctx context.Context, id, culture string, includeInactive bool) (*ClientResponse, error) {
	c, err := codeset.ParseCulture(culture)
	if err != nil {
		return nil, err
	}
	m, err := s.store.GetByID(ctx, id, includeInactive)
	if err != nil {
		return nil, err
	}
	resp := s.decorate(ctx, m, c)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, search, culture string, includeInactive bool, limit, offset int) ([]ClientResponse, error) {
	c, err := codeset.ParseCulture(culture)
	if err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.store.List(ctx, search, includeInactive, limit, offset)
	if err != nil {
		s.logger.Error("failed to list clients", "error", err)
		return nil, err
	}
	responses := make([]ClientResponse, len(rows))
	for i, row := range rows {
		responses[i] = s.decorate(ctx, row, c)
	}
	return responses, nil
}

func (s *Service) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateCodes(ctx, req.LanguageCode, req.ProvinceCode); err != nil {
		return nil, err
	}

	entity := &clientDatamodel.Client{
		ID:           uuid.NewString(),
		ClientCode:   req.ClientCode,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		LanguageCode: req.LanguageCode,
		ProvinceCode: req.ProvinceCode,
	}

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	repo := repository.Of[clientDatamodel.Client](uow)
	if err := repo.Add(ctx, entity); err != nil {
		return nil, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	s.logger.Info("client created", "client_code", entity.ClientCode)
	resp := s.decorate(ctx, entity, codeset.CultureFr)
	return &resp, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateClientRequest) (*ClientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.validateCodes(ctx, req.LanguageCode, req.ProvinceCode); err != nil {
		return nil, err
	}

	entity, err := s.store.GetByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	entity.FirstName = req.FirstName
	entity.LastName = req.LastName
	entity.Email = req.Email
	entity.LanguageCode = req.LanguageCode
	entity.ProvinceCode = req.ProvinceCode
	entity.RowVersion = req.RowVersion

	uow, err := s.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer uow.Close()

	repo := repository.Of[clientDatamodel.Client](uow)
	if err := repo.Update(ctx, entity); err != nil {
		return nil, err
	}
	if _, err := uow.Commit(ctx); err != nil {
		return nil, err
	}

	resp := s.decorate(ctx, entity, codeset.CultureFr)
	return &resp, nil
}

// Deactivate retires a client without erasing history that references it.
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

	repo := repository.Of[clientDatamodel.Client](uow)
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
