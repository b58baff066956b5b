package postgres

import (
	"context"

	"gorm.io/gorm"

	codesetDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/codeset"
	"github.com/mlavigne/client-management/internal/repository"
)

// CodeSetStore serves the read side of the code-set feature: cache population
// and administrative listings. Writes go through a unit of work instead.
type CodeSetStore struct {
	repo *repository.Repository[codesetDatamodel.CodeSet, *codesetDatamodel.CodeSet]
}

func NewCodeSetStore(db *gorm.DB, opts ...repository.Option) *CodeSetStore {
	return &CodeSetStore{
		repo: repository.New[codesetDatamodel.CodeSet, *codesetDatamodel.CodeSet](db, opts...),
	}
}

// LoadGroup returns the active rows of one group in display order:
// sort_order first, code as the deterministic tie-break.
func (s *CodeSetStore) LoadGroup(ctx context.Context, typeCode string) ([]*codesetDatamodel.CodeSet, error) {
	return s.repo.List(ctx, false,
		repository.Where("type_code = ?", codesetDatamodel.NormalizeCode(typeCode)),
		repository.OrderBy("sort_order ASC, code ASC"),
	)
}

func (s *CodeSetStore) GetByID(ctx context.Context, id string, includeInactive bool) (*codesetDatamodel.CodeSet, error) {
	return s.repo.Get(ctx, repository.Key{"id": id}, includeInactive)
}

func (s *CodeSetStore) ListByType(ctx context.Context, typeCode string, includeInactive bool) ([]*codesetDatamodel.CodeSet, error) {
	return s.repo.List(ctx, includeInactive,
		repository.Where("type_code = ?", codesetDatamodel.NormalizeCode(typeCode)),
		repository.OrderBy("sort_order ASC, code ASC"),
	)
}
