package postgres

import (
	"context"

	"gorm.io/gorm"

	clientDatamodel "github.com/mlavigne/client-management/internal/core/datamodel/client"
	"github.com/mlavigne/client-management/internal/repository"
)

// ClientStore is the read side of the client feature. Writes go through a
// unit of work.
type ClientStore struct {
	repo *repository.Repository[clientDatamodel.Client, *clientDatamodel.Client]
}

func NewClientStore(db *gorm.DB, opts ...repository.Option) *ClientStore {
	return &ClientStore{
		repo: repository.New[clientDatamodel.Client, *clientDatamodel.Client](db, opts...),
	}
}

func (s *ClientStore) GetByID(ctx context.Context, id string, includeInactive bool) (*clientDatamodel.Client, error) {
	return s.repo.Get(ctx, repository.Key{"id": id}, includeInactive)
}

func (s *ClientStore) GetByCode(ctx context.Context, clientCode string, includeInactive bool) (*clientDatamodel.Client, error) {
	return s.repo.Get(ctx, repository.Key{"client_code": clientCode}, includeInactive)
}

// List pages through clients in code order. A non-empty search filters on
// code, name and email.
func (s *ClientStore) List(ctx context.Context, search string, includeInactive bool, limit, offset int) ([]*clientDatamodel.Client, error) {
	scopes := []repository.Scope{
		repository.OrderBy("client_code ASC"),
		repository.Limit(limit),
		repository.Offset(offset),
	}
	if search != "" {
		like := "%" + search + "%"
		scopes = append(scopes, repository.Where(
			"client_code LIKE ? OR last_name LIKE ? OR first_name LIKE ? OR email LIKE ?",
			like, like, like, like,
		))
	}
	return s.repo.List(ctx, includeInactive, scopes...)
}
