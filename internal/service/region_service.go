package service

import (
	"context"
	"errors"

	"github.com/rosvybory/observadores/internal/repo"
)

// ErrInvalidRegionKind indica tipo de região desconhecido.
var ErrInvalidRegionKind = errors.New("tipo de região inválido")

type regionRepository interface {
	ListRegions(ctx context.Context, kind int) ([]repo.Region, error)
	RegionByID(ctx context.Context, id int64) (repo.Region, error)
}

// RegionService expõe a hierarquia de regiões.
type RegionService struct {
	repo regionRepository
}

// NewRegionService cria nova instância.
func NewRegionService(r regionRepository) *RegionService {
	return &RegionService{repo: r}
}

// List devolve as regiões do tipo informado; 0 lista todas.
func (s *RegionService) List(ctx context.Context, kind int) ([]repo.Region, error) {
	switch kind {
	case 0, repo.RegionKindCity, repo.RegionKindAdmRegion, repo.RegionKindMunRegion:
	default:
		return nil, ErrInvalidRegionKind
	}
	return s.repo.ListRegions(ctx, kind)
}

// Get busca uma região.
func (s *RegionService) Get(ctx context.Context, id int64) (repo.Region, error) {
	return s.repo.RegionByID(ctx, id)
}
