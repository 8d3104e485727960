package merge

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/repo"
)

// uicStrategy tenta localizar a comissão; (nil, nil) passa para a próxima estratégia.
type uicStrategy func(ctx context.Context, user *account.User, app repo.Application, value string) (*repo.Uic, error)

// resolveUic aplica, em ordem, as estratégias aplicáveis à função.
func (m *Merger) resolveUic(ctx context.Context, user *account.User, app repo.Application, t target) (*repo.Uic, error) {
	var strategies []uicStrategy
	switch {
	case t.role.MustHaveUic:
		strategies = []uicStrategy{m.precinctByValue, m.commissionByAppNumber}
	case t.role.MustHaveTic:
		strategies = []uicStrategy{m.territorialByName, m.territorialOfRegion, m.territorialOfAdmRegion}
	default:
		return nil, nil
	}

	for _, s := range strategies {
		uic, err := s(ctx, user, app, strings.TrimSpace(t.pair.Value))
		if err != nil {
			return nil, err
		}
		if uic != nil {
			return uic, nil
		}
	}
	return nil, nil
}

func (m *Merger) precinctByValue(ctx context.Context, _ *account.User, _ repo.Application, value string) (*repo.Uic, error) {
	number, ok := parseNumber(value)
	if !ok {
		return nil, nil
	}
	return found(m.uics.PrecinctCommissionByNumber(ctx, number))
}

func (m *Merger) commissionByAppNumber(ctx context.Context, _ *account.User, app repo.Application, _ string) (*repo.Uic, error) {
	number, ok := parseNumber(app.UicNumber)
	if !ok {
		return nil, nil
	}
	return found(m.uics.CommissionByNumber(ctx, number))
}

func (m *Merger) territorialByName(ctx context.Context, _ *account.User, _ repo.Application, value string) (*repo.Uic, error) {
	if value == "" {
		return nil, nil
	}
	return found(m.uics.TerritorialCommissionByName(ctx, value))
}

func (m *Merger) territorialOfRegion(ctx context.Context, user *account.User, _ repo.Application, _ string) (*repo.Uic, error) {
	return m.territorialOf(ctx, user.RegionID)
}

func (m *Merger) territorialOfAdmRegion(ctx context.Context, user *account.User, _ repo.Application, _ string) (*repo.Uic, error) {
	return m.territorialOf(ctx, user.AdmRegionID)
}

// territorialOf devolve a primeira TIK da região, se ela possuir TIK.
func (m *Merger) territorialOf(ctx context.Context, regionID *int64) (*repo.Uic, error) {
	if regionID == nil {
		return nil, nil
	}
	region, err := m.regions.RegionByID(ctx, *regionID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !region.HasTic {
		return nil, nil
	}
	return found(m.regions.FirstTerritorialCommission(ctx, region.ID))
}

// found converte ErrNotFound em ausência de resultado.
func found(uic repo.Uic, err error) (*repo.Uic, error) {
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &uic, nil
}

func parseNumber(raw string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
