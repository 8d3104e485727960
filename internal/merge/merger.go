package merge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
)

var (
	// ErrInvalidInput indica lista de requerimentos vazia ou malformada.
	ErrInvalidInput = errors.New("lista de requerimentos inválida")
)

// CurrentRoleResolver resolve funções de nomeação (satisfeito por roles.Catalog).
type CurrentRoleResolver interface {
	CurrentRoleByID(ctx context.Context, id int64) (repo.CurrentRole, error)
}

// UicLookup consulta comissões eleitorais; ausência é sinalizada com repo.ErrNotFound.
type UicLookup interface {
	PrecinctCommissionByNumber(ctx context.Context, number int) (repo.Uic, error)
	CommissionByNumber(ctx context.Context, number int) (repo.Uic, error)
	TerritorialCommissionByName(ctx context.Context, name string) (repo.Uic, error)
}

// RegionLookup consulta a hierarquia de regiões.
type RegionLookup interface {
	RegionByID(ctx context.Context, id int64) (repo.Region, error)
	FirstTerritorialCommission(ctx context.Context, regionID int64) (repo.Uic, error)
}

// Credentials gera senhas e normaliza telefones.
type Credentials interface {
	GeneratePassword() (string, error)
	NormalizePhone(raw string) (string, error)
}

// Merger deriva a conta do usuário a partir de um ou mais requerimentos.
type Merger struct {
	currentRoles CurrentRoleResolver
	uics         UicLookup
	regions      RegionLookup
	credentials  Credentials
	logger       zerolog.Logger
}

// New cria o merger.
func New(currentRoles CurrentRoleResolver, uics UicLookup, regions RegionLookup, credentials Credentials, logger zerolog.Logger) *Merger {
	return &Merger{
		currentRoles: currentRoles,
		uics:         uics,
		regions:      regions,
		credentials:  credentials,
		logger:       logger,
	}
}

// Merge aplica os requerimentos, na ordem recebida, sobre o usuário e o devolve.
// Nada é persistido; em caso de erro o usuário não foi alterado.
func (m *Merger) Merge(ctx context.Context, user *account.User, apps []repo.Application, updateCurrentRoles bool) (*account.User, error) {
	if len(apps) == 0 {
		return nil, fmt.Errorf("%w: nenhum requerimento informado", ErrInvalidInput)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: usuário ausente", ErrInvalidInput)
	}
	first := apps[0]
	single := len(apps) == 1

	common := commonCurrentRoles(apps)
	m.logger.Debug().
		Int64("application_id", first.ID).
		Ints64("requested", first.CurrentRoleIDs()).
		Ints64("common", common).
		Msg("merge: funções em comum")

	// resolve tudo que pode falhar antes de alterar o usuário
	var targets []target
	if updateCurrentRoles && len(common) > 0 {
		var err error
		if targets, err = m.resolveTargets(ctx, first, common); err != nil {
			return nil, err
		}
	}

	var (
		phone    string
		password string
	)
	if single {
		var err error
		if phone, err = m.credentials.NormalizePhone(first.Phone); err != nil {
			return nil, fmt.Errorf("%w: requerimento %d: %v", ErrInvalidInput, first.ID, err)
		}
		if password, err = m.credentials.GeneratePassword(); err != nil {
			return nil, err
		}
	}

	observer := allCanBeObserver(apps)
	if observer && !user.Roles.HasRole(roles.Observer) {
		// valida o slug antes de aplicar qualquer campo
		if err := user.Roles.AddRole(ctx, roles.Observer); err != nil {
			return nil, err
		}
	}

	if single {
		app := first
		user.LastName = app.LastName
		user.FirstName = app.FirstName
		user.Patronymic = app.Patronymic
		user.YearBorn = app.YearBorn
		user.Email = app.Email
		user.Phone = phone
		user.Application = &app
		appID := app.ID
		user.ApplicationID = &appID
		user.Password = password
	}

	if sameID(apps, func(a repo.Application) *int64 { return a.AdmRegionID }) {
		user.AdmRegionID = copyID(first.AdmRegionID)
		if sameID(apps, func(a repo.Application) *int64 { return a.RegionID }) {
			user.RegionID = copyID(first.RegionID)
		}
	}

	if sameID(apps, func(a repo.Application) *int64 { return a.OrganisationID }) {
		user.OrganisationID = copyID(first.OrganisationID)
	}

	for _, t := range targets {
		if user.HasCurrentRole(t.role.ID) {
			continue
		}
		assignment := user.FindOrInitCurrentRole(t.role)
		if !single {
			continue
		}
		uic, err := m.resolveUic(ctx, user, first, t)
		if err != nil {
			return nil, err
		}
		assignment.SetUic(uic)
		if uic == nil && (t.role.MustHaveUic || t.role.MustHaveTic) {
			m.logger.Info().
				Int64("application_id", first.ID).
				Str("current_role", t.role.Slug).
				Str("value", t.pair.Value).
				Msg("merge: comissão não encontrada, vínculo criado sem comissão")
		}
	}

	return user, nil
}

// target é um par do primeiro requerimento cuja função está em todos os requerimentos.
type target struct {
	pair repo.ApplicationCurrentRole
	role repo.CurrentRole
}

func (m *Merger) resolveTargets(ctx context.Context, first repo.Application, common []int64) ([]target, error) {
	inCommon := make(map[int64]struct{}, len(common))
	for _, id := range common {
		inCommon[id] = struct{}{}
	}

	targets := make([]target, 0, len(first.CurrentRoles))
	for _, pair := range first.CurrentRoles {
		if _, ok := inCommon[pair.CurrentRoleID]; !ok {
			continue
		}
		cr, err := m.currentRoles.CurrentRoleByID(ctx, pair.CurrentRoleID)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target{pair: pair, role: cr})
	}
	return targets, nil
}

// commonCurrentRoles intersecta as funções pedidas, preservando a ordem do primeiro requerimento.
func commonCurrentRoles(apps []repo.Application) []int64 {
	common := apps[0].CurrentRoleIDs()
	for _, app := range apps[1:] {
		requested := make(map[int64]struct{}, len(app.CurrentRoles))
		for _, id := range app.CurrentRoleIDs() {
			requested[id] = struct{}{}
		}
		kept := common[:0]
		for _, id := range common {
			if _, ok := requested[id]; ok {
				kept = append(kept, id)
			}
		}
		common = kept
	}
	return common
}

func allCanBeObserver(apps []repo.Application) bool {
	for _, app := range apps {
		if !app.CanBeObserver {
			return false
		}
	}
	return true
}

// sameID indica se todos os requerimentos concordam no identificador (inclusive ausente).
func sameID(apps []repo.Application, field func(repo.Application) *int64) bool {
	ref := field(apps[0])
	for _, app := range apps[1:] {
		v := field(app)
		switch {
		case ref == nil && v == nil:
		case ref == nil || v == nil:
			return false
		case *ref != *v:
			return false
		}
	}
	return true
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
