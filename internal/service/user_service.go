package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rosvybory/observadores/internal/account"
	"github.com/rosvybory/observadores/internal/auth"
	"github.com/rosvybory/observadores/internal/merge"
	"github.com/rosvybory/observadores/internal/metrics"
	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
)

const applicationLoadConcurrency = 4

type applicationRepository interface {
	GetApplication(ctx context.Context, id int64) (repo.Application, error)
}

type userStore interface {
	New() *account.User
	Load(ctx context.Context, id int64) (*account.User, error)
	LoadByPhone(ctx context.Context, phone string) (*account.User, error)
	Save(ctx context.Context, u *account.User, opts account.SaveOptions) (account.SaveResult, error)
}

type applicationMerger interface {
	Merge(ctx context.Context, user *account.User, apps []repo.Application, updateCurrentRoles bool) (*account.User, error)
}

type passwordNotifier interface {
	SendPassword(ctx context.Context, phone, password string) error
}

// UserService orquestra merge de requerimentos, edição de papéis e troca de senha.
type UserService struct {
	apps    applicationRepository
	store   userStore
	merger  applicationMerger
	sms     passwordNotifier
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewUserService cria nova instância.
func NewUserService(apps applicationRepository, store userStore, merger applicationMerger, sms passwordNotifier, m *metrics.Metrics, logger zerolog.Logger) *UserService {
	return &UserService{
		apps:    apps,
		store:   store,
		merger:  merger,
		sms:     sms,
		metrics: m,
		logger:  logger.With().Str("component", "users").Logger(),
	}
}

// GetUser carrega usuário com papéis e funções.
func (s *UserService) GetUser(ctx context.Context, id int64) (*account.User, error) {
	return s.store.Load(ctx, id)
}

// CreateFromApplications cria a conta a partir dos requerimentos e aprova o requerimento de origem.
// Se a conta nova pode entrar na base, a senha segue por SMS.
func (s *UserService) CreateFromApplications(ctx context.Context, scope *roles.Scope, appIDs []int64) (*account.User, error) {
	u, err := s.mergeInto(ctx, "create", s.store.New(), appIDs, true)
	if err != nil {
		return nil, err
	}

	result, err := s.save(ctx, u, account.SaveOptions{Scope: scope})
	if err != nil {
		return nil, err
	}
	s.logger.Info().
		Int64("user_id", u.ID).
		Ints64("application_ids", appIDs).
		Bool("application_approved", result.ApplicationApproved).
		Msg("usuário criado a partir de requerimentos")

	if result.Created && u.MayLogin() {
		s.notifyPassword(ctx, u)
	}
	return u, nil
}

// UpdateFromApplications aplica requerimentos sobre usuário existente.
func (s *UserService) UpdateFromApplications(ctx context.Context, scope *roles.Scope, userID int64, appIDs []int64, updateCurrentRoles bool) (*account.User, error) {
	u, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u, err = s.mergeInto(ctx, "update", u, appIDs, updateCurrentRoles); err != nil {
		return nil, err
	}
	if _, err := s.save(ctx, u, account.SaveOptions{Scope: scope}); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateRoles substitui os papéis gerais do usuário, respeitando o escopo do ator.
func (s *UserService) UpdateRoles(ctx context.Context, scope *roles.Scope, userID int64, roleIDs []int64) (*account.User, error) {
	u, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.Roles.SetRoles(ctx, roleIDs); err != nil {
		return nil, err
	}
	if _, err := s.save(ctx, u, account.SaveOptions{Scope: scope}); err != nil {
		return nil, err
	}
	return u, nil
}

// ResetPassword gera nova senha e envia por SMS, apenas para quem pode entrar na base.
// Telefone desconhecido não é erro.
func (s *UserService) ResetPassword(ctx context.Context, rawPhone string) error {
	phone, err := auth.NormalizePhone(rawPhone)
	if err != nil {
		return err
	}
	u, err := s.store.LoadByPhone(ctx, phone)
	if errors.Is(err, repo.ErrNotFound) {
		s.logger.Info().Msg("troca de senha: telefone não cadastrado")
		return nil
	}
	if err != nil {
		return err
	}
	if !u.MayLogin() {
		s.logger.Info().Int64("user_id", u.ID).Msg("troca de senha: usuário sem acesso")
		return nil
	}

	if u.Password, err = auth.GeneratePassword(); err != nil {
		return err
	}
	if _, err := s.save(ctx, u, account.SaveOptions{SkipValidation: true}); err != nil {
		return err
	}
	s.notifyPassword(ctx, u)
	return nil
}

func (s *UserService) mergeInto(ctx context.Context, kind string, u *account.User, appIDs []int64, updateCurrentRoles bool) (*account.User, error) {
	apps, err := s.loadApplications(ctx, appIDs)
	if err == nil {
		u, err = s.merger.Merge(ctx, u, apps, updateCurrentRoles)
	}
	s.metrics.Merge(kind, err)
	return u, err
}

// loadApplications busca os requerimentos em paralelo mantendo a ordem pedida.
func (s *UserService) loadApplications(ctx context.Context, ids []int64) ([]repo.Application, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: nenhum requerimento informado", merge.ErrInvalidInput)
	}

	apps := make([]repo.Application, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(applicationLoadConcurrency)
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			app, err := s.apps.GetApplication(gctx, id)
			if err != nil {
				return fmt.Errorf("requerimento %d: %w", id, err)
			}
			apps[i] = app
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return apps, nil
}

func (s *UserService) save(ctx context.Context, u *account.User, opts account.SaveOptions) (account.SaveResult, error) {
	var added, removed int
	for _, c := range u.Roles.Changes() {
		if c.MarkedForRemoval() {
			removed++
		} else if c.IsNew() {
			added++
		}
	}

	start := time.Now()
	result, err := s.store.Save(ctx, u, opts)
	s.metrics.ObserveSave(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, roles.ErrMutationForbidden) {
			s.metrics.Forbidden()
			s.logger.Warn().Err(err).Int64("user_id", u.ID).Msg("alteração de papéis rejeitada")
		}
		return result, err
	}
	s.metrics.RolesChanged(added, removed)
	return result, nil
}

func (s *UserService) notifyPassword(ctx context.Context, u *account.User) {
	if u.Password == "" {
		return
	}
	if err := s.sms.SendPassword(ctx, u.Phone, u.Password); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", u.ID).Msg("senha não enviada por SMS")
	}
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
