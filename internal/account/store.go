package account

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/rosvybory/observadores/internal/auth"
	"github.com/rosvybory/observadores/internal/db"
	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
)

// Pool é satisfeito por *pgxpool.Pool.
type Pool interface {
	repo.DBTX
	db.TxBeginner
}

// SaveOptions controla validações aplicadas no commit.
type SaveOptions struct {
	// Scope restringe os papéis que podem ser alterados; nil não restringe.
	Scope *roles.Scope
	// SkipValidation ignora as regras de formato (usado na troca de senha).
	SkipValidation bool
}

// SaveResult descreve efeitos colaterais do commit.
type SaveResult struct {
	Created             bool
	ApplicationApproved bool
}

// Store carrega e persiste o agregado User de forma atômica.
type Store struct {
	pool    Pool
	queries *repo.Queries
	catalog roles.Resolver
}

// NewStore cria store sobre o pool informado.
func NewStore(pool Pool, catalog roles.Resolver) *Store {
	return &Store{pool: pool, queries: repo.New(pool), catalog: catalog}
}

// New cria usuário vazio ligado ao catálogo do store.
func (s *Store) New() *User {
	return New(s.catalog)
}

// Load busca usuário com papéis e funções de nomeação.
func (s *Store) Load(ctx context.Context, id int64) (*User, error) {
	row, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, row)
}

// LoadByPhone busca usuário pelo telefone já normalizado.
func (s *Store) LoadByPhone(ctx context.Context, phone string) (*User, error) {
	row, err := s.queries.GetUserByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, row)
}

func (s *Store) hydrate(ctx context.Context, row repo.User) (*User, error) {
	userRoles, err := s.queries.ListUserRoles(ctx, row.ID)
	if err != nil {
		return nil, err
	}
	current, err := s.queries.ListUserCurrentRoles(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	u := &User{User: row, Roles: roles.NewMembership(s.catalog, userRoles)}
	for _, c := range current {
		u.CurrentRoles = append(u.CurrentRoles, &CurrentRoleAssignment{
			UserCurrentRole: c.UserCurrentRole,
			CurrentRole:     c.CurrentRole,
		})
	}
	return u, nil
}

// Save grava dados escalares, papéis e funções numa única transação.
// O escopo do ator é verificado antes de abrir a transação; qualquer falha deixa o banco intacto.
func (s *Store) Save(ctx context.Context, u *User, opts SaveOptions) (SaveResult, error) {
	changes := u.Roles.Changes()
	if err := opts.Scope.Check(changes); err != nil {
		return SaveResult{}, err
	}
	if !opts.SkipValidation {
		if err := u.Validate(); err != nil {
			return SaveResult{}, err
		}
	}

	row := u.User
	if u.Password != "" {
		hash, err := auth.Hash(u.Password)
		if err != nil {
			return SaveResult{}, err
		}
		row.PasswordHash = hash
	}

	result := SaveResult{Created: u.IsNew()}
	pending := u.PendingCurrentRoles()
	pendingIDs := make([]int64, len(pending))
	var persisted []repo.UserRole

	err := db.WithTx(ctx, s.pool, func(ctx context.Context, tx pgx.Tx) error {
		q := s.queries.WithTx(tx)

		if result.Created {
			id, err := q.InsertUser(ctx, row)
			if err != nil {
				return err
			}
			row.ID = id
		} else if err := q.UpdateUser(ctx, row); err != nil {
			return err
		}

		for _, c := range changes {
			switch {
			case c.MarkedForRemoval():
				if err := q.DeleteUserRole(ctx, c.ID); err != nil {
					return err
				}
			case c.IsNew():
				if err := q.InsertUserRole(ctx, row.ID, c.Role.ID); err != nil {
					return err
				}
			}
		}

		for i, a := range pending {
			ucr := a.UserCurrentRole
			ucr.UserID = row.ID
			id, err := q.InsertUserCurrentRole(ctx, ucr)
			if err != nil {
				return err
			}
			pendingIDs[i] = id
		}

		if result.Created && u.Application != nil && !u.Application.Approved() {
			approved, err := q.ApproveApplication(ctx, u.Application.ID)
			if err != nil {
				return err
			}
			result.ApplicationApproved = approved
		}

		var err error
		persisted, err = q.ListUserRoles(ctx, row.ID)
		return err
	})
	if err != nil {
		return SaveResult{}, err
	}

	// só reflete no agregado depois do commit
	u.User = row
	for i, a := range pending {
		a.ID = pendingIDs[i]
		a.UserID = row.ID
	}
	u.Roles.Reload(persisted)
	if result.ApplicationApproved {
		u.Application.State = repo.ApplicationStateApproved
	}

	return result, nil
}
