package account

import (
	"errors"
	"regexp"
	"strings"

	"github.com/rosvybory/observadores/internal/repo"
	"github.com/rosvybory/observadores/internal/roles"
	"github.com/rosvybory/observadores/internal/util"
)

var (
	// ErrInvalidPhone indica telefone ausente ou fora do padrão de 10 dígitos.
	ErrInvalidPhone = errors.New("telefone deve ter 10 dígitos")
	// ErrInvalidYearBorn indica ano de nascimento fora do intervalo aceito.
	ErrInvalidYearBorn = errors.New("ano de nascimento em formato inválido")
	// ErrInvalidEmail indica e-mail preenchido com formato inválido.
	ErrInvalidEmail = errors.New("email inválido")
)

var phonePattern = regexp.MustCompile(`^\d{10}$`)

// User é o agregado da conta: dados escalares, papéis gerais e funções de nomeação.
type User struct {
	repo.User

	// Password guarda a senha em claro apenas quando foi gerada nesta sessão.
	Password     string
	Roles        *roles.Membership
	CurrentRoles []*CurrentRoleAssignment
	Application  *repo.Application
}

// CurrentRoleAssignment é o vínculo com uma função de nomeação e sua comissão.
type CurrentRoleAssignment struct {
	repo.UserCurrentRole
	CurrentRole repo.CurrentRole
	Uic         *repo.Uic
}

// IsNew indica vínculo ainda não persistido.
func (a *CurrentRoleAssignment) IsNew() bool {
	return a.ID == 0
}

// SetUic liga a comissão ao vínculo.
func (a *CurrentRoleAssignment) SetUic(uic *repo.Uic) {
	a.Uic = uic
	if uic == nil {
		a.UicID = nil
		return
	}
	id := uic.ID
	a.UicID = &id
}

// New cria usuário vazio, ainda não persistido.
func New(catalog roles.Resolver) *User {
	return &User{Roles: roles.NewMembership(catalog, nil)}
}

// IsNew indica usuário ainda não persistido.
func (u *User) IsNew() bool {
	return u.ID == 0
}

// FullName monta "sobrenome nome patronímico".
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.LastName, u.FirstName, u.Patronymic} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// MayLogin indica se a conta pode receber credenciais de acesso.
func (u *User) MayLogin() bool {
	return roles.MayLogin(u.Roles)
}

// HasCurrentRole indica se já existe vínculo com a função informada.
func (u *User) HasCurrentRole(currentRoleID int64) bool {
	for _, a := range u.CurrentRoles {
		if a.CurrentRoleID == currentRoleID {
			return true
		}
	}
	return false
}

// FindOrInitCurrentRole devolve o vínculo existente para a função ou cria um novo pendente.
func (u *User) FindOrInitCurrentRole(cr repo.CurrentRole) *CurrentRoleAssignment {
	for _, a := range u.CurrentRoles {
		if a.CurrentRoleID == cr.ID {
			return a
		}
	}
	a := &CurrentRoleAssignment{
		UserCurrentRole: repo.UserCurrentRole{UserID: u.ID, CurrentRoleID: cr.ID},
		CurrentRole:     cr,
	}
	u.CurrentRoles = append(u.CurrentRoles, a)
	return a
}

// PendingCurrentRoles devolve os vínculos ainda não persistidos.
func (u *User) PendingCurrentRoles() []*CurrentRoleAssignment {
	var pending []*CurrentRoleAssignment
	for _, a := range u.CurrentRoles {
		if a.IsNew() {
			pending = append(pending, a)
		}
	}
	return pending
}

// Validate aplica as regras de formato exigidas antes de salvar.
func (u *User) Validate() error {
	if !phonePattern.MatchString(u.Phone) {
		return ErrInvalidPhone
	}
	if u.YearBorn != nil && (*u.YearBorn <= 1900 || *u.YearBorn >= 2000) {
		return ErrInvalidYearBorn
	}
	if strings.TrimSpace(u.Email) != "" {
		if err := util.ValidateEmail(u.Email); err != nil {
			return ErrInvalidEmail
		}
	}
	return nil
}
