package repo

import "time"

// Tipos de região, conforme hierarquia cidade > okrug administrativo > distrito municipal.
const (
	RegionKindCity      = 1
	RegionKindAdmRegion = 2
	RegionKindMunRegion = 3
)

// Tipos de comissão eleitoral.
const (
	UicKindPrecinct    = 1
	UicKindTerritorial = 2
)

// Estados do requerimento de nomeação.
const (
	ApplicationStatePending  = "pending"
	ApplicationStateApproved = "approved"
	ApplicationStateRejected = "rejected"
)

// Role representa papel geral de acesso (slug imutável).
type Role struct {
	ID        int64  `json:"id"`
	Slug      string `json:"slug"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
}

// DisplayName devolve o nome legível do papel.
func (r Role) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Slug
}

// UserRole vincula usuário a um papel geral.
type UserRole struct {
	ID     int64
	UserID int64
	Role   Role
}

// CurrentRole representa função de nomeação (membro de comissão, observador etc).
type CurrentRole struct {
	ID          int64  `json:"id"`
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Position    int    `json:"position"`
	MustHaveUic bool   `json:"must_have_uic"`
	MustHaveTic bool   `json:"must_have_tic"`
}

// Region representa nó da hierarquia territorial.
type Region struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Kind     int    `json:"kind"`
	ParentID *int64 `json:"parent_id,omitempty"`
	HasTic   bool   `json:"has_tic"`
}

// Uic representa comissão eleitoral (de seção ou territorial).
type Uic struct {
	ID          int64  `json:"id"`
	Kind        int    `json:"kind"`
	Number      int    `json:"number"`
	Name        string `json:"name"`
	RegionID    *int64 `json:"region_id,omitempty"`
	AdmRegionID *int64 `json:"adm_region_id,omitempty"`
}

// IsTerritorial indica comissão territorial.
func (u Uic) IsTerritorial() bool {
	return u.Kind == UicKindTerritorial
}

// Organisation representa a entidade que indica observadores.
type Organisation struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Application é o requerimento de nomeação enviado por uma organização.
type Application struct {
	ID             int64
	LastName       string
	FirstName      string
	Patronymic     string
	YearBorn       *int
	Email          string
	Phone          string
	RegionID       *int64
	AdmRegionID    *int64
	OrganisationID *int64
	CanBeObserver  bool
	UicNumber      string
	State          string
	CurrentRoles   []ApplicationCurrentRole
	CreatedAt      time.Time
}

// Approved indica se o requerimento já foi aprovado.
func (a Application) Approved() bool {
	return a.State == ApplicationStateApproved
}

// CurrentRoleIDs devolve as funções pedidas na ordem original, sem repetições.
func (a Application) CurrentRoleIDs() []int64 {
	seen := make(map[int64]struct{}, len(a.CurrentRoles))
	ids := make([]int64, 0, len(a.CurrentRoles))
	for _, cr := range a.CurrentRoles {
		if _, ok := seen[cr.CurrentRoleID]; ok {
			continue
		}
		seen[cr.CurrentRoleID] = struct{}{}
		ids = append(ids, cr.CurrentRoleID)
	}
	return ids
}

// ApplicationCurrentRole é o par (função, valor) pedido no requerimento.
// Value carrega o número da UIK ou o nome da TIK.
type ApplicationCurrentRole struct {
	ID            int64
	ApplicationID int64
	CurrentRoleID int64
	Value         string
}

// User representa a conta do observador.
type User struct {
	ID             int64     `json:"id"`
	LastName       string    `json:"last_name"`
	FirstName      string    `json:"first_name"`
	Patronymic     string    `json:"patronymic"`
	YearBorn       *int      `json:"year_born,omitempty"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone"`
	PasswordHash   string    `json:"-"`
	RegionID       *int64    `json:"region_id,omitempty"`
	AdmRegionID    *int64    `json:"adm_region_id,omitempty"`
	OrganisationID *int64    `json:"organisation_id,omitempty"`
	MobileGroupID  *int64    `json:"mobile_group_id,omitempty"`
	ApplicationID  *int64    `json:"application_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// UserCurrentRole vincula usuário a uma função de nomeação.
type UserCurrentRole struct {
	ID                 int64
	UserID             int64
	CurrentRoleID      int64
	UicID              *int64
	NominationSourceID *int64
}
