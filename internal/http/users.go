package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rosvybory/observadores/internal/account"
	httpmiddleware "github.com/rosvybory/observadores/internal/http/middleware"
	"github.com/rosvybory/observadores/internal/repo"
)

type userView struct {
	ID             int64             `json:"id"`
	LastName       string            `json:"last_name"`
	FirstName      string            `json:"first_name"`
	Patronymic     string            `json:"patronymic"`
	FullName       string            `json:"full_name"`
	YearBorn       *int              `json:"year_born,omitempty"`
	Email          string            `json:"email,omitempty"`
	Phone          string            `json:"phone"`
	RegionID       *int64            `json:"region_id,omitempty"`
	AdmRegionID    *int64            `json:"adm_region_id,omitempty"`
	OrganisationID *int64            `json:"organisation_id,omitempty"`
	ApplicationID  *int64            `json:"application_id,omitempty"`
	MayLogin       bool              `json:"may_login"`
	Roles          []repo.Role       `json:"roles"`
	CurrentRoles   []currentRoleView `json:"current_roles"`
}

type currentRoleView struct {
	ID          int64            `json:"id"`
	CurrentRole repo.CurrentRole `json:"current_role"`
	Uic         *repo.Uic        `json:"uic,omitempty"`
	UicID       *int64           `json:"uic_id,omitempty"`
}

func newUserView(u *account.User) userView {
	v := userView{
		ID:             u.ID,
		LastName:       u.LastName,
		FirstName:      u.FirstName,
		Patronymic:     u.Patronymic,
		FullName:       u.FullName(),
		YearBorn:       u.YearBorn,
		Email:          u.Email,
		Phone:          u.Phone,
		RegionID:       u.RegionID,
		AdmRegionID:    u.AdmRegionID,
		OrganisationID: u.OrganisationID,
		ApplicationID:  u.ApplicationID,
		MayLogin:       u.MayLogin(),
		Roles:          u.Roles.Roles(),
		CurrentRoles:   make([]currentRoleView, 0, len(u.CurrentRoles)),
	}
	for _, a := range u.CurrentRoles {
		v.CurrentRoles = append(v.CurrentRoles, currentRoleView{
			ID:          a.ID,
			CurrentRole: a.CurrentRole,
			Uic:         a.Uic,
			UicID:       a.UicID,
		})
	}
	return v
}

// Login autentica por telefone e senha.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	if payload.Phone == "" || payload.Password == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "telefone e senha são obrigatórios", nil)
		return
	}

	result, err := h.auth.Login(r.Context(), payload.Phone, payload.Password)
	if err != nil {
		h.handleAuthError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

// ResetPassword envia nova senha por SMS; a resposta não revela se o telefone existe.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}

	if err := h.users.ResetPassword(r.Context(), payload.Phone); err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

// GetUser devolve a conta com papéis e funções.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	u, err := h.users.GetUser(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newUserView(u))
}

// CreateUser cria conta a partir de requerimentos.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ApplicationIDs []int64 `json:"application_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	scope, ok := httpmiddleware.GetScope(r.Context())
	if !ok {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "escopo do ator ausente", nil)
		return
	}

	u, err := h.users.CreateFromApplications(r.Context(), scope, payload.ApplicationIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, newUserView(u))
}

// UpdateUserFromApplications aplica requerimentos em conta existente.
func (h *Handler) UpdateUserFromApplications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	payload := struct {
		ApplicationIDs     []int64 `json:"application_ids"`
		UpdateCurrentRoles *bool   `json:"update_current_roles"`
	}{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	updateCurrentRoles := payload.UpdateCurrentRoles == nil || *payload.UpdateCurrentRoles
	scope, ok := httpmiddleware.GetScope(r.Context())
	if !ok {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "escopo do ator ausente", nil)
		return
	}

	u, err := h.users.UpdateFromApplications(r.Context(), scope, id, payload.ApplicationIDs, updateCurrentRoles)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newUserView(u))
}

// UpdateUserRoles substitui os papéis gerais da conta.
func (h *Handler) UpdateUserRoles(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload struct {
		RoleIDs []int64 `json:"role_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "JSON inválido", nil)
		return
	}
	scope, ok := httpmiddleware.GetScope(r.Context())
	if !ok {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "escopo do ator ausente", nil)
		return
	}

	u, err := h.users.UpdateRoles(r.Context(), scope, id, payload.RoleIDs)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, newUserView(u))
}

// ListRegions lista regiões, opcionalmente filtradas por ?kind=.
func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	kind := 0
	if raw := r.URL.Query().Get("kind"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "kind inválido", nil)
			return
		}
		kind = v
	}

	regions, err := h.regions.List(r.Context(), kind)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if regions == nil {
		regions = []repo.Region{}
	}
	WriteJSON(w, http.StatusOK, regions)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "id inválido", nil)
		return 0, false
	}
	return id, true
}
