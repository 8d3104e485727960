package roles

// Slugs dos papéis usados pelas regras do serviço.
const (
	Admin       = "admin"
	Territorial = "tc"
	Municipal   = "mc"
	Central     = "cc"
	FederalRepr = "federal_repr"
	Mobile      = "mobile"
	Observer    = "observer"
)

// LoginRoles são os papéis que dão acesso à base.
var LoginRoles = []string{Admin, Territorial, Municipal, Central, FederalRepr}

// MayLogin indica se os papéis atuais permitem receber credenciais de acesso.
func MayLogin(m *Membership) bool {
	if m == nil {
		return false
	}
	return m.HasAnyRole(LoginRoles...)
}
