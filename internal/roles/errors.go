package roles

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrRoleNotFound indica slug ou identificador ausente do catálogo.
	ErrRoleNotFound = errors.New("papel não encontrado")
	// ErrMutationForbidden indica alteração de papel fora do escopo do ator.
	ErrMutationForbidden = errors.New("alteração de papel não permitida")
)

// ForbiddenError lista os papéis que o ator tentou alterar sem permissão.
type ForbiddenError struct {
	Roles []string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("você não pode alterar o papel %s dos usuários", sentence(e.Roles))
}

// Is permite errors.Is(err, ErrMutationForbidden).
func (e *ForbiddenError) Is(target error) bool {
	return target == ErrMutationForbidden
}

func notFound(key any) error {
	return fmt.Errorf("%w: %v", ErrRoleNotFound, key)
}

// sentence junta nomes no formato "a, b e c".
func sentence(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " e " + names[len(names)-1]
	}
}
