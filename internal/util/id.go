package util

import "github.com/google/uuid"

// NewRef gera identificador opaco para correlacionar chamadas externas.
func NewRef() string {
	return uuid.NewString()
}
