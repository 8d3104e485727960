package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
)

var (
	// ErrInvalidPhone indica telefone fora do formato de 10 dígitos.
	ErrInvalidPhone = errors.New("telefone inválido")
)

// PasswordDigits é a largura fixa da senha enviada por SMS.
const PasswordDigits = 8

var passwordSpace = big.NewInt(100_000_000)

// GeneratePassword cria senha numérica aleatória de 8 dígitos.
func GeneratePassword() (string, error) {
	n, err := rand.Int(rand.Reader, passwordSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", PasswordDigits, n.Int64()), nil
}

// NormalizePhone reduz o telefone à forma canônica de 10 dígitos.
// Aceita prefixos +7, 7 e 8 e qualquer pontuação.
func NormalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && (digits[0] == '7' || digits[0] == '8') {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return "", ErrInvalidPhone
	}
	return digits, nil
}

// Credentials expõe geração de senha e normalização de telefone como dependência injetável.
type Credentials struct{}

// GeneratePassword cria nova senha.
func (Credentials) GeneratePassword() (string, error) {
	return GeneratePassword()
}

// NormalizePhone normaliza telefone.
func (Credentials) NormalizePhone(raw string) (string, error) {
	return NormalizePhone(raw)
}
