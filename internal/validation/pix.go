// Package validation holds the domain format checks: PIX key shapes,
// Brazilian document check digits and amount bounds.
package validation

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// PIX key types accepted on withdraw rails.
const (
	PixKeyCPF       = "cpf"
	PixKeyCNPJ      = "cnpj"
	PixKeyEmail     = "email"
	PixKeyTelefone  = "telefone"
	PixKeyAleatoria = "aleatoria"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?\d{10,13}$`)
	digitsOnly = regexp.MustCompile(`\D`)
)

// ValidEmail checks the basic shape of an email address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidPixKeyType reports whether keyType is one of the known types.
func ValidPixKeyType(keyType string) bool {
	switch keyType {
	case PixKeyCPF, PixKeyCNPJ, PixKeyEmail, PixKeyTelefone, PixKeyAleatoria:
		return true
	}
	return false
}

// ValidatePixKey checks the key value against the format of its type.
func ValidatePixKey(keyType, value string) error {
	if value == "" {
		return MissingField("pixKey")
	}
	switch keyType {
	case PixKeyCPF:
		if !ValidCPF(value) {
			return InvalidFormat("pixKey")
		}
	case PixKeyCNPJ:
		if !ValidCNPJ(value) {
			return InvalidFormat("pixKey")
		}
	case PixKeyEmail:
		if !emailRegex.MatchString(value) {
			return InvalidFormat("pixKey")
		}
	case PixKeyTelefone:
		if !phoneRegex.MatchString(value) {
			return InvalidFormat("pixKey")
		}
	case PixKeyAleatoria:
		if _, err := uuid.Parse(value); err != nil {
			return InvalidFormat("pixKey")
		}
	default:
		return ErrInvalidPixKeyType
	}
	return nil
}

// ValidCPF validates the 11-digit CPF check digits.
func ValidCPF(cpf string) bool {
	cpf = digitsOnly.ReplaceAllString(cpf, "")
	if len(cpf) != 11 || allSameDigit(cpf) {
		return false
	}
	for _, pos := range []int{9, 10} {
		sum := 0
		for i := 0; i < pos; i++ {
			sum += int(cpf[i]-'0') * (pos + 1 - i)
		}
		digit := (sum * 10) % 11
		if digit == 10 {
			digit = 0
		}
		if digit != int(cpf[pos]-'0') {
			return false
		}
	}
	return true
}

// ValidCNPJ validates the 14-digit CNPJ check digits.
func ValidCNPJ(cnpj string) bool {
	cnpj = digitsOnly.ReplaceAllString(cnpj, "")
	if len(cnpj) != 14 || allSameDigit(cnpj) {
		return false
	}
	weights := [][]int{
		{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
		{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2},
	}
	for d, w := range weights {
		sum := 0
		for i, weight := range w {
			sum += int(cnpj[i]-'0') * weight
		}
		digit := sum % 11
		if digit < 2 {
			digit = 0
		} else {
			digit = 11 - digit
		}
		if digit != int(cnpj[12+d]-'0') {
			return false
		}
	}
	return true
}

func allSameDigit(s string) bool {
	return strings.Count(s, string(s[0])) == len(s)
}
