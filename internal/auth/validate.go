package auth

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const MinPasswordLen = 6

var emailRe = regexp.MustCompile(`^(([^<>()\[\]\\.,;:\s@"]+(\.[^<>()\[\]\\.,;:\s@"]+)*)|(".+"))@((\[[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}])|(([a-zA-Z\-0-9]+\.)+[a-zA-Z]{2,}))$`)

// FormError is a credential problem caught before the service is called.
type FormError struct {
	Field string
	Msg   string
}

func (e *FormError) Error() string { return e.Msg }

func ValidEmail(email string) bool {
	return emailRe.MatchString(strings.ToLower(email))
}

// ValidateForm checks email and password in the order the login screen reports them.
func ValidateForm(email, password string) error {
	if !ValidEmail(email) {
		return &FormError{Field: "email", Msg: "Por favor, ingresa un correo electrónico válido."}
	}
	if password == "" {
		return &FormError{Field: "password", Msg: "Por favor, ingresa tu contraseña."}
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		return &FormError{Field: "password", Msg: "La contraseña debe tener al menos 6 caracteres."}
	}
	return nil
}
