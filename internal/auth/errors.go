package auth

import (
	"errors"
	"fmt"
)

// Kind is the closed set of failures an authentication call can report.
type Kind int

const (
	KindOther Kind = iota
	KindInvalidEmail
	KindUserDisabled
	KindUserNotFound
	KindWrongPassword
	KindInvalidCredential
	KindEmailInUse
	KindWeakPassword
)

func (k Kind) String() string {
	switch k {
	case KindInvalidEmail:
		return "invalid-email"
	case KindUserDisabled:
		return "user-disabled"
	case KindUserNotFound:
		return "user-not-found"
	case KindWrongPassword:
		return "wrong-password"
	case KindInvalidCredential:
		return "invalid-credential"
	case KindEmailInUse:
		return "email-already-in-use"
	case KindWeakPassword:
		return "weak-password"
	default:
		return "other"
	}
}

type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth/%s: %v", e.Kind, e.Err)
	}
	return "auth/" + e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(k Kind, err error) *Error {
	return &Error{Kind: k, Err: err}
}

// KindOf extracts the Kind of err; anything that is not an *Error is KindOther.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return KindOther
}

// Message maps an authentication failure to the text shown to the user.
// User-not-found and wrong-password intentionally share a message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var fe *FormError
	if errors.As(err, &fe) {
		return fe.Msg
	}
	switch KindOf(err) {
	case KindInvalidEmail:
		return "El correo electrónico no es válido."
	case KindUserDisabled:
		return "La cuenta de usuario ha sido deshabilitada."
	case KindUserNotFound, KindWrongPassword:
		return "Correo electrónico o contraseña incorrectos."
	case KindInvalidCredential:
		return "Las credenciales proporcionadas no son válidas."
	case KindEmailInUse:
		return "El correo electrónico ya está registrado."
	case KindWeakPassword:
		return "La contraseña debe tener al menos 6 caracteres."
	default:
		return "Ocurrió un error. Por favor, inténtalo de nuevo más tarde."
	}
}
