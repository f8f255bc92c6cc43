package auth

import (
	"errors"
	"fmt"
	"testing"
)

func TestMessageIsExhaustive(t *testing.T) {
	want := map[Kind]string{
		KindInvalidEmail:      "El correo electrónico no es válido.",
		KindUserDisabled:      "La cuenta de usuario ha sido deshabilitada.",
		KindUserNotFound:      "Correo electrónico o contraseña incorrectos.",
		KindWrongPassword:     "Correo electrónico o contraseña incorrectos.",
		KindInvalidCredential: "Las credenciales proporcionadas no son válidas.",
		KindEmailInUse:        "El correo electrónico ya está registrado.",
		KindWeakPassword:      "La contraseña debe tener al menos 6 caracteres.",
		KindOther:             "Ocurrió un error. Por favor, inténtalo de nuevo más tarde.",
	}
	for k, msg := range want {
		if got := Message(&Error{Kind: k}); got != msg {
			t.Fatalf("kind %v: got %q want %q", k, got, msg)
		}
	}
}

func TestMessageForeignErrorsAreGeneric(t *testing.T) {
	if got := Message(errors.New("boom")); got != "Ocurrió un error. Por favor, inténtalo de nuevo más tarde." {
		t.Fatalf("unexpected: %q", got)
	}
	wrapped := fmt.Errorf("ctx: %w", &Error{Kind: KindUserDisabled})
	if KindOf(wrapped) != KindUserDisabled {
		t.Fatalf("KindOf should see through wrapping")
	}
	if Message(nil) != "" {
		t.Fatalf("nil error should have no message")
	}
}

func TestValidateForm(t *testing.T) {
	cases := []struct {
		email, password, want string
	}{
		{"", "secreto1", "Por favor, ingresa un correo electrónico válido."},
		{"ana@example", "secreto1", "Por favor, ingresa un correo electrónico válido."},
		{"ana@example.com", "", "Por favor, ingresa tu contraseña."},
		{"ana@example.com", "12345", "La contraseña debe tener al menos 6 caracteres."},
		{"Ana.Perez@Example.COM", "123456", ""},
		{"ana@[10.0.0.1]", "ñandú1", ""},
	}
	for _, c := range cases {
		err := ValidateForm(c.email, c.password)
		if c.want == "" {
			if err != nil {
				t.Fatalf("ValidateForm(%q,%q): unexpected %v", c.email, c.password, err)
			}
			continue
		}
		if err == nil || Message(err) != c.want {
			t.Fatalf("ValidateForm(%q,%q): got %v want %q", c.email, c.password, err, c.want)
		}
	}
}
