package cli

import (
	"errors"
	"fmt"
	"strings"

	"tareas-cli/internal/auth"
	"tareas-cli/internal/editor"
)

// messageError carries the user-facing text for a domain error while keeping
// the original reachable through errors.Is/As.
type messageError struct {
	msg string
	err error
}

func (e messageError) Error() string { return e.msg }
func (e messageError) Unwrap() error { return e.err }

func errNotFound(kind, id string) error {
	return fmt.Errorf("%s not found: %s", kind, id)
}

// userError rewrites auth and validation failures into their display messages.
func userError(err error) error {
	if err == nil {
		return nil
	}
	var ae *auth.Error
	var fe *auth.FormError
	if errors.As(err, &ae) || errors.As(err, &fe) {
		return messageError{msg: auth.Message(err), err: err}
	}
	var ve *editor.ValidationError
	if errors.As(err, &ve) {
		missing := make([]string, 0, len(ve.Missing))
		for _, f := range ve.Missing {
			missing = append(missing, string(f))
		}
		return messageError{
			msg: fmt.Sprintf("%s (faltan: %s)", editor.MsgRequiredFields, strings.Join(missing, ", ")),
			err: err,
		}
	}
	return err
}
