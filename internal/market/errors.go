package market

import (
	"errors"
	"fmt"
)

// Errores del contenedor; se comparan con errors.Is
var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserBlocked        = errors.New("user is blocked")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrProductNotFound    = errors.New("product not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidTransition  = errors.New("invalid status transition")
)

// ValidationError representa un error de validación
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// OpError agrega la operación y el id al error original
type OpError struct {
	Op  string
	ID  int64
	Err error
}

func (e *OpError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s [%d]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// IsValidation indica si err es un ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound indica si err representa una entidad inexistente
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrUserNotFound)
}

// IsConflict indica si err viene de un conflicto de estado
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateEmail) ||
		errors.Is(err, ErrEmptyCart) ||
		errors.Is(err, ErrInvalidTransition)
}
