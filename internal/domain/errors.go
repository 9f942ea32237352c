// Package domain agrupa los agregados del motor de compras y precios
// y la taxonomía de errores que comparten.
package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica un error de dominio para que el cliente pueda distinguirlo
type Kind string

const (
	KindValidation        Kind = "VALIDATION_ERROR"
	KindStateConflict     Kind = "STATE_CONFLICT"
	KindNotFound          Kind = "NOT_FOUND"
	KindAuthorization     Kind = "AUTHORIZATION_ERROR"
	KindAuthentication    Kind = "AUTHENTICATION_ERROR"
	KindDependencyMissing Kind = "DEPENDENCY_MISSING"
	KindInternal          Kind = "INTERNAL"
)

// Error es un error de dominio con tipo, código estable y mensaje legible
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is permite errors.Is contra otro *Error comparando Kind y Code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

// NewValidation crea un ValidationError
func NewValidation(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// NewStateConflict crea un StateConflictError
func NewStateConflict(code, message string) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Message: message}
}

// NewNotFound crea un NotFoundError
func NewNotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// NewAuthorization crea un AuthorizationError
func NewAuthorization(code, message string) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: message}
}

// NewAuthentication crea un error de credenciales o token inválidos
func NewAuthentication(code, message string) *Error {
	return &Error{Kind: KindAuthentication, Code: code, Message: message}
}

// NewDependencyMissing crea un DependencyMissingError
func NewDependencyMissing(code, message string) *Error {
	return &Error{Kind: KindDependencyMissing, Code: code, Message: message}
}

// Wrap adjunta una causa a un error de dominio
func (e *Error) Wrap(err error) *Error {
	cp := *e
	cp.Err = err
	return &cp
}

// KindOf devuelve el Kind del primer *Error en la cadena, o KindInternal
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// IsKind indica si err es un error de dominio del tipo dado
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Errores compartidos entre agregados
var (
	ErrSessionClosed = NewStateConflict("SESSION_CLOSED", "la sesión está cerrada")
	ErrForbidden     = NewAuthorization("FORBIDDEN", "no tiene permiso para esta operación")
)
