// Package apperr defines the closed set of application failures that can reach
// an operator. Every failure, whether it comes from an HTTP exchange or from a
// business rule, is turned into exactly one *Error before it is presented.
package apperr

import (
	"errors"
	"maps"
	"slices"
	"time"
)

// Kind tags a failure with its variant. The set is closed.
type Kind int

const (
	KindBusiness Kind = iota + 1
	KindValidation
	KindNotFound
	KindAuthentication
	KindAuthorization
	KindNetwork
	KindTimeout
	KindServer
	KindConflict
	KindBadRequest
)

// Kinds lists every variant in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindBusiness, KindValidation, KindNotFound, KindAuthentication, KindAuthorization,
		KindNetwork, KindTimeout, KindServer, KindConflict, KindBadRequest,
	}
}

// String returns the variant name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindBusiness:
		return "business"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindAuthentication:
		return "authentication"
	case KindAuthorization:
		return "authorization"
	case KindNetwork:
		return "network"
	case KindTimeout:
		return "timeout"
	case KindServer:
		return "server"
	case KindConflict:
		return "conflict"
	case KindBadRequest:
		return "bad_request"
	default:
		return "unknown"
	}
}

// DefaultStatus returns the status code a variant carries unless one is passed through.
func (k Kind) DefaultStatus() int {
	switch k {
	case KindBusiness, KindBadRequest:
		return 400
	case KindValidation:
		return 422
	case KindNotFound:
		return 404
	case KindAuthentication:
		return 401
	case KindAuthorization:
		return 403
	case KindNetwork:
		return 0
	case KindTimeout:
		return 408
	case KindServer:
		return 500
	case KindConflict:
		return 409
	default:
		return 500
	}
}

// Default messages, shown when a constructor receives an empty message.
const (
	msgBusiness       = "No se pudo completar la operación"
	msgValidation     = "Los datos proporcionados no son válidos"
	msgAuthentication = "No autenticado. Por favor inicie sesión."
	msgAuthorization  = "No tiene permisos para realizar esta acción"
	msgNetwork        = "Error de conexión. Verifique su conexión a internet."
	msgTimeout        = "La solicitud ha excedido el tiempo de espera"
	msgServer         = "Error interno del servidor"
	msgConflict       = "El recurso ya existe o hay un conflicto con el estado actual"
	msgBadRequest     = "Solicitud inválida"
	defaultResource   = "Recurso"
)

// Error is one application failure. It is immutable once constructed.
type Error struct {
	kind      Kind
	message   string
	status    int
	createdAt time.Time

	fields        map[string][]string
	resourceType  string
	resourceID    string
	permission    string
	conflictField string
	cause         error
}

func newError(kind Kind, message, fallback string) *Error {
	if message == "" {
		message = fallback
	}
	return &Error{
		kind:      kind,
		message:   message,
		status:    kind.DefaultStatus(),
		createdAt: time.Now(),
	}
}

// NewBusiness reports a violated business rule.
func NewBusiness(message string) *Error {
	return newError(KindBusiness, message, msgBusiness)
}

// NewValidation reports invalid input, aggregated per field.
func NewValidation(message string, fields map[string][]string) *Error {
	e := newError(KindValidation, message, msgValidation)
	e.fields = cloneFields(fields)
	return e
}

// NewNotFound reports a missing resource. resourceID may be empty.
func NewNotFound(resourceType, resourceID string) *Error {
	if resourceType == "" {
		resourceType = defaultResource
	}
	message := resourceType + " no encontrado"
	if resourceID != "" {
		message = resourceType + " con ID " + resourceID + " no encontrado"
	}
	e := newError(KindNotFound, message, "")
	e.resourceType = resourceType
	e.resourceID = resourceID
	return e
}

// NewAuthentication reports a missing or expired session.
func NewAuthentication(message string) *Error {
	return newError(KindAuthentication, message, msgAuthentication)
}

// NewAuthorization reports a denied action. permission may be empty.
func NewAuthorization(message, permission string) *Error {
	e := newError(KindAuthorization, message, msgAuthorization)
	e.permission = permission
	return e
}

// NewNetwork reports a connectivity failure. cause may be nil.
func NewNetwork(message string, cause error) *Error {
	e := newError(KindNetwork, message, msgNetwork)
	e.cause = cause
	return e
}

// NewTimeout reports a request that did not complete in time.
func NewTimeout(message string) *Error {
	return newError(KindTimeout, message, msgTimeout)
}

// NewServer reports a backend failure. status outside 5xx falls back to 500.
func NewServer(message string, status int, cause error) *Error {
	e := newError(KindServer, message, msgServer)
	if status >= 500 && status <= 599 {
		e.status = status
	}
	e.cause = cause
	return e
}

// NewConflict reports a clash with existing state. field may be empty.
func NewConflict(message, field string) *Error {
	e := newError(KindConflict, message, msgConflict)
	e.conflictField = field
	return e
}

// NewBadRequest reports a request the backend refused as malformed.
func NewBadRequest(message string) *Error {
	return newError(KindBadRequest, message, msgBadRequest)
}

func (e *Error) Error() string { return e.message }

// Unwrap exposes the wrapped cause of network and server failures.
func (e *Error) Unwrap() error { return e.cause }

// Is matches any *Error of the same kind, so errors.Is(err, apperr.NewTimeout(""))
// holds for every timeout regardless of message.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.kind == e.kind
}

func (e *Error) Kind() Kind           { return e.kind }
func (e *Error) Message() string      { return e.message }
func (e *Error) Status() int          { return e.status }
func (e *Error) CreatedAt() time.Time { return e.createdAt }
func (e *Error) ResourceType() string { return e.resourceType }
func (e *Error) ResourceID() string   { return e.resourceID }
func (e *Error) Permission() string   { return e.permission }
func (e *Error) ConflictField() string {
	return e.conflictField
}

// Fields returns a copy of the per-field validation messages.
func (e *Error) Fields() map[string][]string {
	return cloneFields(e.fields)
}

// FieldNames returns the validation field names in sorted order.
func (e *Error) FieldNames() []string {
	return slices.Sorted(maps.Keys(e.fields))
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the variant of err, or 0 when err is not a taxonomy member.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.kind
	}
	return 0
}

func cloneFields(fields map[string][]string) map[string][]string {
	out := make(map[string][]string, len(fields))
	for k, v := range fields {
		out[k] = slices.Clone(v)
	}
	return out
}
