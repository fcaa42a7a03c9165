package httpclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gosuda/agrotrack/internal/apperr"
)

const (
	msgUnknown        = "Ha ocurrido un error desconocido"
	msgUnreachable    = "No se pudo conectar con el servidor. Verifique su conexión a internet."
	msgBadGateway     = "El servidor no está disponible. Por favor, intente más tarde."
	msgUnavailable    = "El servicio no está disponible temporalmente. Por favor, intente más tarde."
	msgGatewayTimeout = "El servidor tardó demasiado en responder. Por favor, intente nuevamente."
	resourceFallback  = "Recurso"
)

// FailedResponse describes an exchange that did not produce a 2xx response.
// Status 0 means the transport never got an HTTP response.
type FailedResponse struct {
	Status   int
	Body     []byte
	URL      string
	Message  string
	TimedOut bool
	Cause    error
}

func (f *FailedResponse) Error() string {
	if f.Message != "" {
		return f.Message
	}
	return fmt.Sprintf("http failure response for %s: %d", f.URL, f.Status)
}

func (f *FailedResponse) Unwrap() error { return f.Cause }

// Classify maps a failed exchange to exactly one taxonomy variant. It has no
// side effects.
func Classify(f *FailedResponse) *apperr.Error {
	if f == nil {
		return apperr.NewNetwork("", nil)
	}

	// Failures produced locally (e.g. an expired token) are already typed.
	if typed, ok := apperr.As(f.Cause); ok {
		return typed
	}

	if f.TimedOut {
		return apperr.NewTimeout("")
	}

	text, obj := decodeBody(f.Body)
	msg := extractMessage(text, obj, f.Message)

	switch f.Status {
	case 0:
		return apperr.NewNetwork(msgUnreachable, f)
	case http.StatusBadRequest:
		return apperr.NewBadRequest(msg)
	case http.StatusUnauthorized:
		return apperr.NewAuthentication(msg)
	case http.StatusForbidden:
		return apperr.NewAuthorization(msg, "")
	case http.StatusNotFound:
		resource, id := ResourceFromURL(f.URL)
		return apperr.NewNotFound(resource, id)
	case http.StatusRequestTimeout:
		return apperr.NewTimeout(msg)
	case http.StatusConflict:
		return apperr.NewConflict(msg, "")
	case http.StatusUnprocessableEntity:
		return apperr.NewValidation(msg, fieldErrors(obj))
	case http.StatusInternalServerError:
		return apperr.NewServer(msg, f.Status, f)
	case http.StatusBadGateway:
		return apperr.NewServer(msgBadGateway, f.Status, f)
	case http.StatusServiceUnavailable:
		return apperr.NewServer(msgUnavailable, f.Status, f)
	case http.StatusGatewayTimeout:
		return apperr.NewTimeout(msgGatewayTimeout)
	}

	if f.Status >= 500 && f.Status <= 599 {
		return apperr.NewServer(msg, f.Status, f)
	}
	return apperr.NewBadRequest(msg)
}

// ResourceFromURL returns the last alphabetic path segment that is directly
// followed by a numeric id, together with that id. It falls back to a generic
// label and an empty id when no such pair exists.
func ResourceFromURL(raw string) (string, string) {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	} else if i := strings.IndexAny(raw, "?#"); i >= 0 {
		path = raw[:i]
	}

	segments := strings.Split(path, "/")
	for i := len(segments) - 1; i > 0; i-- {
		if isDigits(segments[i]) && isLetters(segments[i-1]) {
			return segments[i-1], segments[i]
		}
	}
	return resourceFallback, ""
}

// decodeBody returns the body as plain text when it is a JSON string or not
// JSON at all, or as an object when it is a JSON object.
func decodeBody(raw []byte) (string, map[string]any) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", nil
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw), nil
	}

	switch body := v.(type) {
	case string:
		return body, nil
	case map[string]any:
		return "", body
	default:
		return "", nil
	}
}

// extractMessage applies the body message priority: plain text, "message",
// "error", first entry of an "errors" array, then the transport message.
func extractMessage(text string, obj map[string]any, transport string) string {
	if text != "" {
		return text
	}

	if obj != nil {
		if v, ok := obj["message"]; ok && truthy(v) {
			return stringify(v)
		}
		if v, ok := obj["error"]; ok && truthy(v) {
			return stringify(v)
		}
		if list, ok := obj["errors"].([]any); ok && len(list) > 0 {
			return stringify(list[0])
		}
	}

	if transport != "" {
		return transport
	}
	return msgUnknown
}

// fieldErrors copies the "errors" object of a validation body into a field map.
func fieldErrors(obj map[string]any) map[string][]string {
	fields := make(map[string][]string)
	raw, ok := obj["errors"].(map[string]any)
	if !ok {
		return fields
	}

	for field, v := range raw {
		switch msgs := v.(type) {
		case []any:
			list := make([]string, 0, len(msgs))
			for _, m := range msgs {
				list = append(list, stringify(m))
			}
			fields[field] = list
		default:
			fields[field] = []string{stringify(msgs)}
		}
	}
	return fields
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	default:
		return true
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
