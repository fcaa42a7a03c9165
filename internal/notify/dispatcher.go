package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/gosuda/agrotrack/internal/apperr"
)

// DefaultTimer auto-dismisses success, info and toast notifications.
const DefaultTimer = 3 * time.Second

const (
	titleSuccess        = "¡Éxito!"
	titleError          = "Error"
	titleWarning        = "Advertencia"
	titleInfo           = "Información"
	titleConfirm        = "¿Está seguro?"
	titleValidations    = "Errores de validación"
	titleValidation     = "Error de validación"
	titleBusiness       = "Error de negocio"
	titleNotFound       = "Recurso no encontrado"
	titleAuthentication = "Autenticación requerida"
	titleAuthorization  = "Acceso denegado"
	titleNetwork        = "Error de conexión"
	titleTimeout        = "Tiempo agotado"
	titleServer         = "Error del servidor"
	titleConflict       = "Conflicto"
	titleBadRequest     = "Solicitud inválida"

	textAcknowledge    = "Entendido"
	textConfirm        = "Sí, continuar"
	textCancel         = "Cancelar"
	textLoading        = "Cargando..."
	textAuthentication = "Debe iniciar sesión para acceder a este recurso."
	textAuthorization  = "No tiene permisos suficientes para realizar esta acción."
	textNetwork        = "No se pudo conectar con el servidor. Por favor, verifique su conexión a internet e intente nuevamente."
	textTimeout        = "La solicitud ha excedido el tiempo de espera. Por favor, intente nuevamente."
	textServer         = "Ha ocurrido un error en el servidor. Por favor, intente nuevamente más tarde."
)

// Option adjusts a notification built by a Dispatcher call.
type Option func(*Notification)

// WithTitle replaces the default title.
func WithTitle(title string) Option {
	return func(n *Notification) {
		if title != "" {
			n.Title = title
		}
	}
}

// WithTimer sets the auto-dismiss timer; zero keeps the notification open
// until the user dismisses it.
func WithTimer(d time.Duration) Option {
	return func(n *Notification) {
		n.Timer = max(d, 0)
	}
}

// WithConfirmText replaces the confirm button label.
func WithConfirmText(text string) Option {
	return func(n *Notification) {
		if text != "" {
			n.ConfirmText = text
		}
	}
}

// WithCancelText replaces the cancel button label.
func WithCancelText(text string) Option {
	return func(n *Notification) {
		if text != "" {
			n.CancelText = text
		}
	}
}

// WithoutCancel hides the cancel button of a confirm.
func WithoutCancel() Option {
	return func(n *Notification) {
		n.ShowCancel = false
	}
}

// WithoutConfirmButton hides the acknowledge button of an error.
func WithoutConfirmButton() Option {
	return func(n *Notification) {
		n.ShowConfirm = false
	}
}

// Dispatcher builds notifications and hands them to a Renderer.
type Dispatcher struct {
	renderer Renderer
	timer    time.Duration
}

// DispatcherOption configures optional Dispatcher parameters.
type DispatcherOption func(*Dispatcher)

// WithDefaultTimer overrides DefaultTimer for success, info and toast.
func WithDefaultTimer(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) {
		disp.timer = max(d, 0)
	}
}

// NewDispatcher creates a Dispatcher rendering through r.
func NewDispatcher(r Renderer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{renderer: r, timer: DefaultTimer}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) render(ctx context.Context, n Notification, opts []Option) (Result, error) {
	for _, opt := range opts {
		opt(&n)
	}
	// The dismiss button is shown exactly when nothing else dismisses the notification.
	if n.Kind == KindSuccess || n.Kind == KindInfo {
		n.ShowConfirm = n.Timer == 0
	}

	res, err := d.renderer.Render(ctx, n)
	if err != nil {
		return Result{}, fmt.Errorf("notify.Dispatcher.render %s: %w", n.Kind, err)
	}
	return res, nil
}

// Success shows an auto-dismissing success notification.
func (d *Dispatcher) Success(ctx context.Context, message string, opts ...Option) (Result, error) {
	return d.render(ctx, Notification{
		Kind:        KindSuccess,
		Title:       titleSuccess,
		Text:        message,
		Timer:       d.timer,
		Dismissible: true,
	}, opts)
}

// Error shows an error dialog with an acknowledge button.
func (d *Dispatcher) Error(ctx context.Context, message string, opts ...Option) (Result, error) {
	return d.render(ctx, Notification{
		Kind:        KindError,
		Title:       titleError,
		Text:        message,
		ShowConfirm: true,
		ConfirmText: textAcknowledge,
		Dismissible: true,
	}, opts)
}

// Warning shows a warning dialog with an acknowledge button.
func (d *Dispatcher) Warning(ctx context.Context, message string, opts ...Option) (Result, error) {
	return d.render(ctx, Notification{
		Kind:        KindWarning,
		Title:       titleWarning,
		Text:        message,
		ShowConfirm: true,
		ConfirmText: textAcknowledge,
		Dismissible: true,
	}, opts)
}

// Info shows an auto-dismissing informational notification.
func (d *Dispatcher) Info(ctx context.Context, message string, opts ...Option) (Result, error) {
	return d.render(ctx, Notification{
		Kind:        KindInfo,
		Title:       titleInfo,
		Text:        message,
		Timer:       d.timer,
		Dismissible: true,
	}, opts)
}

// Confirm asks a yes/no question and reports whether the user confirmed.
func (d *Dispatcher) Confirm(ctx context.Context, message string, opts ...Option) (bool, error) {
	res, err := d.render(ctx, Notification{
		Kind:        KindQuestion,
		Title:       titleConfirm,
		Text:        message,
		ShowConfirm: true,
		ShowCancel:  true,
		ConfirmText: textConfirm,
		CancelText:  textCancel,
		Dismissible: true,
	}, opts)
	if err != nil {
		return false, err
	}
	return res.Confirmed, nil
}

// Toast shows a small notice that pauses its timer while hovered. A
// non-positive duration falls back to the default timer.
func (d *Dispatcher) Toast(ctx context.Context, message string, level Kind, duration time.Duration) error {
	switch level {
	case KindSuccess, KindError, KindWarning, KindInfo:
	default:
		level = KindInfo
	}
	if duration <= 0 {
		duration = d.timer
	}

	_, err := d.render(ctx, Notification{
		Kind:         KindToast,
		Level:        level,
		Text:         message,
		Timer:        duration,
		PauseOnHover: true,
		Dismissible:  true,
	}, nil)
	return err
}

// ValidationErrors lists field errors grouped by field.
func (d *Dispatcher) ValidationErrors(ctx context.Context, fields map[string][]string, opts ...Option) (Result, error) {
	sorted := SortedFields(fields)
	return d.render(ctx, Notification{
		Kind:        KindError,
		Title:       titleValidations,
		Text:        FormatFields(sorted),
		Fields:      sorted,
		ShowConfirm: true,
		ConfirmText: textAcknowledge,
		Dismissible: true,
	}, opts)
}

// Loading shows a blocking overlay that stays until Close.
func (d *Dispatcher) Loading(ctx context.Context, message string, opts ...Option) error {
	if message == "" {
		message = textLoading
	}
	_, err := d.render(ctx, Notification{
		Kind: KindLoading,
		Text: message,
	}, opts)
	return err
}

// Close dismisses whatever is currently shown.
func (d *Dispatcher) Close(ctx context.Context) error {
	if err := d.renderer.Close(ctx); err != nil {
		return fmt.Errorf("notify.Dispatcher.Close: %w", err)
	}
	return nil
}

// NotFound reports a missing resource, naming its id when known.
func (d *Dispatcher) NotFound(ctx context.Context, resourceType, resourceID string) (Result, error) {
	msg := fmt.Sprintf("El %s solicitado no fue encontrado", resourceType)
	if resourceID != "" {
		msg = fmt.Sprintf("El %s con ID %s no fue encontrado", resourceType, resourceID)
	}
	return d.Error(ctx, msg, WithTitle(titleNotFound))
}

// NetworkError reports that the backend could not be reached.
func (d *Dispatcher) NetworkError(ctx context.Context) (Result, error) {
	return d.Error(ctx, textNetwork, WithTitle(titleNetwork))
}

// ServerError reports a backend failure without exposing its cause.
func (d *Dispatcher) ServerError(ctx context.Context) (Result, error) {
	return d.Error(ctx, textServer, WithTitle(titleServer))
}

// AuthenticationRequired asks the user to sign in.
func (d *Dispatcher) AuthenticationRequired(ctx context.Context) (Result, error) {
	return d.Warning(ctx, textAuthentication, WithTitle(titleAuthentication))
}

// Unauthorized reports missing permissions.
func (d *Dispatcher) Unauthorized(ctx context.Context) (Result, error) {
	return d.Error(ctx, textAuthorization, WithTitle(titleAuthorization))
}

// Conflict warns about a duplicate or stale resource.
func (d *Dispatcher) Conflict(ctx context.Context, message string) (Result, error) {
	return d.Warning(ctx, message, WithTitle(titleConflict))
}

// Timeout reports a request that exceeded its deadline.
func (d *Dispatcher) Timeout(ctx context.Context) (Result, error) {
	return d.Error(ctx, textTimeout, WithTitle(titleTimeout))
}

// DispatchError presents a taxonomy error. Every kind has its own case.
func (d *Dispatcher) DispatchError(ctx context.Context, err *apperr.Error) (Result, error) {
	if err == nil {
		return Result{}, nil
	}

	switch err.Kind() {
	case apperr.KindBusiness:
		return d.Warning(ctx, err.Message(), WithTitle(titleBusiness))
	case apperr.KindValidation:
		if fields := err.Fields(); len(fields) > 0 {
			return d.ValidationErrors(ctx, fields)
		}
		return d.Error(ctx, err.Message(), WithTitle(titleValidation))
	case apperr.KindNotFound:
		return d.NotFound(ctx, err.ResourceType(), err.ResourceID())
	case apperr.KindAuthentication:
		return d.AuthenticationRequired(ctx)
	case apperr.KindAuthorization:
		return d.Unauthorized(ctx)
	case apperr.KindNetwork:
		return d.NetworkError(ctx)
	case apperr.KindTimeout:
		return d.Timeout(ctx)
	case apperr.KindServer:
		return d.ServerError(ctx)
	case apperr.KindConflict:
		return d.Conflict(ctx, err.Message())
	case apperr.KindBadRequest:
		return d.Error(ctx, err.Message(), WithTitle(titleBadRequest))
	default:
		return d.Error(ctx, err.Message())
	}
}
