// Package failure is the single place where failures become notifications.
// The HTTP client reports classified failures through Report; everything else
// reaches Handle directly or through Recover.
package failure

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/diag"
	"github.com/gosuda/agrotrack/internal/httpclient"
	"github.com/gosuda/agrotrack/internal/notify"
)

const (
	msgFallback      = "Ha ocurrido un error inesperado"
	msgProduction    = "Ha ocurrido un error inesperado. Por favor, intente nuevamente o contacte al soporte."
	hintDevelopment  = "\n\nRevise el registro para más detalles."
	titleDevelopment = "Error de la aplicación"
	titleProduction  = "Error"
)

// ErrPanic wraps a value recovered from a panic.
var ErrPanic = errors.New("failure: recovered panic") //nolint:gochecknoglobals // sentinel error

// Dispatcher is the subset of notify.Dispatcher the sink presents through.
type Dispatcher interface {
	DispatchError(ctx context.Context, err *apperr.Error) (notify.Result, error)
	Error(ctx context.Context, message string, opts ...notify.Option) (notify.Result, error)
}

// Recorder receives one diagnostic entry per handled failure.
type Recorder interface {
	Record(e diag.Entry) bool
}

// Sink classifies, presents and records failures.
type Sink struct {
	dispatcher Dispatcher
	recorder   Recorder
	production bool
	env        string
}

type reportedKey struct{}

// reportedSet holds the errors Report presented during one Recover call, so
// the same error re-raised out of fn is not shown twice.
type reportedSet struct {
	mu   sync.Mutex
	errs map[*apperr.Error]struct{}
}

func (r *reportedSet) add(err *apperr.Error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[err] = struct{}{}
}

func (r *reportedSet) take(err *apperr.Error) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.errs[err]
	delete(r.errs, err)
	return ok
}

func reportedFrom(ctx context.Context) *reportedSet {
	set, _ := ctx.Value(reportedKey{}).(*reportedSet)
	return set
}

var _ httpclient.Reporter = (*Sink)(nil)

// Option configures optional Sink parameters.
type Option func(*Sink)

// WithRecorder sets the diagnostics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Sink) {
		s.recorder = r
	}
}

// WithEnvironment names the deployment; "production" hides unexpected
// failure details from the user.
func WithEnvironment(env string) Option {
	return func(s *Sink) {
		s.env = strings.ToLower(strings.TrimSpace(env))
		s.production = s.env == "production" || s.env == "prod"
	}
}

// New creates a Sink presenting through d.
func New(d Dispatcher, opts ...Option) *Sink {
	s := &Sink{dispatcher: d, env: "development"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report is the interceptor call site: err has just been classified and will
// be returned to the caller afterwards. Inside Recover, an error Report has
// shown is skipped when fn returns it.
func (s *Sink) Report(ctx context.Context, err *apperr.Error) {
	if err == nil {
		return
	}
	if !s.dispatch(ctx, err, diag.SourceHTTP, "") {
		return
	}
	if set := reportedFrom(ctx); set != nil {
		set.add(err)
	}
}

// Handle is the global call site. It accepts any failure value:
// a taxonomy error is presented as is, a raw failed response is classified
// first, and anything else is shown as an unexpected error.
func (s *Sink) Handle(ctx context.Context, failure any) {
	s.handle(ctx, failure, "")
}

// Recover runs fn and handles its error or panic. The returned error is nil
// only when fn succeeded.
func (s *Sink) Recover(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	ctx = context.WithValue(ctx, reportedKey{}, &reportedSet{errs: make(map[*apperr.Error]struct{})})

	defer func() {
		r := recover()
		if r == nil {
			return
		}
		s.handle(ctx, r, string(debug.Stack()))
		if typed, ok := r.(error); ok {
			err = fmt.Errorf("failure.Sink.Recover: %w: %w", ErrPanic, typed)
			return
		}
		err = fmt.Errorf("failure.Sink.Recover: %w: %v", ErrPanic, r)
	}()

	if err = fn(ctx); err != nil {
		s.Handle(ctx, err)
	}
	return err
}

func (s *Sink) handle(ctx context.Context, failure any, stack string) {
	source := func(def diag.Source) diag.Source {
		if stack != "" {
			return diag.SourcePanic
		}
		return def
	}

	if err, ok := failure.(error); ok {
		// Entry A: already typed.
		if typed, ok := apperr.As(err); ok {
			if set := reportedFrom(ctx); set != nil && set.take(typed) {
				return
			}
			s.dispatch(ctx, typed, source(diag.SourceTyped), stack)
			return
		}

		// Entry B: a raw failed response that bypassed classification.
		var raw *httpclient.FailedResponse
		if errors.As(err, &raw) {
			s.dispatch(ctx, httpclient.Classify(raw), source(diag.SourceHTTP), stack)
			return
		}
	}

	// Entry C: anything else.
	s.unexpected(ctx, failure, source(diag.SourceUnknown), stack)
}

// dispatch presents and records err. It reports whether the notification was
// shown. A caller whose deadline expired still gets to see why.
func (s *Sink) dispatch(ctx context.Context, err *apperr.Error, source diag.Source, stack string) bool {
	_, dErr := s.dispatcher.DispatchError(context.WithoutCancel(ctx), err)
	if dErr != nil {
		log.Warn().Err(dErr).Str("kind", err.Kind().String()).Msg("failure notification not shown")
	}

	e := diag.NewEntry(source, err.Message())
	e.Kind = err.Kind().String()
	e.Status = err.Status()
	e.Stack = stack
	if cause := errors.Unwrap(err); cause != nil {
		e.Cause = cause.Error()
	}
	var raw *httpclient.FailedResponse
	if errors.As(err, &raw) {
		e.URL = raw.URL
	}
	s.record(e)
	return dErr == nil
}

func (s *Sink) unexpected(ctx context.Context, failure any, source diag.Source, stack string) {
	msg := Describe(failure)
	ctx = context.WithoutCancel(ctx)

	var dErr error
	if s.production {
		_, dErr = s.dispatcher.Error(ctx, msgProduction, notify.WithTitle(titleProduction))
	} else {
		_, dErr = s.dispatcher.Error(ctx, msg+hintDevelopment, notify.WithTitle(titleDevelopment))
	}
	if dErr != nil {
		log.Warn().Err(dErr).Msg("failure notification not shown")
	}

	e := diag.NewEntry(source, msg)
	e.Stack = stack
	if err, ok := failure.(error); ok {
		if cause := errors.Unwrap(err); cause != nil {
			e.Cause = cause.Error()
		}
	}
	s.record(e)
}

func (s *Sink) record(e diag.Entry) {
	if s.recorder == nil {
		return
	}
	e.Env = s.env
	s.recorder.Record(e)
}

// Describe builds a human-readable message for an arbitrary failure value:
// its own message when it has one, otherwise its printed form, otherwise a
// fixed fallback.
func Describe(failure any) string {
	var msg string
	switch v := failure.(type) {
	case nil:
	case error:
		msg = v.Error()
	case string:
		msg = v
	case interface{ Message() string }:
		msg = v.Message()
	case fmt.Stringer:
		msg = v.String()
	case map[string]any:
		if m, ok := v["message"].(string); ok {
			msg = m
		} else {
			msg = fmt.Sprint(v)
		}
	default:
		msg = fmt.Sprint(v)
	}

	if strings.TrimSpace(msg) == "" {
		return msgFallback
	}
	return msg
}
