package failure_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/diag"
	"github.com/gosuda/agrotrack/internal/failure"
	"github.com/gosuda/agrotrack/internal/httpclient"
	"github.com/gosuda/agrotrack/internal/notify"
	"github.com/gosuda/agrotrack/internal/notify/console"
)

// --- mocks ---

type captureRenderer struct {
	mu       sync.Mutex
	rendered []notify.Notification
	err      error
}

func (c *captureRenderer) Render(_ context.Context, n notify.Notification) (notify.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rendered = append(c.rendered, n)
	return notify.Result{}, c.err
}

func (c *captureRenderer) Close(context.Context) error { return nil }

func (c *captureRenderer) all() []notify.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]notify.Notification(nil), c.rendered...)
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []diag.Entry
}

func (c *captureRecorder) Record(e diag.Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return true
}

func (c *captureRecorder) all() []diag.Entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]diag.Entry(nil), c.entries...)
}

// flakyRenderer fails its first Render and captures the rest.
type flakyRenderer struct {
	captureRenderer
	failed bool
}

func (f *flakyRenderer) Render(ctx context.Context, n notify.Notification) (notify.Result, error) {
	f.mu.Lock()
	if !f.failed {
		f.failed = true
		f.mu.Unlock()
		return notify.Result{}, errors.New("renderer busy")
	}
	f.mu.Unlock()
	return f.captureRenderer.Render(ctx, n)
}

type messageValue struct{ text string }

func (m messageValue) Message() string { return m.text }

func newSink(opts ...failure.Option) (*failure.Sink, *captureRenderer, *captureRecorder) {
	r := &captureRenderer{}
	rec := &captureRecorder{}
	opts = append([]failure.Option{failure.WithRecorder(rec)}, opts...)
	return failure.New(notify.NewDispatcher(r), opts...), r, rec
}

// --- Entry A ---

func TestHandle_TypedErrorDispatchedAsIs(t *testing.T) {
	t.Parallel()

	s, r, rec := newSink()
	s.Handle(t.Context(), fmt.Errorf("registrar vendedor: %w", apperr.NewConflict("Ya existe un vendedor con el DNI 12345678", "dni")))

	require.Len(t, r.all(), 1)
	n := r.all()[0]
	assert.Equal(t, notify.KindWarning, n.Kind)
	assert.Equal(t, "Conflicto", n.Title)
	assert.Equal(t, "Ya existe un vendedor con el DNI 12345678", n.Text)

	require.Len(t, rec.all(), 1)
	e := rec.all()[0]
	assert.Equal(t, diag.SourceTyped, e.Source)
	assert.Equal(t, "conflict", e.Kind)
	assert.Equal(t, 409, e.Status)
	assert.Equal(t, "development", e.Env)
}

func TestHandle_BusinessErrorIsWarning(t *testing.T) {
	t.Parallel()

	s, r, _ := newSink()
	s.Handle(t.Context(), apperr.NewBusiness("La selección \"1ra\" tiene cantidad pero no tiene peso registrado"))

	require.Len(t, r.all(), 1)
	assert.Equal(t, notify.KindWarning, r.all()[0].Kind)
	assert.Equal(t, "Error de negocio", r.all()[0].Title)
}

// --- Entry B ---

func TestHandle_RawFailedResponseIsClassified(t *testing.T) {
	t.Parallel()

	s, r, rec := newSink()
	s.Handle(t.Context(), &httpclient.FailedResponse{
		Status: 404,
		URL:    "http://localhost:8085/v1/api/harvest/42",
	})

	require.Len(t, r.all(), 1)
	assert.Equal(t, "Recurso no encontrado", r.all()[0].Title)
	assert.Equal(t, "El harvest con ID 42 no fue encontrado", r.all()[0].Text)

	require.Len(t, rec.all(), 1)
	assert.Equal(t, diag.SourceHTTP, rec.all()[0].Source)
	assert.Equal(t, "not_found", rec.all()[0].Kind)
}

func TestHandle_PassthroughClientFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s, r, rec := newSink()
	c := httpclient.New(srv.URL, httpclient.WithPassthrough(), httpclient.WithReporter(s))

	_, err := c.Do(t.Context(), httpclient.Request{Path: "/seller"})
	require.Error(t, err)
	assert.Empty(t, r.all(), "passthrough must not report")

	s.Handle(t.Context(), err)

	require.Len(t, r.all(), 1)
	assert.Equal(t, "Error del servidor", r.all()[0].Title)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, 503, rec.all()[0].Status)
	assert.Equal(t, srv.URL+"/seller", rec.all()[0].URL)
}

// --- Entry C ---

func TestHandle_UnexpectedDevelopment(t *testing.T) {
	t.Parallel()

	s, r, rec := newSink(failure.WithEnvironment("development"))
	s.Handle(t.Context(), errors.New("índice fuera de rango"))

	require.Len(t, r.all(), 1)
	n := r.all()[0]
	assert.Equal(t, notify.KindError, n.Kind)
	assert.Equal(t, "Error de la aplicación", n.Title)
	assert.Equal(t, "índice fuera de rango\n\nRevise el registro para más detalles.", n.Text)

	require.Len(t, rec.all(), 1)
	assert.Equal(t, diag.SourceUnknown, rec.all()[0].Source)
	assert.Empty(t, rec.all()[0].Kind)
	assert.Equal(t, "índice fuera de rango", rec.all()[0].Message)
}

func TestHandle_UnexpectedProduction(t *testing.T) {
	t.Parallel()

	s, r, rec := newSink(failure.WithEnvironment("Production"))
	s.Handle(t.Context(), errors.New("detalle interno"))

	require.Len(t, r.all(), 1)
	n := r.all()[0]
	assert.Equal(t, "Error", n.Title)
	assert.Equal(t, "Ha ocurrido un error inesperado. Por favor, intente nuevamente o contacte al soporte.", n.Text)
	assert.NotContains(t, n.Text, "detalle interno")

	require.Len(t, rec.all(), 1)
	assert.Equal(t, "detalle interno", rec.all()[0].Message)
	assert.Equal(t, "production", rec.all()[0].Env)
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "Ha ocurrido un error inesperado"},
		{"error", errors.New("boom"), "boom"},
		{"empty error", errors.New(""), "Ha ocurrido un error inesperado"},
		{"string", "texto", "texto"},
		{"blank string", "  ", "Ha ocurrido un error inesperado"},
		{"message method", messageValue{text: "propio"}, "propio"},
		{"map with message", map[string]any{"message": "de mapa"}, "de mapa"},
		{"map without message", map[string]any{"code": 7}, "map[code:7]"},
		{"number", 42, "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, failure.Describe(tt.in))
		})
	}
}

// --- Report / interceptor ---

func TestReport_NotShownTwiceWhenReRaised(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"Ya existe un vendedor con el DNI 12345678"}`))
	}))
	defer srv.Close()

	s, r, rec := newSink()
	c := httpclient.New(srv.URL, httpclient.WithReporter(s))

	err := s.Recover(t.Context(), func(ctx context.Context) error {
		_, err := c.Do(ctx, httpclient.Request{Method: http.MethodPost, Path: "/seller", Body: map[string]string{"dni": "12345678"}})
		return fmt.Errorf("guardar: %w", err)
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	require.Len(t, r.all(), 1)
	assert.Equal(t, "Conflicto", r.all()[0].Title)
	require.Len(t, rec.all(), 1)
	assert.Equal(t, diag.SourceHTTP, rec.all()[0].Source)

	// A second, distinct failure is still presented.
	s.Handle(t.Context(), apperr.NewTimeout(""))
	assert.Len(t, r.all(), 2)
}

func TestReport_CallerDeadlineTimeoutShownOnce(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	var out bytes.Buffer
	s := failure.New(notify.NewDispatcher(console.New(&out, nil)))
	c := httpclient.New(srv.URL,
		httpclient.WithPolicy(httpclient.Policy{Timeout: 5 * time.Second, MaxRetries: 1, RetryDelay: 10 * time.Millisecond}),
		httpclient.WithReporter(s),
	)

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	err := s.Recover(ctx, func(ctx context.Context) error {
		_, err := c.Do(ctx, httpclient.Request{Path: "/seller"})
		return err
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindTimeout, apperr.KindOf(err))
	assert.Equal(t, 1, strings.Count(out.String(), "Tiempo agotado"), out.String())
}

func TestReport_UnshownErrorIsPresentedByRecover(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := &flakyRenderer{}
	rec := &captureRecorder{}
	s := failure.New(notify.NewDispatcher(r), failure.WithRecorder(rec))
	c := httpclient.New(srv.URL, httpclient.WithReporter(s))

	err := s.Recover(t.Context(), func(ctx context.Context) error {
		_, err := c.Do(ctx, httpclient.Request{Path: "/harvest"})
		return err
	})

	require.Error(t, err)
	require.Len(t, r.all(), 1)
	assert.Equal(t, "Error del servidor", r.all()[0].Title)
	assert.Len(t, rec.all(), 2)
}

func TestReport_OutsideRecoverIsNotRemembered(t *testing.T) {
	t.Parallel()

	s, r, _ := newSink()
	err := apperr.NewTimeout("")

	s.Report(t.Context(), err)
	s.Handle(t.Context(), err)

	assert.Len(t, r.all(), 2)
}

func TestReport_Nil(t *testing.T) {
	t.Parallel()

	s, r, rec := newSink()
	s.Report(t.Context(), nil)

	assert.Empty(t, r.all())
	assert.Empty(t, rec.all())
}

// --- Recover ---

func TestRecover_Panics(t *testing.T) {
	t.Parallel()

	t.Run("plain value", func(t *testing.T) {
		t.Parallel()

		s, r, rec := newSink()
		err := s.Recover(t.Context(), func(context.Context) error {
			panic("estado inconsistente")
		})

		require.ErrorIs(t, err, failure.ErrPanic)
		require.Len(t, r.all(), 1)
		assert.Equal(t, "Error de la aplicación", r.all()[0].Title)
		require.Len(t, rec.all(), 1)
		assert.Equal(t, diag.SourcePanic, rec.all()[0].Source)
		assert.NotEmpty(t, rec.all()[0].Stack)
	})

	t.Run("typed value", func(t *testing.T) {
		t.Parallel()

		s, r, rec := newSink()
		err := s.Recover(t.Context(), func(context.Context) error {
			panic(apperr.NewAuthorization("", "harvest:delete"))
		})

		require.ErrorIs(t, err, failure.ErrPanic)
		assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
		require.Len(t, r.all(), 1)
		assert.Equal(t, "Acceso denegado", r.all()[0].Title)
		assert.Equal(t, "authorization", rec.all()[0].Kind)
	})
}

func TestRecover_SuccessAndError(t *testing.T) {
	t.Parallel()

	s, r, _ := newSink()

	require.NoError(t, s.Recover(t.Context(), func(context.Context) error { return nil }))
	assert.Empty(t, r.all())

	err := s.Recover(t.Context(), func(context.Context) error { return apperr.NewBusiness("regla") })
	assert.Equal(t, apperr.KindBusiness, apperr.KindOf(err))
	assert.Len(t, r.all(), 1)
}

func TestHandle_RendererFailureDoesNotStopRecording(t *testing.T) {
	t.Parallel()

	r := &captureRenderer{err: errors.New("tty closed")}
	rec := &captureRecorder{}
	s := failure.New(notify.NewDispatcher(r), failure.WithRecorder(rec))

	s.Handle(t.Context(), apperr.NewServer("", 500, nil))
	s.Handle(t.Context(), "texto suelto")

	assert.Len(t, rec.all(), 2)
}

func TestHandle_WithoutRecorder(t *testing.T) {
	t.Parallel()

	r := &captureRenderer{}
	s := failure.New(notify.NewDispatcher(r))

	assert.NotPanics(t, func() { s.Handle(t.Context(), nil) })
	require.Len(t, r.all(), 1)
	assert.Equal(t, "Ha ocurrido un error inesperado\n\nRevise el registro para más detalles.", r.all()[0].Text)
}
