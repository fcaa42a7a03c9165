package httpclient_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/agrotrack/internal/apperr"
	"github.com/gosuda/agrotrack/internal/httpclient"
)

func TestClassify_StatusTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		kind   apperr.Kind
		code   int
	}{
		{0, apperr.KindNetwork, 0},
		{400, apperr.KindBadRequest, 400},
		{401, apperr.KindAuthentication, 401},
		{403, apperr.KindAuthorization, 403},
		{404, apperr.KindNotFound, 404},
		{408, apperr.KindTimeout, 408},
		{409, apperr.KindConflict, 409},
		{422, apperr.KindValidation, 422},
		{500, apperr.KindServer, 500},
		{502, apperr.KindServer, 502},
		{503, apperr.KindServer, 503},
		{504, apperr.KindTimeout, 408},
		{501, apperr.KindServer, 501},
		{599, apperr.KindServer, 599},
		{418, apperr.KindBadRequest, 400},
		{429, apperr.KindBadRequest, 400},
		{302, apperr.KindBadRequest, 400},
		{-1, apperr.KindBadRequest, 400},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			t.Parallel()

			got := httpclient.Classify(&httpclient.FailedResponse{Status: tt.status, URL: "http://api/v1/api/seller"})

			require.NotNil(t, got)
			assert.Equal(t, tt.kind, got.Kind())
			assert.Equal(t, tt.code, got.Status())
			assert.NotEmpty(t, got.Message())
		})
	}
}

func TestClassify_TimedOutWinsOverStatus(t *testing.T) {
	t.Parallel()

	for _, status := range []int{0, 200, 404, 500} {
		got := httpclient.Classify(&httpclient.FailedResponse{Status: status, TimedOut: true})
		assert.Equal(t, apperr.KindTimeout, got.Kind(), "status %d", status)
	}
}

func TestClassify_LocalTypedCausePassesThrough(t *testing.T) {
	t.Parallel()

	local := apperr.NewAuthentication("Sesión expirada")
	got := httpclient.Classify(&httpclient.FailedResponse{Status: 0, Cause: local})

	assert.Same(t, local, got)
}

func TestClassify_NotFoundResource(t *testing.T) {
	t.Parallel()

	t.Run("numeric id segment", func(t *testing.T) {
		t.Parallel()

		got := httpclient.Classify(&httpclient.FailedResponse{Status: 404, URL: "http://localhost:8085/v1/api/harvest/42"})

		assert.Equal(t, apperr.KindNotFound, got.Kind())
		assert.Equal(t, "harvest", got.ResourceType())
		assert.Equal(t, "42", got.ResourceID())
	})

	t.Run("no numeric id falls back", func(t *testing.T) {
		t.Parallel()

		got := httpclient.Classify(&httpclient.FailedResponse{Status: 404, URL: "http://localhost:8085/v1/api/seller/dni/abc"})

		assert.Equal(t, "Recurso", got.ResourceType())
		assert.Empty(t, got.ResourceID())
	})

	t.Run("empty url falls back", func(t *testing.T) {
		t.Parallel()

		got := httpclient.Classify(&httpclient.FailedResponse{Status: 404})
		assert.Equal(t, "Recurso", got.ResourceType())
	})
}

func TestResourceFromURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url      string
		resource string
		id       string
	}{
		{"http://h/v1/api/harvest/42", "harvest", "42"},
		{"http://h/v1/api/harvest/42?x=1", "harvest", "42"},
		{"http://h/v1/api/seller/7/harvest/9", "harvest", "9"},
		{"http://h/v1/api/seller/7/", "seller", "7"},
		{"http://h/v1/api/seller/restore/3", "restore", "3"},
		{"http://h/v1/api/marketcustomer", "Recurso", ""},
		{"/harvest/12", "harvest", "12"},
		{"http://h/v1/12", "Recurso", ""},
		{"%%%/harvest/5?q", "harvest", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()

			resource, id := httpclient.ResourceFromURL(tt.url)
			assert.Equal(t, tt.resource, resource)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestClassify_ValidationFieldMap(t *testing.T) {
	t.Parallel()

	t.Run("errors object is copied verbatim", func(t *testing.T) {
		t.Parallel()

		got := httpclient.Classify(&httpclient.FailedResponse{
			Status: 422,
			Body:   []byte(`{"errors":{"name":["required"]}}`),
		})

		assert.Equal(t, apperr.KindValidation, got.Kind())
		assert.Equal(t, map[string][]string{"name": {"required"}}, got.Fields())
	})

	t.Run("multiple messages per field", func(t *testing.T) {
		t.Parallel()

		got := httpclient.Classify(&httpclient.FailedResponse{
			Status: 422,
			Body:   []byte(`{"message":"invalid","errors":{"dni":["required","length"],"email":"format"}}`),
		})

		assert.Equal(t, "invalid", got.Message())
		assert.Equal(t, map[string][]string{"dni": {"required", "length"}, "email": {"format"}}, got.Fields())
	})

	t.Run("array errors yield empty map", func(t *testing.T) {
		t.Parallel()

		got := httpclient.Classify(&httpclient.FailedResponse{
			Status: 422,
			Body:   []byte(`{"errors":["first problem","second"]}`),
		})

		assert.Empty(t, got.Fields())
		assert.Equal(t, "first problem", got.Message())
	})

	t.Run("no body yields empty map", func(t *testing.T) {
		t.Parallel()

		got := httpclient.Classify(&httpclient.FailedResponse{Status: 422})
		assert.Empty(t, got.Fields())
	})
}

func TestClassify_MessagePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		transport string
		want      string
	}{
		{"plain text body", `Vendedor inactivo`, "transport", "Vendedor inactivo"},
		{"json string body", `"texto json"`, "transport", "texto json"},
		{"message field", `{"message":"m","error":"e","errors":["x"]}`, "transport", "m"},
		{"error field", `{"error":"e","errors":["x"]}`, "transport", "e"},
		{"errors array", `{"errors":["x","y"]}`, "transport", "x"},
		{"empty message skipped", `{"message":"","error":"e"}`, "transport", "e"},
		{"empty errors array", `{"errors":[]}`, "transport", "transport"},
		{"transport fallback", `{}`, "transport", "transport"},
		{"generic fallback", ``, "", "Ha ocurrido un error desconocido"},
		{"non-object json", `[1,2]`, "", "Ha ocurrido un error desconocido"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := httpclient.Classify(&httpclient.FailedResponse{Status: 400, Body: []byte(tt.body), Message: tt.transport})
			assert.Equal(t, tt.want, got.Message())
		})
	}
}

func TestClassify_FixedCopies(t *testing.T) {
	t.Parallel()

	body := []byte(`{"message":"detalle interno"}`)

	assert.Equal(t, "El servidor no está disponible. Por favor, intente más tarde.",
		httpclient.Classify(&httpclient.FailedResponse{Status: 502, Body: body}).Message())
	assert.Equal(t, "El servicio no está disponible temporalmente. Por favor, intente más tarde.",
		httpclient.Classify(&httpclient.FailedResponse{Status: 503, Body: body}).Message())
	assert.Equal(t, "detalle interno",
		httpclient.Classify(&httpclient.FailedResponse{Status: 500, Body: body}).Message())
}

func TestClassify_ServerWrapsFailure(t *testing.T) {
	t.Parallel()

	failed := &httpclient.FailedResponse{Status: 500, URL: "http://h/x"}
	got := httpclient.Classify(failed)

	var raw *httpclient.FailedResponse
	require.True(t, errors.As(got, &raw))
	assert.Same(t, failed, raw)
}

func TestClassify_NilIsNetwork(t *testing.T) {
	t.Parallel()

	assert.Equal(t, apperr.KindNetwork, httpclient.Classify(nil).Kind())
}
