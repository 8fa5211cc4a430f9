package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csheth/legalchain/internal/backend"
	"github.com/csheth/legalchain/internal/nda"
)

type drafterFunc func(ctx context.Context, input nda.FormInput) (string, error)

func (f drafterFunc) DraftNDA(ctx context.Context, input nda.FormInput) (string, error) {
	return f(ctx, input)
}

const validBody = `{"partyOne":"Google","partyTwo":"Apple","effectiveDate":"2024-05-01","description":"roadmaps","termLength":"2"}`

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestGenerateReturnsDraft(t *testing.T) {
	var got nda.FormInput
	h := NewRouter(NewHandler(drafterFunc(func(ctx context.Context, input nda.FormInput) (string, error) {
		got = input
		return "MUTUAL NDA\n\n1. Definitions", nil
	})), Options{})

	rec := post(t, h, validBody)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(backend.RequestIDHeader))

	var resp generateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MUTUAL NDA\n\n1. Definitions", resp.NDA)
	assert.Equal(t, 2, got.TermLength)
	assert.Equal(t, "Apple", got.PartyTwo)
}

func TestGenerateDrafterFailureIsGeneric(t *testing.T) {
	h := NewRouter(NewHandler(drafterFunc(func(context.Context, nda.FormInput) (string, error) {
		return "", errors.New("anthropic API error: 529 overloaded")
	})), Options{})

	rec := post(t, h, validBody)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, FailureMessage, resp.Error)
	assert.NotContains(t, rec.Body.String(), "overloaded")
}

func TestGenerateRejectsBadBodies(t *testing.T) {
	called := false
	h := NewRouter(NewHandler(drafterFunc(func(context.Context, nda.FormInput) (string, error) {
		called = true
		return "x", nil
	})), Options{})

	cases := map[string]string{
		"malformed":    `{"partyOne":`,
		"missing":      `{"partyOne":"Google"}`,
		"bad date":     `{"partyOne":"A","partyTwo":"B","effectiveDate":"May 1","description":"d","termLength":1}`,
		"zero term":    `{"partyOne":"A","partyTwo":"B","effectiveDate":"2024-05-01","description":"d","termLength":0}`,
		"word as term": `{"partyOne":"A","partyTwo":"B","effectiveDate":"2024-05-01","description":"d","termLength":"two"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(t, h, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
	assert.False(t, called, "drafter must not run for rejected input")
}

func TestGenerateWithoutDrafterFails(t *testing.T) {
	rec := post(t, NewRouter(NewHandler(nil), Options{}), validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestPanicIsRecovered(t *testing.T) {
	h := NewRouter(NewHandler(drafterFunc(func(context.Context, nda.FormInput) (string, error) {
		panic("boom")
	})), Options{})
	rec := post(t, h, validBody)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), FailureMessage)
}

func TestRequestIDIsEchoed(t *testing.T) {
	h := NewRouter(NewHandler(drafterFunc(func(context.Context, nda.FormInput) (string, error) {
		return "ok", nil
	})), Options{})
	req := httptest.NewRequest(http.MethodPost, GeneratePath, strings.NewReader(validBody))
	req.Header.Set(backend.RequestIDHeader, "attempt-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "attempt-42", rec.Header().Get(backend.RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	h := NewRouter(NewHandler(drafterFunc(func(context.Context, nda.FormInput) (string, error) {
		return "ok", nil
	})), Options{RequestsPerSecond: 0.001, Burst: 2})

	assert.Equal(t, http.StatusOK, post(t, h, validBody).Code)
	assert.Equal(t, http.StatusOK, post(t, h, validBody).Code)
	rec := post(t, h, validBody)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))

	health := httptest.NewRecorder()
	h.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code, "health checks are not limited")
}

func TestPreflight(t *testing.T) {
	h := NewRouter(NewHandler(nil), Options{})
	req := httptest.NewRequest(http.MethodOptions, GeneratePath, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
}

func TestBackendClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(NewRouter(NewHandler(drafterFunc(func(_ context.Context, input nda.FormInput) (string, error) {
		return "Agreement between " + input.PartyOne + " and " + input.PartyTwo, nil
	})), Options{}))
	defer srv.Close()

	client := backend.NewFromEnv(backend.Config{Endpoint: srv.URL + GeneratePath})
	text, err := client.Generate(context.Background(), nda.FormInput{
		PartyOne:      "Google",
		PartyTwo:      "Apple",
		EffectiveDate: "2024-05-01",
		Description:   "roadmaps",
		TermLength:    1,
	})
	require.NoError(t, err)
	assert.Equal(t, "Agreement between Google and Apple", text)
}

func TestServeStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New(Config{Drafter: drafterFunc(func(context.Context, nda.FormInput) (string, error) {
		return "ok", nil
	}), ShutdownTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
