package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete_SendsRequestAndDecodesFirstChoice(t *testing.T) {
	temp := 0.7
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req.Model)
		assert.Equal(t, 1, req.N)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		require.NotNil(t, req.Temperature)
		assert.Equal(t, 0.7, *req.Temperature)

		_ = json.NewEncoder(w).Encode(Response{Choices: []Choice{
			{Message: Message{Role: "assistant", Content: "customer: hi\nagent: hello"}},
			{Message: Message{Role: "assistant", Content: "second"}},
		}})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v1/", "sk-test", 0)
	resp, err := c.Complete(context.Background(), Request{
		Model:       "gpt-test",
		N:           1,
		Temperature: &temp,
		Messages:    []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "u"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "customer: hi\nagent: hello", resp.Text())
}

func TestComplete_OmitsOptionalFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "temperature")
		assert.NotContains(t, raw, "max_tokens")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "", 0).Complete(context.Background(), Request{Model: "m", N: 1})
	require.NoError(t, err)
}

func TestComplete_ClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   Kind
		target error
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuthentication, ErrAuthentication},
		{"forbidden", http.StatusForbidden, KindAuthentication, ErrAuthentication},
		{"rate limited", http.StatusTooManyRequests, KindRateLimit, ErrRateLimit},
		{"gateway timeout", http.StatusGatewayTimeout, KindTimeout, ErrTimeout},
		{"server error", http.StatusInternalServerError, KindServer, ErrServer},
		{"bad request", http.StatusBadRequest, KindServer, ErrServer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, `{"error":{"message":"nope"}}`)
			_, err := NewClient(srv.URL, "k", 0).Complete(context.Background(), Request{Model: "m"})
			require.Error(t, err)

			var le *Error
			require.True(t, errors.As(err, &le))
			assert.Equal(t, tt.kind, le.Kind)
			assert.Equal(t, tt.status, le.StatusCode)
			assert.Contains(t, le.Body, "nope")
			assert.ErrorIs(t, err, tt.target)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestComplete_MalformedResponses(t *testing.T) {
	bodies := map[string]string{
		"not json":      `<html>oops</html>`,
		"empty choices": `{"choices":[]}`,
		"api error":     `{"error":{"message":"model overloaded"}}`,
		"null content":  `{"choices":[{"message":{"role":"assistant","content":null}}]}`,
		"no content":    `{"choices":[{"message":{"role":"assistant","tool_calls":[]}}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := chatServer(t, http.StatusOK, body)
			_, err := NewClient(srv.URL, "k", 0).Complete(context.Background(), Request{Model: "m"})
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Equal(t, KindMalformedResponse, KindOf(err))
		})
	}
}

func TestComplete_EmptyStringContentIsValid(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"choices":[{"message":{"role":"assistant","content":""}}]}`)
	resp, err := NewClient(srv.URL, "k", 0).Complete(context.Background(), Request{Model: "m"})
	require.NoError(t, err)
	assert.Equal(t, "", resp.Text())
}

func TestComplete_ConnectivityFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, "k", 0).Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrConnectivity)
}

func TestComplete_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "k", 50*time.Millisecond).Complete(context.Background(), Request{Model: "m"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestComplete_ContextCancelled(t *testing.T) {
	srv := chatServer(t, http.StatusOK, `{"choices":[{"message":{"content":"x"}}]}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient(srv.URL, "k", 0).Complete(ctx, Request{Model: "m"})
	assert.ErrorIs(t, err, ErrConnectivity)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestError_MessageIncludesDiagnostics(t *testing.T) {
	err := &Error{Kind: KindRateLimit, StatusCode: 429, Body: "slow down", Err: errors.New("boom")}
	msg := err.Error()
	for _, want := range []string{"rate_limit", "status=429", "boom", "slow down"} {
		assert.True(t, strings.Contains(msg, want), "missing %q in %q", want, msg)
	}
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestExcerpt_Truncates(t *testing.T) {
	long := strings.Repeat("x", maxBodyExcerpt+10)
	got := excerpt([]byte(long))
	assert.True(t, strings.HasSuffix(got, "...(truncated)"))
	assert.Len(t, got, maxBodyExcerpt+len("...(truncated)"))
}
