// internal/llm/client.go
// Package llm is a minimal client for OpenAI-compatible chat-completion
// endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// maxBodyExcerpt bounds how much of an error body is kept for diagnostics.
const maxBodyExcerpt = 2048

// Client performs chat-completion calls against a single endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient returns a Client for baseURL authenticated with apiKey. A zero
// timeout leaves requests bounded only by their context.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: newHTTPClient(timeout),
	}
}

// Complete performs one POST /chat/completions call. Every failure is
// returned as an *Error.
func (c *Client) Complete(ctx context.Context, reqPayload Request) (Response, error) {
	body, err := json.Marshal(reqPayload)
	if err != nil {
		return Response{}, &Error{Kind: KindMalformedResponse, Err: fmt.Errorf("marshal request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Response{}, &Error{Kind: KindConnectivity, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{}, &Error{Kind: transportKind(err), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Response{}, &Error{Kind: transportKind(err), StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &Error{
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       excerpt(respBody),
		}
	}

	return parseResponse(resp.StatusCode, respBody)
}

func parseResponse(status int, body []byte) (Response, error) {
	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return Response{}, &Error{Kind: KindMalformedResponse, StatusCode: status, Body: excerpt(body), Err: fmt.Errorf("unmarshal response: %w", err)}
	}
	if out.Error != nil {
		return Response{}, &Error{Kind: KindMalformedResponse, StatusCode: status, Body: excerpt(body), Err: fmt.Errorf("API error: %s", out.Error.Message)}
	}
	if len(out.Choices) == 0 {
		return Response{}, &Error{Kind: KindMalformedResponse, StatusCode: status, Body: excerpt(body), Err: errors.New("empty choices in response")}
	}
	if !firstContentPresent(body) {
		return Response{}, &Error{Kind: KindMalformedResponse, StatusCode: status, Body: excerpt(body), Err: errors.New("first choice has no message content")}
	}
	return out, nil
}

// firstContentPresent reports whether choices[0].message.content is a JSON
// string. Refusals and tool-call replies carry null or omit it; an empty
// string is still content.
func firstContentPresent(body []byte) bool {
	var raw struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &raw); err != nil || len(raw.Choices) == 0 {
		return false
	}
	return raw.Choices[0].Message.Content != nil
}

// Text returns the first choice's content.
func (r Response) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

func transportKind(err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindConnectivity
}

func excerpt(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > maxBodyExcerpt {
		return s[:maxBodyExcerpt] + "...(truncated)"
	}
	return s
}

// newHTTPClient returns a tuned HTTP client with keep-alives.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2: true,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
