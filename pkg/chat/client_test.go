package chat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	client, err := NewClient(ClientConfig{
		Endpoint:   url,
		APIKey:     "test-key",
		Deployment: "imperator",
		Sampling:   DefaultSampling(1500),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-35-turbo",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	})
}

func TestCompleteSendsAzureRequest(t *testing.T) {
	var (
		gotPath    string
		gotVersion string
		gotKey     string
		gotBody    []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotVersion = r.URL.Query().Get("api-version")
		gotKey = r.Header.Get("api-key")
		gotBody, _ = io.ReadAll(r.Body)
		writeCompletion(w, "Ave!")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	reply, err := client.Complete(context.Background(), []Message{
		SystemMessage("You are Magnus Liber."),
		UserMessage("Salve"),
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}

	if reply.Role != RoleAssistant || reply.Content != "Ave!" {
		t.Fatalf("unexpected reply: %#v", reply)
	}
	if gotPath != "/openai/deployments/imperator/chat/completions" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotVersion != DefaultAPIVersion {
		t.Fatalf("unexpected api-version: %q", gotVersion)
	}
	if gotKey != "test-key" {
		t.Fatalf("unexpected api-key header: %q", gotKey)
	}

	body := string(gotBody)
	if n := gjson.Get(body, "n").Int(); n != 1 {
		t.Fatalf("expected n=1, got %d", n)
	}
	if mt := gjson.Get(body, "max_tokens").Int(); mt != 1500 {
		t.Fatalf("expected max_tokens=1500, got %d", mt)
	}
	if temp := gjson.Get(body, "temperature").Float(); temp != 0.7 {
		t.Fatalf("expected temperature=0.7, got %v", temp)
	}
	if topP := gjson.Get(body, "top_p").Float(); topP != 0.95 {
		t.Fatalf("expected top_p=0.95, got %v", topP)
	}
	if fp := gjson.Get(body, "frequency_penalty").Float(); fp != 0 {
		t.Fatalf("expected frequency_penalty=0, got %v", fp)
	}
	if pp := gjson.Get(body, "presence_penalty").Float(); pp != 0 {
		t.Fatalf("expected presence_penalty=0, got %v", pp)
	}
	if role := gjson.Get(body, "messages.0.role").String(); role != "system" {
		t.Fatalf("expected first message role system, got %q", role)
	}
	if count := gjson.Get(body, "messages.#").Int(); count != 2 {
		t.Fatalf("expected 2 messages, got %d", count)
	}
}

func TestCompleteNonSuccessStatus(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"code":"401","message":"Access denied due to invalid subscription key."}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), []Message{UserMessage("Salve")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Access denied due to invalid subscription key." {
		t.Fatalf("unexpected message: %q", apiErr.Message)
	}
	if !strings.Contains(apiErr.Body, `"error":{"code":"401"`) {
		t.Fatalf("expected full response envelope in body, got %q", apiErr.Body)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request without retries, got %d", calls)
	}
}

func TestCompleteNonJSONErrorKeepsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "<html>502 Bad Gateway</html>")
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), []Message{UserMessage("Salve")})

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected status 502, got %d", apiErr.StatusCode)
	}
	if apiErr.Body != "<html>502 Bad Gateway</html>" {
		t.Fatalf("unexpected body: %q", apiErr.Body)
	}
	if apiErr.Message != "" {
		t.Fatalf("expected no envelope message, got %q", apiErr.Message)
	}
	want := "completion request failed with status 502: <html>502 Bad Gateway</html>"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestCompleteServerErrorIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"code":"429","message":"slow down"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.Complete(context.Background(), []Message{UserMessage("Salve")}); err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected exactly one request, got %d", calls)
	}
}

func TestCompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","choices":[]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Complete(context.Background(), []Message{UserMessage("Salve")})
	if !errors.Is(err, ErrNoChoices) {
		t.Fatalf("expected ErrNoChoices, got %v", err)
	}
}

func TestCompleteTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := newTestClient(t, url)
	_, err := client.Complete(context.Background(), []Message{UserMessage("Salve")})

	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected *TransportError, got %T: %v", err, err)
	}
}

func TestNewClientRequiresSettings(t *testing.T) {
	tests := []struct {
		name string
		cfg  ClientConfig
	}{
		{name: "endpoint", cfg: ClientConfig{APIKey: "k", Deployment: "d"}},
		{name: "api key", cfg: ClientConfig{Endpoint: "https://example.openai.azure.com", Deployment: "d"}},
		{name: "deployment", cfg: ClientConfig{Endpoint: "https://example.openai.azure.com", APIKey: "k"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewClient(tt.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewAPIErrorReadsEnvelopeMessage(t *testing.T) {
	err := newAPIError(400, `{"error":{"code":"BadRequest","message":"bad deployment"}}`)
	if err.Message != "bad deployment" {
		t.Fatalf("expected envelope message, got %q", err.Message)
	}
}

func TestNewAPIErrorReadsBareMessage(t *testing.T) {
	err := newAPIError(500, `{"message":"boom"}`)
	if err.Message != "boom" {
		t.Fatalf("expected message boom, got %q", err.Message)
	}
	if err.Error() != "completion request failed with status 500: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}
