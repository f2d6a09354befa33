package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
)

const message = `{
  "id": "msg_1",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-5",
  "content": [
    {"type": "text", "text": "{\"id_0\":"},
    {"type": "text", "text": "\"你好\"}"}
  ],
  "stop_reason": "end_turn",
  "usage": {"input_tokens": 20, "output_tokens": 9}
}`

func newServer(t *testing.T, status int, body string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got != nil {
			data, _ := io.ReadAll(r.Body)
			json.Unmarshal(data, got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestComplete(t *testing.T) {
	var req map[string]any
	srv := newServer(t, http.StatusOK, message, &req)
	p := New(Config{APIKey: "sk-ant-test", BaseURL: srv.URL, Model: "claude-sonnet-4-5"})
	if p.Name() != "claude-sonnet-4-5" {
		t.Errorf("Name() = %q", p.Name())
	}

	resp, err := p.Complete(context.Background(), translate.Request{
		System:  "translate",
		Payload: `{"id_0":"Hello"}`,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Content != `{"id_0":"你好"}` {
		t.Errorf("Content = %q", resp.Content)
	}
	if resp.Usage == nil || resp.Usage.PromptTokens != 20 || resp.Usage.CompletionTokens != 9 {
		t.Errorf("Usage = %+v", resp.Usage)
	}
	if req["model"] != "claude-sonnet-4-5" {
		t.Errorf("model = %v", req["model"])
	}
	if mt, _ := req["max_tokens"].(float64); mt != DefaultMaxTokens {
		t.Errorf("max_tokens = %v", req["max_tokens"])
	}
}

func TestCompleteNoText(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"id":"msg_2","type":"message","role":"assistant","content":[],"usage":{"input_tokens":4,"output_tokens":0}}`, nil)
	p := New(Config{APIKey: "sk-ant-test", BaseURL: srv.URL, Model: "claude-sonnet-4-5"})

	resp, err := p.Complete(context.Background(), translate.Request{Payload: "{}"})
	if err != ErrEmptyReply {
		t.Fatalf("expected ErrEmptyReply, got %v", err)
	}
	if resp == nil || resp.Usage.PromptTokens != 4 {
		t.Errorf("usage must be reported with an empty reply, got %+v", resp)
	}
}

func TestValidateKey(t *testing.T) {
	srv := newServer(t, http.StatusOK, `{"data":[{"id":"claude-sonnet-4-5","type":"model","display_name":"Claude","created_at":"2025-09-29T00:00:00Z"}],"has_more":false,"first_id":"claude-sonnet-4-5","last_id":"claude-sonnet-4-5"}`, nil)
	p := New(Config{APIKey: "sk-ant-test", BaseURL: srv.URL, Model: "claude-sonnet-4-5"})
	if err := p.ValidateKey(context.Background()); err != nil {
		t.Errorf("ValidateKey failed: %v", err)
	}

	bad := newServer(t, http.StatusUnauthorized, `{"type":"error","error":{"type":"authentication_error","message":"invalid x-api-key"}}`, nil)
	p = New(Config{APIKey: "sk-bad", BaseURL: bad.URL, Model: "claude-sonnet-4-5"})
	if err := p.ValidateKey(context.Background()); err == nil {
		t.Error("expected ValidateKey to fail")
	}
}
