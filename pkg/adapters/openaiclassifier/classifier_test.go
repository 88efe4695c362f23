package openaiclassifier

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/user/ainspire/pkg/adapters/logger"
	"github.com/user/ainspire/pkg/mocks"
	"github.com/user/ainspire/pkg/ports"
)

func completion(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]interface{}{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]string{"role": "assistant", "content": content},
		}},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestClassifier_Classify(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completion(`{"composition":"Close-Up","lighting":"Low-Key","mood":3}`))
	})

	c := New(mocks.NewCredentialStore("sk-test"), Options{BaseURL: srv.URL + "/v1"}, logger.NewNoop())
	labels, err := c.Classify(context.Background(), []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("unexpected Authorization header %q", gotAuth)
	}
	if gotBody["model"] != DefaultModel {
		t.Errorf("expected default model, got %v", gotBody["model"])
	}
	if rf, _ := gotBody["response_format"].(map[string]interface{}); rf["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", gotBody["response_format"])
	}
	raw, _ := json.Marshal(gotBody["messages"])
	if !strings.Contains(string(raw), "data:image/jpeg;base64,/9j/") {
		t.Error("expected the frame to be sent as a data URL")
	}

	if len(labels) != 2 || labels["composition"] != "Close-Up" || labels["lighting"] != "Low-Key" {
		t.Errorf("unexpected labels %v", labels)
	}
}

func TestClassifier_CredentialErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`},
		{"forbidden", http.StatusForbidden, `{"error":{"message":"forbidden","type":"invalid_request_error"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})

			c := New(mocks.NewCredentialStore("sk-bad"), Options{BaseURL: srv.URL}, logger.NewNoop())
			_, err := c.Classify(context.Background(), []byte("x"), "image/jpeg")
			if !errors.Is(err, ports.ErrInvalidCredential) {
				t.Errorf("expected ErrInvalidCredential, got %v", err)
			}
		})
	}
}

func TestClassifier_ServerErrorIsNotCredential(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"image too small","type":"invalid_request_error"}}`)
	})

	c := New(mocks.NewCredentialStore("sk-test"), Options{BaseURL: srv.URL}, logger.NewNoop())
	_, err := c.Classify(context.Background(), []byte("x"), "image/jpeg")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ports.ErrInvalidCredential) {
		t.Error("a bad request must not be reported as a credential failure")
	}
}

func TestClassifier_MissingCredential(t *testing.T) {
	called := false
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) { called = true })

	c := New(mocks.NewCredentialStore(""), Options{BaseURL: srv.URL}, logger.NewNoop())
	_, err := c.Classify(context.Background(), []byte("x"), "image/jpeg")
	if !errors.Is(err, ports.ErrInvalidCredential) {
		t.Errorf("expected ErrInvalidCredential, got %v", err)
	}
	if called {
		t.Error("no request should be sent without a key")
	}
}

func TestClassifier_PicksUpNewKey(t *testing.T) {
	var auths []string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		auths = append(auths, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, completion(`{}`))
	})

	store := mocks.NewCredentialStore("sk-one")
	c := New(store, Options{BaseURL: srv.URL}, logger.NewNoop())
	c.Classify(context.Background(), []byte("x"), "image/jpeg")
	store.Save(context.Background(), "sk-two")
	c.Classify(context.Background(), []byte("x"), "image/jpeg")

	if len(auths) != 2 || auths[1] != "Bearer sk-two" {
		t.Errorf("expected replaced key on second call, got %v", auths)
	}
}

func TestClassifier_Timeout(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	c := New(mocks.NewCredentialStore("sk-test"), Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, logger.NewNoop())
	_, err := c.Classify(context.Background(), []byte("x"), "image/jpeg")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if errors.Is(err, ports.ErrInvalidCredential) {
		t.Error("timeout must not be reported as a credential failure")
	}
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    map[string]string
		wantErr bool
	}{
		{"plain object", `{"setting":"Urban"}`, map[string]string{"setting": "Urban"}, false},
		{"fenced", "```json\n{\"color\":\"Pastel\"}\n```", map[string]string{"color": "Pastel"}, false},
		{"empty reply", "  ", nil, false},
		{"empty object", `{}`, map[string]string{}, false},
		{"not json", `Close-Up`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLabels(tt.content)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s: got %q, want %q", k, got[k], v)
				}
			}
		})
	}
}
