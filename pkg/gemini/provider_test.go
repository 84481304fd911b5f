package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/niramoy/niramoy-go/pkg/core"
)

func TestGenerateContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/gemini-2.5-flash:generateContent" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}

		var req Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Role != "user" {
			t.Errorf("unexpected contents: %+v", req.Contents)
		}
		if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != "be brief" {
			t.Error("missing system instruction")
		}

		json.NewEncoder(w).Encode(Response{
			Candidates: []Candidate{{
				Content:      Content{Role: "model", Parts: []Part{{Text: "hello "}, {Text: "there"}}},
				FinishReason: "STOP",
			}},
			UsageMetadata: &Usage{PromptTokenCount: 3, CandidatesTokenCount: 2, TotalTokenCount: 5},
		})
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	resp, err := p.GenerateContent(context.Background(), DefaultModel, &Request{
		Contents:          []Content{Text("user", "hi")},
		SystemInstruction: SystemInstruction("be brief"),
	})
	if err != nil {
		t.Fatalf("GenerateContent: %v", err)
	}
	if got := resp.Text(); got != "hello there" {
		t.Errorf("Text() = %q, want %q", got, "hello there")
	}
	if resp.UsageMetadata.TotalTokenCount != 5 {
		t.Errorf("total tokens = %d, want 5", resp.UsageMetadata.TotalTokenCount)
	}
}

func TestGenerateContent_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	p := New("test-key", WithBaseURL(server.URL))
	_, err := p.GenerateContent(context.Background(), DefaultModel, &Request{})
	if err == nil {
		t.Fatal("expected error for empty candidates")
	}
}

func TestGenerateContent_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		wantType   core.ErrorType
	}{
		{
			name:       "rate limit",
			statusCode: 429,
			body:       `{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`,
			wantType:   core.ErrRateLimit,
		},
		{
			name:       "invalid argument",
			statusCode: 400,
			body:       `{"error":{"code":400,"message":"bad schema","status":"INVALID_ARGUMENT"}}`,
			wantType:   core.ErrInvalidRequest,
		},
		{
			name:       "bad api key",
			statusCode: 403,
			body:       `{"error":{"code":403,"message":"forbidden","status":"PERMISSION_DENIED"}}`,
			wantType:   core.ErrAuthentication,
		},
		{
			name:       "overloaded",
			statusCode: 503,
			body:       `{"error":{"code":503,"message":"try later","status":"UNAVAILABLE"}}`,
			wantType:   core.ErrOverloaded,
		},
		{
			name:       "unparseable body",
			statusCode: 500,
			body:       `<html>gateway error</html>`,
			wantType:   core.ErrProvider,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			p := New("test-key", WithBaseURL(server.URL))
			_, err := p.GenerateContent(context.Background(), DefaultModel, &Request{})
			if err == nil {
				t.Fatal("expected error")
			}
			var coreErr *core.Error
			if !errors.As(err, &coreErr) {
				t.Fatalf("expected *core.Error, got %T", err)
			}
			if coreErr.Type != tt.wantType {
				t.Errorf("error type = %q, want %q", coreErr.Type, tt.wantType)
			}
		})
	}
}

func TestJSONConfig(t *testing.T) {
	cfg := JSONConfig(json.RawMessage(`{"type":"object"}`))
	if cfg.ResponseMIMEType != "application/json" {
		t.Errorf("mime type = %q", cfg.ResponseMIMEType)
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	json.Unmarshal(data, &m)
	if _, ok := m["responseJsonSchema"]; !ok {
		t.Error("missing responseJsonSchema field")
	}
}
