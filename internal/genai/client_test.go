package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildGeminiRequestOrdering(t *testing.T) {
	body, err := buildGeminiRequest("system", "find huts", "aW1hZ2U=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var req geminiRequest
	if err := json.Unmarshal(body, &req); err != nil {
		t.Fatalf("request does not decode: %v", err)
	}

	// System prompt + ack, image, then the user prompt, in that order.
	if len(req.Contents) != 4 {
		t.Fatalf("expected 4 contents, got %d", len(req.Contents))
	}
	if req.Contents[0].Parts[0].Text != "system" || req.Contents[1].Role != "model" {
		t.Error("system prompt exchange must come first")
	}
	if req.Contents[2].Parts[0].InlineData == nil {
		t.Error("image must be the third message")
	}
	if req.Contents[3].Parts[0].Text != "find huts" {
		t.Error("user prompt must come last")
	}
}

func TestBuildGPTRequestImageDataURL(t *testing.T) {
	body, err := buildGPTRequest("gpt-5-mini", "system", "find huts", "aW1hZ2U=")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(body), "data:image/png;base64,aW1hZ2U=") {
		t.Errorf("image data URL missing from request: %s", body)
	}
}

func TestParseGeminiResponse(t *testing.T) {
	body := `{"candidates":[{"content":{"parts":[{"text":"[{\"label\":\"hut\"}]"}]}}],
		"usageMetadata":{"promptTokenCount":100,"candidatesTokenCount":20}}`

	text, usage, err := parseGeminiResponse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "hut") {
		t.Errorf("text = %q", text)
	}
	if usage.InputTokens != 100 || usage.OutputTokens != 20 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestParseGeminiError(t *testing.T) {
	body := `{"error":{"code":400,"message":"bad key","status":"INVALID_ARGUMENT"}}`

	if _, _, err := parseGeminiResponse([]byte(body)); err == nil {
		t.Fatal("expected an API error")
	}
}

func TestParseGPTResponse(t *testing.T) {
	body := `{"choices":[{"message":{"content":"no objects found"}}],
		"usage":{"prompt_tokens":50,"completion_tokens":5}}`

	text, usage, err := parseGPTResponse([]byte(body))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "no objects found" {
		t.Errorf("text = %q", text)
	}
	if usage.InputTokens != 50 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestAnalyzeAgainstStubServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"[{\"label\":\"pond\",\"point\":[500,500]}]"}}],
			"usage":{"prompt_tokens":10,"completion_tokens":10}}`))
	}))
	defer srv.Close()

	c := &Client{
		Provider:   "gpt",
		Model:      "gpt-5-mini",
		URL:        srv.URL,
		APIKey:     "test-key",
		HTTPClient: srv.Client(),
	}

	text, usage, err := c.Analyze(context.Background(), DefaultSystemPrompt, "find ponds", []byte("png"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "pond") {
		t.Errorf("text = %q", text)
	}
	if usage.InputTokens != 10 {
		t.Errorf("usage = %+v", usage)
	}
}

func TestAnalyzeUnknownProvider(t *testing.T) {
	c := &Client{Provider: "llama"}
	if _, _, err := c.Analyze(context.Background(), "", "prompt", nil); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}
