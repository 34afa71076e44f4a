// Package genai calls the multimodal AI providers (Gemini and GPT) with
// a captured map image and returns the raw response text for the
// detection pipeline.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/juergenlandauer/landtalk/internal/config"
)

// Client calls one AI provider endpoint.
type Client struct {
	Provider   string // "gemini" or "gpt"
	Model      string
	URL        string
	APIKey     string
	HTTPClient *http.Client

	limiter *rate.Limiter
}

// Usage reports token consumption for one exchange.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// NewClient builds a provider client. The API key comes from the
// environment variable named in the provider config, never from disk.
func NewClient(provider string, pc config.ProviderConfig, ac config.AnalysisConfig) (*Client, error) {
	key := os.Getenv(pc.KeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%s environment variable not set", pc.KeyEnv)
	}

	var limiter *rate.Limiter
	if ac.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(ac.RateLimit), 1)
	}

	timeout := time.Duration(ac.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		Provider:   provider,
		Model:      pc.Model,
		URL:        pc.URL,
		APIKey:     key,
		HTTPClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
	}, nil
}

// Analyze sends the image and prompt to the provider and returns the raw
// response text. The response may be prose, JSON, or both mixed; mining
// it for detections is the pipeline's job, not the client's.
func (c *Client) Analyze(ctx context.Context, systemPrompt, prompt string, imagePNG []byte) (string, Usage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", Usage{}, fmt.Errorf("rate limiter: %w", err)
		}
	}

	imageB64 := ""
	if len(imagePNG) > 0 {
		imageB64 = base64.StdEncoding.EncodeToString(imagePNG)
	}

	var (
		body    []byte
		headers map[string]string
		url     string
		err     error
	)
	switch c.Provider {
	case "gemini":
		body, err = buildGeminiRequest(systemPrompt, prompt, imageB64)
		url = c.URL + "?key=" + c.APIKey
		headers = map[string]string{"Content-Type": "application/json"}
	case "gpt":
		body, err = buildGPTRequest(c.Model, systemPrompt, prompt, imageB64)
		url = c.URL
		headers = map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + c.APIKey,
		}
	default:
		return "", Usage{}, fmt.Errorf("unknown AI provider %q", c.Provider)
	}
	if err != nil {
		return "", Usage{}, fmt.Errorf("building %s request: %w", c.Provider, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(body))
	if err != nil {
		return "", Usage{}, fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", Usage{}, fmt.Errorf("%s API request failed: %w", c.Provider, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Usage{}, fmt.Errorf("reading response: %w", err)
	}

	var text string
	var usage Usage
	switch c.Provider {
	case "gemini":
		text, usage, err = parseGeminiResponse(respBody)
	case "gpt":
		text, usage, err = parseGPTResponse(respBody)
	}
	if err != nil {
		return "", Usage{}, err
	}

	if resp.StatusCode != 200 {
		return "", usage, fmt.Errorf("%s API returned status %d: %.200s", c.Provider, resp.StatusCode, string(respBody))
	}

	return text, usage, nil
}
