package genai

import (
	"encoding/json"
	"fmt"
)

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// buildGeminiRequest assembles a generateContent payload: system prompt
// first (with a model acknowledgement, Gemini has no system role here),
// then the image as its own user message, then the user prompt.
func buildGeminiRequest(systemPrompt, prompt, imageB64 string) ([]byte, error) {
	var contents []geminiContent

	if systemPrompt != "" {
		contents = append(contents,
			geminiContent{Role: "user", Parts: []geminiPart{{Text: systemPrompt}}},
			geminiContent{Role: "model", Parts: []geminiPart{{Text: "I understand. I'll follow these instructions for all interactions."}}},
		)
	}

	if imageB64 != "" {
		contents = append(contents, geminiContent{
			Role: "user",
			Parts: []geminiPart{{
				InlineData: &geminiInlineData{MimeType: "image/png", Data: imageB64},
			}},
		})
	}

	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt}}})

	return json.Marshal(geminiRequest{
		Contents: contents,
		GenerationConfig: geminiGenConfig{
			Temperature:     0.4,
			TopK:            32,
			TopP:            1,
			MaxOutputTokens: 4096,
		},
	})
}

func parseGeminiResponse(body []byte) (string, Usage, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", Usage{}, fmt.Errorf("parsing Gemini response: %w", err)
	}

	usage := Usage{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
	}

	if resp.Error != nil {
		return "", usage, fmt.Errorf("Gemini API error (%s): %s", resp.Error.Status, resp.Error.Message)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", usage, fmt.Errorf("empty response from Gemini API")
	}

	return resp.Candidates[0].Content.Parts[0].Text, usage, nil
}
