package genai

import (
	"encoding/json"
	"fmt"
)

type gptRequest struct {
	Model    string       `json:"model"`
	Messages []gptMessage `json:"messages"`
}

// gptMessage content is either a plain string or a list of typed parts
// (for the image message), so it stays as any.
type gptMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type gptImagePart struct {
	Type     string `json:"type"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

type gptResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// buildGPTRequest assembles a chat/completions payload: system prompt,
// the image as a data URL in its own user message, then the user prompt.
func buildGPTRequest(model, systemPrompt, prompt, imageB64 string) ([]byte, error) {
	var messages []gptMessage

	if systemPrompt != "" {
		messages = append(messages, gptMessage{Role: "system", Content: systemPrompt})
	}

	if imageB64 != "" {
		part := gptImagePart{Type: "image_url"}
		part.ImageURL.URL = "data:image/png;base64," + imageB64
		messages = append(messages, gptMessage{Role: "user", Content: []gptImagePart{part}})
	}

	messages = append(messages, gptMessage{Role: "user", Content: prompt})

	return json.Marshal(gptRequest{Model: model, Messages: messages})
}

func parseGPTResponse(body []byte) (string, Usage, error) {
	var resp gptResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", Usage{}, fmt.Errorf("parsing GPT response: %w", err)
	}

	usage := Usage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}

	if resp.Error != nil {
		return "", usage, fmt.Errorf("GPT API error (%s): %s", resp.Error.Type, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", usage, fmt.Errorf("empty response from GPT API")
	}

	return resp.Choices[0].Message.Content, usage, nil
}
