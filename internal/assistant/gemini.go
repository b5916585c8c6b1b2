package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const systemInstruction = "You are ClerkBot, a helpful AI meeting assistant. " +
	"Answer questions based ONLY on the provided meeting context. Be concise."

// GeminiClient talks to the Gemini generateContent REST endpoint.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration, logger zerolog.Logger) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.With().Str("client", "gemini").Logger(),
	}
}

func (c *GeminiClient) Summarize(ctx context.Context, transcript string) (string, error) {
	prompt := "Please summarize the following meeting transcript in 3-4 bullet points " +
		"focusing on key outcomes and next steps: " + transcript
	return c.generate(ctx, "", prompt)
}

func (c *GeminiClient) Ask(ctx context.Context, query, contextText string) (string, error) {
	prompt := fmt.Sprintf("Context from meeting: %s\n\nUser Question: %s", contextText, query)
	return c.generate(ctx, systemInstruction, prompt)
}

func (c *GeminiClient) DraftFollowUp(ctx context.Context, actionItems []string) (string, error) {
	prompt := "Draft a professional follow-up email based on these action items: " +
		strings.Join(actionItems, ", ")
	return c.generate(ctx, "", prompt)
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) generate(ctx context.Context, system, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	}
	if system != "" {
		reqBody.SystemInstruction = &generateContent{Parts: []generatePart{{Text: system}}}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%w: encoding request: %v", ErrUnavailable, err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn().Int("status", resp.StatusCode).Msg("generateContent returned non-200")
		return "", fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}

	var apiResp generateResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("%w: parsing response: %v", ErrUnavailable, err)
	}

	var sb strings.Builder
	if len(apiResp.Candidates) > 0 {
		for _, part := range apiResp.Candidates[0].Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	text := sb.String()
	if text == "" {
		return "", fmt.Errorf("%w: empty response", ErrUnavailable)
	}

	c.logger.Info().Int("chars", len(text)).Msg("generated response")
	return text, nil
}
