// Package gemini implements classify.Generator with the Gemini
// generateContent REST API.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/couchcryptid/city-pulse-service/internal/domain"
)

// DefaultBaseURL is the public Generative Language API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Client calls a single Gemini model.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Gemini client. Deadlines come from the caller's context.
func NewClient(apiKey, model, baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Status     string // API status code, e.g. "PERMISSION_DENIED"
	Message    string
}

func (e *APIError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini API error: status %d %s: %s", e.StatusCode, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini API error: status %d: %s", e.StatusCode, e.Message)
}

var (
	errNoCandidates = errors.New("gemini response has no candidates")
	errNoText       = errors.New("gemini response has no text part")
)

// Generate sends prompt and the optional image as one user turn, asking for a
// JSON response, and returns the first text part of the first candidate.
func (c *Client) Generate(ctx context.Context, prompt string, image *domain.EncodedImage) (string, error) {
	parts := []part{{Text: prompt}}
	if image != nil {
		parts = append(parts, part{
			InlineData: &inlineData{
				MimeType: image.MIMEType,
				Data:     image.Base64,
			},
		})
	}

	body := request{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", parseAPIError(resp.StatusCode, respBody)
	}

	var gr response
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(gr.Candidates) == 0 {
		if gr.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("prompt blocked: %s", gr.PromptFeedback.BlockReason)
		}
		return "", errNoCandidates
	}
	for _, p := range gr.Candidates[0].Content.Parts {
		if p.Text != "" {
			c.logger.Debug("gemini response received",
				"model", c.model,
				"finish_reason", gr.Candidates[0].FinishReason,
				"bytes", len(p.Text),
			)
			return p.Text, nil
		}
	}
	return "", errNoText
}

func parseAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}
	var envelope errorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Status = envelope.Error.Status
		apiErr.Message = envelope.Error.Message
		return apiErr
	}
	msg := string(body)
	if len(msg) > 512 {
		msg = msg[:512]
	}
	apiErr.Message = msg
	return apiErr
}

// Gemini API request and response types.

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason,omitempty"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason,omitempty"`
	} `json:"promptFeedback"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}
