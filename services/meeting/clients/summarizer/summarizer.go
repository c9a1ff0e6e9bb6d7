package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Client talks to the external summarization service. The service base URL
// is often an ad-hoc tunnel, so it is configuration, never hardcoded.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

type SummarizeRequest struct {
	Transcripts map[string]string `json:"transcripts"`
	Roles       map[string]string `json:"roles"`
}

type SummarizeResponse struct {
	Summaries map[string]string `json:"summaries"`
}

type ConversationRequest struct {
	Transcripts []string `json:"transcripts"`
}

type ConversationResponse struct {
	Conversation string `json:"conversation"`
}

func New(baseURL string) *Client {
	log := slog.Default()
	log.Debug("creating summarizer client", slog.String("base_url", baseURL))
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		log:        log,
	}
}

// Summarize sends the positional-key transcripts with their role map and
// returns the role keyed summaries.
func (c *Client) Summarize(ctx context.Context, transcripts, roles map[string]string) (map[string]string, error) {
	c.log.Info("Summarize called",
		slog.Int("transcripts_count", len(transcripts)),
		slog.Int("roles_count", len(roles)))

	reqBody := SummarizeRequest{
		Transcripts: transcripts,
		Roles:       roles,
	}

	var result SummarizeResponse
	if err := c.post(ctx, "/summarize", reqBody, &result); err != nil {
		return nil, err
	}

	c.log.Info("summaries generated", slog.Int("roles_count", len(result.Summaries)))
	return result.Summaries, nil
}

// Conversation synthesizes a unified conversation narrative from raw
// transcripts.
func (c *Client) Conversation(ctx context.Context, transcripts []string) (string, error) {
	c.log.Info("Conversation called", slog.Int("transcripts_count", len(transcripts)))

	reqBody := ConversationRequest{
		Transcripts: transcripts,
	}

	var result ConversationResponse
	if err := c.post(ctx, "/conversation", reqBody, &result); err != nil {
		return "", err
	}

	c.log.Info("conversation synthesized", slog.Int("conversation_length", len(result.Conversation)))
	return result.Conversation, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		c.log.Error("failed to marshal request", slog.String("error", err.Error()))
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + path
	c.log.Debug("sending POST request to summarizer service", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("HTTP request failed",
			slog.String("error", err.Error()),
			slog.String("url", url))
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()
	c.log.Debug("response received", slog.Int("status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		c.log.Error("summarizer service returned error",
			slog.Int("status_code", resp.StatusCode),
			slog.String("response_body", string(respBody)))
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.log.Error("failed to decode response", slog.String("error", err.Error()))
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
