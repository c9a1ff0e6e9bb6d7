package assembly

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultBaseURL = "https://api.assemblyai.com/v2"

// Client talks to the AssemblyAI transcription API. Transcribe is
// synchronous from the caller's point of view: it submits the job and polls
// until the provider reports a terminal status.
type Client struct {
	http         *resty.Client
	pollInterval time.Duration
	log          *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

func WithPollInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.pollInterval = interval
	}
}

func New(apiKey string, opts ...Option) *Client {
	client := &Client{
		http: resty.New().
			SetBaseURL(defaultBaseURL).
			SetHeader("Authorization", apiKey).
			SetHeader("Content-Type", "application/json"),
		pollInterval: 3 * time.Second,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type transcriptJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

// Transcribe submits the audio URL and polls until the transcript is ready.
func (c *Client) Transcribe(ctx context.Context, audioURL string) (string, error) {
	c.log.Info("submitting transcription job", slog.String("audio_url", audioURL))

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"audio_url": audioURL}).
		Post("/transcript")
	if err != nil {
		return "", fmt.Errorf("failed to submit transcription job: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.log.Error("transcription submit rejected",
			slog.Int("status_code", resp.StatusCode()),
			slog.String("body", string(resp.Body())))
		return "", fmt.Errorf("transcription submit failed with status %d: %s", resp.StatusCode(), resp.Body())
	}

	var job transcriptJob
	if err := json.Unmarshal(resp.Body(), &job); err != nil {
		return "", fmt.Errorf("failed to decode transcription job: %w", err)
	}
	c.log.Debug("transcription job accepted",
		slog.String("job_id", job.ID),
		slog.String("status", job.Status))

	return c.poll(ctx, job.ID)
}

func (c *Client) poll(ctx context.Context, jobID string) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("transcription canceled: %w", ctx.Err())
		case <-time.After(c.pollInterval):
		}

		resp, err := c.http.R().
			SetContext(ctx).
			Get("/transcript/" + jobID)
		if err != nil {
			return "", fmt.Errorf("failed to poll transcription job: %w", err)
		}
		if resp.StatusCode() != http.StatusOK {
			return "", fmt.Errorf("transcription poll failed with status %d: %s", resp.StatusCode(), resp.Body())
		}

		var job transcriptJob
		if err := json.Unmarshal(resp.Body(), &job); err != nil {
			return "", fmt.Errorf("failed to decode transcription job: %w", err)
		}

		switch job.Status {
		case "completed":
			c.log.Info("transcription completed",
				slog.String("job_id", jobID),
				slog.Int("text_length", len(job.Text)))
			return job.Text, nil
		case "error":
			c.log.Error("transcription failed",
				slog.String("job_id", jobID),
				slog.String("provider_error", job.Error))
			return "", fmt.Errorf("transcription failed: %s", job.Error)
		default:
			c.log.Debug("transcription still in progress",
				slog.String("job_id", jobID),
				slog.String("status", job.Status))
		}
	}
}
