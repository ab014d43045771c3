// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TourMind Contributors

// Package llm talks to an Ollama-compatible chat endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Defaults for a local Ollama install.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "mistral"
)

// Client generates chat completions.
type Client interface {
	// Chat sends the prompt (with an optional system message) and
	// returns the assistant's reply.
	Chat(ctx context.Context, system, prompt string) (string, error)
}

// Ollama implements Client against the Ollama HTTP API.
type Ollama struct {
	baseURL string
	model   string
	httpc   *http.Client
}

// NewOllama creates an Ollama client. Empty arguments fall back to
// DefaultBaseURL and DefaultModel.
func NewOllama(baseURL, model string) *Ollama {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		// Local models can take a while on first load.
		httpc: &http.Client{Timeout: 2 * time.Minute},
	}
}

// Model returns the configured model name.
func (o *Ollama) Model() string {
	return o.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatResponse struct {
	Message chatMessage `json:"message"`
}

// Chat sends a non-streaming chat completion request.
func (o *Ollama) Chat(ctx context.Context, system, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", oops.Code("LLM_INVALID_INPUT").Errorf("prompt must not be empty")
	}

	messages := make([]chatMessage, 0, 2)
	if system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	payload, err := json.Marshal(chatRequest{
		Model:    o.model,
		Messages: messages,
		Stream:   false,
	})
	if err != nil {
		return "", oops.Code("LLM_REQUEST_FAILED").Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return "", oops.Code("LLM_REQUEST_FAILED").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpc.Do(req)
	if err != nil {
		return "", oops.Code("LLM_REQUEST_FAILED").With("model", o.model).Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	if resp.StatusCode != http.StatusOK {
		return "", oops.Code("LLM_BACKEND_ERROR").
			With("model", o.model).
			With("status", resp.StatusCode).
			Errorf("chat endpoint returned status %d", resp.StatusCode)
	}

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", oops.Code("LLM_DECODE_FAILED").With("model", o.model).Wrap(err)
	}
	if body.Message.Content == "" {
		return "", oops.Code("LLM_EMPTY_REPLY").
			With("model", o.model).
			Errorf("chat endpoint returned an empty reply")
	}
	return body.Message.Content, nil
}

// Ping checks that the endpoint is up by listing installed models.
// Used by the status command.
func (o *Ollama) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.baseURL+"/api/tags", nil)
	if err != nil {
		return oops.Code("LLM_REQUEST_FAILED").Wrap(err)
	}

	resp, err := o.httpc.Do(req)
	if err != nil {
		return oops.Code("LLM_REQUEST_FAILED").Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is not actionable

	if resp.StatusCode != http.StatusOK {
		return oops.Code("LLM_BACKEND_ERROR").
			With("status", resp.StatusCode).
			Errorf("tags endpoint returned status %d", resp.StatusCode)
	}
	return nil
}

var _ Client = (*Ollama)(nil)
