package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/valpere/locflow/internal/postprocess"
)

var DefaultOllamaModels = []string{
	"llama3.2",
	"gemma2:2b",
	"qwen2.5:3b",
	"mistral:7b",
}

// OllamaRequestor translates through a self-hosted Ollama instance.
type OllamaRequestor struct {
	baseURL string
	models  []string
	client  *http.Client
}

func NewOllamaRequestor(cfg Config) *OllamaRequestor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	models := cfg.Models
	if cfg.Model != "" {
		models = []string{cfg.Model}
	}
	if len(models) == 0 {
		models = DefaultOllamaModels
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaRequestor{
		baseURL: baseURL,
		models:  models,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OllamaRequestor) Name() string {
	return "ollama"
}

func (s *OllamaRequestor) pickModel() string {
	return s.models[rand.Intn(len(s.models))]
}

func (s *OllamaRequestor) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	model := s.pickModel()

	payload := map[string]interface{}{
		"model":  model,
		"system": buildSystemPrompt(req.SourceLang, req.TargetLang, req.Context, req.Strict),
		"prompt": req.Text,
		"stream": false,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Reason: ReasonMalformed, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/generate", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &RequestError{Reason: ReasonNetwork, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, wrapTransport(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RequestError{Reason: ReasonQuota, Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, &RequestError{Reason: ReasonNetwork, Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return nil, &RequestError{Reason: ReasonMalformed, Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	}

	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, &RequestError{Reason: ReasonMalformed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	result.TranslatedText = postprocess.Clean(ollamaResp.Response)
	result.Model = model
	return result, nil
}

func (s *OllamaRequestor) IsAvailable(ctx context.Context) error {
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/tags", s.baseURL), nil)
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("Ollama not available: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ollama returned status %d", resp.StatusCode)
	}
	return nil
}
