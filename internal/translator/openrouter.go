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

var DefaultOpenRouterModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"qwen/qwen2.5-72b-instruct:free",
	"mistralai/mistral-nemo:free",
	"meta-llama/llama-3.1-8b-instruct:free",
}

// OpenRouterRequestor translates through OpenRouter's chat completions API.
type OpenRouterRequestor struct {
	apiKey  string
	baseURL string
	models  []string
	client  *http.Client
}

func NewOpenRouterRequestor(cfg Config) *OpenRouterRequestor {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	models := cfg.Models
	if len(models) == 0 {
		models = DefaultOpenRouterModels
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OpenRouterRequestor{
		apiKey:  cfg.APIKey,
		baseURL: baseURL,
		models:  models,
		client:  &http.Client{Timeout: timeout},
	}
}

func (s *OpenRouterRequestor) Name() string {
	return "openrouter"
}

func (s *OpenRouterRequestor) pickModel() string {
	return s.models[rand.Intn(len(s.models))]
}

func (s *OpenRouterRequestor) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	if s.apiKey == "" {
		return nil, &RequestError{Reason: ReasonQuota, Err: fmt.Errorf("OpenRouter API key required")}
	}

	model := s.pickModel()
	systemPrompt := buildSystemPrompt(req.SourceLang, req.TargetLang, req.Context, req.Strict)

	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": req.Text},
		},
		"max_tokens": 4096,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, &RequestError{Reason: ReasonMalformed, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/chat/completions", s.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &RequestError{Reason: ReasonNetwork, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
	httpReq.Header.Set("HTTP-Referer", "https://locflow.local")
	httpReq.Header.Set("X-Title", "locflow")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, wrapTransport(ctx, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusPaymentRequired:
		return nil, &RequestError{Reason: ReasonQuota, Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	case resp.StatusCode >= 500:
		return nil, &RequestError{Reason: ReasonNetwork, Err: fmt.Errorf("API returned status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		var errResp map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errResp)
		return nil, &RequestError{Reason: ReasonMalformed, Err: fmt.Errorf("API returned status %d: %v", resp.StatusCode, errResp)}
	}

	var openrouterResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
		} `json:"usage"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&openrouterResp); err != nil {
		return nil, &RequestError{Reason: ReasonMalformed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	if len(openrouterResp.Choices) == 0 {
		return nil, &RequestError{Reason: ReasonMalformed, Err: fmt.Errorf("empty response from API")}
	}

	result.TranslatedText = postprocess.Clean(openrouterResp.Choices[0].Message.Content)
	result.Model = model
	result.Metadata = map[string]string{
		"prompt_tokens":     fmt.Sprintf("%d", openrouterResp.Usage.PromptTokens),
		"completion_tokens": fmt.Sprintf("%d", openrouterResp.Usage.CompletionTokens),
	}
	return result, nil
}

func (s *OpenRouterRequestor) IsAvailable(ctx context.Context) error {
	if s.apiKey == "" {
		return fmt.Errorf("OpenRouter API key not configured")
	}
	return nil
}
