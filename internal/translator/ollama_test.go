package translator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ollamaServer(t *testing.T, handler http.HandlerFunc) *OllamaRequestor {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewOllamaRequestor(Config{BaseURL: server.URL, Model: "test-model"})
}

func TestOllama_Translate(t *testing.T) {
	var gotBody map[string]interface{}
	svc := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{"response": "Hallo Welt"})
	})

	result, err := svc.Translate(context.Background(), Request{
		Text:       "Hello world",
		SourceLang: "en",
		TargetLang: "de",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TranslatedText != "Hallo Welt" {
		t.Errorf("unexpected translation: %q", result.TranslatedText)
	}
	if gotBody["prompt"] != "Hello world" {
		t.Errorf("source text must be the prompt, got %q", gotBody["prompt"])
	}
	if gotBody["system"] == "" {
		t.Error("system prompt missing")
	}
	if gotBody["stream"] != false {
		t.Error("streaming must be disabled")
	}
}

func TestOllama_Translate_ServerError(t *testing.T) {
	svc := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := svc.Translate(context.Background(), Request{Text: "Hello", TargetLang: "de"})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected *RequestError, got %T: %v", err, err)
	}
	if reqErr.Reason != ReasonNetwork {
		t.Errorf("expected network reason, got %s", reqErr.Reason)
	}
}

func TestOllama_IsAvailable(t *testing.T) {
	svc := ollamaServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})
	if err := svc.IsAvailable(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	down := NewOllamaRequestor(Config{BaseURL: "http://127.0.0.1:1"})
	if err := down.IsAvailable(context.Background()); err == nil {
		t.Error("expected error for unreachable host")
	}
}
