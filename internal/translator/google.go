package translator

import (
	"context"
	"fmt"
	"time"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"
)

// GoogleRequestor translates through Google Cloud Translate. It is the
// non-LLM fallback backend; placeholders survive by API contract but are
// still validated by the pipeline like any other result.
type GoogleRequestor struct {
	credentials string
}

func NewGoogleRequestor(cfg Config) *GoogleRequestor {
	return &GoogleRequestor{credentials: cfg.Credentials}
}

func (s *GoogleRequestor) Name() string {
	return "google"
}

func (s *GoogleRequestor) Translate(ctx context.Context, req Request) (*Result, error) {
	result := &Result{}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	targetLangTag, err := language.Parse(req.TargetLang)
	if err != nil {
		return nil, &RequestError{Reason: ReasonMalformed, Err: fmt.Errorf("invalid target language: %w", err)}
	}

	opts := []option.ClientOption{}
	if s.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentials))
	}

	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, wrapTransport(ctx, err)
	}
	defer client.Close()

	var translations []translate.Translation
	if req.SourceLang == "" || req.SourceLang == "auto" {
		translations, err = client.Translate(ctx, []string{req.Text}, targetLangTag, nil)
	} else {
		sourceLangTag, _ := language.Parse(req.SourceLang)
		translations, err = client.Translate(ctx, []string{req.Text}, targetLangTag, &translate.Options{
			Source: sourceLangTag,
		})
	}
	if err != nil {
		return nil, wrapTransport(ctx, err)
	}
	if len(translations) == 0 {
		return nil, &RequestError{Reason: ReasonMalformed, Err: fmt.Errorf("no translation returned")}
	}

	result.TranslatedText = translations[0].Text
	result.Model = "google-translate"
	return result, nil
}

func (s *GoogleRequestor) IsAvailable(ctx context.Context) error {
	return nil
}
