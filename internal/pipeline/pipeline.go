// Package pipeline drives the translation run: for every resolved
// (component, language) pair it selects candidate units, obtains a
// translation for each, validates it, and writes it back, tolerating an
// unreliable LLM and an unreliable platform without losing completed work
// or touching text a human already owns.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/valpere/locflow/internal/placeholder"
	"github.com/valpere/locflow/internal/platform"
	"github.com/valpere/locflow/internal/resolver"
	"github.com/valpere/locflow/internal/selector"
	"github.com/valpere/locflow/internal/translator"
	"github.com/valpere/locflow/internal/validator"
)

// Config tunes one Pipeline. Zero values get sensible defaults.
type Config struct {
	// SourceLang is the language units are authored in.
	SourceLang string
	// IncludeNeedsReview widens selection to needs-review units.
	IncludeNeedsReview bool
	// RequestRetry bounds translate attempts per unit.
	RequestRetry RetryPolicy
	// WriteRetry bounds write-back attempts per unit.
	WriteRetry RetryPolicy
	// Validator, when set, rejects wrong-language output. Optional.
	Validator *validator.Validator
	// DryRun runs everything except WriteTarget.
	DryRun bool
	// Logger defaults to the standard logrus logger.
	Logger logrus.FieldLogger
}

// Pipeline processes units one at a time, pair by pair. Sequential by
// design: per-unit conflict checking and downstream rate limits both want
// exactly one in-flight request.
type Pipeline struct {
	client    platform.Client
	requestor translator.Requestor
	cfg       Config
	log       logrus.FieldLogger
}

func New(client platform.Client, requestor translator.Requestor, cfg Config) *Pipeline {
	if cfg.SourceLang == "" {
		cfg.SourceLang = "en"
	}
	if cfg.RequestRetry.MaxAttempts == 0 {
		cfg.RequestRetry = DefaultRetryPolicy()
	}
	if cfg.WriteRetry.MaxAttempts == 0 {
		cfg.WriteRetry = DefaultRetryPolicy()
	}
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		client:    client,
		requestor: requestor,
		cfg:       cfg,
		log:       log,
	}
}

// Run processes all pairs to completion and returns the report. Per-unit
// failures never abort the run; cancellation stops new work, keeps what is
// already recorded, and still returns the partial report. The one error
// that does abort is a credential rejection from the platform, surfaced on
// the report's Fatal field.
func (p *Pipeline) Run(ctx context.Context, pairs []resolver.Pair) *RunReport {
	report := NewRunReport()
	defer report.Finish()

	for _, pair := range pairs {
		if ctx.Err() != nil {
			report.Canceled = true
			return report
		}
		p.runPair(ctx, pair, report)
		if report.Fatal != nil {
			// Rejected credentials will not heal between pairs. Stop
			// paying for translations that can never be written.
			return report
		}
	}
	return report
}

func (p *Pipeline) runPair(ctx context.Context, pair resolver.Pair, report *RunReport) {
	log := p.log.WithFields(logrus.Fields{
		"component": pair.Component.Slug,
		"language":  pair.Language.Code,
	})

	units, err := selector.Select(ctx, p.client, pair.Component.Project, pair.Component.Slug, pair.Language.Code,
		selector.Options{IncludeNeedsReview: p.cfg.IncludeNeedsReview})
	if err != nil {
		report.RecordPairError(pair.Component.Slug, pair.Language.Code, err)
		if isAuth(err) {
			log.WithError(err).Error("platform rejected credentials, aborting run")
			report.RecordFatal(err)
			return
		}
		// A vanished component fails this pair only; siblings continue.
		log.WithError(err).Error("failed to list units")
		return
	}

	if len(units) == 0 {
		log.Info("nothing to translate")
		return
	}
	log.WithField("units", len(units)).Info("starting pair")

	done := 0
	for _, unit := range units {
		if ctx.Err() != nil {
			report.Canceled = true
			return
		}

		outcome, fatal := p.processUnit(ctx, unit, pair.Language.Code, log)
		outcome.Component = pair.Component.Slug
		outcome.Language = pair.Language.Code
		report.Record(outcome)
		if fatal != nil {
			log.WithError(fatal).Error("platform rejected credentials, aborting run")
			report.RecordFatal(fatal)
			return
		}

		done++
		log.WithField("progress", fmt.Sprintf("%d/%d", done, len(units))).Debug("unit finished")
	}
	log.WithField("units", len(units)).Info("pair finished")
}

// processUnit walks one unit through request, validation, and write-back,
// returning its terminal outcome. The second return value is non-nil when
// the platform rejected credentials, which must abort the whole run.
func (p *Pipeline) processUnit(ctx context.Context, unit platform.Unit, targetLang string, log logrus.FieldLogger) (UnitOutcome, error) {
	log = log.WithField("unit", unit.Key)

	text, attempts, err := p.translateUnit(ctx, unit, targetLang, log)
	if err != nil {
		reason := ReasonRequestFailure
		var reqErr *translator.RequestError
		if errors.As(err, &reqErr) && reqErr.Reason == translator.ReasonMalformed {
			reason = ReasonBadTranslation
		}
		log.WithError(err).Warn("translation failed")
		return UnitOutcome{Key: unit.Key, Outcome: OutcomeFailed, Reason: reason, Detail: err.Error(), Attempts: attempts}, nil
	}

	if p.cfg.DryRun {
		log.WithField("translated", text).Info("dry run, skipping write")
		return UnitOutcome{Key: unit.Key, Outcome: OutcomeDone, Attempts: attempts}, nil
	}

	writeAttempts, err := p.writeUnit(ctx, unit, text)
	attempts += writeAttempts
	switch {
	case err == nil:
		log.Debug("unit written")
		return UnitOutcome{Key: unit.Key, Outcome: OutcomeDone, Attempts: attempts}, nil
	case isConflict(err):
		// A human or another process got there first. Their text wins.
		log.Info("unit changed on platform, skipping")
		return UnitOutcome{Key: unit.Key, Outcome: OutcomeSkipped, Reason: ReasonConcurrentEdit, Attempts: attempts}, nil
	case isAuth(err):
		log.WithError(err).Warn("write rejected")
		return UnitOutcome{Key: unit.Key, Outcome: OutcomeFailed, Reason: ReasonWriteFailure, Detail: err.Error(), Attempts: attempts}, err
	default:
		log.WithError(err).Warn("write failed")
		return UnitOutcome{Key: unit.Key, Outcome: OutcomeFailed, Reason: ReasonWriteFailure, Detail: err.Error(), Attempts: attempts}, nil
	}
}

// translateUnit obtains a validated translation. Transient requestor
// failures are retried under the request policy; an invalid or malformed
// result earns exactly one more pass with the strict prompt before the
// unit fails.
func (p *Pipeline) translateUnit(ctx context.Context, unit platform.Unit, targetLang string, log logrus.FieldLogger) (string, int, error) {
	total := 0
	var lastErr error

	for _, strict := range []bool{false, true} {
		req := translator.Request{
			Text:       unit.Source,
			SourceLang: p.cfg.SourceLang,
			TargetLang: targetLang,
			Context:    unit.Key,
			Strict:     strict,
		}

		var result *translator.Result
		attempts, err := p.cfg.RequestRetry.Do(ctx, retryableRequest, func() error {
			r, err := p.requestor.Translate(ctx, req)
			if err != nil {
				log.WithError(err).Debug("translate attempt failed")
				return err
			}
			result = r
			return nil
		})
		total += attempts

		if err != nil {
			var reqErr *translator.RequestError
			if errors.As(err, &reqErr) && reqErr.Reason == translator.ReasonMalformed && !strict {
				// One second chance with the strict prompt.
				lastErr = err
				continue
			}
			return "", total, err
		}

		if verr := p.validate(unit, result.TranslatedText, targetLang); verr != nil {
			log.WithError(verr).Debug("validation rejected translation")
			lastErr = &translator.RequestError{Reason: translator.ReasonMalformed, Err: verr}
			if strict {
				return "", total, lastErr
			}
			continue
		}

		return result.TranslatedText, total, nil
	}

	return "", total, lastErr
}

// validate applies the acceptance checks: non-empty output, placeholder
// tokens preserved byte for byte, and (when a validator is configured)
// plausibly the right language.
func (p *Pipeline) validate(unit platform.Unit, text, targetLang string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("empty translation")
	}

	if missing := placeholder.Missing(unit.Source, text); len(missing) > 0 {
		return fmt.Errorf("placeholders altered or dropped: %s", strings.Join(missing, ", "))
	}

	if p.cfg.Validator != nil {
		if ok, err := p.cfg.Validator.IsValid(text, targetLang); !ok {
			return fmt.Errorf("language check failed: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) writeUnit(ctx context.Context, unit platform.Unit, text string) (int, error) {
	return p.cfg.WriteRetry.Do(ctx, platform.Retryable, func() error {
		return p.client.WriteTarget(ctx, unit, text)
	})
}

// retryableRequest retries quota, network, and timeout failures. Malformed
// responses are handled by the strict-prompt pass instead.
func retryableRequest(err error) bool {
	var reqErr *translator.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Temporary()
	}
	return false
}

func isConflict(err error) bool {
	var conflict *platform.ConflictError
	return errors.As(err, &conflict)
}

func isAuth(err error) bool {
	var auth *platform.AuthError
	return errors.As(err, &auth)
}
