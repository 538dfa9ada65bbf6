/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/valpere/locflow/internal/journal"
	"github.com/valpere/locflow/internal/pipeline"
	"github.com/valpere/locflow/internal/platform"
	"github.com/valpere/locflow/internal/resolver"
	"github.com/valpere/locflow/internal/validator"
)

var (
	runProject       string
	runComponents    []string
	runLanguages     []string
	runService       string
	runSourceLang    string
	runIncludeReview bool
	runDryRun        bool
	runCheckLanguage bool
	runMaxAttempts   int
	runTimeout       time.Duration
	runDBPath        string
	runVerbose       bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Translate pending strings and write them back",
	Long: `Pull untranslated strings for the selected project, translate each one
with the configured backend, and write the results back.

Component and language selectors accept "*" to mean everything the project
serves. Units a human already translated or approved are never touched;
a unit edited on the platform mid-run is skipped, not overwritten.

Per-unit failures never abort the run. The summary is always printed, even
after Ctrl-C, and the exit status is non-zero only for bad selectors or
rejected credentials.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger(runVerbose)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		client, err := buildPlatformClient(runTimeout)
		if err != nil {
			return err
		}
		requestor, err := buildRequestor(runService, runTimeout)
		if err != nil {
			return err
		}
		if err := requestor.IsAvailable(ctx); err != nil {
			return fmt.Errorf("backend %s unavailable: %w", runService, err)
		}

		pairs, dropped, err := resolver.Resolve(ctx, client, runProject, runComponents, runLanguages)
		if err != nil {
			if fatalRunError(err) {
				return err
			}
			// Transient platform trouble before any unit was touched.
			// Still print a summary: nothing was attempted.
			log.WithError(err).Error("could not resolve run scope")
			report := pipeline.NewRunReport()
			report.RecordPairError(resolver.Wildcard, resolver.Wildcard, err)
			report.Finish()
			report.Print(os.Stdout)
			return nil
		}
		for _, d := range dropped {
			log.WithError(d.Err).WithField("component", d.Component).Warn("component vanished during resolution, skipping")
		}
		if len(pairs) == 0 && len(dropped) == 0 {
			fmt.Println("Nothing to do: no matching component/language pairs.")
			return nil
		}

		cfg := pipeline.Config{
			SourceLang:         runSourceLang,
			IncludeNeedsReview: runIncludeReview,
			RequestRetry:       retryPolicy(runMaxAttempts),
			WriteRetry:         retryPolicy(runMaxAttempts),
			DryRun:             runDryRun,
			Logger:             log,
		}
		if runCheckLanguage {
			// Narrow detection to the locales this run touches plus the
			// source language; the detector builds faster and separates
			// close languages better.
			codes := []string{runSourceLang}
			for _, pair := range pairs {
				codes = append(codes, pair.Language.Code)
			}
			cfg.Validator = validator.NewForLanguages(codes...)
		}

		report := pipeline.New(client, requestor, cfg).Run(ctx, pairs)
		for _, d := range dropped {
			report.RecordPairError(d.Component, resolver.Wildcard, d.Err)
		}
		report.Print(os.Stdout)

		if runDBPath != "" {
			saveToJournal(log, report)
		}
		if report.Fatal != nil {
			return fmt.Errorf("run aborted: %w", report.Fatal)
		}
		return nil
	},
}

func retryPolicy(maxAttempts int) pipeline.RetryPolicy {
	p := pipeline.DefaultRetryPolicy()
	if maxAttempts > 0 {
		p.MaxAttempts = maxAttempts
	}
	return p
}

// fatalRunError reports whether err means the run was misconfigured and the
// process should exit non-zero.
func fatalRunError(err error) bool {
	var cfgErr *resolver.ConfigError
	var authErr *platform.AuthError
	return errors.As(err, &cfgErr) || errors.As(err, &authErr)
}

// saveToJournal is best effort: a journaling failure must not turn a
// finished run into a reported failure.
func saveToJournal(log *logrus.Logger, report *pipeline.RunReport) {
	j, err := journal.New(runDBPath)
	if err != nil {
		log.Errorf("journal unavailable: %v", err)
		return
	}
	defer j.Close()

	// Journal writes use a fresh context so a Ctrl-C that canceled the run
	// does not also lose its record.
	runID, err := j.SaveReport(context.Background(), journal.Meta{
		Project:    runProject,
		Components: runComponents,
		Languages:  runLanguages,
		Service:    runService,
		DryRun:     runDryRun,
	}, report)
	if err != nil {
		log.Errorf("failed to journal run: %v", err)
		return
	}
	fmt.Printf("Journaled run %s\n", runID)
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runProject, "project", "p", "", "Project slug on the platform (required)")
	runCmd.Flags().StringSliceVar(&runComponents, "components", []string{resolver.Wildcard}, "Component slugs to process, or * for all")
	runCmd.Flags().StringSliceVar(&runLanguages, "languages", []string{resolver.Wildcard}, "Language codes to process, or * for all")
	runCmd.Flags().StringVar(&runService, "service", "openrouter", "Translation backend (openrouter, ollama, google)")
	runCmd.Flags().StringVarP(&runSourceLang, "source-lang", "s", "en", "Language the source strings are authored in")
	runCmd.Flags().BoolVar(&runIncludeReview, "include-needs-review", false, "Also retranslate units waiting for review")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Translate and validate but never write back")
	runCmd.Flags().BoolVar(&runCheckLanguage, "check-language", true, "Reject output that is not in the target language")
	runCmd.Flags().IntVar(&runMaxAttempts, "max-attempts", 0, "Total attempts per request including the first (0 = default)")
	runCmd.Flags().DurationVar(&runTimeout, "timeout", 30*time.Second, "Per-request timeout")
	runCmd.Flags().StringVar(&runDBPath, "db", "", "Journal database path (empty = no journal)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Per-attempt debug logging")

	runCmd.MarkFlagRequired("project")
}
