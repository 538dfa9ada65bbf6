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
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/valpere/locflow/internal/platform"
	"github.com/valpere/locflow/internal/translator"
)

// Credentials come from the environment (LOCFLOW_PLATFORM_URL and friends),
// never from flags, so they stay out of shell history.
func init() {
	viper.SetEnvPrefix("LOCFLOW")
	viper.AutomaticEnv()
}

func newLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// buildPlatformClient resolves the platform endpoint and API key from the
// environment.
func buildPlatformClient(timeout time.Duration) (*platform.HTTPClient, error) {
	baseURL := viper.GetString("platform_url")
	if baseURL == "" {
		return nil, fmt.Errorf("platform URL not configured (set LOCFLOW_PLATFORM_URL)")
	}
	apiKey := viper.GetString("platform_key")
	if apiKey == "" {
		return nil, fmt.Errorf("platform API key not configured (set LOCFLOW_PLATFORM_KEY)")
	}
	return platform.NewHTTPClient(baseURL, apiKey, timeout), nil
}

// buildRequestor constructs the translation backend named by service.
func buildRequestor(service string, timeout time.Duration) (translator.Requestor, error) {
	switch service {
	case "openrouter":
		return translator.NewOpenRouterRequestor(translator.Config{
			APIKey:  viper.GetString("openrouter_key"),
			BaseURL: viper.GetString("openrouter_url"),
			Timeout: timeout,
		}), nil
	case "ollama":
		return translator.NewOllamaRequestor(translator.Config{
			BaseURL: viper.GetString("ollama_url"),
			Model:   viper.GetString("ollama_model"),
			Timeout: timeout,
		}), nil
	case "google":
		return translator.NewGoogleRequestor(translator.Config{
			Credentials: viper.GetString("google_credentials"),
		}), nil
	default:
		return nil, fmt.Errorf("unknown service: %s (supported: openrouter, ollama, google)", service)
	}
}
