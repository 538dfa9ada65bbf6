// Package resolver expands CLI selectors into the concrete
// (component, language) pairs a run processes.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/valpere/locflow/internal/platform"
)

// Wildcard in a selector list means "everything the project has".
const Wildcard = "*"

// Pair is one unit of pipeline work.
type Pair struct {
	Component platform.Component
	Language  platform.Language
}

// ConfigError means the run's selectors do not match the platform: unknown
// project, component, or language. Fatal before any translation starts.
type ConfigError struct {
	Detail string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Detail, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Detail)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Dropped records a component that vanished between listing and language
// enumeration. Its pairs cannot be resolved; sibling components are
// unaffected.
type Dropped struct {
	Component string
	Err       error
}

// Resolve expands component and language selectors against the platform
// into the cross-product of matching pairs. Selector matching is
// case-insensitive; an empty list or a "*" entry selects all.
//
// A named component that does not exist is a ConfigError. A named language
// is tolerated when missing from an individual component (components do not
// all serve the same locales) but is a ConfigError when it matches nothing
// across the whole project. An empty result from wildcard expansion is a
// valid no-op, not an error.
//
// A component whose language enumeration answers not-found vanished after
// it was listed; it is returned as Dropped and its siblings still resolve.
//
// Pair order is stable: components in platform listing order, languages in
// selector order (platform order under a wildcard).
func Resolve(ctx context.Context, client platform.Client, project string, componentSelectors, languageSelectors []string) ([]Pair, []Dropped, error) {
	components, err := client.ListComponents(ctx, project)
	if err != nil {
		switch err.(type) {
		case *platform.NotFoundError:
			return nil, nil, &ConfigError{Detail: fmt.Sprintf("project %q does not exist", project), Err: err}
		default:
			return nil, nil, err
		}
	}

	components, err = filterComponents(components, componentSelectors)
	if err != nil {
		return nil, nil, err
	}

	wild := isWildcard(languageSelectors)
	matched := make(map[string]bool, len(languageSelectors))

	var pairs []Pair
	var dropped []Dropped
	for _, comp := range components {
		available, err := client.ListLanguages(ctx, project, comp.Slug)
		if err != nil {
			if isNotFound(err) {
				dropped = append(dropped, Dropped{Component: comp.Slug, Err: err})
				continue
			}
			return nil, dropped, err
		}

		var languages []platform.Language
		if wild {
			languages = available
		} else {
			byCode := make(map[string]platform.Language, len(available))
			for _, lang := range available {
				byCode[strings.ToLower(lang.Code)] = lang
			}
			for _, sel := range languageSelectors {
				lang, ok := byCode[strings.ToLower(sel)]
				if !ok {
					continue
				}
				matched[strings.ToLower(sel)] = true
				languages = append(languages, lang)
			}
		}

		for _, lang := range languages {
			pairs = append(pairs, Pair{Component: comp, Language: lang})
		}
	}

	if !wild && len(components) > len(dropped) {
		for _, sel := range languageSelectors {
			if !matched[strings.ToLower(sel)] {
				return nil, dropped, &ConfigError{Detail: fmt.Sprintf("language %q does not exist in project %q", sel, project)}
			}
		}
	}

	return pairs, dropped, nil
}

func isNotFound(err error) bool {
	var notFound *platform.NotFoundError
	return errors.As(err, &notFound)
}

func isWildcard(selectors []string) bool {
	if len(selectors) == 0 {
		return true
	}
	for _, s := range selectors {
		if s == Wildcard {
			return true
		}
	}
	return false
}

func filterComponents(components []platform.Component, selectors []string) ([]platform.Component, error) {
	if isWildcard(selectors) {
		return components, nil
	}

	bySlug := make(map[string]platform.Component, len(components))
	for _, comp := range components {
		bySlug[strings.ToLower(comp.Slug)] = comp
	}

	out := make([]platform.Component, 0, len(selectors))
	for _, sel := range selectors {
		comp, ok := bySlug[strings.ToLower(sel)]
		if !ok {
			return nil, &ConfigError{Detail: fmt.Sprintf("component %q does not exist", sel)}
		}
		out = append(out, comp)
	}
	return out, nil
}
