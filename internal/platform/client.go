package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// glossarySlug is the platform's builtin terminology component, which never
// contains ordinary translatable strings and is always skipped.
const glossarySlug = "glossary"

// Client is the read/write surface of the translation-management platform.
// WriteTarget is the only call with a durable side effect.
type Client interface {
	ListComponents(ctx context.Context, project string) ([]Component, error)
	ListLanguages(ctx context.Context, project, component string) ([]Language, error)
	ListUnits(ctx context.Context, project, component, language string, filter StatusFilter) ([]Unit, error)
	WriteTarget(ctx context.Context, unit Unit, translated string) error
}

// HTTPClient talks to a Weblate-compatible REST API.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPClient creates a platform client. timeout bounds each request;
// zero means 30 seconds.
func NewHTTPClient(baseURL, apiKey string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// page is the platform's standard paginated envelope.
type page[T any] struct {
	Next    string `json:"next"`
	Results []T    `json:"results"`
}

func (c *HTTPClient) get(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return &TransientError{Err: err}
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp, rawURL); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientError{Err: fmt.Errorf("decoding %s: %w", rawURL, err)}
	}
	return nil
}

func (c *HTTPClient) checkStatus(resp *http.Response, rawURL string) error {
	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Status: resp.StatusCode}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{Resource: rawURL}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp)}
	case resp.StatusCode >= 500:
		return &TransientError{Err: fmt.Errorf("platform returned status %d", resp.StatusCode)}
	default:
		return &TransientError{Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)}
	}
}

// parseRetryAfter reads the Retry-After header of a 429 response.
func parseRetryAfter(resp *http.Response) time.Duration {
	v := resp.Header.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// collect drains a paginated listing starting at rawURL.
func collect[T any](ctx context.Context, c *HTTPClient, rawURL string) ([]T, error) {
	var all []T
	for rawURL != "" {
		var p page[T]
		if err := c.get(ctx, rawURL, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Results...)
		rawURL = p.Next
	}
	return all, nil
}

// ListComponents returns the project's components, excluding the builtin
// glossary component.
func (c *HTTPClient) ListComponents(ctx context.Context, project string) ([]Component, error) {
	u := fmt.Sprintf("%s/api/projects/%s/components/", c.baseURL, url.PathEscape(project))
	comps, err := collect[Component](ctx, c, u)
	if err != nil {
		return nil, err
	}

	out := comps[:0]
	for _, comp := range comps {
		if strings.EqualFold(comp.Slug, glossarySlug) {
			continue
		}
		comp.Project = project
		out = append(out, comp)
	}
	return out, nil
}

// ListLanguages returns the target languages configured for a component.
func (c *HTTPClient) ListLanguages(ctx context.Context, project, component string) ([]Language, error) {
	u := fmt.Sprintf("%s/api/components/%s/%s/translations/",
		c.baseURL, url.PathEscape(project), url.PathEscape(component))

	type translation struct {
		Language Language `json:"language"`
	}
	trs, err := collect[translation](ctx, c, u)
	if err != nil {
		return nil, err
	}

	langs := make([]Language, 0, len(trs))
	for _, tr := range trs {
		langs = append(langs, tr.Language)
	}
	return langs, nil
}

// ListUnits returns the component's units for a language, keeping only
// those matching the filter. The platform defines no ordering; callers
// must treat the result as arbitrary.
func (c *HTTPClient) ListUnits(ctx context.Context, project, component, language string, filter StatusFilter) ([]Unit, error) {
	u := fmt.Sprintf("%s/api/translations/%s/%s/%s/units/",
		c.baseURL, url.PathEscape(project), url.PathEscape(component), url.PathEscape(language))

	units, err := collect[Unit](ctx, c, u)
	if err != nil {
		return nil, err
	}

	out := units[:0]
	for _, unit := range units {
		if !filter.Matches(unit.State) {
			continue
		}
		unit.Component = component
		unit.Language = language
		out = append(out, unit)
	}
	return out, nil
}

// WriteTarget writes translated text into the unit's target. The unit's
// previously read state is sent as an optimistic guard; the platform
// answers 409 when the unit changed in the meantime.
func (c *HTTPClient) WriteTarget(ctx context.Context, unit Unit, translated string) error {
	u := fmt.Sprintf("%s/api/units/%d/", c.baseURL, unit.ID)

	body, err := json.Marshal(map[string]interface{}{
		"target":         []string{translated},
		"state":          int(StatusTranslated),
		"expected_state": int(unit.State),
	})
	if err != nil {
		return &TransientError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, u, bytes.NewReader(body))
	if err != nil {
		return &TransientError{Err: err}
	}
	req.Header.Set("Authorization", "Token "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusConflict {
		return &ConflictError{UnitKey: unit.Key}
	}
	return c.checkStatus(resp, u)
}
