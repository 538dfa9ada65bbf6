package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPClient(server.URL, "test-key", 5*time.Second), server
}

func TestHTTPClient_ListComponents(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/projects/app/components/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Token test-key" {
			t.Errorf("unexpected auth header: %q", got)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{
				{"slug": "frontend", "name": "Frontend"},
				{"slug": "glossary", "name": "Glossary"},
				{"slug": "backend", "name": "Backend"},
			},
		})
	})

	comps, err := client.ListComponents(context.Background(), "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("expected 2 components (glossary skipped), got %d", len(comps))
	}
	if comps[0].Slug != "frontend" || comps[1].Slug != "backend" {
		t.Errorf("unexpected components: %+v", comps)
	}
	if comps[0].Project != "app" {
		t.Errorf("expected project to be filled in, got %q", comps[0].Project)
	}
}

func TestHTTPClient_ListComponents_Pagination(t *testing.T) {
	var server *httptest.Server
	calls := 0
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"next":    server.URL + "/api/projects/app/components/?page=2",
				"results": []map[string]string{{"slug": "one"}},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]string{{"slug": "two"}},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, "k", time.Second)
	comps, err := client.ListComponents(context.Background(), "app")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(comps) != 2 {
		t.Fatalf("expected 2 components across pages, got %d", len(comps))
	}
	if calls != 2 {
		t.Errorf("expected 2 requests, got %d", calls)
	}
}

func TestHTTPClient_ListComponents_Auth(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := client.ListComponents(context.Background(), "app")
	if _, ok := err.(*AuthError); !ok {
		t.Fatalf("expected *AuthError, got %T: %v", err, err)
	}
}

func TestHTTPClient_ListComponents_NotFound(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.ListComponents(context.Background(), "missing")
	if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected *NotFoundError, got %T: %v", err, err)
	}
}

func TestHTTPClient_ListUnits_Filter(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"results": []map[string]interface{}{
				{"id": 1, "context": "hello", "source": "Hello", "state": 0},
				{"id": 2, "context": "done", "source": "Done", "state": 20},
				{"id": 3, "context": "fuzzy", "source": "Fuzzy", "state": 10},
				{"id": 4, "context": "approved", "source": "Approved", "state": 30},
			},
		})
	})

	units, err := client.ListUnits(context.Background(), "app", "frontend", "es", DefaultFilter())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected only the untranslated unit, got %d", len(units))
	}
	if units[0].Key != "hello" {
		t.Errorf("unexpected unit: %+v", units[0])
	}

	units, err = client.ListUnits(context.Background(), "app", "frontend", "es",
		StatusFilter{Untranslated: true, NeedsReview: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected untranslated+needs-review units, got %d", len(units))
	}
}

func TestHTTPClient_WriteTarget(t *testing.T) {
	var gotBody map[string]interface{}
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("expected PATCH, got %s", r.Method)
		}
		if r.URL.Path != "/api/units/42/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("{}"))
	})

	unit := Unit{ID: 42, Key: "hello", Source: "Hello", State: StatusUntranslated}
	if err := client.WriteTarget(context.Background(), unit, "Hola"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	targets, ok := gotBody["target"].([]interface{})
	if !ok || len(targets) != 1 || targets[0] != "Hola" {
		t.Errorf("unexpected target payload: %v", gotBody["target"])
	}
	if gotBody["expected_state"] != float64(StatusUntranslated) {
		t.Errorf("expected optimistic state guard, got %v", gotBody["expected_state"])
	}
}

func TestHTTPClient_WriteTarget_Conflict(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	err := client.WriteTarget(context.Background(), Unit{ID: 1, Key: "k"}, "x")
	conflict, ok := err.(*ConflictError)
	if !ok {
		t.Fatalf("expected *ConflictError, got %T: %v", err, err)
	}
	if conflict.UnitKey != "k" {
		t.Errorf("expected unit key in conflict, got %q", conflict.UnitKey)
	}
}

func TestHTTPClient_WriteTarget_RateLimit(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	err := client.WriteTarget(context.Background(), Unit{ID: 1}, "x")
	rl, ok := err.(*RateLimitError)
	if !ok {
		t.Fatalf("expected *RateLimitError, got %T: %v", err, err)
	}
	if rl.RetryAfter != 7*time.Second {
		t.Errorf("expected Retry-After of 7s, got %s", rl.RetryAfter)
	}
	if !Retryable(err) {
		t.Error("rate limit errors should be retryable")
	}
}

func TestHTTPClient_WriteTarget_ServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	err := client.WriteTarget(context.Background(), Unit{ID: 1}, "x")
	if _, ok := err.(*TransientError); !ok {
		t.Fatalf("expected *TransientError, got %T: %v", err, err)
	}
	if !Retryable(err) {
		t.Error("5xx errors should be retryable")
	}
}

func TestRetryable_Permanent(t *testing.T) {
	if Retryable(&ConflictError{UnitKey: "k"}) {
		t.Error("conflicts must not be retried")
	}
	if Retryable(&NotFoundError{Resource: "r"}) {
		t.Error("not-found must not be retried")
	}
	if Retryable(&AuthError{Status: 401}) {
		t.Error("auth failures must not be retried")
	}
}
