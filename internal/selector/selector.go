// Package selector decides which units of a (component, language) pair need
// translation. It is the only place that interprets unit status, so the
// guarantee that translated and approved strings are never touched lives
// here.
package selector

import (
	"context"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/locflow/internal/platform"
)

// Options controls selection.
type Options struct {
	// IncludeNeedsReview also selects units the platform marks as needing
	// editing. Off by default: untranslated only.
	IncludeNeedsReview bool
}

// Select returns the units of component/language that require translation:
// status-filtered by the platform, deduplicated by key, with empty-source
// and read-only units dropped.
//
// Deduplication is defensive. The platform should return unique keys, but a
// duplicate must not cost a second LLM call.
func Select(ctx context.Context, client platform.Client, project, component, language string, opts Options) ([]platform.Unit, error) {
	filter := platform.DefaultFilter()
	filter.NeedsReview = opts.IncludeNeedsReview

	units, err := client.ListUnits(ctx, project, component, language, filter)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(units))
	out := units[:0]
	for _, unit := range units {
		if unit.ReadOnly || unit.Source == "" {
			continue
		}
		key := norm.NFC.String(unit.Key)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, unit)
	}
	return out, nil
}
