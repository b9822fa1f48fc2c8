package ledger

import (
	"fmt"
	"sort"
	"strings"
)

// Filter narrows check listings by exact column match. Keys must come
// from the filterable column whitelist; values are bound as SQL
// parameters. Keys are compiled in sorted order so the same filter
// always produces the same SQL text.
type Filter map[string]any

// filterColumns is the whitelist of filterable checks columns. Only
// identifiers need guarding here - values never reach the SQL text.
var filterColumns = map[string]bool{
	"claim":         true,
	"outcome":       true,
	"lesser":        true,
	"greater":       true,
	"lesser_depth":  true,
	"greater_depth": true,
}

// compileFilter renders a Filter into a conjunction of equality
// predicates plus the parameter values, in sorted key order. An empty
// filter compiles to an empty fragment.
func compileFilter(f Filter) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}

	keys := make([]string, 0, len(f))
	for k := range f {
		if !filterColumns[k] {
			return "", nil, fmt.Errorf("filter: unknown column %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(k)
		sb.WriteString(" = ?")
		args = append(args, f[k])
	}

	return sb.String(), args, nil
}
