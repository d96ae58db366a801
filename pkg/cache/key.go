package cache

import (
	"fmt"
	"sort"
	"strings"
)

// Key identifies a cached TourAPI response or computed aggregate.
type Key struct {
	// Endpoint is the upstream operation (e.g. "areaBasedList2") or a
	// synthetic name for computed values (e.g. "stats:summary").
	Endpoint string

	// Query are the operation parameters that influenced the response.
	// The service key never belongs here.
	Query map[string]string
}

// String generates a deterministic cache key string.
// Format: tour:endpoint:param1=val1:param2=val2
func (k Key) String() string {
	parts := []string{"tour"}

	endpoint := strings.Trim(k.Endpoint, "/")
	if endpoint != "" {
		parts = append(parts, endpoint)
	}

	// Sorted for determinism
	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Query[name]))
		}
	}

	return strings.Join(parts, ":")
}
