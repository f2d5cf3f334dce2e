// Package formgroup reads repeated field groups out of flat form values.
//
// Both spellings are accepted for a group named "siblings":
//
//	siblings[0].name=Asha
//	siblings[0][name]=Asha
package formgroup

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Group is one indexed entry, keyed by field name. Values are trimmed.
type Group map[string]string

// Get returns the trimmed value of field, or "".
func (g Group) Get(field string) string {
	return g[field]
}

func keyPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(prefix) + `\[(\d+)\](?:\.([A-Za-z0-9_]+)|\[([A-Za-z0-9_]+)\])$`)
}

// Parse collects the groups named prefix from values.
//
// Every key matching prefix[i].field or prefix[i][field] is grouped by i. Only the
// contiguous run of indices starting at 0 is returned: the first missing index ends
// the list, so siblings[0] and siblings[2] yield a single group.
func Parse(values map[string][]string, prefix string) []Group {
	re := keyPattern(prefix)

	indexed := map[int]Group{}
	for key, vals := range values {
		m := re.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx < 0 {
			continue
		}
		field := m[2]
		if field == "" {
			field = m[3]
		}
		if _, ok := indexed[idx]; !ok {
			indexed[idx] = Group{}
		}
		indexed[idx][field] = strings.TrimSpace(vals[0])
	}

	return contiguous(indexed)
}

// Indices lists the group indices present for prefix, sorted ascending.
func Indices(values map[string][]string, prefix string) []int {
	re := keyPattern(prefix)
	seen := map[int]struct{}{}
	for key := range values {
		m := re.FindStringSubmatch(key)
		if m == nil {
			continue
		}
		if idx, err := strconv.Atoi(m[1]); err == nil {
			seen[idx] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

func contiguous(indexed map[int]Group) []Group {
	out := make([]Group, 0, len(indexed))
	for i := 0; ; i++ {
		g, ok := indexed[i]
		if !ok {
			break
		}
		out = append(out, g)
	}
	return out
}
