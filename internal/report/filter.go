package report

import "strings"

// FilterAll is the sentinel that disables a categorical filter.
const FilterAll = "all"

// Query is a free-text search combined with zero or more categorical
// filters. Both apply (logical AND) when both are set.
type Query struct {
	Search  string
	Filters map[string]string
}

// Filter returns the subset of records matching q, preserving the original
// relative order. searchFields yields the text fields a record is searched
// over; categories yields its categorical values keyed the same way as
// q.Filters. The result is always recomputed from the full source list.
func Filter[T any](records []T, q Query, searchFields func(T) []string, categories func(T) map[string]string) []T {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]T, 0, len(records))
	for _, rec := range records {
		if term != "" && !matchesSearch(searchFields(rec), term) {
			continue
		}
		if !matchesFilters(categories, rec, q.Filters) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func matchesSearch(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](categories func(T) map[string]string, rec T, filters map[string]string) bool {
	if len(filters) == 0 {
		return true
	}
	cats := categories(rec)
	for key, want := range filters {
		if want == "" || want == FilterAll {
			continue
		}
		if cats[key] != want {
			return false
		}
	}
	return true
}
