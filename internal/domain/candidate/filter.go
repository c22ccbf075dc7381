package candidate

import (
	"math"
	"slices"
	"strings"
	"time"
)

const DefaultPageSize = 24

var allowedPageSizes = []int{24, 48, 96}

// Filter narrows the candidate listing. Empty fields do not filter.
type Filter struct {
	Search    string
	School    string
	Workplace string
}

// Normalize trims the search term so a whitespace-only search disappears.
// School and workplace are kept verbatim; they match stored names exactly.
func (f Filter) Normalize() Filter {
	f.Search = strings.TrimSpace(f.Search)
	return f
}

// AllowedPageSizes returns a copy of the accepted items-per-page values.
func AllowedPageSizes() []int {
	return slices.Clone(allowedPageSizes)
}

// NormalizePageSize maps anything outside the allow-list to DefaultPageSize.
func NormalizePageSize(size int) int {
	if slices.Contains(allowedPageSizes, size) {
		return size
	}
	return DefaultPageSize
}

func TotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// PageOffset returns the row offset of a 1-based page. It reports false when
// the offset does not fit in an int; such a page is past any real result.
func PageOffset(page, pageSize int) (int, bool) {
	if page < 1 || pageSize <= 0 {
		return 0, false
	}
	if page-1 > math.MaxInt/pageSize {
		return 0, false
	}
	return (page - 1) * pageSize, true
}

// Matches reports whether the summary satisfies the filter. Search is a
// case-insensitive substring match over name, headline and location; school
// and workplace compare exactly against the latest entries.
func (f Filter) Matches(s Summary) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		hay := []string{s.FirstName, s.LastName, s.Headline, s.City, s.Country}
		found := false
		for _, h := range hay {
			if strings.Contains(strings.ToLower(h), needle) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.School != "" && s.LatestSchool != f.School {
		return false
	}
	if f.Workplace != "" && s.LatestCompany != f.Workplace {
		return false
	}
	return true
}

// EscapeLike escapes LIKE wildcards so the term is matched literally.
func EscapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// period is the slice of an entry that decides which one is latest.
type period struct {
	id    int64
	start *time.Time
	end   *time.Time
}

// moreRecent orders entries latest-first: ongoing before ended, then later
// start, then later end, then lower id.
func moreRecent(a, b period) bool {
	if (a.end == nil) != (b.end == nil) {
		return a.end == nil
	}
	if c := compareNullableDesc(a.start, b.start); c != 0 {
		return c < 0
	}
	if c := compareNullableDesc(a.end, b.end); c != 0 {
		return c < 0
	}
	return a.id < b.id
}

// compareNullableDesc sorts later dates first and missing dates last.
func compareNullableDesc(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.After(*b):
		return -1
	case b.After(*a):
		return 1
	}
	return 0
}

func SortPositionsLatestFirst(ps []Position) {
	slices.SortStableFunc(ps, func(a, b Position) int {
		return cmpPeriods(period{a.ID, a.StartDate, a.EndDate}, period{b.ID, b.StartDate, b.EndDate})
	})
}

func SortEducationsLatestFirst(es []Education) {
	slices.SortStableFunc(es, func(a, b Education) int {
		return cmpPeriods(period{a.ID, a.StartDate, a.EndDate}, period{b.ID, b.StartDate, b.EndDate})
	})
}

func cmpPeriods(a, b period) int {
	if moreRecent(a, b) {
		return -1
	}
	if moreRecent(b, a) {
		return 1
	}
	return 0
}

// LatestPosition returns the most recent position, or false when there is none.
func LatestPosition(ps []Position) (Position, bool) {
	if len(ps) == 0 {
		return Position{}, false
	}
	sorted := slices.Clone(ps)
	SortPositionsLatestFirst(sorted)
	return sorted[0], true
}

// LatestEducation returns the most recent education, or false when there is none.
func LatestEducation(es []Education) (Education, bool) {
	if len(es) == 0 {
		return Education{}, false
	}
	sorted := slices.Clone(es)
	SortEducationsLatestFirst(sorted)
	return sorted[0], true
}
