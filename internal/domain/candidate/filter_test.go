package candidate

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month) *time.Time {
	t := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNormalizePageSize(t *testing.T) {
	cases := map[int]int{24: 24, 48: 48, 96: 96, 0: 24, -1: 24, 25: 24, 100: 24}
	for in, want := range cases {
		assert.Equal(t, want, NormalizePageSize(in), "size %d", in)
	}
	assert.Equal(t, []int{24, 48, 96}, AllowedPageSizes())
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 24))
	assert.Equal(t, 1, TotalPages(24, 24))
	assert.Equal(t, 2, TotalPages(25, 24))
	assert.Equal(t, 3, TotalPages(97, 48))
}

func TestLatestEducation_OngoingBeatsEnded(t *testing.T) {
	es := []Education{
		{ID: 1, SchoolName: "Late Start Ended", StartDate: date(2022, 1), EndDate: date(2023, 1)},
		{ID: 2, SchoolName: "Ongoing", StartDate: date(2010, 1)},
	}
	got, ok := LatestEducation(es)
	assert.True(t, ok)
	assert.Equal(t, "Ongoing", got.SchoolName)
}

func TestLatestEducation_LaterStartWins(t *testing.T) {
	es := []Education{
		{ID: 1, SchoolName: "Old", StartDate: date(2010, 1), EndDate: date(2020, 1)},
		{ID: 2, SchoolName: "New", StartDate: date(2015, 1), EndDate: date(2016, 1)},
	}
	got, _ := LatestEducation(es)
	assert.Equal(t, "New", got.SchoolName)
}

func TestLatestPosition_TieBreaks(t *testing.T) {
	ps := []Position{
		{ID: 3, CompanyName: "Same start, earlier end", StartDate: date(2020, 1), EndDate: date(2021, 1)},
		{ID: 2, CompanyName: "Same start, later end", StartDate: date(2020, 1), EndDate: date(2022, 1)},
		{ID: 1, CompanyName: "No start", EndDate: date(2024, 1)},
	}
	got, _ := LatestPosition(ps)
	assert.Equal(t, "Same start, later end", got.CompanyName)

	twins := []Position{
		{ID: 9, CompanyName: "B", StartDate: date(2020, 1)},
		{ID: 4, CompanyName: "A", StartDate: date(2020, 1)},
	}
	got, _ = LatestPosition(twins)
	assert.Equal(t, "A", got.CompanyName, "lowest id wins on a full tie")
}

func TestLatestPosition_Empty(t *testing.T) {
	_, ok := LatestPosition(nil)
	assert.False(t, ok)
}

func TestLatestPosition_DoesNotReorderInput(t *testing.T) {
	ps := []Position{
		{ID: 1, StartDate: date(2010, 1), EndDate: date(2011, 1)},
		{ID: 2, StartDate: date(2020, 1)},
	}
	LatestPosition(ps)
	assert.Equal(t, int64(1), ps[0].ID)
}

func TestFilter_Matches(t *testing.T) {
	s := Summary{
		FirstName: "Ada", LastName: "Lovelace", Headline: "Analytical Engine Programmer",
		City: "London", Country: "United Kingdom",
		LatestSchool: "University of London", LatestCompany: "Babbage & Co",
	}

	assert.True(t, Filter{}.Matches(s))
	assert.True(t, Filter{Search: "ada"}.Matches(s))
	assert.True(t, Filter{Search: "LOVE"}.Matches(s))
	assert.True(t, Filter{Search: "engine"}.Matches(s))
	assert.True(t, Filter{Search: "london"}.Matches(s))
	assert.False(t, Filter{Search: "turing"}.Matches(s))
	assert.True(t, Filter{School: "University of London"}.Matches(s))
	assert.False(t, Filter{School: "university of london"}.Matches(s))
	assert.True(t, Filter{Workplace: "Babbage & Co"}.Matches(s))
	assert.False(t, Filter{Workplace: "Babbage"}.Matches(s))
}

func TestFilter_NormalizeBlankSearch(t *testing.T) {
	f := Filter{Search: "   \t", School: " MIT ", Workplace: "Acme "}.Normalize()
	assert.Equal(t, "", f.Search)
	assert.Equal(t, " MIT ", f.School)
	assert.Equal(t, "Acme ", f.Workplace)
}

func TestFilter_PaddedSchoolStillSelectable(t *testing.T) {
	s := Summary{LatestSchool: "MIT ", LatestCompany: " Acme"}
	assert.True(t, Filter{School: "MIT "}.Normalize().Matches(s))
	assert.True(t, Filter{Workplace: " Acme"}.Normalize().Matches(s))
	assert.False(t, Filter{School: "MIT"}.Normalize().Matches(s))
}

func TestPageOffset(t *testing.T) {
	off, ok := PageOffset(1, 24)
	assert.True(t, ok)
	assert.Equal(t, 0, off)

	off, ok = PageOffset(3, 48)
	assert.True(t, ok)
	assert.Equal(t, 96, off)

	_, ok = PageOffset(math.MaxInt/10, 24)
	assert.False(t, ok)

	_, ok = PageOffset(math.MaxInt, 96)
	assert.False(t, ok)

	_, ok = PageOffset(0, 24)
	assert.False(t, ok)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%`, EscapeLike("100%"))
	assert.Equal(t, `a\_b`, EscapeLike("a_b"))
	assert.Equal(t, `c:\\dir`, EscapeLike(`c:\dir`))
	assert.Equal(t, "plain", EscapeLike("plain"))
}
