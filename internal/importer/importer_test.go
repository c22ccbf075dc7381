package importer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/candidate-dashboard/adapters/memory"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

func TestDatePartsToDate(t *testing.T) {
	day := func(y int, m time.Month, d int) *time.Time {
		v := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &v
	}
	cases := []struct {
		name string
		in   *DateParts
		want *time.Time
	}{
		{"nil", nil, nil},
		{"zero year", &DateParts{Month: 5, Day: 3}, nil},
		{"year only", &DateParts{Year: 2019}, day(2019, time.January, 1)},
		{"year and month", &DateParts{Year: 2019, Month: 7}, day(2019, time.July, 1)},
		{"full", &DateParts{Year: 2020, Month: 2, Day: 29}, day(2020, time.February, 29)},
		{"feb 30", &DateParts{Year: 2021, Month: 2, Day: 30}, nil},
		{"month 13", &DateParts{Year: 2021, Month: 13}, nil},
		{"negative day", &DateParts{Year: 2021, Month: 1, Day: -1}, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.in.ToDate())
		})
	}
}

const adaJSON = `{
  "id": 9001,
  "firstName": "Ada",
  "lastName": "Lovelace",
  "headline": "Analyst",
  "geo": {"country": "United Kingdom", "city": "London", "countryCode": "GB"},
  "educations": [
    {"schoolName": "Cambridge", "degree": "BA", "start": {"year": 2015, "month": 9}, "end": {"year": 2019}}
  ],
  "position": [
    {"companyId": 77, "companyName": "Babbage Ltd", "title": "Engineer", "start": {"year": 2019, "month": 7, "day": 0}, "end": {"year": 0}}
  ],
  "skills": [{"name": "Math"}, {"name": ""}],
  "honors": [{"title": "Fellow"}, {"title": ""}]
}`

func TestParseProfile(t *testing.T) {
	d, err := ParseProfile([]byte(adaJSON))
	require.NoError(t, err)

	assert.Equal(t, int64(9001), d.Candidate.LinkedInID)
	assert.Equal(t, "London", d.Candidate.City)
	assert.Equal(t, "GB", d.Candidate.CountryCode)
	require.Len(t, d.Educations, 1)
	require.NotNil(t, d.Educations[0].StartDate)
	assert.Equal(t, time.September, d.Educations[0].StartDate.Month())
	require.Len(t, d.Positions, 1)
	assert.Equal(t, int64(77), d.Positions[0].CompanyID)
	assert.Nil(t, d.Positions[0].EndDate)
	assert.Len(t, d.Skills, 1)
	assert.Len(t, d.Honors, 1)
}

func TestParseProfile_Rejects(t *testing.T) {
	_, err := ParseProfile([]byte(`{"firstName": "NoID"}`))
	assert.ErrorIs(t, err, ErrMissingProfileID)

	_, err = ParseProfile([]byte(`{`))
	assert.Error(t, err)
}

func TestValidateProfile(t *testing.T) {
	require.NoError(t, ValidateProfile([]byte(adaJSON)))

	err := ValidateProfile([]byte(`{"id": "9001", "educations": [{"start": {"year": "2019"}}]}`))
	var se *SchemaError
	require.ErrorAs(t, err, &se)
	assert.GreaterOrEqual(t, len(se.Violations), 2)

	err = ValidateProfile([]byte(`{"firstName": "NoID"}`))
	require.ErrorAs(t, err, &se)
	assert.Contains(t, se.Error(), "id")
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestImportDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", adaJSON)
	writeFile(t, dir, "b.json", adaJSON)
	writeFile(t, dir, "c.json", `{"id": 9002, "firstName": "Alan", "lastName": "Turing"}`)
	writeFile(t, dir, "d.json", `not json`)
	writeFile(t, dir, "e.json", `{"id": -4}`)
	writeFile(t, dir, "notes.txt", `ignored`)

	repo := memory.New().Candidates()
	im := New(repo, logger.NewNop())

	report, err := im.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Examined)
	assert.Equal(t, 2, report.Imported)
	assert.Equal(t, 1, report.Skipped)
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Errors, 2)
	assert.Contains(t, report.Errors[0], "d.json")
	assert.Contains(t, report.Errors[1], "e.json")

	stats, err := repo.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ProfileCount)

	again, err := im.ImportDir(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Imported)
	assert.Equal(t, 3, again.Skipped)
}
