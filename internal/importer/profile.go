package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
)

var ErrMissingProfileID = errors.New("profile has no linkedin id")

// DateParts is the year/month/day object used for education and position
// boundaries in scraped profiles.
type DateParts struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// ToDate converts parts to a date. A zero year means no date, a zero month
// or day defaults to 1 and impossible dates yield nil.
func (p *DateParts) ToDate() *time.Time {
	if p == nil || p.Year == 0 {
		return nil
	}
	month, day := p.Month, p.Day
	if month == 0 {
		month = 1
	}
	if day == 0 {
		day = 1
	}
	if month < 1 || month > 12 || day < 1 || p.Year < 1 {
		return nil
	}
	t := time.Date(p.Year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow such as Feb 30.
	if t.Year() != p.Year || int(t.Month()) != month || t.Day() != day {
		return nil
	}
	return &t
}

type rawProfile struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Headline  string `json:"headline"`
	Geo       *struct {
		Country     string `json:"country"`
		City        string `json:"city"`
		CountryCode string `json:"countryCode"`
	} `json:"geo"`
	Educations []struct {
		SchoolName   string     `json:"schoolName"`
		SchoolID     string     `json:"schoolId"`
		FieldOfStudy string     `json:"fieldOfStudy"`
		Degree       string     `json:"degree"`
		Description  string     `json:"description"`
		Activities   string     `json:"activities"`
		Start        *DateParts `json:"start"`
		End          *DateParts `json:"end"`
	} `json:"educations"`
	Positions []struct {
		CompanyID      int64      `json:"companyId"`
		CompanyName    string     `json:"companyName"`
		Title          string     `json:"title"`
		Location       string     `json:"location"`
		Description    string     `json:"description"`
		EmploymentType string     `json:"employmentType"`
		Start          *DateParts `json:"start"`
		End            *DateParts `json:"end"`
	} `json:"position"`
	Skills []struct {
		Name string `json:"name"`
	} `json:"skills"`
	Honors []struct {
		Title string `json:"title"`
	} `json:"honors"`
}

// ParseProfile turns one scraped profile document into a candidate detail.
// Skills and honors without a name are dropped.
func ParseProfile(raw []byte) (*candidate.Detail, error) {
	var p rawProfile
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if p.ID == 0 {
		return nil, ErrMissingProfileID
	}

	d := &candidate.Detail{
		Candidate: candidate.Candidate{
			LinkedInID: p.ID,
			FirstName:  p.FirstName,
			LastName:   p.LastName,
			Headline:   p.Headline,
		},
	}
	if p.Geo != nil {
		d.Candidate.Country = p.Geo.Country
		d.Candidate.City = p.Geo.City
		d.Candidate.CountryCode = p.Geo.CountryCode
	}

	for _, e := range p.Educations {
		d.Educations = append(d.Educations, candidate.Education{
			SchoolName:   e.SchoolName,
			SchoolID:     e.SchoolID,
			Degree:       e.Degree,
			FieldOfStudy: e.FieldOfStudy,
			Description:  e.Description,
			Activities:   e.Activities,
			StartDate:    e.Start.ToDate(),
			EndDate:      e.End.ToDate(),
		})
	}
	for _, pos := range p.Positions {
		d.Positions = append(d.Positions, candidate.Position{
			CompanyID:      pos.CompanyID,
			CompanyName:    pos.CompanyName,
			Title:          pos.Title,
			Location:       pos.Location,
			EmploymentType: pos.EmploymentType,
			Description:    pos.Description,
			StartDate:      pos.Start.ToDate(),
			EndDate:        pos.End.ToDate(),
		})
	}
	for _, s := range p.Skills {
		if s.Name != "" {
			d.Skills = append(d.Skills, candidate.Skill{Name: s.Name})
		}
	}
	for _, h := range p.Honors {
		if h.Title != "" {
			d.Honors = append(d.Honors, candidate.Honor{Title: h.Title})
		}
	}
	return d, nil
}
