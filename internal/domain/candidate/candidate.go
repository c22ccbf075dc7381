package candidate

import (
	"context"
	"errors"
	"time"
)

type Candidate struct {
	ID          int64  `json:"id"`
	LinkedInID  int64  `json:"linkedin_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Headline    string `json:"headline"`
	City        string `json:"city"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
}

// Position is a work-experience entry. A nil EndDate means ongoing.
type Position struct {
	ID             int64      `json:"id"`
	CandidateID    int64      `json:"candidate_id"`
	CompanyID      int64      `json:"company_id"`
	CompanyName    string     `json:"company_name"`
	Title          string     `json:"title"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type"`
	Description    string     `json:"description"`
	StartDate      *time.Time `json:"start_date"`
	EndDate        *time.Time `json:"end_date"`
}

// Education is a school entry. A nil EndDate means ongoing.
type Education struct {
	ID           int64      `json:"id"`
	CandidateID  int64      `json:"candidate_id"`
	SchoolName   string     `json:"school_name"`
	SchoolID     string     `json:"school_id"`
	Degree       string     `json:"degree"`
	FieldOfStudy string     `json:"field_of_study"`
	Description  string     `json:"description"`
	Activities   string     `json:"activities"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
}

type Skill struct {
	ID          int64  `json:"id"`
	CandidateID int64  `json:"candidate_id"`
	Name        string `json:"name"`
}

type Honor struct {
	ID          int64  `json:"id"`
	CandidateID int64  `json:"candidate_id"`
	Title       string `json:"title"`
}

// Summary is one row of the candidate listing.
type Summary struct {
	ID            int64    `json:"id"`
	LinkedInID    int64    `json:"linkedin_id"`
	FirstName     string   `json:"first_name"`
	LastName      string   `json:"last_name"`
	Headline      string   `json:"headline"`
	City          string   `json:"city"`
	Country       string   `json:"country"`
	LatestCompany string   `json:"latest_company"`
	LatestSchool  string   `json:"latest_school"`
	SkillTags     []string `json:"skill_tags"`
	HonorTitles   []string `json:"honor_titles"`
}

type Detail struct {
	Candidate  Candidate   `json:"candidate"`
	Positions  []Position  `json:"positions"`
	Educations []Education `json:"educations"`
	Skills     []Skill     `json:"skills"`
	Honors     []Honor     `json:"honors"`
}

type Stats struct {
	ProfileCount   int64 `json:"profile_count"`
	PositionCount  int64 `json:"position_count"`
	EducationCount int64 `json:"education_count"`
	SkillCount     int64 `json:"skill_count"`
}

const (
	MaxSkillTags   = 3
	MaxHonorTitles = 2
)

var ErrCandidateNotFound = errors.New("candidate not found")

type Repository interface {
	List(ctx context.Context, filter Filter, limit, offset int) ([]Summary, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	DistinctSchools(ctx context.Context) ([]string, error)
	DistinctWorkplaces(ctx context.Context) ([]string, error)
	FindDetail(ctx context.Context, id int64) (*Detail, error)
	FindIDByLinkedInID(ctx context.Context, linkedInID int64) (int64, error)
	ListProfiles(ctx context.Context) ([]Candidate, error)
	Stats(ctx context.Context) (Stats, error)
}

// ImportRepository persists parsed profiles. Insert writes the whole profile
// atomically and returns the new candidate id.
type ImportRepository interface {
	LinkedInIDExists(ctx context.Context, linkedInID int64) (bool, error)
	Insert(ctx context.Context, raw []byte, d *Detail) (int64, error)
}
