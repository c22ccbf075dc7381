package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"sync"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
)

type CandidateRepository struct {
	mu      sync.RWMutex
	details map[int64]*candidate.Detail
	nextID  int64
	rowID   int64
}

func newCandidateRepository() *CandidateRepository {
	return &CandidateRepository{
		details: make(map[int64]*candidate.Detail),
		nextID:  1,
		rowID:   1,
	}
}

// Add stores a profile and assigns candidate and row ids the way serial
// columns would. Ids already set on child rows are kept.
func (r *CandidateRepository) Add(d candidate.Detail) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	cp := copyDetail(&d)
	cp.Candidate.ID = id
	for i := range cp.Positions {
		cp.Positions[i].CandidateID = id
		if cp.Positions[i].ID == 0 {
			cp.Positions[i].ID = r.nextRow()
		}
	}
	for i := range cp.Educations {
		cp.Educations[i].CandidateID = id
		if cp.Educations[i].ID == 0 {
			cp.Educations[i].ID = r.nextRow()
		}
	}
	for i := range cp.Skills {
		cp.Skills[i].CandidateID = id
		if cp.Skills[i].ID == 0 {
			cp.Skills[i].ID = r.nextRow()
		}
	}
	for i := range cp.Honors {
		cp.Honors[i].CandidateID = id
		if cp.Honors[i].ID == 0 {
			cp.Honors[i].ID = r.nextRow()
		}
	}
	r.details[id] = cp
	return id
}

func (r *CandidateRepository) nextRow() int64 {
	id := r.rowID
	r.rowID++
	return id
}

func copyDetail(d *candidate.Detail) *candidate.Detail {
	return &candidate.Detail{
		Candidate:  d.Candidate,
		Positions:  slices.Clone(d.Positions),
		Educations: slices.Clone(d.Educations),
		Skills:     slices.Clone(d.Skills),
		Honors:     slices.Clone(d.Honors),
	}
}

func summarize(d *candidate.Detail) candidate.Summary {
	c := d.Candidate
	s := candidate.Summary{
		ID:          c.ID,
		LinkedInID:  c.LinkedInID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Headline:    c.Headline,
		City:        c.City,
		Country:     c.Country,
		SkillTags:   []string{},
		HonorTitles: []string{},
	}
	if p, ok := candidate.LatestPosition(d.Positions); ok {
		s.LatestCompany = p.CompanyName
	}
	if e, ok := candidate.LatestEducation(d.Educations); ok {
		s.LatestSchool = e.SchoolName
	}

	skills := slices.Clone(d.Skills)
	slices.SortFunc(skills, func(a, b candidate.Skill) int { return cmp.Compare(a.ID, b.ID) })
	for _, sk := range skills {
		if len(s.SkillTags) == candidate.MaxSkillTags {
			break
		}
		s.SkillTags = append(s.SkillTags, sk.Name)
	}

	honors := slices.Clone(d.Honors)
	slices.SortFunc(honors, func(a, b candidate.Honor) int { return cmp.Compare(a.ID, b.ID) })
	for _, h := range honors {
		if len(s.HonorTitles) == candidate.MaxHonorTitles {
			break
		}
		s.HonorTitles = append(s.HonorTitles, h.Title)
	}
	return s
}

func compareNames(aLast, aFirst string, aID int64, bLast, bFirst string, bID int64) int {
	return cmp.Or(
		cmp.Compare(aLast, bLast),
		cmp.Compare(aFirst, bFirst),
		cmp.Compare(aID, bID),
	)
}

func (r *CandidateRepository) matching(filter candidate.Filter) []candidate.Summary {
	out := make([]candidate.Summary, 0)
	for _, d := range r.details {
		s := summarize(d)
		if filter.Matches(s) {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b candidate.Summary) int {
		return compareNames(a.LastName, a.FirstName, a.ID, b.LastName, b.FirstName, b.ID)
	})
	return out
}

func (r *CandidateRepository) List(ctx context.Context, filter candidate.Filter, limit, offset int) ([]candidate.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.matching(filter)
	if offset < 0 || offset >= len(all) {
		return []candidate.Summary{}, nil
	}
	end := len(all)
	if limit < end-offset {
		end = offset + limit
	}
	return all[offset:end], nil
}

func (r *CandidateRepository) Count(ctx context.Context, filter candidate.Filter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.matching(filter))), nil
}

func (r *CandidateRepository) DistinctSchools(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, d := range r.details {
		for _, e := range d.Educations {
			if e.SchoolName != "" {
				seen[e.SchoolName] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func (r *CandidateRepository) DistinctWorkplaces(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, d := range r.details {
		for _, p := range d.Positions {
			if p.CompanyName != "" {
				seen[p.CompanyName] = struct{}{}
			}
		}
	}
	return sortedKeys(seen), nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func (r *CandidateRepository) FindDetail(ctx context.Context, id int64) (*candidate.Detail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.details[id]
	if !ok {
		return nil, apperror.NewNotFound("candidate", strconv.FormatInt(id, 10))
	}
	cp := copyDetail(d)
	candidate.SortPositionsLatestFirst(cp.Positions)
	candidate.SortEducationsLatestFirst(cp.Educations)
	slices.SortFunc(cp.Skills, func(a, b candidate.Skill) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	slices.SortFunc(cp.Honors, func(a, b candidate.Honor) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
	})
	return cp, nil
}

func (r *CandidateRepository) FindIDByLinkedInID(ctx context.Context, linkedInID int64) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, d := range r.details {
		if d.Candidate.LinkedInID == linkedInID {
			return id, nil
		}
	}
	return 0, apperror.NewNotFound("profile", strconv.FormatInt(linkedInID, 10))
}

func (r *CandidateRepository) ListProfiles(ctx context.Context) ([]candidate.Candidate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]candidate.Candidate, 0, len(r.details))
	for _, d := range r.details {
		out = append(out, d.Candidate)
	}
	slices.SortFunc(out, func(a, b candidate.Candidate) int {
		return compareNames(a.LastName, a.FirstName, a.ID, b.LastName, b.FirstName, b.ID)
	})
	return out, nil
}

func (r *CandidateRepository) Stats(ctx context.Context) (candidate.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var st candidate.Stats
	for _, d := range r.details {
		st.ProfileCount++
		st.PositionCount += int64(len(d.Positions))
		st.EducationCount += int64(len(d.Educations))
		st.SkillCount += int64(len(d.Skills))
	}
	return st, nil
}

func (r *CandidateRepository) LinkedInIDExists(ctx context.Context, linkedInID int64) (bool, error) {
	_, err := r.FindIDByLinkedInID(ctx, linkedInID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// Insert ignores the raw document; only the parsed detail is kept.
func (r *CandidateRepository) Insert(ctx context.Context, raw []byte, d *candidate.Detail) (int64, error) {
	exists, err := r.LinkedInIDExists(ctx, d.Candidate.LinkedInID)
	if err != nil {
		return 0, err
	}
	if exists {
		return 0, apperror.NewConflict("profile", "linkedin id "+strconv.FormatInt(d.Candidate.LinkedInID, 10)+" already imported")
	}
	return r.Add(*d), nil
}
