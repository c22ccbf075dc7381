package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type postgresCandidateRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresCandidateRepo(db *pgxpool.Pool, logger logger.Logger) candidate.Repository {
	return &postgresCandidateRepo{db: db, logger: logger}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// latestOrder ranks entries latest first: ongoing, later start, later end, lower id.
const latestOrder = "(enddate IS NULL) DESC, startdate DESC NULLS LAST, enddate DESC NULLS LAST, id ASC"

var (
	latestPositionJoin = fmt.Sprintf(
		"LATERAL (SELECT companyname FROM positions WHERE user_id = p.user_id ORDER BY %s LIMIT 1) lp ON true", latestOrder)
	latestEducationJoin = fmt.Sprintf(
		"LATERAL (SELECT schoolname FROM educations WHERE user_id = p.user_id ORDER BY %s LIMIT 1) le ON true", latestOrder)
	skillTagsColumn = fmt.Sprintf(
		"COALESCE((SELECT array_agg(t.name ORDER BY t.id) FROM (SELECT id, name FROM skills WHERE user_id = p.user_id AND COALESCE(name, '') <> '' ORDER BY id LIMIT %d) t), '{}')",
		candidate.MaxSkillTags)
	honorTitlesColumn = fmt.Sprintf(
		"COALESCE((SELECT array_agg(t.title ORDER BY t.id) FROM (SELECT id, title FROM honors WHERE user_id = p.user_id AND COALESCE(title, '') <> '' ORDER BY id LIMIT %d) t), '{}')",
		candidate.MaxHonorTitles)
)

var summaryColumns = []string{
	"p.user_id",
	"li.id",
	"COALESCE(li.firstname, '')",
	"COALESCE(li.lastname, '')",
	"COALESCE(li.headline, '')",
	"COALESCE(g.city, '')",
	"COALESCE(g.country, '')",
	"COALESCE(lp.companyname, '')",
	"COALESCE(le.schoolname, '')",
	skillTagsColumn,
	honorTitlesColumn,
}

func fromCandidates(b sq.SelectBuilder) sq.SelectBuilder {
	return b.From("people p").
		Join("linkedininfo li ON li.user_id = p.user_id").
		LeftJoin("geo g ON g.user_id = p.user_id").
		LeftJoin(latestPositionJoin).
		LeftJoin(latestEducationJoin)
}

func applyFilter(b sq.SelectBuilder, f candidate.Filter) sq.SelectBuilder {
	if f.Search != "" {
		pattern := "%" + candidate.EscapeLike(f.Search) + "%"
		b = b.Where(sq.Or{
			sq.ILike{"li.firstname": pattern},
			sq.ILike{"li.lastname": pattern},
			sq.ILike{"li.headline": pattern},
			sq.ILike{"g.city": pattern},
			sq.ILike{"g.country": pattern},
		})
	}
	if f.School != "" {
		b = b.Where(sq.Eq{"le.schoolname": f.School})
	}
	if f.Workplace != "" {
		b = b.Where(sq.Eq{"lp.companyname": f.Workplace})
	}
	return b
}

func (r *postgresCandidateRepo) List(ctx context.Context, filter candidate.Filter, limit, offset int) ([]candidate.Summary, error) {
	if limit <= 0 || offset < 0 {
		return []candidate.Summary{}, nil
	}
	builder := applyFilter(fromCandidates(psql.Select(summaryColumns...)), filter).
		OrderBy("li.lastname ASC NULLS LAST", "li.firstname ASC NULLS LAST", "p.user_id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset))

	sql, args, err := builder.ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build list candidates query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperror.NewStorage("failed to query candidates", err)
	}
	defer rows.Close()

	items := make([]candidate.Summary, 0, limit)
	for rows.Next() {
		var s candidate.Summary
		if err := rows.Scan(
			&s.ID, &s.LinkedInID, &s.FirstName, &s.LastName, &s.Headline,
			&s.City, &s.Country, &s.LatestCompany, &s.LatestSchool,
			&s.SkillTags, &s.HonorTitles,
		); err != nil {
			return nil, apperror.NewStorage("failed to scan candidate summary", err)
		}
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewStorage("error iterating candidate rows", err)
	}
	return items, nil
}

func (r *postgresCandidateRepo) Count(ctx context.Context, filter candidate.Filter) (int64, error) {
	sql, args, err := applyFilter(fromCandidates(psql.Select("COUNT(*)")), filter).ToSql()
	if err != nil {
		return 0, apperror.NewInternal("failed to build count candidates query", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, apperror.NewStorage("failed to count candidates", err)
	}
	return total, nil
}

func (r *postgresCandidateRepo) distinct(ctx context.Context, column, table string) ([]string, error) {
	query := fmt.Sprintf(
		`SELECT DISTINCT %[1]s FROM %[2]s WHERE %[1]s IS NOT NULL AND %[1]s <> '' ORDER BY %[1]s`,
		column, table)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, apperror.NewStorage("failed to query distinct "+column, err)
	}
	values, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperror.NewStorage("failed to collect distinct "+column, err)
	}
	return values, nil
}

func (r *postgresCandidateRepo) DistinctSchools(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "schoolname", "educations")
}

func (r *postgresCandidateRepo) DistinctWorkplaces(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "companyname", "positions")
}

const profileSelect = `
	SELECT p.user_id, li.id,
		COALESCE(li.firstname, ''), COALESCE(li.lastname, ''), COALESCE(li.headline, ''),
		COALESCE(g.city, ''), COALESCE(g.country, ''), COALESCE(g.countrycode, '')
	FROM people p
	JOIN linkedininfo li ON li.user_id = p.user_id
	LEFT JOIN geo g ON g.user_id = p.user_id
`

func scanProfile(row pgx.Row) (candidate.Candidate, error) {
	var c candidate.Candidate
	err := row.Scan(&c.ID, &c.LinkedInID, &c.FirstName, &c.LastName, &c.Headline, &c.City, &c.Country, &c.CountryCode)
	return c, err
}

func (r *postgresCandidateRepo) FindDetail(ctx context.Context, id int64) (*candidate.Detail, error) {
	c, err := scanProfile(r.db.QueryRow(ctx, profileSelect+` WHERE p.user_id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("candidate", strconv.FormatInt(id, 10))
		}
		return nil, apperror.NewStorage("failed to query candidate", err)
	}

	batch := &pgx.Batch{}
	batch.Queue(`
		SELECT id, user_id, COALESCE(companyid, 0), COALESCE(companyname, ''), COALESCE(title, ''),
			COALESCE(location, ''), COALESCE(employmenttype, ''), COALESCE(description, ''), startdate, enddate
		FROM positions WHERE user_id = $1 ORDER BY `+latestOrder, id)
	batch.Queue(`
		SELECT id, user_id, COALESCE(schoolname, ''), COALESCE(schoolid, ''), COALESCE(degree, ''),
			COALESCE(fieldofstudy, ''), COALESCE(description, ''), COALESCE(activities, ''), startdate, enddate
		FROM educations WHERE user_id = $1 ORDER BY `+latestOrder, id)
	batch.Queue(`SELECT id, user_id, COALESCE(name, '') FROM skills WHERE user_id = $1 ORDER BY name, id`, id)
	batch.Queue(`SELECT id, user_id, COALESCE(title, '') FROM honors WHERE user_id = $1 ORDER BY title, id`, id)

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	d := &candidate.Detail{Candidate: c}

	rows, err := results.Query()
	if err != nil {
		return nil, apperror.NewStorage("failed to query positions", err)
	}
	d.Positions, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (candidate.Position, error) {
		var p candidate.Position
		err := row.Scan(&p.ID, &p.CandidateID, &p.CompanyID, &p.CompanyName, &p.Title,
			&p.Location, &p.EmploymentType, &p.Description, &p.StartDate, &p.EndDate)
		return p, err
	})
	if err != nil {
		return nil, apperror.NewStorage("failed to scan positions", err)
	}

	rows, err = results.Query()
	if err != nil {
		return nil, apperror.NewStorage("failed to query educations", err)
	}
	d.Educations, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (candidate.Education, error) {
		var e candidate.Education
		err := row.Scan(&e.ID, &e.CandidateID, &e.SchoolName, &e.SchoolID, &e.Degree,
			&e.FieldOfStudy, &e.Description, &e.Activities, &e.StartDate, &e.EndDate)
		return e, err
	})
	if err != nil {
		return nil, apperror.NewStorage("failed to scan educations", err)
	}

	rows, err = results.Query()
	if err != nil {
		return nil, apperror.NewStorage("failed to query skills", err)
	}
	d.Skills, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (candidate.Skill, error) {
		var s candidate.Skill
		err := row.Scan(&s.ID, &s.CandidateID, &s.Name)
		return s, err
	})
	if err != nil {
		return nil, apperror.NewStorage("failed to scan skills", err)
	}

	rows, err = results.Query()
	if err != nil {
		return nil, apperror.NewStorage("failed to query honors", err)
	}
	d.Honors, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (candidate.Honor, error) {
		var h candidate.Honor
		err := row.Scan(&h.ID, &h.CandidateID, &h.Title)
		return h, err
	})
	if err != nil {
		return nil, apperror.NewStorage("failed to scan honors", err)
	}

	return d, nil
}

func (r *postgresCandidateRepo) FindIDByLinkedInID(ctx context.Context, linkedInID int64) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`SELECT user_id FROM linkedininfo WHERE id = $1 AND user_id IS NOT NULL`, linkedInID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("profile", strconv.FormatInt(linkedInID, 10))
		}
		return 0, apperror.NewStorage("failed to query profile", err)
	}
	return id, nil
}

func (r *postgresCandidateRepo) ListProfiles(ctx context.Context) ([]candidate.Candidate, error) {
	rows, err := r.db.Query(ctx, profileSelect+` ORDER BY li.lastname ASC NULLS LAST, li.firstname ASC NULLS LAST, p.user_id ASC`)
	if err != nil {
		return nil, apperror.NewStorage("failed to query profiles", err)
	}
	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (candidate.Candidate, error) {
		return scanProfile(row)
	})
	if err != nil {
		return nil, apperror.NewStorage("failed to scan profiles", err)
	}
	return profiles, nil
}

func (r *postgresCandidateRepo) Stats(ctx context.Context) (candidate.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM linkedininfo),
			(SELECT COUNT(*) FROM positions),
			(SELECT COUNT(*) FROM educations),
			(SELECT COUNT(*) FROM skills)
	`
	var st candidate.Stats
	if err := r.db.QueryRow(ctx, query).Scan(&st.ProfileCount, &st.PositionCount, &st.EducationCount, &st.SkillCount); err != nil {
		return candidate.Stats{}, apperror.NewStorage("failed to query stats", err)
	}
	return st, nil
}
