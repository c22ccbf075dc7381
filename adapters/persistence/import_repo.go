package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

type postgresImportRepo struct {
	db     *pgxpool.Pool
	logger logger.Logger
}

func NewPostgresImportRepo(db *pgxpool.Pool, logger logger.Logger) candidate.ImportRepository {
	return &postgresImportRepo{db: db, logger: logger}
}

func (r *postgresImportRepo) LinkedInIDExists(ctx context.Context, linkedInID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM linkedininfo WHERE id = $1)`, linkedInID).Scan(&exists)
	if err != nil {
		return false, apperror.NewStorage("failed to check profile existence", err)
	}
	return exists, nil
}

func (r *postgresImportRepo) Insert(ctx context.Context, raw []byte, d *candidate.Detail) (userID int64, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, apperror.NewStorage("failed to begin import transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				r.logger.Warn("Import rollback failed", zap.Error(rbErr))
			}
		}
	}()

	if err = tx.QueryRow(ctx, `INSERT INTO people (linkedin_details) VALUES ($1) RETURNING user_id`, raw).Scan(&userID); err != nil {
		return 0, apperror.NewStorage("failed to insert person", err)
	}

	c := d.Candidate
	if _, err = tx.Exec(ctx,
		`INSERT INTO linkedininfo (user_id, id, firstname, lastname, headline) VALUES ($1, $2, $3, $4, $5)`,
		userID, c.LinkedInID, c.FirstName, c.LastName, c.Headline,
	); err != nil {
		if isUniqueViolation(err) {
			return 0, apperror.NewConflict("profile", fmt.Sprintf("linkedin id %d already imported", c.LinkedInID))
		}
		return 0, apperror.NewStorage("failed to insert linkedin info", err)
	}

	if _, err = tx.Exec(ctx,
		`INSERT INTO geo (user_id, country, city, countrycode) VALUES ($1, $2, $3, $4)`,
		userID, c.Country, c.City, c.CountryCode,
	); err != nil {
		return 0, apperror.NewStorage("failed to insert geo", err)
	}

	batch := &pgx.Batch{}
	for _, e := range d.Educations {
		batch.Queue(`
			INSERT INTO educations (user_id, schoolname, schoolid, fieldofstudy, degree, startdate, enddate, description, activities)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			userID, e.SchoolName, e.SchoolID, e.FieldOfStudy, e.Degree, e.StartDate, e.EndDate, e.Description, e.Activities)
	}
	for _, p := range d.Positions {
		batch.Queue(`
			INSERT INTO positions (user_id, companyid, companyname, title, location, description, employmenttype, startdate, enddate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			userID, p.CompanyID, p.CompanyName, p.Title, p.Location, p.Description, p.EmploymentType, p.StartDate, p.EndDate)
	}
	for _, s := range d.Skills {
		batch.Queue(`INSERT INTO skills (user_id, name) VALUES ($1, $2)`, userID, s.Name)
	}
	for _, h := range d.Honors {
		batch.Queue(`INSERT INTO honors (user_id, title) VALUES ($1, $2)`, userID, h.Title)
	}
	if batch.Len() > 0 {
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, apperror.NewStorage("failed to insert profile details", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, apperror.NewStorage("failed to commit import", err)
	}
	return userID, nil
}
