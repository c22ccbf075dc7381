package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
	"github.com/khoahotran/candidate-dashboard/pkg/apperror"
	"github.com/khoahotran/candidate-dashboard/pkg/logger"
)

var tracer = otel.Tracer("importer")

type Report struct {
	Examined int      `json:"examined"`
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

type Importer struct {
	repo   candidate.ImportRepository
	logger logger.Logger
}

func New(repo candidate.ImportRepository, log logger.Logger) *Importer {
	return &Importer{repo: repo, logger: log}
}

// ImportDir loads every *.json file in dir. One bad file never stops the
// run; it is counted as failed.
func (im *Importer) ImportDir(ctx context.Context, dir string) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Importer.ImportDir")
	defer span.End()

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("list profile files: %w", err)
	}
	sort.Strings(files)

	report := &Report{Examined: len(files)}
	im.logger.Info("Importing profiles", zap.String("dir", dir), zap.Int(logger.FieldCount, len(files)))

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		imported, err := im.ImportFile(ctx, path)
		switch {
		case err != nil:
			report.Failed++
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", filepath.Base(path), err))
			im.logger.Warn("Profile import failed", zap.String("file", path), zap.Error(err))
		case imported:
			report.Imported++
		default:
			report.Skipped++
		}
	}

	im.logger.Info("Import completed",
		zap.Int("imported", report.Imported),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}

// ImportFile reports false when the profile already exists.
func (im *Importer) ImportFile(ctx context.Context, path string) (bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("read file: %w", err)
	}
	if err := ValidateProfile(raw); err != nil {
		return false, err
	}
	d, err := ParseProfile(raw)
	if err != nil {
		return false, err
	}

	exists, err := im.repo.LinkedInIDExists(ctx, d.Candidate.LinkedInID)
	if err != nil {
		return false, err
	}
	if exists {
		im.logger.Debug("Profile already imported", zap.Int64("linkedin_id", d.Candidate.LinkedInID))
		return false, nil
	}

	id, err := im.repo.Insert(ctx, raw, d)
	if err != nil {
		// Lost a race with another loader.
		if apperror.IsConflict(err) {
			return false, nil
		}
		return false, err
	}
	im.logger.Debug("Profile imported", zap.Int64(logger.FieldCandidateID, id))
	return true, nil
}
