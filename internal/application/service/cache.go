package service

import (
	"context"

	"github.com/khoahotran/candidate-dashboard/internal/domain/candidate"
)

// FilterCache keeps the filter vocabularies and dashboard stats between
// imports. A miss is reported with ok == false, never as an error.
type FilterCache interface {
	GetVocabulary(ctx context.Context, name string) (values []string, ok bool, err error)
	SetVocabulary(ctx context.Context, name string, values []string) error
	GetStats(ctx context.Context) (stats candidate.Stats, ok bool, err error)
	SetStats(ctx context.Context, stats candidate.Stats) error
	Invalidate(ctx context.Context) error
}

const (
	VocabularySchools    = "schools"
	VocabularyWorkplaces = "workplaces"
)
