package service

import (
	"context"
	"fmt"
	"time"

	"github.com/praneelbora/expensease/internal/storage"
	"github.com/praneelbora/expensease/internal/summary"
)

// SummaryService produces time-windowed spend reports.
type SummaryService struct {
	store storage.Store
}

// NewSummaryService creates a new SummaryService with the given storage
// backend.
func NewSummaryService(store storage.Store) *SummaryService {
	return &SummaryService{store: store}
}

// Report aggregates the user's expenses for the selected range. An empty
// range defaults to the current month.
func (s *SummaryService) Report(ctx context.Context, userID string, r summary.Range, now time.Time) (*summary.Report, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if r == "" {
		r = summary.RangeThisMonth
	}
	if !r.Valid() {
		return nil, fmt.Errorf("%w: unknown range %q", ErrInvalidInput, r)
	}

	expenses, err := s.store.ListExpensesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	report := summary.Summarize(expenses, userID, r, now)
	return &report, nil
}
