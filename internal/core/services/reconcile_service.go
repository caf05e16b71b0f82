package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/VictoriaMetrics/metrics"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
	"github.com/vncsmyrnk/tablepoll/internal/core/ports"
)

var driftingOptions = metrics.GetOrCreateCounter("poll_reconcile_drifting_options_total")

type reconcileService struct {
	pollRepo ports.PollRepository
}

// NewReconcileService builds a service that compares option counters with
// the audit log. It only reports drift; counters are never rewritten.
func NewReconcileService(pollRepo ports.PollRepository) ports.ReconcileService {
	return &reconcileService{
		pollRepo: pollRepo,
	}
}

func (s *reconcileService) ReconcilePolls(ctx context.Context, pollIDs []string) ([]domain.OptionDrift, error) {
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	drifts := []domain.OptionDrift{}
	errChan := make(chan error, len(pollIDs))

	for _, pollID := range pollIDs {
		wg.Add(1)
		go func(pollID string) {
			defer wg.Done()
			found, err := s.reconcilePoll(ctx, pollID)
			if err != nil {
				errChan <- fmt.Errorf("failed to reconcile poll %s: %w", pollID, err)
				return
			}
			mu.Lock()
			drifts = append(drifts, found...)
			mu.Unlock()
		}(pollID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(drifts, func(i, j int) bool {
		if drifts[i].PollID != drifts[j].PollID {
			return drifts[i].PollID < drifts[j].PollID
		}
		return drifts[i].OptionID < drifts[j].OptionID
	})
	driftingOptions.Add(len(drifts))
	return drifts, nil
}

func (s *reconcileService) reconcilePoll(ctx context.Context, pollID string) ([]domain.OptionDrift, error) {
	options, err := s.pollRepo.GetOptionsByPollID(ctx, pollID)
	if err != nil {
		return nil, err
	}

	var drifts []domain.OptionDrift
	for _, opt := range options {
		votes, err := s.pollRepo.GetVotesByOptionID(ctx, opt.ID)
		if err != nil {
			return nil, err
		}

		var audited int64
		for _, v := range votes {
			if v.PollID == pollID {
				audited++
			}
		}
		if audited != opt.Votes {
			drifts = append(drifts, domain.OptionDrift{
				PollID:   pollID,
				OptionID: opt.ID,
				Counted:  opt.Votes,
				Audited:  audited,
				Missing:  opt.Votes - audited,
			})
		}
	}
	return drifts, nil
}
