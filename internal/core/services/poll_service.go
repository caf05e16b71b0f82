package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
	"github.com/vncsmyrnk/tablepoll/internal/core/ports"
)

var pollsCreated = metrics.GetOrCreateCounter("poll_polls_created_total")

type pollService struct {
	repo ports.PollRepository
}

func NewPollService(repo ports.PollRepository) ports.PollService {
	return &pollService{
		repo: repo,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}

	options := make([]string, 0, len(input.Options))
	for _, text := range input.Options {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, fmt.Errorf("%w: options cannot be empty", domain.ErrValidation)
		}
		options = append(options, text)
	}
	if len(options) < domain.MinPollOptions || len(options) > domain.MaxPollOptions {
		return nil, fmt.Errorf("%w: between %d and %d options are required",
			domain.ErrValidation, domain.MinPollOptions, domain.MaxPollOptions)
	}

	poll, err := s.repo.CreatePoll(ctx, question, options)
	if err != nil {
		return nil, err
	}

	pollsCreated.Inc()
	return poll, nil
}

// GetPoll rejects stored polls whose option count is out of bounds. Such a
// poll exists, so this is a data error rather than a missing poll.
func (s *pollService) GetPoll(ctx context.Context, id string) (*domain.Poll, error) {
	if err := requireID("poll id", id); err != nil {
		return nil, err
	}

	poll, err := s.repo.GetPoll(ctx, id)
	if err != nil {
		return nil, err
	}
	if !poll.HasValidOptionCount() {
		return nil, fmt.Errorf("%w: poll %s has %d options", domain.ErrInvalidOptionCount, id, len(poll.Options))
	}

	return poll, nil
}

func (s *pollService) ListOptions(ctx context.Context, pollID string) ([]domain.Option, error) {
	if err := requireID("poll id", pollID); err != nil {
		return nil, err
	}

	return s.repo.GetOptionsByPollID(ctx, pollID)
}

// ListVotes returns the audit log oldest first. The index gives no order of
// its own, so the sort is for presentation only.
func (s *pollService) ListVotes(ctx context.Context, pollID string) ([]domain.Vote, error) {
	if err := requireID("poll id", pollID); err != nil {
		return nil, err
	}

	votes, err := s.repo.GetVotesByPollID(ctx, pollID)
	if err != nil {
		return nil, err
	}
	sortVotes(votes)
	return votes, nil
}

func (s *pollService) ListOptionVotes(ctx context.Context, optionID string) ([]domain.Vote, error) {
	if err := requireID("option id", optionID); err != nil {
		return nil, err
	}

	votes, err := s.repo.GetVotesByOptionID(ctx, optionID)
	if err != nil {
		return nil, err
	}
	sortVotes(votes)
	return votes, nil
}

func requireID(name, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %s is required", domain.ErrValidation, name)
	}
	return nil
}

func sortVotes(votes []domain.Vote) {
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].Timestamp.Before(votes[j].Timestamp)
	})
}
