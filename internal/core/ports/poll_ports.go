package ports

import (
	"context"

	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

type PollRepository interface {
	CreatePoll(ctx context.Context, question string, options []string) (*domain.Poll, error)
	GetPoll(ctx context.Context, pollID string) (*domain.Poll, error)
	RecordVote(ctx context.Context, pollID, optionID string) (*domain.Vote, error)
	GetOptionsByPollID(ctx context.Context, pollID string) ([]domain.Option, error)
	GetVotesByPollID(ctx context.Context, pollID string) ([]domain.Vote, error)
	GetVotesByOptionID(ctx context.Context, optionID string) ([]domain.Vote, error)
}

type CreatePollInput struct {
	Question string
	Options  []string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	GetPoll(ctx context.Context, id string) (*domain.Poll, error)
	ListOptions(ctx context.Context, pollID string) ([]domain.Option, error)
	ListVotes(ctx context.Context, pollID string) ([]domain.Vote, error)
	ListOptionVotes(ctx context.Context, optionID string) ([]domain.Vote, error)
}
