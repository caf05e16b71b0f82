package ports

import (
	"context"

	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

type VoteInput struct {
	PollID   string
	OptionID string
}

type VoteService interface {
	// Vote records one vote and returns the poll's options with their
	// current counts.
	Vote(ctx context.Context, input VoteInput) ([]domain.Option, error)
}

// VotePublisher announces recorded votes to interested consumers.
type VotePublisher interface {
	PublishVote(ctx context.Context, vote *domain.Vote) error
}
