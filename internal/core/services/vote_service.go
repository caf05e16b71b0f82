package services

import (
	"context"
	"log/slog"

	"github.com/VictoriaMetrics/metrics"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
	"github.com/vncsmyrnk/tablepoll/internal/core/ports"
)

var (
	votesRecorded       = metrics.GetOrCreateCounter("poll_votes_recorded_total")
	votesRejected       = metrics.GetOrCreateCounter("poll_votes_rejected_total")
	votePublishFailures = metrics.GetOrCreateCounter("poll_vote_publish_failures_total")
)

type voteService struct {
	pollRepo  ports.PollRepository
	publisher ports.VotePublisher
}

// NewVoteService builds the vote service. publisher may be nil, in which
// case recorded votes are not announced.
func NewVoteService(pollRepo ports.PollRepository, publisher ports.VotePublisher) ports.VoteService {
	return &voteService{
		pollRepo:  pollRepo,
		publisher: publisher,
	}
}

func (s *voteService) Vote(ctx context.Context, input ports.VoteInput) ([]domain.Option, error) {
	if err := requireID("poll id", input.PollID); err != nil {
		return nil, err
	}
	if err := requireID("option id", input.OptionID); err != nil {
		return nil, err
	}

	vote, err := s.pollRepo.RecordVote(ctx, input.PollID, input.OptionID)
	if err != nil {
		votesRejected.Inc()
		return nil, err
	}
	votesRecorded.Inc()
	slog.InfoContext(ctx, "vote recorded", "poll_id", vote.PollID, "option_id", vote.OptionID, "vote_id", vote.ID)

	if s.publisher != nil {
		if err := s.publisher.PublishVote(ctx, vote); err != nil {
			votePublishFailures.Inc()
			slog.WarnContext(ctx, "failed to publish vote", "vote_id", vote.ID, "error", err)
		}
	}

	return s.pollRepo.GetOptionsByPollID(ctx, input.PollID)
}
