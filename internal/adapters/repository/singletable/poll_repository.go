package singletable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/VictoriaMetrics/metrics"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
	"github.com/vncsmyrnk/tablepoll/internal/core/ports"
)

var auditFailures = metrics.GetOrCreateCounter("poll_vote_audit_failures_total")

type pollRepository struct {
	table Table
	codec *Codec
}

func NewPollRepository(table Table, codec *Codec) ports.PollRepository {
	return &pollRepository{
		table: table,
		codec: codec,
	}
}

// CreatePoll writes the poll item and one item per option in a single
// transaction, so readers see either the whole poll or nothing.
func (r *pollRepository) CreatePoll(ctx context.Context, question string, options []string) (*domain.Poll, error) {
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrValidation)
	}
	if len(options) == 0 {
		return nil, fmt.Errorf("%w: at least one option is required", domain.ErrValidation)
	}

	poll := domain.Poll{
		ID:       r.codec.NewID(),
		Question: question,
		Options:  make(map[string]string, len(options)),
	}

	items := make([]Item, 0, len(options)+1)
	optionItems := make([]Item, 0, len(options))
	for _, text := range options {
		opt := domain.Option{ID: r.codec.NewID(), PollID: poll.ID, Text: text}
		poll.Options[opt.ID] = text
		optionItems = append(optionItems, r.codec.EncodeOption(opt))
	}
	items = append(items, r.codec.EncodePoll(poll))
	items = append(items, optionItems...)

	slog.DebugContext(ctx, "creating poll", "poll_id", poll.ID, "options", len(options))
	if err := r.table.TransactPut(ctx, items); err != nil {
		return nil, fmt.Errorf("%w: failed to create poll: %w", domain.ErrStore, err)
	}

	slog.InfoContext(ctx, "poll created", "poll_id", poll.ID)
	return &poll, nil
}

func (r *pollRepository) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	item, err := r.table.GetItem(ctx, PollKey(pollID))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get poll: %w", domain.ErrStore, err)
	}
	if item == nil {
		return nil, domain.ErrPollNotFound
	}

	return r.codec.DecodePoll(item)
}

// RecordVote increments the option counter and then appends the audit
// record. The two writes are independent: if the second one fails the
// increment stays and the error is returned.
func (r *pollRepository) RecordVote(ctx context.Context, pollID, optionID string) (*domain.Vote, error) {
	count, err := r.table.UpdateCounter(ctx, OptionKey(optionID), CounterUpdate{
		Attribute:          AttrVotes,
		Delta:              1,
		ConditionAttribute: AttrGSI1PK,
		ConditionValue:     pollID,
	})
	if err != nil {
		if errors.Is(err, ErrConditionFailed) {
			return nil, domain.ErrInvalidOption
		}
		return nil, fmt.Errorf("%w: failed to increment vote count: %w", domain.ErrStore, err)
	}
	slog.DebugContext(ctx, "vote counted", "poll_id", pollID, "option_id", optionID, "votes", count)

	item, vote := r.codec.EncodeVote(pollID, optionID)
	if err := r.table.PutItem(ctx, item); err != nil {
		auditFailures.Inc()
		slog.ErrorContext(ctx, "vote counted without audit record",
			"poll_id", pollID, "option_id", optionID, "vote_id", vote.ID, "error", err)
		return nil, fmt.Errorf("%w: vote counted but audit record not written: %w", domain.ErrStore, err)
	}

	return &vote, nil
}

func (r *pollRepository) GetOptionsByPollID(ctx context.Context, pollID string) ([]domain.Option, error) {
	items, err := r.table.Query(ctx, IndexGSI1, pollID, SKOption)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query options: %w", domain.ErrStore, err)
	}
	if len(items) == 0 {
		slog.WarnContext(ctx, "no options found", "poll_id", pollID)
	}

	return r.codec.DecodeOptions(items)
}

func (r *pollRepository) GetVotesByPollID(ctx context.Context, pollID string) ([]domain.Vote, error) {
	items, err := r.table.Query(ctx, IndexGSI1, pollID, SKVote)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query votes: %w", domain.ErrStore, err)
	}

	return r.codec.DecodeVotes(items)
}

func (r *pollRepository) GetVotesByOptionID(ctx context.Context, optionID string) ([]domain.Vote, error) {
	items, err := r.table.Query(ctx, IndexGSI2, optionID, SKOption)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query option votes: %w", domain.ErrStore, err)
	}

	return r.codec.DecodeVotes(items)
}
