package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
	"github.com/vncsmyrnk/tablepoll/internal/core/ports"
)

func TestVoteReturnsCurrentOptions(t *testing.T) {
	repo := NewMockPollRepository()
	repo.options["p1"] = []domain.Option{
		{ID: "o1", PollID: "p1", Text: "Red", Votes: 1},
		{ID: "o2", PollID: "p1", Text: "Blue"},
	}
	publisher := &MockPublisher{}
	svc := NewVoteService(repo, publisher)

	options, err := svc.Vote(context.Background(), ports.VoteInput{PollID: "p1", OptionID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, repo.options["p1"], options)
	assert.Equal(t, []string{"o1"}, repo.voted)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, "o1", publisher.published[0].OptionID)
}

func TestVoteWithoutPublisher(t *testing.T) {
	repo := NewMockPollRepository()
	svc := NewVoteService(repo, nil)

	_, err := svc.Vote(context.Background(), ports.VoteInput{PollID: "p1", OptionID: "o1"})
	require.NoError(t, err)
	assert.Len(t, repo.voted, 1)
}

func TestVoteIgnoresPublishFailure(t *testing.T) {
	repo := NewMockPollRepository()
	svc := NewVoteService(repo, &MockPublisher{err: assert.AnError})

	_, err := svc.Vote(context.Background(), ports.VoteInput{PollID: "p1", OptionID: "o1"})
	assert.NoError(t, err)
}

func TestVoteErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   ports.VoteInput
		voteErr error
		wantErr error
	}{
		{"missing poll id", ports.VoteInput{OptionID: "o1"}, nil, domain.ErrValidation},
		{"missing option id", ports.VoteInput{PollID: "p1"}, nil, domain.ErrValidation},
		{"option of another poll", ports.VoteInput{PollID: "p1", OptionID: "o9"}, domain.ErrInvalidOption, domain.ErrInvalidOption},
		{"store failure", ports.VoteInput{PollID: "p1", OptionID: "o1"}, domain.ErrStore, domain.ErrStore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockPollRepository()
			repo.voteErr = tt.voteErr
			publisher := &MockPublisher{}

			options, err := NewVoteService(repo, publisher).Vote(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, options)
			assert.Empty(t, publisher.published)
		})
	}
}
