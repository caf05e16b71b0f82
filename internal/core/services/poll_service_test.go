package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
	"github.com/vncsmyrnk/tablepoll/internal/core/ports"
)

func optionsOf(n int) []string {
	options := make([]string, n)
	for i := range options {
		options[i] = fmt.Sprintf("Option %d", i+1)
	}
	return options
}

func TestCreatePoll(t *testing.T) {
	tests := []struct {
		name    string
		input   ports.CreatePollInput
		wantErr error
	}{
		{"two options", ports.CreatePollInput{Question: "Q?", Options: optionsOf(2)}, nil},
		{"seven options", ports.CreatePollInput{Question: "Q?", Options: optionsOf(7)}, nil},
		{"one option", ports.CreatePollInput{Question: "Q?", Options: optionsOf(1)}, domain.ErrValidation},
		{"eight options", ports.CreatePollInput{Question: "Q?", Options: optionsOf(8)}, domain.ErrValidation},
		{"blank question", ports.CreatePollInput{Question: "   ", Options: optionsOf(2)}, domain.ErrValidation},
		{"blank option", ports.CreatePollInput{Question: "Q?", Options: []string{"a", " "}}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockPollRepository()
			svc := NewPollService(repo)

			poll, err := svc.Create(context.Background(), tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.created)
				return
			}
			require.NoError(t, err)
			assert.Len(t, poll.Options, len(tt.input.Options))
		})
	}
}

func TestCreatePollTrimsInput(t *testing.T) {
	repo := NewMockPollRepository()
	svc := NewPollService(repo)

	poll, err := svc.Create(context.Background(), ports.CreatePollInput{
		Question: "  Color?  ",
		Options:  []string{" Red", "Blue "},
	})
	require.NoError(t, err)
	assert.Equal(t, "Color?", poll.Question)
	require.Len(t, repo.created, 1)
	assert.Equal(t, []string{"Red", "Blue"}, repo.created[0])
}

func TestGetPollOptionCountBounds(t *testing.T) {
	tests := []struct {
		options int
		wantErr error
	}{
		{1, domain.ErrInvalidOptionCount},
		{2, nil},
		{7, nil},
		{8, domain.ErrInvalidOptionCount},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d options", tt.options), func(t *testing.T) {
			repo := NewMockPollRepository()
			poll := &domain.Poll{ID: "p1", Question: "Q?", Options: make(map[string]string)}
			for i, text := range optionsOf(tt.options) {
				poll.Options[fmt.Sprintf("o%d", i)] = text
			}
			repo.polls["p1"] = poll

			got, err := NewPollService(repo).GetPoll(context.Background(), "p1")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, poll, got)
		})
	}
}

func TestGetPollErrors(t *testing.T) {
	svc := NewPollService(NewMockPollRepository())

	_, err := svc.GetPoll(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrPollNotFound)

	_, err = svc.GetPoll(context.Background(), " ")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListVotesOldestFirst(t *testing.T) {
	now := time.Now()
	repo := NewMockPollRepository()
	repo.votes["p1"] = []domain.Vote{
		{ID: "v3", Timestamp: now.Add(2 * time.Second)},
		{ID: "v1", Timestamp: now},
		{ID: "v2", Timestamp: now.Add(time.Second)},
	}
	repo.optionVotes["o1"] = []domain.Vote{
		{ID: "v2", Timestamp: now.Add(time.Second)},
		{ID: "v1", Timestamp: now},
	}
	svc := NewPollService(repo)

	votes, err := svc.ListVotes(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2", "v3"}, voteIDs(votes))

	votes, err = svc.ListOptionVotes(context.Background(), "o1")
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", "v2"}, voteIDs(votes))

	_, err = svc.ListOptionVotes(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListPropagatesStoreErrors(t *testing.T) {
	repo := NewMockPollRepository()
	repo.err = fmt.Errorf("%w: boom", domain.ErrStore)
	svc := NewPollService(repo)

	_, err := svc.ListOptions(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrStore)
	_, err = svc.ListVotes(context.Background(), "p1")
	assert.ErrorIs(t, err, domain.ErrStore)
}

func voteIDs(votes []domain.Vote) []string {
	ids := make([]string, len(votes))
	for i, v := range votes {
		ids[i] = v.ID
	}
	return ids
}
