package services

import (
	"context"
	"sync"

	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

// MockPollRepository serves canned polls, options and votes keyed by ID.
type MockPollRepository struct {
	mu sync.Mutex

	polls       map[string]*domain.Poll
	options     map[string][]domain.Option
	votes       map[string][]domain.Vote
	optionVotes map[string][]domain.Vote
	err         error
	voteErr     error

	created [][]string
	voted   []string
}

func NewMockPollRepository() *MockPollRepository {
	return &MockPollRepository{
		polls:       make(map[string]*domain.Poll),
		options:     make(map[string][]domain.Option),
		votes:       make(map[string][]domain.Vote),
		optionVotes: make(map[string][]domain.Vote),
	}
}

func (m *MockPollRepository) CreatePoll(ctx context.Context, question string, options []string) (*domain.Poll, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.created = append(m.created, options)

	poll := &domain.Poll{ID: "p1", Question: question, Options: make(map[string]string)}
	for i, text := range options {
		poll.Options[string(rune('a'+i))] = text
	}
	return poll, nil
}

func (m *MockPollRepository) GetPoll(ctx context.Context, pollID string) (*domain.Poll, error) {
	if m.err != nil {
		return nil, m.err
	}
	poll, ok := m.polls[pollID]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return poll, nil
}

func (m *MockPollRepository) RecordVote(ctx context.Context, pollID, optionID string) (*domain.Vote, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.voteErr != nil {
		return nil, m.voteErr
	}
	m.voted = append(m.voted, optionID)
	return &domain.Vote{ID: "v1", PollID: pollID, OptionID: optionID}, nil
}

func (m *MockPollRepository) GetOptionsByPollID(ctx context.Context, pollID string) ([]domain.Option, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.options[pollID], nil
}

func (m *MockPollRepository) GetVotesByPollID(ctx context.Context, pollID string) ([]domain.Vote, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.votes[pollID], nil
}

func (m *MockPollRepository) GetVotesByOptionID(ctx context.Context, optionID string) ([]domain.Vote, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.optionVotes[optionID], nil
}

// MockPublisher records published votes and fails when err is set.
type MockPublisher struct {
	err       error
	published []*domain.Vote
}

func (p *MockPublisher) PublishVote(ctx context.Context, vote *domain.Vote) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, vote)
	return nil
}
