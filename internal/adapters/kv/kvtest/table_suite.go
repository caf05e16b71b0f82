// Package kvtest holds the behaviour every singletable.Table backend must
// show, run against each backend from its own tests.
package kvtest

import (
	"context"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/repository/singletable"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

// TableFactory returns the table under test. Tests use random keys, so a
// factory may hand out the same table every time.
type TableFactory func(t *testing.T) singletable.Table

// RunTableTests runs the table suite and the poll store scenarios on top of it.
func RunTableTests(t *testing.T, name string, factory TableFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("GetMissing", func(t *testing.T) {
			testGetMissing(t, factory(t))
		})

		t.Run("PutGet", func(t *testing.T) {
			testPutGet(t, factory(t))
		})

		t.Run("UpdateCounter", func(t *testing.T) {
			testUpdateCounter(t, factory(t))
		})

		t.Run("ConcurrentIncrements", func(t *testing.T) {
			testConcurrentIncrements(t, factory(t))
		})

		t.Run("Query", func(t *testing.T) {
			testQuery(t, factory(t))
		})

		t.Run("TransactPutAllOrNothing", func(t *testing.T) {
			testTransactPutAllOrNothing(t, factory(t))
		})

		t.Run("PollStoreScenario", func(t *testing.T) {
			testPollStoreScenario(t, factory(t))
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

func s(v string) types.AttributeValue { return &types.AttributeValueMemberS{Value: v} }
func n(v string) types.AttributeValue { return &types.AttributeValueMemberN{Value: v} }

func optionItem(optionID, pollID string) singletable.Item {
	return singletable.Item{
		singletable.AttrPK:     s(optionID),
		singletable.AttrSK:     s(singletable.SKOption),
		singletable.AttrGSI1PK: s(pollID),
		singletable.AttrGSI1SK: s(singletable.SKOption),
		"text":                 s("text of " + optionID),
		singletable.AttrVotes:  n("0"),
	}
}

func counterUpdate(pollID string) singletable.CounterUpdate {
	return singletable.CounterUpdate{
		Attribute:          singletable.AttrVotes,
		Delta:              1,
		ConditionAttribute: singletable.AttrGSI1PK,
		ConditionValue:     pollID,
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testGetMissing(t *testing.T, table singletable.Table) {
	item, err := table.GetItem(context.Background(), singletable.Key{PK: uuid.NewString(), SK: singletable.SKPoll})
	require.NoError(t, err)
	assert.Nil(t, item)
}

func testPutGet(t *testing.T, table singletable.Table) {
	ctx := context.Background()
	pollID := uuid.NewString()
	item := singletable.Item{
		singletable.AttrPK: s(pollID),
		singletable.AttrSK: s(singletable.SKPoll),
		"question":         s("Best editor?"),
		"options": &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"a": s("vim"),
			"b": s("emacs"),
		}},
	}

	require.NoError(t, table.PutItem(ctx, item))

	got, err := table.GetItem(ctx, singletable.PollKey(pollID))
	require.NoError(t, err)
	assert.Equal(t, item, got)

	// put replaces the whole item
	item["question"] = s("Best shell?")
	require.NoError(t, table.PutItem(ctx, item))
	got, err = table.GetItem(ctx, singletable.PollKey(pollID))
	require.NoError(t, err)
	assert.Equal(t, s("Best shell?"), got["question"])
}

func testUpdateCounter(t *testing.T, table singletable.Table) {
	ctx := context.Background()
	pollID, optionID := uuid.NewString(), uuid.NewString()
	require.NoError(t, table.PutItem(ctx, optionItem(optionID, pollID)))

	next, err := table.UpdateCounter(ctx, singletable.OptionKey(optionID), counterUpdate(pollID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	next, err = table.UpdateCounter(ctx, singletable.OptionKey(optionID), counterUpdate(pollID))
	require.NoError(t, err)
	assert.Equal(t, int64(2), next)

	// condition on another poll
	_, err = table.UpdateCounter(ctx, singletable.OptionKey(optionID), counterUpdate(uuid.NewString()))
	assert.ErrorIs(t, err, singletable.ErrConditionFailed)

	// missing item
	_, err = table.UpdateCounter(ctx, singletable.OptionKey(uuid.NewString()), counterUpdate(pollID))
	assert.ErrorIs(t, err, singletable.ErrConditionFailed)

	got, err := table.GetItem(ctx, singletable.OptionKey(optionID))
	require.NoError(t, err)
	votes, err := singletable.ParseCounter(got[singletable.AttrVotes])
	require.NoError(t, err)
	assert.Equal(t, int64(2), votes, "rejected updates must not change the counter")
}

func testConcurrentIncrements(t *testing.T, table singletable.Table) {
	const workers = 25
	ctx := context.Background()
	pollID, optionID := uuid.NewString(), uuid.NewString()
	require.NoError(t, table.PutItem(ctx, optionItem(optionID, pollID)))

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := table.UpdateCounter(ctx, singletable.OptionKey(optionID), counterUpdate(pollID)); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := table.GetItem(ctx, singletable.OptionKey(optionID))
	require.NoError(t, err)
	votes, err := singletable.ParseCounter(got[singletable.AttrVotes])
	require.NoError(t, err)
	assert.Equal(t, int64(workers), votes)
}

func testQuery(t *testing.T, table singletable.Table) {
	ctx := context.Background()
	pollID := uuid.NewString()
	first, second := uuid.NewString(), uuid.NewString()
	require.NoError(t, table.PutItem(ctx, optionItem(first, pollID)))
	require.NoError(t, table.PutItem(ctx, optionItem(second, pollID)))
	require.NoError(t, table.PutItem(ctx, optionItem(uuid.NewString(), uuid.NewString())))

	voteID := uuid.NewString()
	require.NoError(t, table.PutItem(ctx, singletable.Item{
		singletable.AttrPK:     s(voteID),
		singletable.AttrSK:     s(singletable.SKVote),
		singletable.AttrGSI1PK: s(pollID),
		singletable.AttrGSI1SK: s(singletable.SKVote),
		singletable.AttrGSI2PK: s(first),
		singletable.AttrGSI2SK: s(singletable.SKOption),
	}))

	options, err := table.Query(ctx, singletable.IndexGSI1, pollID, singletable.SKOption)
	require.NoError(t, err)
	var ids []string
	for _, item := range options {
		id, _ := singletable.StringAttr(item, singletable.AttrPK)
		ids = append(ids, id)
	}
	assert.ElementsMatch(t, []string{first, second}, ids)

	votes, err := table.Query(ctx, singletable.IndexGSI2, first, singletable.SKOption)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	id, _ := singletable.StringAttr(votes[0], singletable.AttrPK)
	assert.Equal(t, voteID, id)

	none, err := table.Query(ctx, singletable.IndexGSI2, second, singletable.SKOption)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func testTransactPutAllOrNothing(t *testing.T, table singletable.Table) {
	ctx := context.Background()
	pollID := uuid.NewString()
	existing := uuid.NewString()
	require.NoError(t, table.PutItem(ctx, optionItem(existing, pollID)))

	fresh := uuid.NewString()
	err := table.TransactPut(ctx, []singletable.Item{
		optionItem(fresh, pollID),
		optionItem(existing, pollID),
	})
	require.Error(t, err)

	item, err := table.GetItem(ctx, singletable.OptionKey(fresh))
	require.NoError(t, err)
	assert.Nil(t, item, "no item of a failed transaction may be visible")

	a, b := uuid.NewString(), uuid.NewString()
	require.NoError(t, table.TransactPut(ctx, []singletable.Item{optionItem(a, pollID), optionItem(b, pollID)}))
	for _, id := range []string{a, b} {
		item, err := table.GetItem(ctx, singletable.OptionKey(id))
		require.NoError(t, err)
		assert.NotNil(t, item)
	}
}

// testPollStoreScenario creates a poll, casts two votes for one option and
// one for the other, then checks counters and audit log.
func testPollStoreScenario(t *testing.T, table singletable.Table) {
	ctx := context.Background()
	repo := singletable.NewPollRepository(table, singletable.NewCodec())

	poll, err := repo.CreatePoll(ctx, "Color?", []string{"Red", "Blue"})
	require.NoError(t, err)

	stored, err := repo.GetPoll(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, "Color?", stored.Question)
	assert.Equal(t, poll.Options, stored.Options)

	ids := make(map[string]string)
	for id, text := range poll.Options {
		ids[text] = id
	}
	red, blue := ids["Red"], ids["Blue"]

	for _, optionID := range []string{red, red, blue} {
		_, err := repo.RecordVote(ctx, poll.ID, optionID)
		require.NoError(t, err)
	}

	options, err := repo.GetOptionsByPollID(ctx, poll.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Option{
		{ID: red, PollID: poll.ID, Text: "Red", Votes: 2},
		{ID: blue, PollID: poll.ID, Text: "Blue", Votes: 1},
	}, options)

	votes, err := repo.GetVotesByPollID(ctx, poll.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 3)
	seen := make(map[string]bool)
	for _, v := range votes {
		assert.False(t, seen[v.ID], "vote ids must be distinct")
		seen[v.ID] = true
		assert.Equal(t, poll.ID, v.PollID)
	}

	redVotes, err := repo.GetVotesByOptionID(ctx, red)
	require.NoError(t, err)
	assert.Len(t, redVotes, 2)

	_, err = repo.RecordVote(ctx, uuid.NewString(), red)
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}
