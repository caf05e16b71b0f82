package memory

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/kv/kvtest"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/repository/singletable"
)

func TestTable(t *testing.T) {
	kvtest.RunTableTests(t, "MemoryTable", func(t *testing.T) singletable.Table {
		return NewTable()
	})
}

func TestTableReturnsCopies(t *testing.T) {
	ctx := context.Background()
	table := NewTable()
	item := singletable.Item{
		singletable.AttrPK: &types.AttributeValueMemberS{Value: "p1"},
		singletable.AttrSK: &types.AttributeValueMemberS{Value: singletable.SKPoll},
		"question":         &types.AttributeValueMemberS{Value: "Q?"},
	}
	require.NoError(t, table.PutItem(ctx, item))

	item["question"] = &types.AttributeValueMemberS{Value: "changed"}
	got, err := table.GetItem(ctx, singletable.PollKey("p1"))
	require.NoError(t, err)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "Q?"}, got["question"])

	delete(got, "question")
	again, err := table.GetItem(ctx, singletable.PollKey("p1"))
	require.NoError(t, err)
	assert.Contains(t, again, "question")
}

func TestTransactPutRejectsDuplicateKeys(t *testing.T) {
	table := NewTable()
	item := singletable.Item{
		singletable.AttrPK: &types.AttributeValueMemberS{Value: "o1"},
		singletable.AttrSK: &types.AttributeValueMemberS{Value: singletable.SKOption},
	}

	err := table.TransactPut(context.Background(), []singletable.Item{item, item})
	assert.Error(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestPutItemRequiresKey(t *testing.T) {
	table := NewTable()
	err := table.PutItem(context.Background(), singletable.Item{
		"question": &types.AttributeValueMemberS{Value: "Q?"},
	})
	assert.Error(t, err)
	assert.Equal(t, 0, table.Len())
}
