package singletable

import (
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

func fixedCodec() *Codec {
	var seq int
	return &Codec{
		newID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
		now: func() time.Time {
			return time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.FixedZone("BRT", -3*60*60))
		},
	}
}

func TestEncodeOptionStartsAtZero(t *testing.T) {
	c := fixedCodec()
	item := c.EncodeOption(domain.Option{ID: "o1", PollID: "p1", Text: "Red", Votes: 42})

	assert.Equal(t, &types.AttributeValueMemberN{Value: "0"}, item[AttrVotes])
	assert.Equal(t, str("o1"), item[AttrPK])
	assert.Equal(t, str(SKOption), item[AttrSK])
	assert.Equal(t, str("p1"), item[AttrGSI1PK])
	assert.Equal(t, str(SKOption), item[AttrGSI1SK])
}

func TestEncodeVoteMintsIdentityAndTime(t *testing.T) {
	c := fixedCodec()

	item, vote := c.EncodeVote("p1", "o1")
	assert.Equal(t, "id-1", vote.ID)
	assert.Equal(t, "p1", vote.PollID)
	assert.Equal(t, "o1", vote.OptionID)
	assert.Equal(t, time.UTC, vote.Timestamp.Location())
	assert.Equal(t, str("2024-05-01T15:30:00.123456789Z"), item[attrTimestamp])
	assert.Equal(t, str("o1"), item[AttrGSI2PK])
	assert.Equal(t, str(SKOption), item[AttrGSI2SK])
	assert.Equal(t, str(SKVote), item[AttrGSI1SK])

	_, second := c.EncodeVote("p1", "o1")
	assert.NotEqual(t, vote.ID, second.ID)

	decoded, err := c.DecodeVotes([]Item{item})
	require.NoError(t, err)
	require.Len(t, decoded, 1)
	assert.Equal(t, vote.ID, decoded[0].ID)
	assert.True(t, vote.Timestamp.Equal(decoded[0].Timestamp))
}

func TestDecodePoll(t *testing.T) {
	c := fixedCodec()
	poll := domain.Poll{ID: "p1", Question: "Color?", Options: map[string]string{"o1": "Red", "o2": "Blue"}}

	got, err := c.DecodePoll(c.EncodePoll(poll))
	require.NoError(t, err)
	assert.Equal(t, &poll, got)
}

func TestDecodeMalformedItems(t *testing.T) {
	c := fixedCodec()

	tests := []struct {
		name   string
		decode func() error
	}{
		{
			name: "poll without options map",
			decode: func() error {
				_, err := c.DecodePoll(Item{AttrPK: str("p1"), attrQuestion: str("Q?"), attrOptions: str("Red")})
				return err
			},
		},
		{
			name: "poll without question",
			decode: func() error {
				_, err := c.DecodePoll(Item{AttrPK: str("p1")})
				return err
			},
		},
		{
			name: "option with string counter",
			decode: func() error {
				item := c.EncodeOption(domain.Option{ID: "o1", PollID: "p1", Text: "Red"})
				item[AttrVotes] = str("3")
				_, err := c.DecodeOptions([]Item{item})
				return err
			},
		},
		{
			name: "option with non-integer counter",
			decode: func() error {
				item := c.EncodeOption(domain.Option{ID: "o1", PollID: "p1", Text: "Red"})
				item[AttrVotes] = &types.AttributeValueMemberN{Value: "1.5"}
				_, err := c.DecodeOptions([]Item{item})
				return err
			},
		},
		{
			name: "option without counter",
			decode: func() error {
				item := c.EncodeOption(domain.Option{ID: "o1", PollID: "p1", Text: "Red"})
				delete(item, AttrVotes)
				_, err := c.DecodeOptions([]Item{item})
				return err
			},
		},
		{
			name: "vote with bad timestamp",
			decode: func() error {
				item, _ := c.EncodeVote("p1", "o1")
				item[attrTimestamp] = str("yesterday")
				_, err := c.DecodeVotes([]Item{item})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.decode(), domain.ErrMalformedItem)
		})
	}
}

func TestDecodeEmptyResults(t *testing.T) {
	c := fixedCodec()

	options, err := c.DecodeOptions(nil)
	require.NoError(t, err)
	assert.Empty(t, options)

	votes, err := c.DecodeVotes(nil)
	require.NoError(t, err)
	assert.Empty(t, votes)
}
