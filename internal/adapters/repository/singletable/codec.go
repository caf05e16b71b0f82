package singletable

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

// Sort key discriminators of the three entity kinds.
const (
	SKPoll   = "poll"
	SKOption = "option"
	SKVote   = "vote"
)

const (
	attrQuestion  = "question"
	attrOptions   = "options"
	attrPollID    = "pollId"
	attrOptionID  = "optionId"
	attrText      = "text"
	attrTimestamp = "timestamp"

	// AttrVotes is the option's vote counter.
	AttrVotes = "votes"
)

// Codec maps domain entities to table items and back. It is the only place
// vote identities and timestamps are minted.
type Codec struct {
	newID func() string
	now   func() time.Time
}

func NewCodec() *Codec {
	return &Codec{
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func PollKey(pollID string) Key     { return Key{PK: pollID, SK: SKPoll} }
func OptionKey(optionID string) Key { return Key{PK: optionID, SK: SKOption} }

func (c *Codec) NewID() string {
	return c.newID()
}

func (c *Codec) EncodePoll(poll domain.Poll) Item {
	options := make(map[string]types.AttributeValue, len(poll.Options))
	for id, text := range poll.Options {
		options[id] = str(text)
	}

	return Item{
		AttrPK:       str(poll.ID),
		AttrSK:       str(SKPoll),
		attrQuestion: str(poll.Question),
		attrOptions:  &types.AttributeValueMemberM{Value: options},
	}
}

// EncodeOption builds a fresh option item. The counter always starts at
// zero whatever option.Votes holds.
func (c *Codec) EncodeOption(option domain.Option) Item {
	return Item{
		AttrPK:     str(option.ID),
		AttrSK:     str(SKOption),
		AttrGSI1PK: str(option.PollID),
		AttrGSI1SK: str(SKOption),
		attrPollID: str(option.PollID),
		attrText:   str(option.Text),
		AttrVotes:  &types.AttributeValueMemberN{Value: "0"},
	}
}

// EncodeVote builds the audit record for one vote with a new vote ID and
// the current time, and returns the vote it describes.
func (c *Codec) EncodeVote(pollID, optionID string) (Item, domain.Vote) {
	vote := domain.Vote{
		ID:        c.newID(),
		PollID:    pollID,
		OptionID:  optionID,
		Timestamp: c.now().UTC(),
	}

	item := Item{
		AttrPK:        str(vote.ID),
		AttrSK:        str(SKVote),
		AttrGSI1PK:    str(pollID),
		AttrGSI1SK:    str(SKVote),
		AttrGSI2PK:    str(optionID),
		AttrGSI2SK:    str(SKOption),
		attrPollID:    str(pollID),
		attrOptionID:  str(optionID),
		attrTimestamp: str(vote.Timestamp.Format(time.RFC3339Nano)),
	}
	return item, vote
}

func (c *Codec) DecodePoll(item Item) (*domain.Poll, error) {
	id, err := requireString(item, AttrPK)
	if err != nil {
		return nil, err
	}
	question, err := requireString(item, attrQuestion)
	if err != nil {
		return nil, err
	}

	raw, ok := item[attrOptions].(*types.AttributeValueMemberM)
	if !ok {
		return nil, malformed(attrOptions, "expected a map")
	}
	options := make(map[string]string, len(raw.Value))
	for optionID, v := range raw.Value {
		text, ok := v.(*types.AttributeValueMemberS)
		if !ok {
			return nil, malformed(attrOptions, "option "+optionID+" is not a string")
		}
		options[optionID] = text.Value
	}

	return &domain.Poll{ID: id, Question: question, Options: options}, nil
}

func (c *Codec) DecodeOptions(items []Item) ([]domain.Option, error) {
	options := make([]domain.Option, 0, len(items))
	for _, item := range items {
		id, err := requireString(item, AttrPK)
		if err != nil {
			return nil, err
		}
		pollID, err := requireString(item, AttrGSI1PK)
		if err != nil {
			return nil, err
		}
		text, err := requireString(item, attrText)
		if err != nil {
			return nil, err
		}
		votes, err := decodeCounter(item, AttrVotes)
		if err != nil {
			return nil, err
		}

		options = append(options, domain.Option{ID: id, PollID: pollID, Text: text, Votes: votes})
	}
	return options, nil
}

func (c *Codec) DecodeVotes(items []Item) ([]domain.Vote, error) {
	votes := make([]domain.Vote, 0, len(items))
	for _, item := range items {
		id, err := requireString(item, AttrPK)
		if err != nil {
			return nil, err
		}
		pollID, err := requireString(item, attrPollID)
		if err != nil {
			return nil, err
		}
		optionID, err := requireString(item, attrOptionID)
		if err != nil {
			return nil, err
		}
		raw, err := requireString(item, attrTimestamp)
		if err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, malformed(attrTimestamp, err.Error())
		}

		votes = append(votes, domain.Vote{ID: id, PollID: pollID, OptionID: optionID, Timestamp: ts})
	}
	return votes, nil
}

// ParseCounter reads an integer counter stored as a number attribute.
func ParseCounter(v types.AttributeValue) (int64, error) {
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("expected a number attribute, got %T", v)
	}
	return strconv.ParseInt(n.Value, 10, 64)
}

func decodeCounter(item Item, name string) (int64, error) {
	v, ok := item[name]
	if !ok {
		return 0, malformed(name, "missing")
	}
	n, err := ParseCounter(v)
	if err != nil {
		return 0, malformed(name, err.Error())
	}
	return n, nil
}

func requireString(item Item, name string) (string, error) {
	s, ok := StringAttr(item, name)
	if !ok {
		return "", malformed(name, "missing or not a string")
	}
	return s, nil
}

func malformed(attr, reason string) error {
	return fmt.Errorf("%w: attribute %q: %s", domain.ErrMalformedItem, attr, reason)
}

func str(s string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: s}
}
