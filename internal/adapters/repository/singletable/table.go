package singletable

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	DefaultTableName = "PollTable"

	AttrPK     = "PK"
	AttrSK     = "SK"
	AttrGSI1PK = "GSI1PK"
	AttrGSI1SK = "GSI1SK"
	AttrGSI2PK = "GSI2PK"
	AttrGSI2SK = "GSI2SK"
)

// Index names a secondary index of the table.
type Index string

const (
	IndexGSI1 Index = "GSI1"
	IndexGSI2 Index = "GSI2"
)

// KeyAttributes returns the partition and sort key attribute names of the index.
func (i Index) KeyAttributes() (string, string) {
	switch i {
	case IndexGSI2:
		return AttrGSI2PK, AttrGSI2SK
	default:
		return AttrGSI1PK, AttrGSI1SK
	}
}

// ErrConditionFailed is returned by UpdateCounter when the item does not
// exist or its condition attribute does not hold the expected value.
var ErrConditionFailed = errors.New("condition failed")

// Item is the attribute map persisted under one primary key.
type Item = map[string]types.AttributeValue

type Key struct {
	PK string
	SK string
}

// CounterUpdate adds Delta to the numeric attribute Attribute. When
// ConditionAttribute is set the update only applies if that attribute
// equals ConditionValue.
type CounterUpdate struct {
	Attribute          string
	Delta              int64
	ConditionAttribute string
	ConditionValue     string
}

// Table is the capability the poll store needs from the underlying
// key-value engine. Implementations must make UpdateCounter an atomic
// read-modify-write and TransactPut all-or-nothing. Nothing is retried.
type Table interface {
	// GetItem returns nil and no error when the key is absent.
	GetItem(ctx context.Context, key Key) (Item, error)
	PutItem(ctx context.Context, item Item) error
	// UpdateCounter returns the counter value after the update.
	UpdateCounter(ctx context.Context, key Key, update CounterUpdate) (int64, error)
	// Query returns every item whose index keys equal partition and sort.
	Query(ctx context.Context, index Index, partition, sort string) ([]Item, error)
	// TransactPut writes all items or none. It fails if any key already exists.
	TransactPut(ctx context.Context, items []Item) error
}

// StringAttr returns the string value of a key attribute, if present.
func StringAttr(item Item, name string) (string, bool) {
	v, ok := item[name].(*types.AttributeValueMemberS)
	if !ok {
		return "", false
	}
	return v.Value, true
}

// KeyOf extracts the primary key of an item.
func KeyOf(item Item) (Key, error) {
	pk, ok := StringAttr(item, AttrPK)
	if !ok {
		return Key{}, errors.New("item has no PK")
	}
	sk, ok := StringAttr(item, AttrSK)
	if !ok {
		return Key{}, errors.New("item has no SK")
	}
	return Key{PK: pk, SK: sk}, nil
}
