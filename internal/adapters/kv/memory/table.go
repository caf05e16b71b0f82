// Package memory keeps the poll table in process memory. It is meant for
// tests and local runs; all writes hold one lock, which gives the atomic
// counter and the all-or-nothing transaction the poll store relies on.
package memory

import (
	"context"
	"fmt"
	"maps"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/repository/singletable"
)

type Table struct {
	mu    sync.RWMutex
	items map[singletable.Key]singletable.Item
}

func NewTable() *Table {
	return &Table{items: make(map[singletable.Key]singletable.Item)}
}

func (t *Table) GetItem(ctx context.Context, key singletable.Key) (singletable.Item, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	item, ok := t.items[key]
	if !ok {
		return nil, nil
	}
	return copyItem(item), nil
}

func (t *Table) PutItem(ctx context.Context, item singletable.Item) error {
	key, err := singletable.KeyOf(item)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.items[key] = copyItem(item)
	return nil
}

func (t *Table) UpdateCounter(ctx context.Context, key singletable.Key, update singletable.CounterUpdate) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, ok := t.items[key]
	if !ok {
		return 0, singletable.ErrConditionFailed
	}
	if update.ConditionAttribute != "" {
		v, _ := singletable.StringAttr(item, update.ConditionAttribute)
		if v != update.ConditionValue {
			return 0, singletable.ErrConditionFailed
		}
	}

	var current int64
	if v, ok := item[update.Attribute]; ok {
		n, err := singletable.ParseCounter(v)
		if err != nil {
			return 0, fmt.Errorf("counter %q: %w", update.Attribute, err)
		}
		current = n
	}

	next := current + update.Delta
	updated := copyItem(item)
	updated[update.Attribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(next, 10)}
	t.items[key] = updated
	return next, nil
}

func (t *Table) Query(ctx context.Context, index singletable.Index, partition, sort string) ([]singletable.Item, error) {
	pkAttr, skAttr := index.KeyAttributes()

	t.mu.RLock()
	defer t.mu.RUnlock()

	var result []singletable.Item
	for _, item := range t.items {
		pk, _ := singletable.StringAttr(item, pkAttr)
		sk, _ := singletable.StringAttr(item, skAttr)
		if pk == partition && sk == sort {
			result = append(result, copyItem(item))
		}
	}
	return result, nil
}

func (t *Table) TransactPut(ctx context.Context, items []singletable.Item) error {
	keys := make([]singletable.Key, len(items))
	for i, item := range items {
		key, err := singletable.KeyOf(item)
		if err != nil {
			return err
		}
		keys[i] = key
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	seen := make(map[singletable.Key]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := t.items[key]; ok {
			return fmt.Errorf("transaction cancelled: item %s/%s already exists", key.PK, key.SK)
		}
		if _, ok := seen[key]; ok {
			return fmt.Errorf("transaction cancelled: duplicate key %s/%s", key.PK, key.SK)
		}
		seen[key] = struct{}{}
	}

	for i, item := range items {
		t.items[keys[i]] = copyItem(item)
	}
	return nil
}

// Len returns the number of stored items.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.items)
}

// copyItem is shallow: attribute values are never mutated in place.
func copyItem(item singletable.Item) singletable.Item {
	return maps.Clone(item)
}
