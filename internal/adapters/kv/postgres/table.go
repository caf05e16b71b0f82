package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/vncsmyrnk/tablepoll/internal/adapters/repository/singletable"
)

// Table stores every item of the poll table as one row of poll_items: the
// key attributes as columns, the whole item as a jsonb document.
type Table struct {
	db *sql.DB
}

func NewTable(db *sql.DB) *Table {
	return &Table{db: db}
}

type row struct {
	pk, sk         string
	gsi1pk, gsi1sk sql.NullString
	gsi2pk, gsi2sk sql.NullString
	doc            string
}

func (t *Table) GetItem(ctx context.Context, key singletable.Key) (singletable.Item, error) {
	query := `SELECT doc FROM poll_items WHERE pk = $1 AND sk = $2`

	var doc []byte
	err := t.db.QueryRowContext(ctx, query, key.PK, key.SK).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return decodeDoc(doc)
}

func (t *Table) PutItem(ctx context.Context, item singletable.Item) error {
	r, err := encodeRow(item)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO poll_items (pk, sk, gsi1pk, gsi1sk, gsi2pk, gsi2sk, doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
		ON CONFLICT (pk, sk) DO UPDATE
		SET gsi1pk = EXCLUDED.gsi1pk,
		    gsi1sk = EXCLUDED.gsi1sk,
		    gsi2pk = EXCLUDED.gsi2pk,
		    gsi2sk = EXCLUDED.gsi2sk,
		    doc = EXCLUDED.doc
	`
	_, err = t.db.ExecContext(ctx, query, r.pk, r.sk, r.gsi1pk, r.gsi1sk, r.gsi2pk, r.gsi2sk, r.doc)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}
	return nil
}

// UpdateCounter runs as a single UPDATE, so the row lock makes the
// read-modify-write atomic.
func (t *Table) UpdateCounter(ctx context.Context, key singletable.Key, update singletable.CounterUpdate) (int64, error) {
	query := `
		UPDATE poll_items
		SET doc = jsonb_set(doc, ARRAY[$3::text], to_jsonb(COALESCE((doc->>$3::text)::bigint, 0) + $4::bigint))
		WHERE pk = $1 AND sk = $2
		  AND ($5::text = '' OR doc->>$5::text = $6::text)
		RETURNING (doc->>$3::text)::bigint
	`

	var next int64
	err := t.db.QueryRowContext(ctx, query,
		key.PK, key.SK, update.Attribute, update.Delta, update.ConditionAttribute, update.ConditionValue,
	).Scan(&next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, singletable.ErrConditionFailed
		}
		return 0, fmt.Errorf("failed to update counter: %w", err)
	}
	return next, nil
}

func (t *Table) Query(ctx context.Context, index singletable.Index, partition, sort string) ([]singletable.Item, error) {
	query := `SELECT doc FROM poll_items WHERE gsi1pk = $1 AND gsi1sk = $2`
	if index == singletable.IndexGSI2 {
		query = `SELECT doc FROM poll_items WHERE gsi2pk = $1 AND gsi2sk = $2`
	}

	rows, err := t.db.QueryContext(ctx, query, partition, sort)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", index, err)
	}
	defer rows.Close()

	var items []singletable.Item
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item, err := decodeDoc(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}

// TransactPut inserts all rows in one transaction. A key that already
// exists violates the primary key and rolls everything back.
func (t *Table) TransactPut(ctx context.Context, items []singletable.Item) error {
	rows := make([]row, len(items))
	for i, item := range items {
		r, err := encodeRow(item)
		if err != nil {
			return err
		}
		rows[i] = r
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO poll_items (pk, sk, gsi1pk, gsi1sk, gsi2pk, gsi2sk, doc)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb)
	`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare item statement: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		_, err = stmt.ExecContext(ctx, r.pk, r.sk, r.gsi1pk, r.gsi1sk, r.gsi2pk, r.gsi2sk, r.doc)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func encodeRow(item singletable.Item) (row, error) {
	key, err := singletable.KeyOf(item)
	if err != nil {
		return row{}, err
	}

	var doc map[string]any
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return row{}, fmt.Errorf("failed to convert item: %w", err)
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return row{}, fmt.Errorf("failed to marshal item: %w", err)
	}

	return row{
		pk:     key.PK,
		sk:     key.SK,
		gsi1pk: nullString(item, singletable.AttrGSI1PK),
		gsi1sk: nullString(item, singletable.AttrGSI1SK),
		gsi2pk: nullString(item, singletable.AttrGSI2PK),
		gsi2sk: nullString(item, singletable.AttrGSI2SK),
		doc:    string(raw),
	}, nil
}

func decodeDoc(raw []byte) (singletable.Item, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to convert item: %w", err)
	}
	return item, nil
}

func nullString(item singletable.Item, name string) sql.NullString {
	s, ok := singletable.StringAttr(item, name)
	return sql.NullString{String: s, Valid: ok}
}
