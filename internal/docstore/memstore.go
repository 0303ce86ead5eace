// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	memdb "github.com/hashicorp/go-memdb"
)

// entry is stored in go-memdb. Key is "<collection>/<id>"; Value is the
// JSON-encoded document body, which also gives copy-on-read semantics.
type entry struct {
	Key   string
	Value []byte
}

// MemStore is an in-memory Store backed by go-memdb. It is safe for
// concurrent use and is the default backend for development and tests.
type MemStore struct {
	db *memdb.MemDB
}

// NewMemStore creates an empty in-memory document store.
func NewMemStore() (*MemStore, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			"docs": {
				Name: "docs",
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
				},
			},
		},
	}

	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("create memdb: %w", err)
	}

	return &MemStore{db: db}, nil
}

// Collection returns a handle to the named collection.
func (s *MemStore) Collection(name string) Collection {
	return &memCollection{db: s.db, name: name}
}

type memCollection struct {
	db   *memdb.MemDB
	name string
}

func (c *memCollection) key(id string) string {
	return c.name + "/" + id
}

func (c *memCollection) Get(ctx context.Context, id string, dest any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := c.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First("docs", "id", c.key(id))
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrNotFound
	}
	return json.Unmarshal(raw.(*entry).Value, dest)
}

func (c *memCollection) Add(ctx context.Context, value any) (string, error) {
	id := uuid.NewString()
	if err := c.Set(ctx, id, value); err != nil {
		return "", err
	}
	return id, nil
}

func (c *memCollection) Set(ctx context.Context, id string, value any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	txn := c.db.Txn(true)
	defer txn.Abort()

	if err := txn.Insert("docs", &entry{Key: c.key(id), Value: data}); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

func (c *memCollection) Update(ctx context.Context, id string, fields map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	txn := c.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First("docs", "id", c.key(id))
	if err != nil {
		return err
	}
	if raw == nil {
		return ErrNotFound
	}

	var doc map[string]any
	if err := json.Unmarshal(raw.(*entry).Value, &doc); err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	for k, v := range fields {
		doc[k] = v
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	if err := txn.Insert("docs", &entry{Key: c.key(id), Value: data}); err != nil {
		return err
	}

	txn.Commit()
	return nil
}

func (c *memCollection) Query(ctx context.Context, q Query) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, f := range q.Filters {
		if f.Op == OpIn {
			if vals, ok := f.Value.([]string); ok && len(vals) > MaxInValues {
				return nil, ErrTooManyInValues
			}
		}
	}

	txn := c.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get("docs", "id_prefix", c.name+"/")
	if err != nil {
		return nil, err
	}

	type decoded struct {
		doc    Document
		fields map[string]any
	}
	var matched []decoded

	for raw := it.Next(); raw != nil; raw = it.Next() {
		e := raw.(*entry)
		var fields map[string]any
		if err := json.Unmarshal(e.Value, &fields); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", e.Key, err)
		}
		if !matchesAll(fields, q.Filters) {
			continue
		}
		matched = append(matched, decoded{
			doc: Document{
				ID:   strings.TrimPrefix(e.Key, c.name+"/"),
				Data: json.RawMessage(e.Value),
			},
			fields: fields,
		})
	}

	if q.OrderBy != "" {
		sort.SliceStable(matched, func(i, j int) bool {
			less := compareValues(matched[i].fields[q.OrderBy], matched[j].fields[q.OrderBy]) < 0
			if q.Desc {
				return !less
			}
			return less
		})
	}

	if q.N > 0 && len(matched) > q.N {
		matched = matched[:q.N]
	}

	docs := make([]Document, len(matched))
	for i, m := range matched {
		docs[i] = m.doc
	}
	return docs, nil
}

// matchesAll evaluates every filter against the decoded document fields.
func matchesAll(fields map[string]any, filters []Filter) bool {
	for _, f := range filters {
		if !matches(fields[f.Field], f) {
			return false
		}
	}
	return true
}

func matches(fieldVal any, f Filter) bool {
	switch f.Op {
	case OpEqual:
		return jsonEqual(fieldVal, f.Value)
	case OpIn:
		vals, ok := f.Value.([]string)
		if !ok {
			return false
		}
		for _, v := range vals {
			if jsonEqual(fieldVal, v) {
				return true
			}
		}
		return false
	case OpArrayContains:
		arr, ok := fieldVal.([]any)
		if !ok {
			return false
		}
		for _, v := range arr {
			if jsonEqual(v, f.Value) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// jsonEqual compares a decoded document value against a caller-supplied
// value by normalizing both through JSON. This makes int 3 equal float64(3)
// and avoids type juggling at every call site.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return string(ab) == string(bb)
}

// compareValues orders two decoded JSON values: numbers numerically,
// everything else by string form. Missing values sort first.
func compareValues(a, b any) int {
	an, aok := a.(float64)
	bn, bok := b.(float64)
	if aok && bok {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	as, bs := stringForm(a), stringForm(b)
	return strings.Compare(as, bs)
}

func stringForm(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
