// NexOps - Client Operations Management API
// Copyright 2026 NexLayer
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/nexlayer/nexops

// Package docstore defines the document database abstraction the service is
// built against: schemaless collections of JSON documents with get-by-id,
// set/merge, field updates, and filtered queries.
//
// The query surface deliberately mirrors what managed document stores offer:
// equality, membership-in-a-set (capped at MaxInValues per query, callers
// batch with Chunk above that), and containment-in-array, with optional
// ordering and limit. Nothing here performs schema migration.
package docstore

import (
	"context"
	"errors"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned when a document id does not exist.
var ErrNotFound = errors.New("document not found")

// MaxInValues is the maximum number of values accepted by a single OpIn
// filter. Queries above this must be batched client-side (see Chunk).
const MaxInValues = 10

// ErrTooManyInValues is returned when an OpIn filter exceeds MaxInValues.
var ErrTooManyInValues = errors.New("too many values for in query")

// Op is a query filter operator.
type Op string

const (
	// OpEqual matches documents whose field equals the value.
	OpEqual Op = "=="

	// OpIn matches documents whose field equals any of the values
	// (value must be a slice, at most MaxInValues long).
	OpIn Op = "in"

	// OpArrayContains matches documents whose array field contains the value.
	OpArrayContains Op = "array-contains"
)

// Filter is a single query predicate on a document field.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes a filtered read over a collection. Build with NewQuery
// and the chaining methods; zero value matches everything.
type Query struct {
	Filters []Filter
	OrderBy string
	Desc    bool
	N       int
}

// NewQuery returns an empty query.
func NewQuery() Query {
	return Query{}
}

// Where appends a filter predicate.
func (q Query) Where(field string, op Op, value any) Query {
	q.Filters = append(q.Filters, Filter{Field: field, Op: op, Value: value})
	return q
}

// Order sets the sort field and direction.
func (q Query) Order(field string, desc bool) Query {
	q.OrderBy = field
	q.Desc = desc
	return q
}

// Limit caps the number of returned documents. Zero means no limit.
func (q Query) Limit(n int) Query {
	q.N = n
	return q
}

// Document is a stored document: its id plus the raw JSON body.
type Document struct {
	ID   string
	Data json.RawMessage
}

// Decode unmarshals the document body into dest.
func (d Document) Decode(dest any) error {
	return json.Unmarshal(d.Data, dest)
}

// Collection is a named set of documents.
type Collection interface {
	// Get retrieves a document by id and decodes it into dest.
	// Returns ErrNotFound if absent.
	Get(ctx context.Context, id string, dest any) error

	// Add stores value under a newly generated id and returns the id.
	Add(ctx context.Context, value any) (string, error)

	// Set stores value under id, replacing any existing document.
	Set(ctx context.Context, id string, value any) error

	// Update merges fields into an existing document.
	// Returns ErrNotFound if the document does not exist.
	Update(ctx context.Context, id string, fields map[string]any) error

	// Query returns the documents matching q.
	Query(ctx context.Context, q Query) ([]Document, error)
}

// Store is a collection-oriented document database.
type Store interface {
	Collection(name string) Collection
}

// Chunk splits vals into batches of at most size elements, for issuing
// OpIn queries over sets larger than MaxInValues.
func Chunk(vals []string, size int) [][]string {
	if size <= 0 || len(vals) == 0 {
		return nil
	}
	var out [][]string
	for start := 0; start < len(vals); start += size {
		end := start + size
		if end > len(vals) {
			end = len(vals)
		}
		out = append(out, vals[start:end])
	}
	return out
}

// DecodeAll unmarshals every document into a fresh T and returns the slice.
func DecodeAll[T any](docs []Document, withID func(*T, string)) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := d.Decode(&v); err != nil {
			return nil, err
		}
		if withID != nil {
			withID(&v, d.ID)
		}
		out = append(out, v)
	}
	return out, nil
}
