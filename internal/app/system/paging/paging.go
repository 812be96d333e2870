// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"slices"
	"strconv"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default browse page for cursor-append lists.
const PageSize = 50

// PrefixSentinel closes a prefix range: [term, term+PrefixSentinel).
const PrefixSentinel = "\uf8ff"

// ParsePage extracts the 1-based "page" query parameter. Returns 1 if not
// present or invalid.
func ParsePage(r *http.Request) int {
	n, err := strconv.Atoi(query.Get(r, "page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParsePageSize extracts "page_size" when it is one of allowed, else def.
func ParsePageSize(r *http.Request, allowed []int, def int) int {
	n, err := strconv.Atoi(query.Get(r, "page_size"))
	if err != nil || !slices.Contains(allowed, n) {
		return def
	}
	return n
}

// AfterWindow decodes an "after" cursor into the keyset condition on
// (sortField, _id). ok is false for an empty or undecodable cursor, which
// callers treat as the first page.
func AfterWindow(after, sortField string) (window bson.M, ok bool) {
	if after == "" {
		return nil, false
	}
	c, ok := wafflemongo.DecodeCursor(after)
	if !ok {
		return nil, false
	}
	return wafflemongo.KeysetWindow(sortField, "gt", c.CI, c.ID), true
}

// ApplyAfter merges the keyset condition for after into filter.
func ApplyAfter(filter bson.M, after, sortField string) {
	if window, ok := AfterWindow(after, sortField); ok {
		filter["$or"] = window["$or"]
	}
}

// ForwardFind returns find options sorted ascending by (sortField, _id).
func ForwardFind(sortField string, limit int) *options.FindOptions {
	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit))
}

// NextCursor encodes the cursor after the last row ("" for no rows).
func NextCursor[T any](rows []T, keyFn func(T) string, idFn func(T) primitive.ObjectID) string {
	if len(rows) == 0 {
		return ""
	}
	last := rows[len(rows)-1]
	return wafflemongo.EncodeCursor(keyFn(last), idFn(last))
}

// PrefixRange returns the range condition matching values that start with
// term. Comparison is on the raw stored value.
func PrefixRange(term string) bson.M {
	return bson.M{"$gte": term, "$lt": term + PrefixSentinel}
}
