package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"github.com/xcono/slimrest/builder"
	"github.com/xcono/slimrest/web/database"
)

// maxBodySize caps request bodies
const maxBodySize = 1 << 20

// decodeFields reads a JSON object keeping its key order.
// Numbers stay json.Number so integers keep every digit; nested objects and
// arrays are rejected.
func decodeFields(r *http.Request) (*database.Fields, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, &builder.ParseError{Param: "body", Reason: err.Error()}
	}

	raw := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(body, raw); err != nil {
		return nil, &builder.ParseError{Param: "body", Reason: "expected a JSON object"}
	}

	fields := database.NewFields()
	for pair := raw.Oldest(); pair != nil; pair = pair.Next() {
		if !builder.ValidIdentifier(pair.Key) {
			return nil, &builder.ParseError{Param: "body", Reason: fmt.Sprintf("invalid column name %q", pair.Key)}
		}

		value, err := decodeValue(pair.Value)
		if err != nil {
			return nil, &builder.ParseError{Param: "body", Reason: fmt.Sprintf("column %s: %v", pair.Key, err)}
		}

		switch value.(type) {
		case map[string]any, []any:
			return nil, &builder.ParseError{Param: "body", Reason: fmt.Sprintf("column %s must be a scalar", pair.Key)}
		}
		fields.Set(pair.Key, value)
	}

	return fields, nil
}

func decodeValue(data json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// conditions builds the WHERE of an update or delete: the key column when id
// is set, the query string filters otherwise.
func conditions(r *http.Request, res *Resource, id string) (*database.Fields, error) {
	if id != "" {
		return database.NewFields(res.Key, builder.ParseValue(id)), nil
	}
	return builder.ParseFilters(r.URL.Query())
}
