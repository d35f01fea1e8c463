package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xcono/slimrest/schema"
	"github.com/xcono/slimrest/web"
	"github.com/xcono/slimrest/web/database"
)

// seededUsers is the row count inserted by the migrations
const seededUsers = 5

// testStoreVerbs runs the record store verbs against a seeded users table
func testStoreVerbs(t *testing.T, store *database.Store) {
	ctx := context.Background()

	total, err := store.CountRows(ctx, "users", nil)
	require.NoError(t, err)
	require.Equal(t, int64(seededUsers), total)

	id, err := store.Insert(ctx, "users", database.NewFields("name", "Eve", "email", "eve@example.com", "age", 22))
	require.NoError(t, err)
	assert.Equal(t, int64(seededUsers+1), id)

	record, err := store.GetByID(ctx, "users", "id", id)
	require.NoError(t, err)
	assert.Equal(t, "Eve", record["name"])

	engineers, err := store.FetchAll(ctx,
		"SELECT name FROM users WHERE department = :department AND age > :age ORDER BY age",
		database.Named{"department": "Engineering", "age": 25})
	require.NoError(t, err)
	require.Len(t, engineers, 2)
	assert.Equal(t, "Mary Jane Watson", engineers[0]["name"])
	assert.Equal(t, "Charlie Brown", engineers[1]["name"])

	n, err := store.Update(ctx, "users", database.NewFields("age", 23), database.NewFields("id", id))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Update(ctx, "users", database.NewFields("age", 1), database.NewFields())
	assert.ErrorIs(t, err, database.ErrEmptyCondition)

	_, err = store.Insert(ctx, "users", database.NewFields("name", "Dup", "email", "alice@example.com"))
	var qErr *database.QueryError
	assert.ErrorAs(t, err, &qErr)

	n, err = store.DeleteByIDs(ctx, "users", "id", id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.FetchSingle(ctx, "SELECT * FROM users WHERE id = :id", database.Named{"id": id})
	assert.ErrorIs(t, err, database.ErrNoRow)
}

// testHTTP serves cfg and exercises the resource routes
func testHTTP(t *testing.T, cfg database.ConnectionConfig) {
	s, err := web.NewServer(schema.Config{
		Name:    "slimrest",
		Version: "e2e",
		Host:    "127.0.0.1",
		Services: schema.Services{
			"hr": {
				Database: cfg,
				Schemas:  schema.Schemas{"people": {Table: "users", Hidden: []string{"password"}, PageSize: 2}},
			},
		},
	})
	require.NoError(t, err)
	defer s.Close()

	server := httptest.NewServer(s.Handler())
	defer server.Close()

	resp, raw := request(t, http.MethodGet, server.URL+"/people?department=Engineering&order=age.desc&page=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var page struct {
		Meta map[string]int   `json:"meta"`
		Data []map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &page))
	assert.Equal(t, map[string]int{"count": 3, "offset": 2, "page": 2, "page_size": 2, "last_page": 2}, page.Meta)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Alice", page.Data[0]["name"])
	assert.NotContains(t, page.Data[0], "password")

	resp, raw = request(t, http.MethodPost, server.URL+"/people", `{"name": "Zoe", "department": "Legal"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	resp, _ = request(t, http.MethodPatch, server.URL+"/people?department=Legal", `{"age": 41}`)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = request(t, http.MethodDelete, server.URL+"/people?department=Legal", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("X-Total-Count"))

	resp, _ = request(t, http.MethodGet, server.URL+"/people?department=Legal", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func request(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()

	req, err := http.NewRequest(method, url, bytes.NewBufferString(body))
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}
