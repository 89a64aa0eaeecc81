package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaries_Paginated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "project=DM", r.URL.Query().Get("jql"))
		assert.Equal(t, "key,summary", r.URL.Query().Get("fields"))
		switch r.URL.Query().Get("startAt") {
		case "0":
			fmt.Fprint(w, `{"total":3,"issues":[
				{"key":"DM-1","fields":{"summary":"First"}},
				{"key":"DM-2","fields":{"summary":"Second"}}]}`)
		case "2":
			fmt.Fprint(w, `{"total":3,"issues":[
				{"key":"DM-3","fields":{"summary":"Third"}}]}`)
		default:
			t.Fatalf("unexpected startAt %q", r.URL.Query().Get("startAt"))
		}
	}))
	defer srv.Close()

	src := &RESTSource{URL: srv.URL, PageSize: 2}
	summaries, err := src.Summaries(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"DM-1": "First",
		"DM-2": "Second",
		"DM-3": "Third",
	}, summaries)
}

func TestSummaries_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	src := &RESTSource{URL: srv.URL}
	_, err := src.Summaries(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
