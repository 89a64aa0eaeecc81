// Package jira retrieves issue summaries from a Jira REST endpoint.
package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultURL is the Jira search endpoint of the issue tracker.
const DefaultURL = "https://jira.lsstcorp.org/rest/api/2/search"

// DefaultProject is the issue-tracker project whose tickets are resolved.
const DefaultProject = "DM"

// DefaultPageSize is the number of issues requested per page.
const DefaultPageSize = 5000

// RESTSource pages through the Jira search API and collects issue keys with
// their summaries. It implements changelog.IssueSource.
type RESTSource struct {
	// URL is the search endpoint; empty means DefaultURL.
	URL string
	// Project is the Jira project key; empty means DefaultProject.
	Project string
	// Client is the HTTP client to use; nil means http.DefaultClient.
	Client *http.Client
	// PageSize overrides the page size; values below 1 mean DefaultPageSize.
	PageSize int
}

func (s *RESTSource) endpoint() string {
	if s.URL == "" {
		return DefaultURL
	}
	return s.URL
}

func (s *RESTSource) project() string {
	if s.Project == "" {
		return DefaultProject
	}
	return s.Project
}

func (s *RESTSource) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s *RESTSource) pageSize() int {
	if s.PageSize < 1 {
		return DefaultPageSize
	}
	return s.PageSize
}

type searchResult struct {
	Total  int `json:"total"`
	Issues []struct {
		Key    string `json:"key"`
		Fields struct {
			Summary string `json:"summary"`
		} `json:"fields"`
	} `json:"issues"`
}

// Summaries returns every ticket of the project keyed by issue key
// (e.g. "DM-1234") with its summary text.
func (s *RESTSource) Summaries(ctx context.Context) (map[string]string, error) {
	results := make(map[string]string)
	startAt := 0
	for {
		page, err := s.fetchPage(ctx, startAt)
		if err != nil {
			return nil, err
		}
		for _, issue := range page.Issues {
			results[issue.Key] = issue.Fields.Summary
		}
		startAt += s.pageSize()
		if startAt >= page.Total {
			break
		}
	}
	return results, nil
}

func (s *RESTSource) fetchPage(ctx context.Context, startAt int) (*searchResult, error) {
	q := url.Values{}
	q.Set("jql", "project="+s.project())
	q.Set("startAt", strconv.Itoa(startAt))
	q.Set("maxResults", strconv.Itoa(s.pageSize()))
	q.Set("fields", "key,summary")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint()+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying issue tracker: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("issue tracker returned status %s", resp.Status)
	}

	var page searchResult
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding issue search result: %w", err)
	}
	return &page, nil
}
