// Package github implements the repository source against the GitHub
// GraphQL API: repository listing, tags with tagger and commit dates,
// merged pull requests partitioned by base branch, and branch names.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/mwittgen/changelog/internal/changelog"
	"github.com/mwittgen/changelog/internal/reltag"
)

// DefaultURL is the public GitHub GraphQL endpoint.
const DefaultURL = "https://api.github.com/graphql"

// DefaultPageSize is the page size used for cursor pagination.
const DefaultPageSize = 100

// Source queries one GitHub owner's repositories. It implements
// changelog.RepositorySource.
type Source struct {
	// Owner is the GitHub organization or user holding the repositories.
	Owner string
	// Token authenticates the GraphQL requests.
	Token string
	// URL overrides the GraphQL endpoint; empty means DefaultURL.
	URL string
	// Client is the HTTP client to use; nil means http.DefaultClient.
	Client *http.Client
	// PageSize overrides the pagination size; values below 1 mean
	// DefaultPageSize.
	PageSize int
}

func (s *Source) url() string {
	if s.URL == "" {
		return DefaultURL
	}
	return s.URL
}

func (s *Source) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s *Source) pageSize() int {
	if s.PageSize < 1 {
		return DefaultPageSize
	}
	return s.PageSize
}

type request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type pageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor"`
}

// query executes one GraphQL request and decodes its data into out.
func (s *Source) query(ctx context.Context, q string, vars map[string]any, out any) error {
	body, err := json.Marshal(request{Query: q, Variables: vars})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url(), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("graphql endpoint returned status %s", resp.Status)
	}
	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("decoding graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return fmt.Errorf("graphql error: %s", envelope.Errors[0].Message)
	}
	return json.Unmarshal(envelope.Data, out)
}

const reposQuery = `
query repo_list($owner: String!, $first: Int!, $cursor: String) {
  repositoryOwner(login: $owner) {
    repositories(first: $first, after: $cursor) {
      pageInfo { hasNextPage endCursor }
      nodes { name }
    }
  }
}`

// Repos lists the owner's repository names, lower-cased, sorted.
func (s *Source) Repos(ctx context.Context) ([]string, error) {
	var names []string
	cursor := ""
	for {
		var data struct {
			RepositoryOwner struct {
				Repositories struct {
					PageInfo pageInfo `json:"pageInfo"`
					Nodes    []struct {
						Name string `json:"name"`
					} `json:"nodes"`
				} `json:"repositories"`
			} `json:"repositoryOwner"`
		}
		if err := s.query(ctx, reposQuery, s.vars(cursor), &data); err != nil {
			return nil, fmt.Errorf("listing repositories: %w", err)
		}
		conn := data.RepositoryOwner.Repositories
		for _, n := range conn.Nodes {
			names = append(names, strings.ToLower(n.Name))
		}
		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}
	sort.Strings(names)
	return names, nil
}

const tagsQuery = `
query tag_list($owner: String!, $name: String!, $first: Int!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    refs(first: $first, after: $cursor, refPrefix: "refs/tags/") {
      pageInfo { hasNextPage endCursor }
      nodes {
        name
        target {
          __typename
          ... on Tag {
            tagger { date }
            target { ... on Commit { authoredDate } }
          }
          ... on Commit { authoredDate }
        }
      }
    }
  }
}`

type tagNode struct {
	Name   string `json:"name"`
	Target struct {
		TypeName string `json:"__typename"`
		Tagger   *struct {
			Date string `json:"date"`
		} `json:"tagger"`
		AuthoredDate string `json:"authoredDate"`
		Target       *struct {
			AuthoredDate string `json:"authoredDate"`
		} `json:"target"`
	} `json:"target"`
}

// Tags lists the repository's tags with their timestamps. An annotated tag
// reports the tagger's date and the underlying commit's authored date; a
// lightweight tag reports the commit date for both. Tags whose payload
// carries no usable date are skipped.
func (s *Source) Tags(ctx context.Context, repo string) ([]changelog.TagRef, error) {
	var refs []changelog.TagRef
	cursor := ""
	for {
		var data struct {
			Repository struct {
				Refs struct {
					PageInfo pageInfo  `json:"pageInfo"`
					Nodes    []tagNode `json:"nodes"`
				} `json:"refs"`
			} `json:"repository"`
		}
		vars := s.vars(cursor)
		vars["name"] = repo
		if err := s.query(ctx, tagsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("listing tags of %s: %w", repo, err)
		}
		conn := data.Repository.Refs
		for _, node := range conn.Nodes {
			if ref, ok := tagRefFromNode(node); ok {
				refs = append(refs, ref)
			}
		}
		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}
	return refs, nil
}

// tagRefFromNode converts one GraphQL tag node, falling back to the
// alternate timestamp field when one of the two payload shapes lacks it.
func tagRefFromNode(node tagNode) (changelog.TagRef, bool) {
	var tagTime, commitTime time.Time
	if node.Target.Tagger != nil {
		tagTime = parseDate(node.Target.Tagger.Date)
		if node.Target.Target != nil {
			commitTime = parseDate(node.Target.Target.AuthoredDate)
		}
		if commitTime.IsZero() {
			commitTime = tagTime
		}
	} else {
		commitTime = parseDate(node.Target.AuthoredDate)
		tagTime = commitTime
	}
	if tagTime.IsZero() && commitTime.IsZero() {
		return changelog.TagRef{}, false
	}
	if tagTime.IsZero() {
		tagTime = commitTime
	}
	return changelog.TagRef{
		Tag:        reltag.Parse(node.Name),
		TagTime:    tagTime,
		CommitTime: commitTime,
	}, true
}

func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

const pullsQuery = `
query pull_list($owner: String!, $name: String!, $first: Int!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    pullRequests(first: $first, after: $cursor, states: MERGED) {
      pageInfo { hasNextPage endCursor }
      nodes { baseRefName title mergedAt }
    }
  }
}`

// PullRequests lists the repository's merged pull requests partitioned by
// base branch, each partition ordered by merge time ascending.
func (s *Source) PullRequests(ctx context.Context, repo string) (map[string][]changelog.MergeEvent, error) {
	partitions := make(map[string][]changelog.MergeEvent)
	cursor := ""
	for {
		var data struct {
			Repository struct {
				PullRequests struct {
					PageInfo pageInfo `json:"pageInfo"`
					Nodes    []struct {
						BaseRefName string `json:"baseRefName"`
						Title       string `json:"title"`
						MergedAt    string `json:"mergedAt"`
					} `json:"nodes"`
				} `json:"pullRequests"`
			} `json:"repository"`
		}
		vars := s.vars(cursor)
		vars["name"] = repo
		if err := s.query(ctx, pullsQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("listing pull requests of %s: %w", repo, err)
		}
		conn := data.Repository.PullRequests
		for _, n := range conn.Nodes {
			mergedAt := parseDate(n.MergedAt)
			if mergedAt.IsZero() {
				continue
			}
			partitions[n.BaseRefName] = append(partitions[n.BaseRefName], changelog.MergeEvent{
				Branch:   n.BaseRefName,
				MergedAt: mergedAt,
				Title:    n.Title,
			})
		}
		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}
	for branch := range partitions {
		events := partitions[branch]
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].MergedAt.Before(events[j].MergedAt)
		})
		partitions[branch] = events
	}
	return partitions, nil
}

const branchesQuery = `
query branch_list($owner: String!, $name: String!, $first: Int!, $cursor: String) {
  repository(owner: $owner, name: $name) {
    refs(first: $first, after: $cursor, refPrefix: "refs/heads/") {
      pageInfo { hasNextPage endCursor }
      nodes { name }
    }
  }
}`

// Branches lists the repository's branch names.
func (s *Source) Branches(ctx context.Context, repo string) ([]string, error) {
	var names []string
	cursor := ""
	for {
		var data struct {
			Repository struct {
				Refs struct {
					PageInfo pageInfo `json:"pageInfo"`
					Nodes    []struct {
						Name string `json:"name"`
					} `json:"nodes"`
				} `json:"refs"`
			} `json:"repository"`
		}
		vars := s.vars(cursor)
		vars["name"] = repo
		if err := s.query(ctx, branchesQuery, vars, &data); err != nil {
			return nil, fmt.Errorf("listing branches of %s: %w", repo, err)
		}
		conn := data.Repository.Refs
		for _, n := range conn.Nodes {
			names = append(names, n.Name)
		}
		if !conn.PageInfo.HasNextPage {
			break
		}
		cursor = conn.PageInfo.EndCursor
	}
	return names, nil
}

func (s *Source) vars(cursor string) map[string]any {
	vars := map[string]any{
		"owner": s.Owner,
		"first": s.pageSize(),
	}
	if cursor != "" {
		vars["cursor"] = cursor
	}
	return vars
}
