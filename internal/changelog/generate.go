package changelog

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mwittgen/changelog/internal/reltag"
)

// ManifestSet is the ordered output of a manifest source for one cadence:
// the releases in ascending tag order and the sorted union of all package
// names seen across them.
type ManifestSet struct {
	Releases []Release
	Products []string
}

// ManifestSource lists the per-release package manifests of one cadence.
type ManifestSource interface {
	Releases(ctx context.Context, cadence reltag.Cadence) (*ManifestSet, error)
}

// RepositorySource supplies per-repository tag and merge history.
// PullRequests partitions merged changes by target branch; implementations
// return every partition they have and the engine consumes only the trunk
// and tracked release branches.
type RepositorySource interface {
	Repos(ctx context.Context) ([]string, error)
	Tags(ctx context.Context, repo string) ([]TagRef, error)
	PullRequests(ctx context.Context, repo string) (map[string][]MergeEvent, error)
	Branches(ctx context.Context, repo string) ([]string, error)
}

// IssueSource resolves ticket keys to their issue-tracker summaries.
type IssueSource interface {
	Summaries(ctx context.Context) (map[string]string, error)
}

// ReleaseView is one rendered release: its canonical name, display date,
// package diff, and cross-referenced ticket rows.
type ReleaseView struct {
	Name    string
	Date    time.Time
	IsTail  bool
	Added   []string
	Removed []string
	Tickets []TicketRow
}

// Report is the full rendering input for one cadence run: release views in
// descending release order plus the ordered product list for the index.
type Report struct {
	Cadence  reltag.Cadence
	Releases []ReleaseView
	Products []string
}

// repoCache holds the repository data fetched for one generator lifetime.
// It replaces the hidden process-wide cache of the original design with an
// object whose scope is explicit: a Generator lives for one invocation and
// both cadence runs within it share the fetched data.
type repoCache struct {
	histories map[string]*RepoHistory
	branches  map[string]bool
}

// Generator wires the three external sources into changelog reports. The
// zero value is not usable; all three sources must be set.
type Generator struct {
	Manifests ManifestSource
	Repos     RepositorySource
	Issues    IssueSource

	// Workers bounds the parallel per-repository fetches. Values below 1
	// are treated as 1.
	Workers int

	// Logf receives progress and fetch-failure messages. Nil disables
	// logging.
	Logf func(format string, args ...any)

	// Now is the clock used to date the trunk-tail bucket; nil means
	// time.Now.
	Now func() time.Time

	mu    sync.Mutex
	cache *repoCache
}

func (g *Generator) logf(format string, args ...any) {
	if g.Logf != nil {
		g.Logf(format, args...)
	}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// Run produces the changelog report for one cadence. Individual repository
// fetch failures are logged and the repository is omitted; only failures of
// whole collaborators (manifest listing, issue lookup) abort the run.
func (g *Generator) Run(ctx context.Context, cadence reltag.Cadence) (*Report, error) {
	g.logf("fetching %s release manifests", cadence)
	manifests, err := g.Manifests.Releases(ctx, cadence)
	if err != nil {
		return nil, fmt.Errorf("listing release manifests: %w", err)
	}
	diff := PackageDiff(manifests.Releases)

	g.logf("fetching issue summaries")
	summaries, err := g.Issues.Summaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("looking up issue summaries: %w", err)
	}

	cache, err := g.fetchRepos(ctx, manifests.Products)
	if err != nil {
		return nil, err
	}

	packages := make(map[string]*RepoHistory)
	for _, product := range manifests.Products {
		if hist, ok := cache.histories[product]; ok {
			packages[product] = hist
		}
	}

	g.logf("processing changelog data")
	rs := MergedTickets(Input{
		Cadence:  cadence,
		Packages: packages,
		Branches: cache.branches,
		Diff:     diff,
		Now:      g.now(),
	})

	return buildReport(cadence, rs, diff, summaries, manifests.Products), nil
}

// fetchRepos fills the generator's repository cache on first use and reuses
// it afterwards, so a weekly and a regular run in the same invocation fetch
// each repository once.
func (g *Generator) fetchRepos(ctx context.Context, products []string) (*repoCache, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cache != nil {
		g.logf("using cached repository data")
		return g.cache, nil
	}

	g.logf("fetching repository data")
	available, err := g.Repos.Repos(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	availableSet := make(map[string]bool, len(available))
	for _, r := range available {
		availableSet[r] = true
	}

	cache := &repoCache{
		histories: make(map[string]*RepoHistory),
		branches:  make(map[string]bool),
	}

	workers := g.Workers
	if workers < 1 {
		workers = 1
	}
	var mu sync.Mutex
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for _, product := range products {
		if !availableSet[product] {
			continue
		}
		repo := product
		grp.Go(func() error {
			hist, branches, err := g.fetchOne(gctx, repo)
			if err != nil {
				// A failed repository is a terminal omission for this run,
				// not an abort.
				g.logf("fetching %s failed: %v", repo, err)
				return nil
			}
			mu.Lock()
			cache.histories[repo] = hist
			for _, b := range branches {
				cache.branches[b] = true
			}
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	g.cache = cache
	return cache, nil
}

// fetchOne retrieves the tags, merge history, and branches of one repository.
func (g *Generator) fetchOne(ctx context.Context, repo string) (*RepoHistory, []string, error) {
	g.logf("fetching %s", repo)
	tags, err := g.Repos.Tags(ctx, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("tags: %w", err)
	}
	pulls, err := g.Repos.PullRequests(ctx, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("pull requests: %w", err)
	}
	branches, err := g.Repos.Branches(ctx, repo)
	if err != nil {
		return nil, nil, fmt.Errorf("branches: %w", err)
	}
	return &RepoHistory{Tags: tags, Pulls: pulls}, branches, nil
}

// buildReport converts the raw buckets into the ordered rendering input.
// Weekly runs include every bucket; regular runs include only releases with
// a package-diff entry plus the trunk tail, matching how the published
// changelog has always filtered out intermediate release candidates.
func buildReport(cadence reltag.Cadence, rs *ReleaseSet, diff map[string]Diff,
	summaries map[string]string, products []string) *Report {
	rep := &Report{Cadence: cadence, Products: products}
	for _, b := range rs.Descending() {
		isTail := b.Key == trunkTailKey
		d, hasDiff := diff[b.Name]
		if cadence == reltag.RegularCadence && !isTail && !hasDiff {
			continue
		}
		rep.Releases = append(rep.Releases, ReleaseView{
			Name:    b.Name,
			Date:    b.Date,
			IsTail:  isTail,
			Added:   d.Added,
			Removed: d.Removed,
			Tickets: CrossReference(b, summaries),
		})
	}
	sortProducts(rep.Products)
	return rep
}

func sortProducts(products []string) {
	sort.Strings(products)
}
