// Package eups retrieves EUPS release manifests: one .list file per release
// tag, each naming the (package, flavor, version) triples the release ships.
package eups

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/mwittgen/changelog/internal/changelog"
	"github.com/mwittgen/changelog/internal/reltag"
)

// DefaultURL is the public EUPS distribution tag index.
const DefaultURL = "https://eups.lsst.codes/stack/src/tags/"

// Entry is one line of a release manifest.
type Entry struct {
	Package string
	Flavor  string
	Version string
}

// HTTPSource downloads release manifests from an EUPS tag index over HTTP.
// It implements changelog.ManifestSource.
type HTTPSource struct {
	// URL is the tag index page; empty means DefaultURL.
	URL string
	// Client is the HTTP client to use; nil means http.DefaultClient.
	Client *http.Client
	// Workers bounds the parallel manifest downloads; values below 1 mean 1.
	Workers int
	// Logf receives non-fatal download failures. Nil disables logging.
	Logf func(format string, args ...any)
}

func (s *HTTPSource) url() string {
	if s.URL == "" {
		return DefaultURL
	}
	return s.URL
}

func (s *HTTPSource) client() *http.Client {
	if s.Client == nil {
		return http.DefaultClient
	}
	return s.Client
}

func (s *HTTPSource) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Releases downloads every manifest of the cadence and returns them in
// ascending tag order together with the sorted union of package names.
// A single failed manifest download is logged and omitted; only the index
// fetch itself is fatal.
func (s *HTTPSource) Releases(ctx context.Context, cadence reltag.Cadence) (*changelog.ManifestSet, error) {
	names, err := s.listNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing manifest index: %w", err)
	}

	type download struct {
		tag     reltag.Tag
		entries []Entry
	}

	var (
		mu      sync.Mutex
		results []download
	)
	workers := s.Workers
	if workers < 1 {
		workers = 1
	}
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for _, name := range names {
		tag := reltag.Parse(name)
		if !tag.Valid() || !reltag.Matches(tag, cadence) {
			continue
		}
		name := name
		grp.Go(func() error {
			entries, err := s.fetchList(gctx, name)
			if err != nil {
				s.logf("downloading manifest %s failed: %v", name, err)
				return nil
			}
			mu.Lock()
			results = append(results, download{tag: tag, entries: entries})
			mu.Unlock()
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].tag.Less(results[j].tag) })

	set := &changelog.ManifestSet{}
	products := make(map[string]bool)
	for _, d := range results {
		rel := changelog.Release{Tag: d.tag}
		seen := make(map[string]bool, len(d.entries))
		for _, e := range d.entries {
			if seen[e.Package] {
				continue
			}
			seen[e.Package] = true
			rel.Packages = append(rel.Packages, e.Package)
			products[e.Package] = true
		}
		sort.Strings(rel.Packages)
		set.Releases = append(set.Releases, rel)
	}
	for p := range products {
		set.Products = append(set.Products, p)
	}
	sort.Strings(set.Products)
	return set, nil
}

// listNames scrapes the index page for .list hrefs and returns the release
// names with the extension stripped.
func (s *HTTPSource) listNames(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned status %s", resp.Status)
	}
	return parseIndex(resp.Body)
}

// parseIndex extracts the .list anchor targets from the index HTML.
func parseIndex(r io.Reader) ([]string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing index page: %w", err)
	}
	var names []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && strings.HasSuffix(attr.Val, ".list") {
					name := attr.Val[strings.LastIndex(attr.Val, "/")+1:]
					names = append(names, strings.TrimSuffix(name, ".list"))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return names, nil
}

// fetchList downloads and parses one release manifest.
func (s *HTTPSource) fetchList(ctx context.Context, name string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url()+name+".list", nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("manifest returned status %s", resp.Status)
	}
	return ParseList(resp.Body)
}

// ParseList parses the EUPS .list format: comment lines start with '#', the
// "EUPS distribution" header line is skipped, and every remaining line with
// exactly three columns is a (package, flavor, version) entry.
func ParseList(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "EUPS distribution") {
			continue
		}
		cols := strings.Fields(line)
		if len(cols) != 3 {
			continue
		}
		entries = append(entries, Entry{Package: cols[0], Flavor: cols[1], Version: cols[2]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return entries, nil
}
