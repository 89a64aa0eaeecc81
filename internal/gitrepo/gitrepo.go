// Package gitrepo implements the repository source over a directory of
// local clones using go-git. It lets the generator run against mirrors
// without API credentials: annotated tags resolve to their tag object for
// the tagger date, merge commits on the trunk and release branches stand in
// for merged pull requests.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mwittgen/changelog/internal/changelog"
	"github.com/mwittgen/changelog/internal/reltag"
)

// debugLogger is a no-op unless enabled via SetDebugLogger.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for clone-directory operations.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Source reads repository history from local clones below Dir, one
// subdirectory per repository. It implements changelog.RepositorySource.
type Source struct {
	Dir string
}

// Repos lists the subdirectories of Dir that open as git repositories,
// lower-cased and sorted.
func (s *Source) Repos(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading clone directory %s: %w", s.Dir, err)
	}
	var repos []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := git.PlainOpen(filepath.Join(s.Dir, entry.Name())); err != nil {
			logDebug("[gitrepo] skipping %s: %v", entry.Name(), err)
			continue
		}
		repos = append(repos, strings.ToLower(entry.Name()))
	}
	sort.Strings(repos)
	return repos, nil
}

func (s *Source) open(repo string) (*git.Repository, error) {
	r, err := git.PlainOpen(filepath.Join(s.Dir, repo))
	if err != nil {
		return nil, fmt.Errorf("opening clone %s: %w", repo, err)
	}
	return r, nil
}

// Tags lists the repository's tags. An annotated tag reports the tagger's
// date and the target commit's author date; a lightweight tag reports the
// commit's author date for both. Tags that do not ultimately point at a
// commit are skipped.
func (s *Source) Tags(ctx context.Context, repo string) ([]changelog.TagRef, error) {
	r, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	iter, err := r.Tags()
	if err != nil {
		return nil, fmt.Errorf("listing tags of %s: %w", repo, err)
	}
	defer iter.Close()

	var refs []changelog.TagRef
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if tagObj, err := r.TagObject(ref.Hash()); err == nil {
			tagTime := tagObj.Tagger.When
			commitTime := tagTime
			if commit, err := tagObj.Commit(); err == nil {
				commitTime = commit.Author.When
			}
			refs = append(refs, changelog.TagRef{
				Tag:        reltag.Parse(name),
				TagTime:    tagTime,
				CommitTime: commitTime,
			})
			return nil
		}
		commit, err := r.CommitObject(ref.Hash())
		if err != nil {
			logDebug("[gitrepo] tag %s of %s points at no commit", name, repo)
			return nil
		}
		refs = append(refs, changelog.TagRef{
			Tag:        reltag.Parse(name),
			TagTime:    commit.Author.When,
			CommitTime: commit.Author.When,
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating tags of %s: %w", repo, err)
	}
	return refs, nil
}

// PullRequests approximates merged pull requests with the merge commits
// reachable from each tracked branch: the trunk spellings and release-line
// branches (names starting with "v"). Partitions are disjoint: a merge
// already on the trunk never reappears in a release-branch partition, so
// each merge belongs to exactly one partition, like the base-branch
// partitions of the GitHub source. Each partition is ordered by committer
// time ascending.
func (s *Source) PullRequests(ctx context.Context, repo string) (map[string][]changelog.MergeEvent, error) {
	r, err := s.open(repo)
	if err != nil {
		return nil, err
	}
	iter, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches of %s: %w", repo, err)
	}
	defer iter.Close()

	var trunks, lines []*plumbing.Reference
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		switch name := ref.Name().Short(); {
		case name == reltag.TrunkName:
			// The primary spelling partitions first when both exist.
			trunks = append([]*plumbing.Reference{ref}, trunks...)
		case name == "master":
			trunks = append(trunks, ref)
		case strings.HasPrefix(name, "v"):
			lines = append(lines, ref)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting branches of %s: %w", repo, err)
	}

	onTrunk := make(map[plumbing.Hash]bool)
	for _, ref := range trunks {
		if err := markReachable(r, ref.Hash(), onTrunk); err != nil {
			return nil, fmt.Errorf("walking branch %s of %s: %w", ref.Name().Short(), repo, err)
		}
	}

	partitions := make(map[string][]changelog.MergeEvent)
	collect := func(ref *plumbing.Reference, exclude map[plumbing.Hash]bool) error {
		branch := ref.Name().Short()
		events, err := mergeCommits(r, ref.Hash(), branch, exclude)
		if err != nil {
			return fmt.Errorf("walking branch %s of %s: %w", branch, repo, err)
		}
		if len(events) > 0 {
			partitions[branch] = events
		}
		return nil
	}

	// Only one trunk spelling contributes the trunk partition; the engine
	// folds "master" into "main" and must not see the same merges twice.
	if len(trunks) > 0 {
		if err := collect(trunks[0], nil); err != nil {
			return nil, err
		}
	}
	for _, ref := range lines {
		if err := collect(ref, onTrunk); err != nil {
			return nil, err
		}
	}
	return partitions, nil
}

// markReachable records every commit reachable from head.
func markReachable(r *git.Repository, head plumbing.Hash, seen map[plumbing.Hash]bool) error {
	log, err := r.Log(&git.LogOptions{From: head})
	if err != nil {
		return err
	}
	defer log.Close()
	for {
		commit, err := log.Next()
		if err != nil {
			break
		}
		seen[commit.Hash] = true
	}
	return nil
}

// mergeCommits walks the history from head and returns the merge commits
// as merge events, oldest first. Commits in exclude are skipped.
func mergeCommits(r *git.Repository, head plumbing.Hash, branch string, exclude map[plumbing.Hash]bool) ([]changelog.MergeEvent, error) {
	log, err := r.Log(&git.LogOptions{From: head})
	if err != nil {
		return nil, err
	}
	defer log.Close()

	var events []changelog.MergeEvent
	for {
		commit, err := log.Next()
		if err != nil {
			break
		}
		if commit.NumParents() < 2 || exclude[commit.Hash] {
			continue
		}
		events = append(events, changelog.MergeEvent{
			Branch:   branch,
			MergedAt: commit.Committer.When,
			Title:    firstLine(commit.Message),
		})
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].MergedAt.Before(events[j].MergedAt)
	})
	return events, nil
}

func firstLine(message string) string {
	if i := strings.IndexByte(message, '\n'); i >= 0 {
		return strings.TrimSpace(message[:i])
	}
	return strings.TrimSpace(message)
}

// Branches lists the repository's branch names, local and remote-tracking,
// deduplicated with local names preferred, sorted.
func (s *Source) Branches(ctx context.Context, repo string) ([]string, error) {
	r, err := s.open(repo)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var names []string

	local, err := r.Branches()
	if err != nil {
		return nil, fmt.Errorf("listing branches of %s: %w", repo, err)
	}
	err = local.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().Short()
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating branches of %s: %w", repo, err)
	}

	refs, err := r.References()
	if err != nil {
		return nil, fmt.Errorf("listing references of %s: %w", repo, err)
	}
	err = refs.ForEach(func(ref *plumbing.Reference) error {
		if !ref.Name().IsRemote() {
			return nil
		}
		full := ref.Name().Short() // e.g. "origin/main"
		if strings.Contains(full, "HEAD") {
			return nil
		}
		parts := strings.SplitN(full, "/", 2)
		if len(parts) != 2 {
			return nil
		}
		if !seen[parts[1]] {
			seen[parts[1]] = true
			names = append(names, parts[1])
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterating references of %s: %w", repo, err)
	}

	sort.Strings(names)
	return names, nil
}
