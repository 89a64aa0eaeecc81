// Package changelog implements the release changelog core: the package-diff
// computer, the merge attribution engine, the ticket cross-reference, and the
// orchestration that feeds them from the external data sources.
//
// The attribution engine walks each package's release tags in ascending
// order and assigns every merged change to the first tag whose commit time
// is at or after the merge time. Changes merged after the newest tag across
// all packages land in a synthetic trunk-tail bucket that sorts after every
// real release. The engine is purely sequential over already-fetched
// in-memory data; only the network fetches run concurrently.
package changelog
