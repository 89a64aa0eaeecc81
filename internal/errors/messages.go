package errors

import "fmt"

// Canned errors for failure modes users hit most often.

// MissingTokenError is returned when the GitHub source is selected without
// an API token.
func MissingTokenError() *CLIError {
	return NewConfigError(
		"no GitHub token configured",
		"Set the CHANGELOG_GITHUB_TOKEN environment variable",
		"Or add github_token to .changelog/config.yml",
		"Or switch to a local clone directory with source: gitrepo",
	)
}

// MissingCloneDirError is returned when the gitrepo source is selected
// without a clone directory.
func MissingCloneDirError() *CLIError {
	return NewConfigError(
		"no clone directory configured",
		"Set clone_dir in .changelog/config.yml",
		"Or set the CHANGELOG_CLONE_DIR environment variable",
	)
}

// InvalidCadenceError is returned for a release type the generator does
// not know.
func InvalidCadenceError(arg string) *CLIError {
	return NewArgumentErrorWithUsage(
		fmt.Sprintf("unknown release type %q", arg),
		"changelog generate (weekly|regular)",
		"Use 'weekly' for w_YYYY_WW tags",
		"Use 'regular' for vNN.N[.N[.rcN]] tags",
	)
}

// FetchError wraps a failure talking to a remote service.
func FetchError(service string, err error) *CLIError {
	return WrapWithMessage(err, Network,
		fmt.Sprintf("fetching from %s failed", service),
		"Check network connectivity",
		"Retry later; remote services rate-limit aggressively",
	)
}
