// Package remote builds a point-in-time view of task files across
// remote-tracking branches.
package remote

import "strings"

// DefaultRemote is the only remote whose tracking refs carry tasks.
const DefaultRemote = "origin"

const (
	remoteRefsPrefix = "refs/remotes/"
	originPrefix     = DefaultRemote + "/"
	headRef          = "HEAD"
)

// NormalizeBranch maps a raw branch name to its canonical remote-tracking
// form.
//
//	main                     → origin/main
//	origin/main              → origin/main
//	refs/remotes/origin/main → origin/main
//
// Pseudo-refs (origin, HEAD, origin/HEAD, origin/origin) report false.
func NormalizeBranch(raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	name = strings.TrimPrefix(name, remoteRefsPrefix)
	if name == "" {
		return "", false
	}

	if rest, ok := strings.CutPrefix(name, originPrefix); ok {
		if !validBranchName(rest) {
			return "", false
		}
		return name, true
	}

	if !validBranchName(name) {
		return "", false
	}
	return originPrefix + name, true
}

func validBranchName(name string) bool {
	switch name {
	case "", headRef, DefaultRemote:
		return false
	}
	return !strings.ContainsAny(name, " \t\n")
}

// NormalizeBranches canonicalizes raw in order. Inputs that do not name a
// task-bearing branch are dropped. Duplicates are kept: one output per
// valid input.
func NormalizeBranches(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		if ref, ok := NormalizeBranch(r); ok {
			out = append(out, ref)
		}
	}
	return out
}
