package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBranches_CanonicalForms(t *testing.T) {
	want := []string{"origin/main"}
	assert.Equal(t, want, NormalizeBranches([]string{"main"}))
	assert.Equal(t, want, NormalizeBranches([]string{"origin/main"}))
	assert.Equal(t, want, NormalizeBranches([]string{"refs/remotes/origin/main"}))
}

func TestNormalizeBranch(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{raw: "main", want: "origin/main", wantOK: true},
		{raw: "  develop ", want: "origin/develop", wantOK: true},
		{raw: "feature/login", want: "origin/feature/login", wantOK: true},
		{raw: "origin/feature/login", want: "origin/feature/login", wantOK: true},
		{raw: "refs/remotes/origin/release-1.2", want: "origin/release-1.2", wantOK: true},
		{raw: "origin", wantOK: false},
		{raw: "origin/", wantOK: false},
		{raw: "origin/HEAD", wantOK: false},
		{raw: "refs/remotes/origin/HEAD", wantOK: false},
		{raw: "HEAD", wantOK: false},
		{raw: "origin/origin", wantOK: false},
		{raw: "", wantOK: false},
		{raw: "refs/remotes/", wantOK: false},
		{raw: "bad name", wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeBranch(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeBranches_DropsPseudoRefsKeepsValid(t *testing.T) {
	got := NormalizeBranches([]string{"origin", "origin/HEAD", "HEAD", "main", "origin/origin"})
	assert.Equal(t, []string{"origin/main"}, got)
}

func TestNormalizeBranches_PreservesOrderAndDuplicates(t *testing.T) {
	got := NormalizeBranches([]string{"b", "HEAD", "a", "origin/b", "refs/remotes/origin/a"})
	assert.Equal(t, []string{"origin/b", "origin/a", "origin/b", "origin/a"}, got)
}

func TestNormalizeBranches_Empty(t *testing.T) {
	assert.Empty(t, NormalizeBranches(nil))
	assert.Empty(t, NormalizeBranches([]string{"origin", ""}))
}
