package unzip

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_FilterEntry(t *testing.T) {
	cases := []struct {
		entryName  string
		sourcePath string
		out        string
		ok         bool
	}{
		{"README.md", "", "README.md", true},
		{"lib/a.txt", "", "lib/a.txt", true},
		{"lib/a.txt", "lib/", "a.txt", true},
		{"lib/sub/b.txt", "lib/", "sub/b.txt", true},
		{"README.md", "lib/", "", false},
		// the anchor is a literal prefix, not a path segment
		{"libfoo/x.txt", "lib", "foo/x.txt", true},
		{"lib", "lib/", "", false},
		{"lib/", "lib/", "", true},
	}

	for _, c := range cases {
		out, ok := filterEntry(c.entryName, c.sourcePath)
		assert.Equal(t, c.ok, ok, "filterEntry(%q, %q)", c.entryName, c.sourcePath)
		assert.Equal(t, c.out, out, "filterEntry(%q, %q)", c.entryName, c.sourcePath)
	}
}
