package unzip

import "strings"

// filterEntry decides whether an archive entry is in scope, and computes
// its path relative to the extraction target. An empty sourcePath keeps
// every entry unchanged. Otherwise the match is a literal prefix anchor,
// stripped from matching names; it is not segment-aware, so "lib" also
// matches "libfoo/".
//
// Entry names are used as-is: no normalization of ".." segments or
// absolute paths is performed, so archives from untrusted origins should
// not be extracted with this package.
func filterEntry(entryName string, sourcePath string) (string, bool) {
	if sourcePath == "" {
		return entryName, true
	}
	if !strings.HasPrefix(entryName, sourcePath) {
		return "", false
	}
	return entryName[len(sourcePath):], true
}
