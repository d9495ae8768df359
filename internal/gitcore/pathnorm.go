package gitcore

import "golang.org/x/text/unicode/norm"

// NormalizePath canonicalizes a repo-relative path to NFC before it
// becomes a tree-entry name or index key, so a file named with combining
// characters (e.g. "café.txt" typed as "e" + combining acute) hashes and
// compares identically regardless of which normalization form the
// originating filesystem handed back.
func NormalizePath(p string) string {
	return norm.NFC.String(p)
}
