package gitcore

import "testing"

func TestNormalizePathComposesCombiningCharacters(t *testing.T) {
	decomposed := "café.txt" // "e" + combining acute accent (U+0301)
	precomposed := "café.txt" // precomposed "e with acute" (U+00E9)

	if decomposed == precomposed {
		t.Fatal("test fixture error: inputs should differ byte-for-byte")
	}
	if got := NormalizePath(decomposed); got != precomposed {
		t.Errorf("NormalizePath(decomposed) = %q, want %q", got, precomposed)
	}
	if got := NormalizePath(precomposed); got != precomposed {
		t.Errorf("NormalizePath(precomposed) = %q, want %q (idempotent)", got, precomposed)
	}
}

func TestNormalizePathLeavesASCIIUnchanged(t *testing.T) {
	if got := NormalizePath("plain/ascii/path.txt"); got != "plain/ascii/path.txt" {
		t.Errorf("NormalizePath(ascii) = %q", got)
	}
}
