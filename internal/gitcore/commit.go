package gitcore

import (
	"fmt"
	"strings"
)

// Commit is the parsed form of a commit object:
//
//	commit <tree-hash>
//	parent <hash>        (0..n lines)
//	Date:  <timestamp>
//
//	    <message>
type Commit struct {
	Tree    Hash
	Parents []Hash
	Date    string
	Message string
}

// Serialize renders a Commit back into the exact byte layout that gets
// hashed and stored.
func (c *Commit) Serialize() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", c.Tree)
	for _, p := range c.Parents {
		fmt.Fprintf(&b, "parent %s\n", p)
	}
	fmt.Fprintf(&b, "Date:  %s\n\n", c.Date)
	for _, line := range strings.Split(c.Message, "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return []byte(b.String())
}

// ParseCommit parses the serialized form of a commit object.
// TreeHash and ParentHashes below offer a cheaper, allocation-light path
// when only those fields are needed (e.g. ancestry walks).
func ParseCommit(content []byte) (*Commit, error) {
	lines := strings.Split(string(content), "\n")
	if len(lines) == 0 || !strings.HasPrefix(lines[0], "commit ") {
		return nil, fmt.Errorf("gitcore: not a commit object")
	}
	c := &Commit{Tree: Hash(strings.TrimPrefix(lines[0], "commit "))}

	i := 1
	for ; i < len(lines); i++ {
		line := lines[i]
		switch {
		case strings.HasPrefix(line, "parent "):
			c.Parents = append(c.Parents, Hash(strings.TrimPrefix(line, "parent ")))
		case strings.HasPrefix(line, "Date:"):
			c.Date = strings.TrimSpace(strings.TrimPrefix(line, "Date:"))
		case line == "":
			i++
			goto message
		default:
			return nil, fmt.Errorf("gitcore: malformed commit header line %q", line)
		}
	}
message:
	var msgLines []string
	for ; i < len(lines); i++ {
		msgLines = append(msgLines, strings.TrimPrefix(lines[i], "    "))
	}
	c.Message = strings.TrimRight(strings.Join(msgLines, "\n"), "\n")
	return c, nil
}

// TreeHash extracts the tree hash from serialized commit content without
// fully parsing the message body: the second whitespace-separated token of
// the first line.
func TreeHash(content []byte) (Hash, error) {
	nl := indexByte(content, '\n')
	first := content
	if nl >= 0 {
		first = content[:nl]
	}
	fields := strings.Fields(string(first))
	if len(fields) != 2 || fields[0] != "commit" {
		return "", fmt.Errorf("gitcore: not a commit object")
	}
	return Hash(fields[1]), nil
}

// ParentHashes extracts the parent hashes from serialized commit content:
// the hash token of every line beginning with "parent ".
func ParentHashes(content []byte) []Hash {
	var parents []Hash
	for _, line := range strings.Split(string(content), "\n") {
		if line == "" {
			break
		}
		if h, ok := strings.CutPrefix(line, "parent "); ok {
			parents = append(parents, Hash(h))
		}
	}
	return parents
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
