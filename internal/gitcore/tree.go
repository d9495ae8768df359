package gitcore

import (
	"fmt"
	"sort"
	"strings"
)

// EntryKind distinguishes the two kinds of tree entry.
type EntryKind string

const (
	EntryBlob EntryKind = "blob"
	EntryTree EntryKind = "tree"
)

// TreeEntry is one line of a tree object: "<kind> <hash> <name>".
type TreeEntry struct {
	Kind EntryKind
	Hash Hash
	Name string
}

// ParseTree parses the line-delimited content of a tree object.
func ParseTree(content []byte) ([]TreeEntry, error) {
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil, nil
	}
	lines := strings.Split(text, "\n")
	entries := make([]TreeEntry, 0, len(lines))
	for _, line := range lines {
		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("gitcore: malformed tree entry %q", line)
		}
		kind := EntryKind(fields[0])
		if kind != EntryBlob && kind != EntryTree {
			return nil, fmt.Errorf("gitcore: unknown tree entry kind %q", fields[0])
		}
		entries = append(entries, TreeEntry{Kind: kind, Hash: Hash(fields[1]), Name: fields[2]})
	}
	return entries, nil
}

// SerializeTree renders entries into the on-disk tree format, sorted by name
// so that two trees with the same entries always hash identically.
func SerializeTree(entries []TreeEntry) []byte {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	var b strings.Builder
	for _, e := range sorted {
		fmt.Fprintf(&b, "%s %s %s\n", e.Kind, e.Hash, e.Name)
	}
	return []byte(b.String())
}

// Node is a tagged-union in-memory representation of a tree-to-be-written or
// a tree-just-read: either a blob leaf (a hash already present in the
// store) or a directory of named children. This is the typed replacement
// for the "nested map" representation the reference implementation uses.
type Node struct {
	Blob     Hash             // set when this node is a blob leaf
	Children map[string]*Node // set when this node is a directory
}

// IsBlob reports whether n is a blob leaf rather than a directory.
func (n *Node) IsBlob() bool { return n.Children == nil }

// NewBlobNode wraps an already-written blob hash as a leaf node.
func NewBlobNode(h Hash) *Node { return &Node{Blob: h} }

// NewTreeNode creates an empty directory node ready to receive children.
func NewTreeNode() *Node { return &Node{Children: map[string]*Node{}} }

// BuildTreeFromTOC converts a flat path->blob-hash table of contents into a
// nested Node directory tree, splitting each path on "/".
func BuildTreeFromTOC(toc map[string]Hash) *Node {
	root := NewTreeNode()
	for path, h := range toc {
		parts := strings.Split(path, "/")
		cur := root
		for i, part := range parts {
			if i == len(parts)-1 {
				cur.Children[part] = NewBlobNode(h)
				continue
			}
			child, ok := cur.Children[part]
			if !ok || child.IsBlob() {
				child = NewTreeNode()
				cur.Children[part] = child
			}
			cur = child
		}
	}
	return root
}

// WriteTree serializes node bottom-up: blob leaves are already hashes (the
// caller must have written their content to the store beforehand), and
// directory nodes are written only after every child has been written,
// giving the deepest subtrees the earliest writes.
func WriteTree(store *Store, node *Node) (Hash, error) {
	if node.IsBlob() {
		return node.Blob, nil
	}
	entries := make([]TreeEntry, 0, len(node.Children))
	for name, child := range node.Children {
		var kind EntryKind
		var h Hash
		var err error
		if child.IsBlob() {
			kind, h = EntryBlob, child.Blob
		} else {
			kind = EntryTree
			h, err = WriteTree(store, child)
			if err != nil {
				return "", err
			}
		}
		entries = append(entries, TreeEntry{Kind: kind, Hash: h, Name: name})
	}
	content := SerializeTree(entries)
	return store.Write(content)
}

// FileTree reads the tree object at treeHash and every tree it transitively
// references, materializing the nested Node structure.
func FileTree(store *Store, treeHash Hash) (*Node, error) {
	if treeHash.IsZero() {
		return NewTreeNode(), nil
	}
	content, ok := store.Read(treeHash)
	if !ok {
		return nil, fmt.Errorf("gitcore: %w: %s", ErrObjectNotFound, treeHash)
	}
	entries, err := ParseTree(content)
	if err != nil {
		return nil, fmt.Errorf("gitcore: reading tree %s: %w", treeHash, err)
	}
	node := NewTreeNode()
	for _, e := range entries {
		if e.Kind == EntryBlob {
			node.Children[e.Name] = NewBlobNode(e.Hash)
			continue
		}
		child, err := FileTree(store, e.Hash)
		if err != nil {
			return nil, err
		}
		node.Children[e.Name] = child
	}
	return node, nil
}

// TOC is a flattened path->blob-hash table of contents.
type TOC map[string]Hash

// Flatten walks a Node directory tree and returns its TOC.
func Flatten(node *Node) TOC {
	toc := TOC{}
	flattenInto(node, "", toc)
	return toc
}

func flattenInto(node *Node, prefix string, toc TOC) {
	for name, child := range node.Children {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		if child.IsBlob() {
			toc[path] = child.Blob
		} else {
			flattenInto(child, path, toc)
		}
	}
}

// CommitTOC reads the commit at commitHash and returns its tree's TOC. An
// empty commitHash yields an empty TOC (the "no commits yet" state).
func CommitTOC(store *Store, commitHash Hash) (TOC, error) {
	if commitHash.IsZero() {
		return TOC{}, nil
	}
	content, ok := store.Read(commitHash)
	if !ok {
		return nil, fmt.Errorf("gitcore: %w: %s", ErrObjectNotFound, commitHash)
	}
	treeHash, err := TreeHash(content)
	if err != nil {
		return nil, err
	}
	node, err := FileTree(store, treeHash)
	if err != nil {
		return nil, err
	}
	return Flatten(node), nil
}
