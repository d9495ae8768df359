package gitcore

// Ancestors returns the transitive closure of parent hashes reachable from c
// (duplicates are possible; callers never depend on order, matching the
// reference implementation's list-based ancestors()).
func Ancestors(store *Store, c Hash) []Hash {
	var result []Hash
	visited := map[Hash]bool{c: true}
	queue := []Hash{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		content, ok := store.Read(cur)
		if !ok {
			logSkip("ancestor walk: missing commit %s", cur)
			continue
		}
		for _, p := range ParentHashes(content) {
			result = append(result, p)
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return result
}

// IsAncestor reports whether a is an ancestor of d.
func IsAncestor(store *Store, d, a Hash) bool {
	for _, h := range Ancestors(store, d) {
		if h == a {
			return true
		}
	}
	return false
}

// IsUpToDate reports whether receiver is already caught up with giver:
// receiver is defined and giver is either equal to it or an ancestor of it.
func IsUpToDate(store *Store, receiver, giver Hash) bool {
	if receiver.IsZero() {
		return false
	}
	return receiver == giver || IsAncestor(store, receiver, giver)
}
