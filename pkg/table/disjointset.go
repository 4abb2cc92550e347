package table

// DisjointSet is a union-find structure over the indices 0..n-1 with path
// compression and union by size
type DisjointSet struct {
	parent []int
	size   []int
}

// NewDisjointSet creates n singleton sets
func NewDisjointSet(n int) *DisjointSet {
	ds := &DisjointSet{
		parent: make([]int, n),
		size:   make([]int, n),
	}
	for i := range ds.parent {
		ds.parent[i] = i
		ds.size[i] = 1
	}
	return ds
}

// Find returns the representative of the set containing i
func (ds *DisjointSet) Find(i int) int {
	root := i
	for ds.parent[root] != root {
		root = ds.parent[root]
	}
	for ds.parent[i] != root {
		next := ds.parent[i]
		ds.parent[i] = root
		i = next
	}
	return root
}

// Union merges the sets containing a and b. It reports whether they were
// separate.
func (ds *DisjointSet) Union(a, b int) bool {
	ra, rb := ds.Find(a), ds.Find(b)
	if ra == rb {
		return false
	}
	if ds.size[ra] < ds.size[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	ds.size[ra] += ds.size[rb]
	return true
}

// Size returns the size of the set containing i
func (ds *DisjointSet) Size(i int) int {
	return ds.size[ds.Find(i)]
}

// Len returns the number of elements
func (ds *DisjointSet) Len() int {
	return len(ds.parent)
}

// Groups returns the members of every set. Sets are ordered by their
// smallest member and members are ascending.
func (ds *DisjointSet) Groups() [][]int {
	index := make(map[int]int)
	var groups [][]int
	for i := range ds.parent {
		root := ds.Find(i)
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}
