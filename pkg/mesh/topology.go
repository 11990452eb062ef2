package mesh

// edge is an undirected vertex pair with a < b.
type edge struct{ a, b int }

func newEdge(a, b int) edge {
	if a > b {
		a, b = b, a
	}
	return edge{a, b}
}

// Topology summarises how the faces of a mesh connect.
type Topology struct {
	// Edges is the number of distinct undirected edges
	Edges int

	// Boundary counts edges used by exactly one face
	Boundary int

	// NonManifold counts edges used by more than two faces
	NonManifold int

	// Misoriented counts directed edges used twice, which happens when two
	// neighbouring faces disagree on winding
	Misoriented int

	// Components is the number of face-connected pieces
	Components int
}

// Watertight reports whether every edge is shared by exactly two faces.
func (t Topology) Watertight() bool {
	return t.Boundary == 0 && t.NonManifold == 0
}

// Oriented reports whether neighbouring faces wind consistently.
func (t Topology) Oriented() bool { return t.Misoriented == 0 }

// Topology inspects the face connectivity of m. Faces must reference valid
// vertices.
func (m *Mesh) Topology() Topology {
	undirected := make(map[edge]int, 3*len(m.Faces)/2)
	directed := make(map[[2]int]int, 3*len(m.Faces))
	parent := make([]int, len(m.Vertices))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		for parent[x] != x {
			parent[x] = parent[parent[x]]
			x = parent[x]
		}
		return x
	}

	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			a, b := f[i], f[(i+1)%3]
			undirected[newEdge(a, b)]++
			directed[[2]int{a, b}]++
			if ra, rb := find(a), find(b); ra != rb {
				parent[ra] = rb
			}
		}
	}

	var t Topology
	t.Edges = len(undirected)
	for _, n := range undirected {
		switch {
		case n == 1:
			t.Boundary++
		case n > 2:
			t.NonManifold++
		}
	}
	for _, n := range directed {
		if n > 1 {
			t.Misoriented++
		}
	}

	roots := make(map[int]struct{})
	for _, f := range m.Faces {
		roots[find(f[0])] = struct{}{}
	}
	t.Components = len(roots)
	return t
}

// EulerCharacteristic returns V - E + F counting only referenced vertices.
func (m *Mesh) EulerCharacteristic() int {
	used := make(map[int]struct{}, len(m.Vertices))
	for _, f := range m.Faces {
		for _, idx := range f {
			used[idx] = struct{}{}
		}
	}
	return len(used) - m.Topology().Edges + len(m.Faces)
}
