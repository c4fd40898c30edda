package rules

// SigKey identifies a signature by generator and id.
type SigKey struct {
	Gid uint32
	Sid uint32
}

// OtnMap is the signature map keyed by (gid, sid). Iteration order is the
// order signatures were added, which keeps header canonicalisation
// deterministic.
type OtnMap struct {
	m     map[SigKey]*OptTreeNode
	order []SigKey
}

// NewOtnMap returns an empty signature map.
func NewOtnMap() *OtnMap {
	return &OtnMap{m: make(map[SigKey]*OptTreeNode)}
}

// Lookup returns the signature for (gid, sid), or nil.
func (m *OtnMap) Lookup(gid, sid uint32) *OptTreeNode {
	return m.m[SigKey{gid, sid}]
}

// Add installs a signature. An existing entry for the same key is
// overwritten; callers resolve duplicates before adding.
func (m *OtnMap) Add(otn *OptTreeNode) {
	key := SigKey{otn.SigInfo.Generator, otn.SigInfo.ID}
	if _, ok := m.m[key]; !ok {
		m.order = append(m.order, key)
	}
	m.m[key] = otn
}

// Remove deletes the signature from the map.
func (m *OtnMap) Remove(otn *OptTreeNode) {
	key := SigKey{otn.SigInfo.Generator, otn.SigInfo.ID}
	if _, ok := m.m[key]; !ok {
		return
	}
	delete(m.m, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of signatures in the map.
func (m *OtnMap) Len() int { return len(m.m) }

// Each calls fn for every signature in insertion order. Returning false
// stops the walk.
func (m *OtnMap) Each(fn func(*OptTreeNode) bool) {
	for _, key := range m.order {
		if otn, ok := m.m[key]; ok {
			if !fn(otn) {
				return
			}
		}
	}
}
