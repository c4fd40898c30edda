package rules

// RuleIndexMap assigns a dense integer index to each unique (gid, sid)
// pair. Indices are contiguous from zero in order of first sight; the port
// groups store these indices rather than signature pointers.
type RuleIndexMap struct {
	idx     map[SigKey]int
	entries []SigKey
}

// NewRuleIndexMap returns an empty index map.
func NewRuleIndexMap() *RuleIndexMap {
	return &RuleIndexMap{idx: make(map[SigKey]int)}
}

// Add returns the index for (gid, sid), assigning the next dense index on
// first sight.
func (m *RuleIndexMap) Add(gid, sid uint32) int {
	key := SigKey{gid, sid}
	if i, ok := m.idx[key]; ok {
		return i
	}
	i := len(m.entries)
	m.idx[key] = i
	m.entries = append(m.entries, key)
	return i
}

// Find returns the index for (gid, sid) if one has been assigned.
func (m *RuleIndexMap) Find(gid, sid uint32) (int, bool) {
	i, ok := m.idx[SigKey{gid, sid}]
	return i, ok
}

// Entry returns the (gid, sid) pair at the given index.
func (m *RuleIndexMap) Entry(index int) (SigKey, bool) {
	if index < 0 || index >= len(m.entries) {
		return SigKey{}, false
	}
	return m.entries[index], true
}

// Len returns the number of assigned indices.
func (m *RuleIndexMap) Len() int { return len(m.entries) }
