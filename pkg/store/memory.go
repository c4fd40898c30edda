package store

import "sort"

// MemoryStore implements Store with in-process maps. It backs ":memory:"
// paths and tests.
type MemoryStore struct {
	sigs    map[[2]uint32]*SignatureRecord
	summary Summary
}

// NewMemory creates an in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sigs: make(map[[2]uint32]*SignatureRecord)}
}

// AddSignature stores a signature record.
func (s *MemoryStore) AddSignature(rec *SignatureRecord) error {
	cp := *rec
	s.sigs[[2]uint32{rec.Gid, rec.Sid}] = &cp
	return nil
}

// SetSummary stores the session summary.
func (s *MemoryStore) SetSummary(sum Summary) error {
	s.summary = sum
	return nil
}

// Signatures retrieves all stored signatures ordered by (gid, sid).
func (s *MemoryStore) Signatures() ([]*SignatureRecord, error) {
	out := make([]*SignatureRecord, 0, len(s.sigs))
	for _, rec := range s.sigs {
		cp := *rec
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Gid != out[j].Gid {
			return out[i].Gid < out[j].Gid
		}
		return out[i].Sid < out[j].Sid
	})
	return out, nil
}

// GetSummary retrieves the stored summary.
func (s *MemoryStore) GetSummary() (Summary, error) {
	return s.summary, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close() error { return nil }
