package catalog

import (
	"encoding/json"
	"slices"
)

// ImageSet holds image variants keyed by size label.
// Putting a variant whose label is already present replaces it.
type ImageSet struct {
	byLabel map[string]Image
}

// NewImageSet returns an empty set.
func NewImageSet() *ImageSet {
	return &ImageSet{byLabel: make(map[string]Image)}
}

// Put stores img under its size label.
func (s *ImageSet) Put(img Image) {
	s.byLabel[img.Size] = img
}

// Get returns the variant for label.
func (s *ImageSet) Get(label string) (Image, bool) {
	img, ok := s.byLabel[label]
	return img, ok
}

// Len returns the number of distinct labels.
func (s *ImageSet) Len() int {
	return len(s.byLabel)
}

// Labels returns the size labels in sorted order.
func (s *ImageSet) Labels() []string {
	labels := make([]string, 0, len(s.byLabel))
	for l := range s.byLabel {
		labels = append(labels, l)
	}
	slices.Sort(labels)
	return labels
}

// Clone returns an independent copy.
func (s *ImageSet) Clone() *ImageSet {
	c := NewImageSet()
	for l, img := range s.byLabel {
		c.byLabel[l] = img
	}
	return c
}

// MarshalJSON renders the set as an object keyed by size label.
func (s *ImageSet) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s.byLabel)
}

// Membership is the ordered, duplicate-free list of song IDs in a playlist.
type Membership struct {
	ids  []string
	seen map[string]struct{}
}

// NewMembership returns an empty membership.
func NewMembership() *Membership {
	return &Membership{seen: make(map[string]struct{})}
}

// Add appends songID unless it is already present.
func (m *Membership) Add(songID string) {
	if _, ok := m.seen[songID]; ok {
		return
	}
	m.seen[songID] = struct{}{}
	m.ids = append(m.ids, songID)
}

// Contains reports whether songID is a member.
func (m *Membership) Contains(songID string) bool {
	_, ok := m.seen[songID]
	return ok
}

// Len returns the number of songs.
func (m *Membership) Len() int {
	return len(m.ids)
}

// SongIDs returns the members in insertion order.
func (m *Membership) SongIDs() []string {
	return slices.Clone(m.ids)
}

// MarshalJSON renders the membership as an array of song IDs.
func (m *Membership) MarshalJSON() ([]byte, error) {
	if m == nil || m.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(m.ids)
}
