// Package collection holds the labeled reference images produced by the
// pipeline and the operations the gallery needs on them: filtering, search,
// JSON import/export and bulk download.
package collection

import (
	"sync"

	"github.com/user/ainspire/pkg/pipeline"
)

// Item is a collection entry. Pending entries were created from an extracted
// frame and are still waiting for classification.
type Item struct {
	pipeline.ReferenceImage
	Pending bool
}

// Store is the ordered, concurrency-safe set of reference images.
type Store struct {
	mu    sync.RWMutex
	items []Item
	index map[string]int
	// removed holds ids of pending entries the user deleted. Their late
	// results are dropped.
	removed map[string]bool
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{index: make(map[string]int), removed: make(map[string]bool)}
}

// OnFrameOrJobCreated inserts an unclassified placeholder for a job.
// Inserting an id that already exists is a no-op.
func (s *Store) OnFrameOrJobCreated(job pipeline.ClassificationJob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.index[job.ID]; ok {
		return
	}
	img := pipeline.NewReferenceImage(job, pipeline.Classification{})
	s.append(Item{ReferenceImage: *img, Pending: true})
}

// OnClassificationComplete enriches the placeholder with the same id, or
// appends the image when no placeholder exists. Results for a placeholder
// the user removed are dropped.
func (s *Store) OnClassificationComplete(img pipeline.ReferenceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed[img.ID] {
		delete(s.removed, img.ID)
		return
	}
	img = img.Clone()
	if i, ok := s.index[img.ID]; ok {
		s.items[i] = Item{ReferenceImage: img}
		return
	}
	s.append(Item{ReferenceImage: img})
}

// Discard removes a placeholder whose job ended without a result.
// Classified entries are left alone.
func (s *Store) Discard(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.removed, id)
	i, ok := s.index[id]
	if !ok || !s.items[i].Pending {
		return false
	}
	s.removeAt(i)
	return true
}

// Remove deletes the entry with the given id. Removing a pending entry also
// drops the classification result that is still on its way.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return false
	}
	if s.items[i].Pending {
		s.removed[id] = true
	}
	s.removeAt(i)
	return true
}

// ReplaceAll swaps the whole collection for records. Later duplicates of
// an id are dropped.
func (s *Store) ReplaceAll(records []pipeline.ReferenceImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make([]Item, 0, len(records))
	s.index = make(map[string]int, len(records))
	for _, r := range records {
		if _, ok := s.index[r.ID]; ok {
			continue
		}
		s.append(Item{ReferenceImage: r.Clone()})
	}
}

// Get returns the entry with the given id.
func (s *Store) Get(id string) (Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return Item{}, false
	}
	return s.copyItem(i), true
}

// Items returns a copy of every entry, pending ones included, in order.
func (s *Store) Items() []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items))
	for i := range s.items {
		out[i] = s.copyItem(i)
	}
	return out
}

// Images returns the classified images in order.
func (s *Store) Images() []pipeline.ReferenceImage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]pipeline.ReferenceImage, 0, len(s.items))
	for _, it := range s.items {
		if it.Pending {
			continue
		}
		out = append(out, it.ReferenceImage.Clone())
	}
	return out
}

// Len returns the number of entries, pending ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store) append(it Item) {
	s.index[it.ID] = len(s.items)
	s.items = append(s.items, it)
}

func (s *Store) removeAt(i int) {
	delete(s.index, s.items[i].ID)
	s.items = append(s.items[:i], s.items[i+1:]...)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
}

func (s *Store) copyItem(i int) Item {
	it := s.items[i]
	it.ReferenceImage = it.ReferenceImage.Clone()
	return it
}
