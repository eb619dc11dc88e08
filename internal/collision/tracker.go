package collision

import (
	"fmt"

	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/internal/hash"
)

// Tracker tracks the array names of one element and detects duplicates.
//
// Names are keyed by their xxHash64 ID. Distinct names sharing an ID are a
// hash collision, not a duplicate: they are compared in full and both kept.
type Tracker struct {
	names        map[uint64][]string // ID → names with that ID
	namesList    []string            // tracking order
	hasCollision bool
}

// NewTracker creates a new name tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:     make(map[uint64][]string),
		namesList: make([]string, 0),
	}
}

// Track records name. Unnamed arrays are not tracked.
//
// Returns errs.ErrDuplicateArray when name was tracked before.
func (t *Tracker) Track(name string) error {
	if name == "" {
		return nil
	}

	return t.track(name, hash.ID(name))
}

func (t *Tracker) track(name string, id uint64) error {
	existing := t.names[id]
	for _, n := range existing {
		if n == name {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateArray, name)
		}
	}
	if len(existing) > 0 {
		t.hasCollision = true
	}

	t.names[id] = append(existing, name)
	t.namesList = append(t.namesList, name)

	return nil
}

// HasCollision returns true if two tracked names share an ID.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Names returns the tracked names in tracking order.
func (t *Tracker) Names() []string {
	return t.namesList
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.namesList)
}

// Reset clears all tracked names so the tracker can serve another element.
func (t *Tracker) Reset() {
	clear(t.names)
	t.namesList = t.namesList[:0]
	t.hasCollision = false
}
