package streams

import (
	"slices"

	"github.com/gomlx/interop/events"
	"k8s.io/klog/v2"
)

// Dependency is one entry of a DependencySet: an event and whether the set owns its reference.
type Dependency struct {
	Event     *events.Event
	Ownership events.Ownership
}

// DependencySet holds the completion events of work the stream hasn't observed as finished: the
// next work enqueued on the stream waits for all of them.
//
// It is not safe for concurrent use: a stream's dependency set has a single writer per launch, and
// callers launching concurrently on the same stream must serialize the launches themselves.
type DependencySet struct {
	entries []Dependency
}

// Len returns the number of events in the set.
func (s *DependencySet) Len() int { return len(s.entries) }

// Events returns a copy of the events in the set. The references are borrowed from the set.
func (s *DependencySet) Events() []*events.Event {
	evs := make([]*events.Event, len(s.entries))
	for ii, entry := range s.entries {
		evs[ii] = entry.Event
	}
	return evs
}

// Entries returns a copy of the entries of the set.
func (s *DependencySet) Entries() []Dependency {
	return slices.Clone(s.entries)
}

// Merge replaces the contents of the set with the given external events.
//
// The set overwrites rather than accumulates: after Merge the stream waits exactly on the given
// events. The events are borrowed, the caller keeps ownership of their references (and must keep
// them alive until the work that waits on them completes). Nil events are not allowed.
//
// References owned by the set that are replaced are released, except if the same event is given
// again, in which case the set keeps owning it.
func (s *DependencySet) Merge(external []*events.Event) {
	newEntries := make([]Dependency, len(external))
	for ii, e := range external {
		newEntries[ii] = Dependency{Event: e, Ownership: events.Borrowed}
	}
	for _, old := range s.entries {
		if old.Ownership != events.Owned {
			continue
		}
		if idx := slices.IndexFunc(newEntries, func(d Dependency) bool { return d.Event == old.Event }); idx >= 0 {
			newEntries[idx].Ownership = events.Owned
			continue
		}
		releaseOwned(old.Event)
	}
	s.entries = newEntries
}

// Reset replaces the contents of the set with the given event, whose reference the set takes
// ownership of. Replaced owned references are released.
//
// Runtimes call Reset after enqueuing work, with the event of the new work.
func (s *DependencySet) Reset(owned *events.Event) {
	for _, old := range s.entries {
		if old.Ownership == events.Owned && old.Event != owned {
			releaseOwned(old.Event)
		}
	}
	s.entries = []Dependency{{Event: owned, Ownership: events.Owned}}
}

// Drain hands over the current entries, with their ownership, to the caller. The events remain in
// the set, but only as borrowed references: the set no longer releases them.
//
// The caller is responsible for releasing (or handing over) the returned Owned references.
func (s *DependencySet) Drain() []Dependency {
	drained := slices.Clone(s.entries)
	for ii := range s.entries {
		s.entries[ii].Ownership = events.Borrowed
	}
	return drained
}

// Clear releases the owned references and empties the set.
func (s *DependencySet) Clear() {
	for _, old := range s.entries {
		if old.Ownership == events.Owned {
			releaseOwned(old.Event)
		}
	}
	s.entries = nil
}

func releaseOwned(e *events.Event) {
	if err := e.Release(); err != nil {
		klog.Warningf("failed to release dependency %s: %v", e, err)
	}
}
