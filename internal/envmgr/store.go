// SPDX-License-Identifier: MPL-2.0

package envmgr

// store tracks managed environments in registration order. It is not
// goroutine-safe; the Manager's mutex guards all access.
type store struct {
	order  []string
	byName map[string]*ManagedEnvironment
}

func newStore() *store {
	return &store{byName: make(map[string]*ManagedEnvironment)}
}

// get returns the record for name, or nil.
func (s *store) get(name string) *ManagedEnvironment {
	return s.byName[name]
}

// register adds a record for name if absent and returns it. Registration
// order is preserved for snapshots.
func (s *store) register(name string) *ManagedEnvironment {
	if rec, ok := s.byName[name]; ok {
		return rec
	}
	rec := &ManagedEnvironment{Name: name, Status: StatusNotCreated}
	s.byName[name] = rec
	s.order = append(s.order, name)
	return rec
}

// remove deletes the record for name.
func (s *store) remove(name string) {
	if _, ok := s.byName[name]; !ok {
		return
	}
	delete(s.byName, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// snapshot returns copies of all records in registration order.
func (s *store) snapshot() []ManagedEnvironment {
	out := make([]ManagedEnvironment, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.byName[name])
	}
	return out
}
