package main

import "math"

// replicatedMember is a delta-tracked scalar. seq increases every time a
// new value is collected, so receivers can drop stale deliveries.
type replicatedMember struct {
	name string
	ptr  *float64
	last float64
	seq  uint32
	sent bool
}

// staticMember is written once in the spawn record and never updated.
type staticMember struct {
	name string
	get  func() float64
	set  func(float64)
}

// Replicator is the per-object table of replicated fields.
type Replicator struct {
	members []replicatedMember
	statics []staticMember
}

// Register adds a delta-replicated member
func (r *Replicator) Register(name string, ptr *float64) {
	r.members = append(r.members, replicatedMember{name: name, ptr: ptr})
}

// RegisterStatic adds a spawn-only value
func (r *Replicator) RegisterStatic(name string, get func() float64, set func(float64)) {
	r.statics = append(r.statics, staticMember{name: name, get: get, set: set})
}

func sameValue(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// Collect returns the members that changed since the last Collect or Spawn.
func (r *Replicator) Collect() []FieldUpdate {
	var out []FieldUpdate
	for i := range r.members {
		m := &r.members[i]
		v := *m.ptr
		if m.sent && sameValue(v, m.last) {
			continue
		}
		m.seq++
		m.last = v
		m.sent = true
		out = append(out, FieldUpdate{Name: m.name, Seq: m.seq, Value: v})
	}
	return out
}

// Snapshot returns every member and static. With mark set, pending changes
// are consumed as if collected, so they are not reported again.
func (r *Replicator) Snapshot(mark bool) ([]FieldUpdate, map[string]float64) {
	fields := make([]FieldUpdate, 0, len(r.members))
	for i := range r.members {
		m := &r.members[i]
		v := *m.ptr
		if mark && (!m.sent || !sameValue(v, m.last)) {
			m.seq++
			m.last = v
			m.sent = true
		}
		fields = append(fields, FieldUpdate{Name: m.name, Seq: m.seq, Value: v})
	}
	var statics map[string]float64
	if len(r.statics) > 0 {
		statics = make(map[string]float64, len(r.statics))
		for _, s := range r.statics {
			statics[s.name] = s.get()
		}
	}
	return fields, statics
}

// Set writes a received member value. Unknown names are ignored.
func (r *Replicator) Set(name string, v float64) bool {
	for i := range r.members {
		m := &r.members[i]
		if m.name == name {
			*m.ptr = v
			m.last = v
			return true
		}
	}
	return false
}

// SetStatic writes a received spawn-only value
func (r *Replicator) SetStatic(name string, v float64) bool {
	for _, s := range r.statics {
		if s.name == name {
			s.set(v)
			return true
		}
	}
	return false
}
