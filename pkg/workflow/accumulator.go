package workflow

import "sync"

// Accumulator is the single source of truth for all wizard fields within
// a session. Updates shallow-merge in call order under one lock, so a
// later write for the same field always wins and no update is dropped
// while a step transition is in flight.
type Accumulator struct {
	mu       sync.Mutex
	fields   map[string]interface{}
	once     map[string]bool
	revision uint64
}

// NewAccumulator builds an accumulator seeded from an existing record's
// fields (resume/clone) or nil for a fresh report.
func NewAccumulator(seed map[string]interface{}) *Accumulator {
	fields := make(map[string]interface{}, len(seed))
	for k, v := range seed {
		fields[k] = v
	}
	return &Accumulator{
		fields: fields,
		once:   make(map[string]bool),
	}
}

// Update shallow-merges partial into the record, last-writer-wins per
// field. Nested values like checklist_data are replaced whole; callers
// pass the complete structure they intend to persist.
func (a *Accumulator) Update(partial map[string]interface{}) {
	if len(partial) == 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	for k, v := range partial {
		a.fields[k] = v
	}
	a.revision++
}

// Set writes a single field.
func (a *Accumulator) Set(field string, value interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.fields[field] = value
	a.revision++
}

// Get returns a field's current value.
func (a *Accumulator) Get(field string) (interface{}, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.fields[field]
	return v, ok
}

// GetString returns a field as a string, or "" when absent.
func (a *Accumulator) GetString(field string) string {
	v, ok := a.Get(field)
	if !ok || v == nil {
		return ""
	}
	return asString(v)
}

// Snapshot copies the current field map. Mutating the copy does not
// affect the accumulator.
func (a *Accumulator) Snapshot() map[string]interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	copied := make(map[string]interface{}, len(a.fields))
	for k, v := range a.fields {
		copied[k] = v
	}
	return copied
}

// Revision increases on every update. The sequencer uses it to discard
// stale validation results.
func (a *Accumulator) Revision() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.revision
}

// SetOnce runs gen and stores its result for field exactly once per
// session, even when initialization is re-invoked after a remount. The
// existing value is returned on every later call. A field seeded from a
// resumed draft also counts as already generated.
func (a *Accumulator) SetOnce(field string, gen func() interface{}) interface{} {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.once[field] {
		return a.fields[field]
	}
	if existing, ok := a.fields[field]; ok && existing != nil && existing != "" {
		a.once[field] = true
		return existing
	}

	value := gen()
	a.fields[field] = value
	a.once[field] = true
	a.revision++
	return value
}

// withLocked runs fn while holding the accumulator lock, giving the
// sequencer a consistent view of the live fields during validation.
func (a *Accumulator) withLocked(fn func(fields map[string]interface{})) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a.fields)
}
