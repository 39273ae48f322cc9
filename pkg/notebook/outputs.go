package notebook

import (
	"sync"
)

// ChangeFunc is invoked after the output collection changes.
type ChangeFunc func(o *Outputs)

// Outputs is the append-only output list of a code cell. Observers are
// notified after every change, outside the collection lock, so they may read
// the collection from within the callback.
type Outputs struct {
	mu        sync.RWMutex
	records   []Record
	observers map[uint64]ChangeFunc
	nextID    uint64
}

// NewOutputs creates an empty output collection.
func NewOutputs(records ...Record) *Outputs {
	return &Outputs{
		records:   append([]Record(nil), records...),
		observers: make(map[uint64]ChangeFunc),
	}
}

// Len returns the number of records.
func (o *Outputs) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.records)
}

// At returns the record at index i, or nil when out of range.
func (o *Outputs) At(i int) Record {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if i < 0 || i >= len(o.records) {
		return nil
	}
	return o.records[i]
}

// Snapshot returns a copy of the current records.
func (o *Outputs) Snapshot() []Record {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]Record(nil), o.records...)
}

// Append adds records and notifies observers.
func (o *Outputs) Append(records ...Record) {
	if len(records) == 0 {
		return
	}
	o.mu.Lock()
	o.records = append(o.records, records...)
	observers := o.observersLocked()
	o.mu.Unlock()

	for _, fn := range observers {
		fn(o)
	}
}

// Clear drops all records. Hosts call it before re-executing a cell.
func (o *Outputs) Clear() {
	o.mu.Lock()
	o.records = nil
	observers := o.observersLocked()
	o.mu.Unlock()

	for _, fn := range observers {
		fn(o)
	}
}

// Subscribe registers fn for change notifications. The returned cancel
// function removes the registration and may be called any number of times.
func (o *Outputs) Subscribe(fn ChangeFunc) (cancel func()) {
	o.mu.Lock()
	if o.observers == nil {
		o.observers = make(map[uint64]ChangeFunc)
	}
	id := o.nextID
	o.nextID++
	o.observers[id] = fn
	o.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			o.mu.Lock()
			delete(o.observers, id)
			o.mu.Unlock()
		})
	}
}

// Observers returns the number of active subscriptions.
func (o *Outputs) Observers() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.observers)
}

func (o *Outputs) observersLocked() []ChangeFunc {
	if len(o.observers) == 0 {
		return nil
	}
	fns := make([]ChangeFunc, 0, len(o.observers))
	for _, fn := range o.observers {
		fns = append(fns, fn)
	}
	return fns
}
