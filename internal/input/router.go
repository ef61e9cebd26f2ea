// Package input routes pointer events to note lifecycle calls.
//
// A pointer is anything with a stable identifier for the duration of a
// press: a touch id, the literal "mouse", a qwerty key, a MIDI note. The
// router owns the pointer-to-note bindings; the voices themselves live
// behind the Sink.
package input

import "github.com/yoans/micro-tonal-interface/internal/layout"

// Sink is the voice manager as seen from the router.
type Sink interface {
	NoteOn(id string, frequencyHz float64)
	NoteOff(id string)
	StopAll()
}

// Event is a routed input event.
type Event interface{ isEvent() }

// Press starts the note under a key for a pointer.
type Press struct {
	Pointer string
	KeyID   string
}

// Release ends whatever note the pointer is holding.
type Release struct {
	Pointer string
}

// Retarget slides a held pointer onto another key.
type Retarget struct {
	Pointer string
	KeyID   string
}

func (Press) isEvent()    {}
func (Release) isEvent()  {}
func (Retarget) isEvent() {}

// Router resolves pointer events against the current key batch. At most
// one binding exists per pointer, and each bound note id sounds at most
// once. All methods must be called from a single goroutine.
type Router struct {
	sink     Sink
	keys     map[string]layout.Key // key id -> descriptor, current batch
	bindings map[string]string     // pointer id -> key id
}

func New(sink Sink) *Router {
	return &Router{
		sink:     sink,
		keys:     make(map[string]layout.Key),
		bindings: make(map[string]string),
	}
}

// SetKeys installs a freshly generated key batch. Every voice started from
// the old batch is force-stopped first; descriptors never survive a
// regeneration.
func (r *Router) SetKeys(keys []layout.Key) {
	r.ReleaseAll()
	r.keys = make(map[string]layout.Key, len(keys))
	for _, k := range keys {
		r.keys[k.ID] = k
	}
}

// Handle dispatches one event.
func (r *Router) Handle(ev Event) {
	switch ev := ev.(type) {
	case Press:
		r.Press(ev.Pointer, ev.KeyID)
	case Release:
		r.Release(ev.Pointer)
	case Retarget:
		r.Retarget(ev.Pointer, ev.KeyID)
	}
}

// Press binds pointer to the key and starts its note. A pointer that was
// already holding a note releases it first; a key id not in the current
// batch is ignored.
func (r *Router) Press(pointer, keyID string) {
	key, ok := r.keys[keyID]
	if !ok {
		return
	}
	if prev, bound := r.bindings[pointer]; bound {
		if prev == keyID {
			return
		}
		r.sink.NoteOff(prev)
	}
	r.bindings[pointer] = keyID
	r.sink.NoteOn(key.ID, key.Frequency)
}

// Release ends the pointer's note. Unbound pointers are ignored.
func (r *Router) Release(pointer string) {
	keyID, ok := r.bindings[pointer]
	if !ok {
		return
	}
	delete(r.bindings, pointer)
	r.sink.NoteOff(keyID)
}

// Retarget moves a held pointer to a new key, releasing the old note and
// starting the new one. A retarget for an unbound pointer acts as a press.
func (r *Router) Retarget(pointer, keyID string) {
	if bound, ok := r.bindings[pointer]; ok && bound == keyID {
		return
	}
	r.Press(pointer, keyID)
}

// ReleaseAll drops every binding and stops all voices.
func (r *Router) ReleaseAll() {
	r.bindings = make(map[string]string)
	r.sink.StopAll()
}

// Held reports the key a pointer is currently holding.
func (r *Router) Held(pointer string) (layout.Key, bool) {
	keyID, ok := r.bindings[pointer]
	if !ok {
		return layout.Key{}, false
	}
	key, ok := r.keys[keyID]
	return key, ok
}

// HeldKeyIDs returns the set of key ids currently bound by any pointer.
func (r *Router) HeldKeyIDs() map[string]bool {
	held := make(map[string]bool, len(r.bindings))
	for _, keyID := range r.bindings {
		held[keyID] = true
	}
	return held
}
