package voice

import "sort"

// ID identifies a registered voice.
type ID uint64

// Registry is the set of live units, tagged by layer kind. It only tracks
// bookkeeping; a voice removed from the registry keeps sounding in the graph
// until its own stop time.
//
// Registry is not safe for concurrent use.
type Registry struct {
	next   ID
	voices map[ID]*Voice
}

func NewRegistry() *Registry {
	return &Registry{voices: make(map[ID]*Voice)}
}

// Add registers v and returns its id.
func (r *Registry) Add(v *Voice) ID {
	r.next++
	r.voices[r.next] = v
	return r.next
}

// Remove drops id. Removing an unknown or already removed id is a no-op.
func (r *Registry) Remove(id ID) bool {
	if _, ok := r.voices[id]; !ok {
		return false
	}
	delete(r.voices, id)
	return true
}

// Get returns the voice registered under id.
func (r *Registry) Get(id ID) (*Voice, bool) {
	v, ok := r.voices[id]
	return v, ok
}

// FadeKind fades and removes every voice of kind over dur seconds.
// It returns how many voices were swept.
func (r *Registry) FadeKind(kind Kind, now, dur float64) int {
	n := 0
	for _, id := range r.ids() {
		v := r.voices[id]
		if v.Kind != kind {
			continue
		}
		v.FadeOut(now, dur)
		delete(r.voices, id)
		n++
	}
	return n
}

// FadeAll fades and removes every voice over dur seconds.
func (r *Registry) FadeAll(now, dur float64) int {
	n := len(r.voices)
	for _, id := range r.ids() {
		r.voices[id].FadeOut(now, dur)
	}
	clear(r.voices)
	return n
}

// Count returns the number of live voices of kind.
func (r *Registry) Count(kind Kind) int {
	n := 0
	for _, v := range r.voices {
		if v.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of live voices.
func (r *Registry) Len() int { return len(r.voices) }

// Voices returns the live voices of kind in registration order.
func (r *Registry) Voices(kind Kind) []*Voice {
	var out []*Voice
	for _, id := range r.ids() {
		if v := r.voices[id]; v.Kind == kind {
			out = append(out, v)
		}
	}
	return out
}

// ids returns registered ids in ascending order so sweeps are deterministic.
func (r *Registry) ids() []ID {
	ids := make([]ID, 0, len(r.voices))
	for id := range r.voices {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
