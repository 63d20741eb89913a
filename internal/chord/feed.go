package chord

// Feed fans chord changes out to subscribers. Publish calls subscribers
// synchronously, in subscription order, on the caller's goroutine.
type Feed struct {
	subs []func(Change)
}

// Subscribe registers fn for every published change.
func (f *Feed) Subscribe(fn func(Change)) {
	f.subs = append(f.subs, fn)
}

// Publish delivers c to every subscriber.
func (f *Feed) Publish(c Change) {
	for _, fn := range f.subs {
		fn(c)
	}
}
