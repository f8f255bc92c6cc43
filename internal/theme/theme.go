// Package theme broadcasts the dark-mode preference to whoever renders.
package theme

import "sync"

type Theme struct {
	mu     sync.Mutex
	dark   bool
	nextID int
	subs   map[int]func(bool)
}

func New(dark bool) *Theme {
	return &Theme{dark: dark, subs: map[int]func(bool){}}
}

func (t *Theme) DarkMode() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dark
}

// Toggle flips the flag, notifies subscribers and returns the new value.
func (t *Theme) Toggle() bool {
	t.mu.Lock()
	t.dark = !t.dark
	dark := t.dark
	t.mu.Unlock()
	t.broadcast(dark)
	return dark
}

// Set notifies subscribers only when the value changes.
func (t *Theme) Set(dark bool) {
	t.mu.Lock()
	if t.dark == dark {
		t.mu.Unlock()
		return
	}
	t.dark = dark
	t.mu.Unlock()
	t.broadcast(dark)
}

// Subscribe registers fn for future changes and returns its unsubscribe func.
func (t *Theme) Subscribe(fn func(dark bool)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.subs[id] = fn
	t.mu.Unlock()
	return func() {
		t.mu.Lock()
		delete(t.subs, id)
		t.mu.Unlock()
	}
}

func (t *Theme) broadcast(dark bool) {
	t.mu.Lock()
	fns := make([]func(bool), 0, len(t.subs))
	// Subscription order.
	for i := 0; i < t.nextID; i++ {
		if fn, ok := t.subs[i]; ok {
			fns = append(fns, fn)
		}
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn(dark)
	}
}
