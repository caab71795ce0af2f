package ui

import "sync"

// Button models a control that is disabled while its action runs.
type Button struct {
	mu       sync.Mutex
	label    string
	original string
	disabled bool
}

func NewButton(label string) *Button {
	return &Button{label: label}
}

// Acquire disables the button and swaps in busyLabel. The returned release
// restores the original label and re-enables it; ok is false when the button
// is already busy.
func (b *Button) Acquire(busyLabel string) (release func(), ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disabled {
		return func() {}, false
	}
	b.disabled = true
	b.original = b.label
	b.label = busyLabel

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			b.disabled = false
			b.label = b.original
			if b.label == "" {
				b.label = "Checkout"
			}
			b.original = ""
		})
	}, true
}

func (b *Button) Disabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disabled
}

func (b *Button) Label() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.label
}
