package host

// MemoryHost is an in-memory Host with a real history stack. It backs
// tests, the CLI, and embedded shells that have no browser behind them.
//
// MemoryHost follows the dispatcher's single-goroutine model and is not
// safe for concurrent use.
type MemoryHost struct {
	stack     []Location
	index     int
	listeners map[int]func(Location)
	nextID    int
}

// NewMemoryHost creates a MemoryHost positioned at start ("/" if empty).
func NewMemoryHost(start string) *MemoryHost {
	if start == "" {
		start = "/"
	}
	return &MemoryHost{
		stack:     []Location{Parse(start)},
		listeners: map[int]func(Location){},
	}
}

// Location returns the current entry.
func (h *MemoryHost) Location() Location {
	return h.stack[h.index]
}

// Push truncates any forward entries and appends url as the new current
// entry, the way a browser pushState does.
func (h *MemoryHost) Push(url string) {
	h.stack = append(h.stack[:h.index+1], Parse(url))
	h.index = len(h.stack) - 1
}

// Replace overwrites the current entry, preserving nothing from it.
func (h *MemoryHost) Replace(url string) {
	h.stack[h.index] = Parse(url)
}

// SetState attaches an opaque state payload to the current entry.
func (h *MemoryHost) SetState(state any) {
	h.stack[h.index].State = state
}

// Back moves one entry backward, if possible, and signals listeners.
func (h *MemoryHost) Back() {
	if h.index == 0 {
		return
	}
	h.index--
	h.notify()
}

// Forward moves one entry forward, if possible, and signals listeners.
func (h *MemoryHost) Forward() {
	if h.index == len(h.stack)-1 {
		return
	}
	h.index++
	h.notify()
}

// Visit simulates an external location change (e.g. an intercepted link
// click): the entry is pushed and listeners are signalled.
func (h *MemoryHost) Visit(url string) {
	h.Push(url)
	h.notify()
}

// Listen registers fn for traversal signals.
func (h *MemoryHost) Listen(fn func(Location)) (stop func()) {
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

// Len reports the number of history entries.
func (h *MemoryHost) Len() int { return len(h.stack) }

func (h *MemoryHost) notify() {
	loc := h.Location()
	for _, fn := range h.listeners {
		fn(loc)
	}
}
