package device

import (
	"errors"
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the device layer.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry maps device IDs to handles for one device kind.
//
// The registry owns every handle it creates. Get hands out the same
// pointer on every call, so several callers may share one device; nothing
// is ever removed before the owning Set is closed.
//
// All public methods are thread-safe. Create takes the write lock for the
// whole construction so bring-up is serialised; Get only takes the read lock.
type Registry[T any] struct {
	kind    string
	mu      sync.RWMutex
	entries map[ID]T
	order   []ID
	logger  Logger
}

// NewRegistry creates an empty registry for the named kind.
func NewRegistry[T any](kind string) *Registry[T] {
	return &Registry[T]{
		kind:    kind,
		entries: make(map[ID]T),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry[T]) SetLogger(logger Logger) {
	r.logger = logger
}

// Kind returns the device kind name.
func (r *Registry[T]) Kind() string {
	return r.kind
}

// Create constructs a device with ctor and registers it under id.
//
// A duplicate id returns ErrDuplicateDevice without calling ctor and
// without touching the existing entry. A ctor failure that is not already
// a configuration error is reported as ErrHardwareIO; nothing is registered.
func (r *Registry[T]) Create(id ID, ctor func() (T, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicateDevice, r.kind, id)
	}

	dev, err := ctor()
	if err != nil {
		r.logger.Error("device creation failed", "kind", r.kind, "id", string(id), "error", err)
		if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrHardwareIO) {
			return fmt.Errorf("creating %s %q: %w", r.kind, id, err)
		}
		return fmt.Errorf("creating %s %q: %w: %w", r.kind, id, ErrHardwareIO, err)
	}

	r.entries[id] = dev
	r.order = append(r.order, id)
	r.logger.Debug("device created", "kind", r.kind, "id", string(id))
	return nil
}

// Get returns the handle registered under id.
//
// Asking for an id that was never created panics with a
// PreconditionViolation: callers only request ids they provisioned.
func (r *Registry[T]) Get(id ID) T {
	r.mu.RLock()
	dev, ok := r.entries[id]
	r.mu.RUnlock()

	if !ok {
		violate("%s registry has no device %q", r.kind, id)
	}
	return dev
}

// Has reports whether id is registered.
func (r *Registry[T]) Has(id ID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[id]
	return ok
}

// IDs returns the registered ids in creation order.
func (r *Registry[T]) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ID, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of registered devices.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// each calls fn for every device in creation order.
func (r *Registry[T]) each(fn func(ID, T)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		fn(id, r.entries[id])
	}
}
