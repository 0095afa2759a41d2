package sections

import "sync"

// KeyHandler reports whether it consumed key.
type KeyHandler func(key string) bool

// Keys routes key presses the host does not handle to the active game.
type Keys struct {
	mu  sync.Mutex
	h   KeyHandler
	gen uint64
}

// Bind makes h the active handler. The returned release unbinds it unless a
// newer handler has replaced it since.
func (k *Keys) Bind(h KeyHandler) (release func()) {
	k.mu.Lock()
	k.gen++
	gen := k.gen
	k.h = h
	k.mu.Unlock()
	return func() {
		k.mu.Lock()
		defer k.mu.Unlock()
		if k.gen == gen {
			k.h = nil
		}
	}
}

// Dispatch hands key to the active handler.
func (k *Keys) Dispatch(key string) bool {
	k.mu.Lock()
	h := k.h
	k.mu.Unlock()
	if h == nil {
		return false
	}
	return h(key)
}

// Bound reports whether a handler is active.
func (k *Keys) Bound() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.h != nil
}
