package sentinel

import "sync"

// Credentials holds the shared-secret API key attached to every outbound
// call. The value is read lazily from the source and cached until
// Invalidate is called (after a key rotation, say), at which point the
// next Get re-reads the source. This is the only mutable shared state in
// the client.
type Credentials struct {
	mu     sync.Mutex
	source func() string
	value  string
	valid  bool
}

// NewCredentials creates a credential holder backed by source.
func NewCredentials(source func() string) *Credentials {
	return &Credentials{source: source}
}

// Get returns the cached credential, reading it from the source first if
// the cache is empty or was invalidated.
func (c *Credentials) Get() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.valid {
		c.value = c.source()
		c.valid = true
	}
	return c.value
}

// Invalidate drops the cached value so the next Get re-reads the source.
func (c *Credentials) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
	c.value = ""
}
