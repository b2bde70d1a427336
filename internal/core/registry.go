package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/verbyflow/signaling/internal/domain"
)

// ConnRegistry maps a stable identity to its currently-active connection.
// Registration is last-wins: a reconnect simply replaces the old handle.
type ConnRegistry struct {
	mu    sync.RWMutex
	conns map[domain.Identity]Conn
}

func NewConnRegistry() *ConnRegistry {
	return &ConnRegistry{conns: make(map[domain.Identity]Conn)}
}

func (r *ConnRegistry) Register(id domain.Identity, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = conn
	log.Info().Str("module", "core.registry").Str("identity", string(id)).Msg("registered connection")
}

// Resolve returns the live connection for id. A miss means the peer is
// currently unreachable, not an error; callers log and drop.
func (r *ConnRegistry) Resolve(id domain.Identity) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[id]
	return conn, ok
}

func (r *ConnRegistry) Unregister(id domain.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "core.registry").Str("identity", string(id)).Msg("unregistered connection")
}

func (r *ConnRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
