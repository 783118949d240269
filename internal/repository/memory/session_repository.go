package memory

import (
	"time"

	"storyspark-be/pkg/store"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in memory with a sliding expiry. A
// session leaving the cache, deleted or expired, is released exactly once.
type SessionRepository struct {
	cache *cache.Cache
	onEnd func(sessionID string)
}

// NewSessionRepository creates the store. onEnd, if set, runs after a session
// was released.
func NewSessionRepository(ttl time.Duration, onEnd func(sessionID string)) *SessionRepository {
	// Purge expired sessions every ttl/6, at least once a minute
	c := cache.New(ttl, min(ttl/6, time.Minute))
	r := &SessionRepository{cache: c, onEnd: onEnd}
	c.OnEvicted(r.evicted)
	return r
}

func (r *SessionRepository) evicted(id string, item interface{}) {
	sess, ok := item.(*store.Session)
	if !ok {
		return
	}
	sess.Lock()
	sess.Release()
	sess.Unlock()

	if r.onEnd != nil {
		r.onEnd(id)
	}
}

func (r *SessionRepository) Save(session *store.Session) {
	r.cache.Set(session.ID, session, cache.DefaultExpiration)
}

// Get returns the session and pushes its expiry back. A session deleted or
// expired between the lookup and the refresh is reported as missing.
func (r *SessionRepository) Get(sessionID string) (*store.Session, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	sess := x.(*store.Session)
	if err := r.cache.Replace(sessionID, sess, cache.DefaultExpiration); err != nil {
		return nil, false
	}
	return sess, true
}

// Peek returns the session without touching its expiry.
func (r *SessionRepository) Peek(sessionID string) (*store.Session, bool) {
	x, found := r.cache.Get(sessionID)
	if !found {
		return nil, false
	}
	return x.(*store.Session), true
}

func (r *SessionRepository) Delete(sessionID string) {
	r.cache.Delete(sessionID)
}

func (r *SessionRepository) Count() int {
	return r.cache.ItemCount()
}
