// internal/session/manager.go
//
// Lazy, evicting cache of live panels.
//
// Context
// -------
// Manager maps session id → *panel.Panel.  The first request of a session
// loads its pagination state from the Store and builds a panel; concurrent
// first requests share one load through singleflight.  Panels live in a
// sync.Map stamped with their last use.  Every EvictInterval the evictor
// drops panels idle longer than IdleTTL and, under pressure, the least
// recently used ones beyond MaxEntries.  Nothing is lost on eviction because
// handlers Save after every state change.
//
// Notes
// -----
//   - A failing Store load is logged and counted; the session then starts
//     from the default state instead of failing the request.
//   - Stores that implement Purge(ctx, cutoff) are purged by the evictor.
//   - Oxford commas, two spaces after periods.
package session

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/playeradmin/internal/logger"
	"github.com/yanizio/playeradmin/internal/metrics"
	"github.com/yanizio/playeradmin/internal/panel"
)

// Defaults used when Options fields are zero.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 1000
	EvictInterval = 5 * time.Minute
)

// Factory builds a panel positioned at st.
type Factory func(st panel.PaginationState) *panel.Panel

// Options tunes a Manager.
type Options struct {
	IdleTTL       time.Duration
	MaxEntries    int
	EvictInterval time.Duration
	PurgeAfter    time.Duration // stored rows older than this are purged; 0 disables
}

type entry struct {
	panel    *panel.Panel
	lastSeen int64 // UnixNano
}

type purger interface {
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// Manager is safe for concurrent use.
type Manager struct {
	store    Store
	newPanel Factory
	defaults panel.PaginationState
	opts     Options

	sfg  singleflight.Group
	m    sync.Map
	stop chan struct{}
	once sync.Once
	now  func() time.Time
}

// NewManager constructs a Manager and starts the background evictor.
func NewManager(store Store, newPanel Factory, defaults panel.PaginationState, opts Options) *Manager {
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = IdleTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = MaxEntries
	}
	if opts.EvictInterval <= 0 {
		opts.EvictInterval = EvictInterval
	}
	m := &Manager{
		store:    store,
		newPanel: newPanel,
		defaults: defaults.Normalize(),
		opts:     opts,
		stop:     make(chan struct{}),
		now:      time.Now,
	}
	go m.evictLoop()
	return m
}

// Get returns the panel for session id, loading it on demand.
func (m *Manager) Get(ctx context.Context, id string) (*panel.Panel, error) {
	if p, ok := m.touch(id); ok {
		return p, nil
	}

	v, err, _ := m.sfg.Do(id, func() (any, error) {
		// Double-check after singleflight barrier.
		if p, ok := m.touch(id); ok {
			return p, nil
		}

		// The load outlives the caller that happened to win the race.
		loadCtx := context.WithoutCancel(ctx)
		st, found, err := m.store.Load(loadCtx, id)
		switch {
		case err != nil:
			metrics.SessionLoadErrorsTotal.Inc()
			logger.FromContext(ctx).Warnw("session load failed, using defaults", "session", id, "err", err)
			st = m.defaults
		case !found:
			st = m.defaults
		default:
			st = st.Normalize()
		}

		p := m.newPanel(st)
		m.m.Store(id, &entry{panel: p, lastSeen: m.now().UnixNano()})
		metrics.SessionLoadTotal.Inc()
		metrics.ActiveSessions.Inc()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*panel.Panel), nil
}

// Save persists the pagination state of p under id.
func (m *Manager) Save(ctx context.Context, id string, p *panel.Panel) error {
	return m.store.Save(ctx, id, p.State())
}

// Len reports how many panels are held in memory.
func (m *Manager) Len() int {
	n := 0
	m.m.Range(func(_, _ any) bool { n++; return true })
	return n
}

// Close stops the evictor and closes the Store.
func (m *Manager) Close() error {
	m.once.Do(func() { close(m.stop) })
	return m.store.Close()
}

func (m *Manager) touch(id string) (*panel.Panel, bool) {
	v, ok := m.m.Load(id)
	if !ok {
		return nil, false
	}
	ent := v.(*entry)
	atomic.StoreInt64(&ent.lastSeen, m.now().UnixNano())
	return ent.panel, true
}

//
// eviction
//

func (m *Manager) evictLoop() {
	t := time.NewTicker(m.opts.EvictInterval)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-t.C:
			m.evict()
			m.purge()
		}
	}
}

// evict runs one idle pass followed by one LRU pass.
func (m *Manager) evict() {
	log := logger.FromContext(context.Background())
	now := m.now().UnixNano()
	var count int

	m.m.Range(func(key, value any) bool {
		ent := value.(*entry)
		idle := time.Duration(now - atomic.LoadInt64(&ent.lastSeen))
		if idle > m.opts.IdleTTL {
			m.m.Delete(key)
			log.Debugw("session evicted", "session", key, "idle", idle.Truncate(time.Second))
			metrics.SessionEvictTotal.Inc()
			metrics.ActiveSessions.Dec()
			return true
		}
		count++
		return true
	})

	if count <= m.opts.MaxEntries {
		return
	}

	type kv struct {
		key string
		at  int64
	}
	all := make([]kv, 0, count)
	m.m.Range(func(key, value any) bool {
		all = append(all, kv{key: key.(string), at: atomic.LoadInt64(&value.(*entry).lastSeen)})
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].at < all[j].at })
	for i := 0; i < len(all)-m.opts.MaxEntries; i++ {
		if _, ok := m.m.LoadAndDelete(all[i].key); ok {
			log.Debugw("session evicted (LRU pressure)", "session", all[i].key)
			metrics.SessionEvictTotal.Inc()
			metrics.ActiveSessions.Dec()
		}
	}
}

func (m *Manager) purge() {
	p, ok := m.store.(purger)
	if !ok || m.opts.PurgeAfter <= 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := p.Purge(ctx, m.now().Add(-m.opts.PurgeAfter))
	log := logger.FromContext(ctx)
	if err != nil {
		log.Warnw("session purge failed", "err", err)
		return
	}
	if n > 0 {
		log.Infow("stale sessions purged", "rows", n)
	}
}
