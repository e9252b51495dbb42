// Package syncer keeps the state store in sync with the local cache and the
// remote document store.
//
// The Coordinator follows the signed in identity: it hydrates the state from
// the cache, loads all collections from the remote store and keeps one push
// subscription per collection open. The Gateway applies mutations
// optimistically and mirrors them to the cache and the remote store.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/envelope-zero/tracker/internal/auth"
	"github.com/envelope-zero/tracker/internal/cache"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/envelope-zero/tracker/internal/state"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrClosed = errors.New("the coordinator is closed")

const defaultDrainTimeout = 10 * time.Second

// Phase is the position of the coordinator in the identity lifecycle.
type Phase string

const (
	PhaseUnauthenticated   Phase = "unauthenticated"
	PhaseIdentityResolving Phase = "identityResolving"
	PhaseCacheHydrated     Phase = "cacheHydrated"
	PhaseRemoteLoading     Phase = "remoteLoading"
	PhaseLive              Phase = "live"
	PhaseLoggedOut         Phase = "loggedOut"
)

type Option func(*Coordinator)

func WithLogger(l zerolog.Logger) Option {
	return func(c *Coordinator) {
		c.log = l
	}
}

// WithRegisterer registers the sync metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Coordinator) {
		c.reg = reg
	}
}

// WithDrainTimeout bounds how long Close waits for queued remote writes.
// Writes still pending afterwards are cancelled.
func WithDrainTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		c.drainTimeout = d
	}
}

// WithClock replaces the clock used for creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// Coordinator owns the synchronization of one state store.
type Coordinator struct {
	store   *state.Store
	cache   *cache.Adapter
	remote  remote.Gateway
	log     zerolog.Logger
	now     func() time.Time
	reg     prometheus.Registerer
	metrics *metrics

	drainTimeout time.Duration

	// events serializes identity changes
	events sync.Mutex

	// mu guards the fields below. It is held for every state transition
	// that is written through to the cache, so that no transition of an
	// older identity can reach the cache after a newer one took over.
	mu            sync.Mutex
	phase         Phase
	generation    uint64
	subscriptions map[models.Kind]func()
	closed        bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	writer *writer
}

// New returns a coordinator for store. It starts the remote writer, Close
// must be called to stop it.
func New(store *state.Store, c *cache.Adapter, gw remote.Gateway, opts ...Option) *Coordinator {
	co := &Coordinator{
		store:         store,
		cache:         c,
		remote:        gw,
		log:           log.Logger,
		now:           time.Now,
		phase:         PhaseUnauthenticated,
		subscriptions: map[models.Kind]func(){},
		writer:        newWriter(),
		drainTimeout:  defaultDrainTimeout,
	}

	for _, o := range opts {
		o(co)
	}

	co.metrics = newMetrics(co.reg)
	co.ctx, co.cancel = context.WithCancel(context.Background())
	go co.writer.run(co.ctx, co.writeFailed)

	return co
}

// Store returns the state store the coordinator writes to.
func (c *Coordinator) Store() *state.Store {
	return c.store
}

func (c *Coordinator) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Start restores the dark mode preference. While the cache is not owned by
// any identity, the snapshot stored in it is loaded for offline use.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}

	dark, err := c.cache.DarkMode(ctx)
	if err != nil {
		return fmt.Errorf("reading the dark mode preference: %w", err)
	}
	actions := []state.Action{state.SetDarkMode{DarkMode: dark}}

	owner, err := c.cache.OwningIdentity(ctx)
	if err != nil {
		return fmt.Errorf("reading the owning identity: %w", err)
	}

	if owner == "" {
		if snap := c.cachedSnapshot(ctx); snap != nil {
			actions = append(actions, state.LoadData{Snapshot: *snap})
		}
	}

	c.store.Dispatch(actions...)
	return nil
}

// Run handles the identity changes of p one after another until ctx is done
// or p closes its event channel. The coordinator is closed when Run returns.
func (c *Coordinator) Run(ctx context.Context, p auth.Provider) error {
	defer c.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-p.Events():
			if !ok {
				return nil
			}

			if err := c.HandleIdentity(ctx, e.Identity); err != nil {
				if errors.Is(err, ErrClosed) {
					return err
				}
				c.log.Error().Err(err).Str("identity", e.Identity).Msg("handling identity change")
			}
		}
	}
}

// HandleIdentity switches the coordinator to identity. An empty identity
// logs out.
//
// When it returns, the state holds either the cached snapshot of identity or
// empty collections, the batch fetch is running and the subscriptions are
// open. Failures of remote reads are logged and never returned.
func (c *Coordinator) HandleIdentity(ctx context.Context, identity string) error {
	c.events.Lock()
	defer c.events.Unlock()

	if identity == "" {
		return c.logout(ctx)
	}

	gen, err := c.resolve(ctx, identity)
	if err != nil {
		return err
	}

	c.setPhase(gen, PhaseRemoteLoading)
	if !c.spawn(func() { c.load(gen, identity) }) {
		return ErrClosed
	}
	c.spawn(func() { c.ensureProfile(c.ctx, gen, identity) })

	c.subscribe(gen, identity)
	c.setPhase(gen, PhaseLive)

	return nil
}

// resolve closes all subscriptions and prepares the state for identity. The
// cached snapshot is only loaded when it belongs to identity, otherwise the
// cache is cleared and handed over to identity.
func (c *Coordinator) resolve(ctx context.Context, identity string) (uint64, error) {
	gen, err := c.supersede()
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return 0, ErrClosed
	}

	owner, err := c.cache.OwningIdentity(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading the owning identity, discarding the cache")
		owner = ""
	}

	if owner == identity {
		actions := []state.Action{state.SetIdentity{Identity: identity}, state.SetAuthLoading{Loading: false}, state.Reset{}}
		if snap := c.cachedSnapshot(ctx); snap != nil {
			actions = append(actions, state.LoadData{Snapshot: *snap})
		}
		actions = append(actions, state.SetDataLoading{Loading: true})

		c.store.Dispatch(actions...)
		c.phase = PhaseCacheHydrated
		c.log.Debug().Str("identity", identity).Msg("hydrated from cache")
		return gen, nil
	}

	c.store.Dispatch(
		state.SetIdentity{Identity: identity},
		state.Reset{},
		state.SetAuthLoading{Loading: false},
		state.SetDataLoading{Loading: true},
	)
	c.phase = PhaseIdentityResolving

	if err := c.cache.Clear(ctx); err != nil {
		c.store.Dispatch(state.SetDataLoading{Loading: false})
		return 0, fmt.Errorf("clearing the cache of %q: %w", owner, err)
	}

	if err := c.cache.SetOwningIdentity(ctx, identity); err != nil {
		c.store.Dispatch(state.SetDataLoading{Loading: false})
		return 0, fmt.Errorf("handing the cache to %q: %w", identity, err)
	}

	c.log.Debug().Str("identity", identity).Str("previous", owner).Msg("cache cleared for new identity")
	return gen, nil
}

// logout closes all subscriptions, clears the cache and resets the state.
func (c *Coordinator) logout(ctx context.Context) error {
	if _, err := c.supersede(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	clearErr := c.cache.Clear(ctx)

	c.store.Dispatch(
		state.SetIdentity{Identity: ""},
		state.Reset{},
		state.SetAuthLoading{Loading: false},
		state.SetDataLoading{Loading: false},
	)
	c.phase = PhaseLoggedOut

	if clearErr != nil {
		return fmt.Errorf("clearing the cache: %w", clearErr)
	}

	if snap := c.cachedSnapshot(ctx); snap != nil {
		c.store.Dispatch(state.LoadData{Snapshot: *snap})
	}

	c.log.Debug().Msg("logged out")
	return nil
}

// supersede starts a new generation and closes the subscriptions of the
// previous one. Deliveries of older generations are dropped from now on.
func (c *Coordinator) supersede() (uint64, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return 0, ErrClosed
	}

	c.generation++
	gen := c.generation
	subs := c.takeSubscriptions()
	c.mu.Unlock()

	closeAll(subs)
	return gen, nil
}

// Close closes all subscriptions, waits for queued remote writes and stops
// all background work. Writes that did not finish within the drain timeout
// are cancelled and counted as failed. It is safe to call Close multiple
// times.
func (c *Coordinator) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	c.closed = true
	c.generation++
	subs := c.takeSubscriptions()
	c.mu.Unlock()

	closeAll(subs)
	if !c.writer.close(c.drainTimeout) {
		c.log.Warn().Dur("timeout", c.drainTimeout).Msg("remote writes did not drain in time, cancelling them")
	}
	c.cancel()
	<-c.writer.done
	c.wg.Wait()
}

// Flush waits until all remote writes queued so far have been sent.
func (c *Coordinator) Flush(ctx context.Context) error {
	return c.writer.flush(ctx)
}

// ToggleDarkMode flips the dark mode flag and persists it.
func (c *Coordinator) ToggleDarkMode(ctx context.Context) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.store.Dispatch(state.ToggleDarkMode{})
	if err := c.cache.SetDarkMode(ctx, s.DarkMode); err != nil {
		return s.DarkMode, fmt.Errorf("persisting dark mode: %w", err)
	}
	return s.DarkMode, nil
}

// UpdateProfile merges patch into the profile of the signed in identity.
//
// Unlike other mutations, the remote write is awaited. The state only
// changes when it succeeded.
func (c *Coordinator) UpdateProfile(ctx context.Context, patch models.Patch) error {
	c.mu.Lock()
	s := c.store.State()
	gen := c.generation
	c.mu.Unlock()

	if s.Identity == "" {
		return models.ErrNotAuthenticated
	}

	current := models.NewUserProfile(s.Identity, "", c.now())
	if s.Profile != nil {
		current = *s.Profile
	}

	updated, err := current.Patch(patch)
	if err != nil {
		return err
	}

	err = c.remote.Profiles.Update(ctx, updated)
	if errors.Is(err, remote.ErrNotFound) {
		err = c.remote.Profiles.Create(ctx, updated)
	}
	if err != nil {
		return fmt.Errorf("updating the profile: %w", err)
	}

	c.apply(gen, state.SetUserProfile{Profile: &updated})
	return nil
}

// ensureProfile loads the profile of identity and creates it if it does not
// exist. A failure is retried once, after that the sync continues without a
// profile.
func (c *Coordinator) ensureProfile(ctx context.Context, gen uint64, identity string) {
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		var p models.UserProfile
		if p, err = c.profile(ctx, identity); err == nil {
			c.apply(gen, state.SetUserProfile{Profile: &p})
			return
		}

		c.log.Warn().Err(err).Str("identity", identity).Int("attempt", attempt).Msg("initializing the user profile")
	}

	c.log.Error().Err(err).Str("identity", identity).Msg("continuing without a user profile")
}

func (c *Coordinator) profile(ctx context.Context, identity string) (models.UserProfile, error) {
	p, err := c.remote.Profiles.Get(ctx, identity)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, remote.ErrNotFound) {
		return p, err
	}

	p = models.NewUserProfile(identity, "", c.now())
	if err := c.remote.Profiles.Create(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

// apply dispatches actions and writes the result through to the cache,
// unless gen has been superseded.
func (c *Coordinator) apply(gen uint64, actions ...state.Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return false
	}

	s := c.store.Dispatch(actions...)
	c.persist(c.ctx, s)
	return true
}

// persist writes the collections of s to the cache if the cache belongs to
// the identity of s. c.mu must be held.
func (c *Coordinator) persist(ctx context.Context, s state.State) {
	owner, err := c.cache.OwningIdentity(ctx)
	if err != nil {
		c.log.Error().Err(err).Msg("reading the owning identity")
		return
	}

	if owner != s.Identity {
		c.log.Debug().Str("owner", owner).Str("identity", s.Identity).Msg("cache owned by another identity, not persisting")
		return
	}

	if err := c.cache.SetSnapshot(ctx, s.Snapshot()); err != nil {
		c.log.Error().Err(err).Msg("persisting the snapshot")
	}
}

// cachedSnapshot returns the cached snapshot or nil. A corrupt snapshot is
// treated as absent.
func (c *Coordinator) cachedSnapshot(ctx context.Context) *state.Snapshot {
	snap, err := c.cache.Snapshot(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("reading the cached snapshot, ignoring it")
		return nil
	}
	return snap
}

func (c *Coordinator) setPhase(gen uint64, p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen == c.generation {
		c.phase = p
	}
}

// spawn runs fn in a goroutine that Close waits for. It returns false once
// the coordinator is closed.
func (c *Coordinator) spawn(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
	return true
}

// enqueue queues a remote write. c.mu must be held.
func (c *Coordinator) enqueue(kind models.Kind, op string, run func(ctx context.Context) error) {
	c.writer.enqueue(write{kind: kind, op: op, run: run})
}

func (c *Coordinator) writeFailed(w write, err error) {
	c.metrics.writeFailures.WithLabelValues(string(w.kind), w.op).Inc()
	c.log.Error().Err(err).Str("kind", string(w.kind)).Str("op", w.op).Msg("remote write failed")
}

// takeSubscriptions removes all subscriptions. c.mu must be held.
func (c *Coordinator) takeSubscriptions() map[models.Kind]func() {
	subs := c.subscriptions
	c.subscriptions = map[models.Kind]func(){}
	c.metrics.subscriptions.Set(0)
	return subs
}

func closeAll(subs map[models.Kind]func()) {
	for _, unsubscribe := range subs {
		unsubscribe()
	}
}
