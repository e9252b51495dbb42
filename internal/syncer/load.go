package syncer

import (
	"context"
	"fmt"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/envelope-zero/tracker/internal/state"
	"golang.org/x/sync/errgroup"
)

// load fetches every collection of identity and replaces the state with the
// result in one transition. When any fetch fails, the state is kept.
func (c *Coordinator) load(gen uint64, identity string) {
	snap, err := c.fetchAll(c.ctx, identity)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.log.Debug().Str("identity", identity).Msg("dropping the result of a superseded fetch")
		return
	}

	if err != nil {
		c.log.Error().Err(err).Str("identity", identity).Msg("fetching the remote collections, keeping the current state")
		c.store.Dispatch(state.SetDataLoading{Loading: false})
		return
	}

	owner, err := c.cache.OwningIdentity(c.ctx)
	if err != nil || owner != identity {
		c.log.Warn().Err(err).Str("identity", identity).Str("owner", owner).Msg("dropping fetch result, the cache changed hands")
		c.store.Dispatch(state.SetDataLoading{Loading: false})
		return
	}

	s := c.store.Dispatch(state.LoadData{Snapshot: snap})
	c.persist(c.ctx, s)
	c.log.Debug().Str("identity", identity).Int("transactions", len(s.Transactions)).Msg("remote collections loaded")
}

// fetchAll fetches all collections of owner in parallel.
func (c *Coordinator) fetchAll(ctx context.Context, owner string) (state.Snapshot, error) {
	var snap state.Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		snap.Transactions, err = fetch(ctx, c, c.remote.Transactions, owner)
		return err
	})
	g.Go(func() error {
		budgets, err := fetch(ctx, c, c.remote.Budgets, owner)
		if err == nil {
			snap.Budgets = models.ReduceBudgets(budgets)
		}
		return err
	})
	g.Go(func() (err error) {
		snap.Goals, err = fetch(ctx, c, c.remote.Goals, owner)
		return err
	})
	g.Go(func() (err error) {
		snap.Wallets, err = fetch(ctx, c, c.remote.Wallets, owner)
		return err
	})
	g.Go(func() (err error) {
		snap.RecurringTransactions, err = fetch(ctx, c, c.remote.RecurringTransactions, owner)
		return err
	})
	g.Go(func() (err error) {
		snap.SharedExpenses, err = fetch(ctx, c, c.remote.SharedExpenses, owner)
		return err
	})
	g.Go(func() (err error) {
		snap.Receipts, err = fetch(ctx, c, c.remote.Receipts, owner)
		return err
	})
	g.Go(func() (err error) {
		snap.Notifications, err = fetch(ctx, c, c.remote.Notifications, owner)
		return err
	})
	g.Go(func() (err error) {
		snap.Categories, err = fetch(ctx, c, c.remote.Categories, owner)
		return err
	})

	if err := g.Wait(); err != nil {
		return state.Snapshot{}, err
	}
	return snap, nil
}

// fetch reads the records of owner. When the ordered query fails with a
// retryable error, the unordered query is tried once and sorted locally.
func fetch[T any](ctx context.Context, c *Coordinator, coll remote.Collection[T], owner string) ([]T, error) {
	kind := coll.Kind()

	list, err := coll.FetchByOwner(ctx, owner)
	if err == nil {
		return list, nil
	}

	c.metrics.fetchFailures.WithLabelValues(string(kind)).Inc()
	if !remote.Retryable(err) {
		return nil, fmt.Errorf("fetching %s: %w", kind, err)
	}

	c.log.Warn().Err(err).Str("kind", string(kind)).Msg("ordered fetch failed, retrying without ordering")

	list, err = coll.FetchByOwnerUnordered(ctx, owner)
	if err != nil {
		c.metrics.fetchFailures.WithLabelValues(string(kind)).Inc()
		return nil, fmt.Errorf("fetching %s without ordering: %w", kind, err)
	}

	remote.Sort(list)
	return list, nil
}

// subscribe opens one subscription per collection of identity. Collections
// that cannot be subscribed to are logged and skipped.
func (c *Coordinator) subscribe(gen uint64, identity string) {
	subs := map[models.Kind]func(){}

	watch(c, gen, identity, c.remote.Transactions, subs, func(l []models.Transaction) state.Action {
		return state.Replace[models.Transaction]{Records: l}
	})
	watch(c, gen, identity, c.remote.Budgets, subs, func(l []models.Budget) state.Action {
		return state.SetBudgets{Budgets: models.ReduceBudgets(l)}
	})
	watch(c, gen, identity, c.remote.Goals, subs, func(l []models.Goal) state.Action {
		return state.Replace[models.Goal]{Records: l}
	})
	watch(c, gen, identity, c.remote.Wallets, subs, func(l []models.Wallet) state.Action {
		return state.Replace[models.Wallet]{Records: l}
	})
	watch(c, gen, identity, c.remote.RecurringTransactions, subs, func(l []models.RecurringTransaction) state.Action {
		return state.Replace[models.RecurringTransaction]{Records: l}
	})
	watch(c, gen, identity, c.remote.SharedExpenses, subs, func(l []models.SharedExpense) state.Action {
		return state.Replace[models.SharedExpense]{Records: l}
	})
	watch(c, gen, identity, c.remote.Receipts, subs, func(l []models.Receipt) state.Action {
		return state.Replace[models.Receipt]{Records: l}
	})
	watch(c, gen, identity, c.remote.Notifications, subs, func(l []models.Notification) state.Action {
		return state.Replace[models.Notification]{Records: l}
	})
	watch(c, gen, identity, c.remote.Categories, subs, func(l []models.Category) state.Action {
		return state.SetCategories{Categories: l}
	})

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		closeAll(subs)
		return
	}

	c.subscriptions = subs
	c.metrics.subscriptions.Set(float64(len(subs)))
	c.mu.Unlock()
}

// watch subscribes to coll and applies every snapshot with the action
// returned by replace.
func watch[T any](c *Coordinator, gen uint64, owner string, coll remote.Collection[T], subs map[models.Kind]func(), replace func([]T) state.Action) {
	kind := coll.Kind()

	stream, err := coll.Subscribe(c.ctx, owner)
	if err != nil {
		c.metrics.fetchFailures.WithLabelValues(string(kind)).Inc()
		c.log.Error().Err(err).Str("kind", string(kind)).Msg("subscribing")
		return
	}

	if !c.spawn(func() { receive(c, gen, kind, stream, replace) }) {
		stream.Close()
		return
	}

	subs[kind] = stream.Close
}

// receive applies snapshots until the stream ends. Snapshots of a superseded
// generation are dropped.
func receive[T any](c *Coordinator, gen uint64, kind models.Kind, stream remote.Stream[T], replace func([]T) state.Action) {
	for snapshot := range stream.Snapshots() {
		if c.apply(gen, replace(snapshot)) {
			c.metrics.snapshots.WithLabelValues(string(kind)).Inc()
		}
	}

	if err := stream.Err(); err != nil {
		c.log.Error().Err(err).Str("kind", string(kind)).Msg("subscription ended")
	}
}
