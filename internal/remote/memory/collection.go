package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/envelope-zero/tracker/internal/uuid"
)

// Collection is one collection of the store. Documents are kept in insertion
// order.
type Collection[T any, P models.MutableRecord[T]] struct {
	kind  models.Kind
	store *Store

	mu      sync.Mutex
	docs    []T
	streams map[int]*stream[T]
	next    int
}

func newCollection[T any, P models.MutableRecord[T]](s *Store, kind models.Kind) *Collection[T, P] {
	return &Collection[T, P]{
		kind:    kind,
		store:   s,
		streams: map[int]*stream[T]{},
	}
}

func (c *Collection[T, P]) Kind() models.Kind {
	return c.kind
}

func id[T any, P models.MutableRecord[T]](r T) string {
	return P(&r).GetID()
}

func owner[T any, P models.MutableRecord[T]](r T) string {
	return P(&r).Owner()
}

// Seed stores records without calling the hook. IDs of records are kept if
// set, missing IDs are generated.
func (c *Collection[T, P]) Seed(records ...T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	owners := map[string]bool{}
	for _, r := range records {
		P(&r).SetID(uuid.OrNew(id[T, P](r)))
		c.docs = append(c.docs, r)
		owners[owner[T, P](r)] = true
	}

	for o := range owners {
		c.publish(o)
	}
}

// Len returns the number of documents in the collection.
func (c *Collection[T, P]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *Collection[T, P]) FetchAll(ctx context.Context) ([]T, error) {
	if err := c.store.before(ctx, c.kind, OpFetchAll); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.docs))
	copy(out, c.docs)
	remote.Sort(out)
	return out, nil
}

func (c *Collection[T, P]) FetchByOwner(ctx context.Context, owner string) ([]T, error) {
	if err := c.store.before(ctx, c.kind, OpFetchByOwner); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ordered(owner), nil
}

func (c *Collection[T, P]) FetchByOwnerUnordered(ctx context.Context, owner string) ([]T, error) {
	if err := c.store.before(ctx, c.kind, OpFetchByOwnerUnordered); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.owned(owner), nil
}

func (c *Collection[T, P]) Create(ctx context.Context, record T) (T, error) {
	if err := c.store.before(ctx, c.kind, OpCreate); err != nil {
		return record, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rid := id[T, P](record)
	if !uuid.Valid(rid) || c.index(rid) >= 0 {
		rid = uuid.New()
	}
	P(&record).SetID(rid)

	c.docs = append(c.docs, record)
	c.publish(owner[T, P](record))

	return record, nil
}

func (c *Collection[T, P]) Update(ctx context.Context, id string, patch models.Patch) error {
	if err := c.store.before(ctx, c.kind, OpUpdate); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %s/%s", remote.ErrNotFound, c.kind, id)
	}

	updated, err := models.ApplyPatch[T, P](c.docs[i], patch)
	if err != nil {
		return err
	}

	docs := make([]T, len(c.docs))
	copy(docs, c.docs)
	docs[i] = updated
	c.docs = docs

	c.publish(owner[T, P](updated))
	return nil
}

// Delete removes the document. Deleting a missing document is not an error.
func (c *Collection[T, P]) Delete(ctx context.Context, id string) error {
	if err := c.store.before(ctx, c.kind, OpDelete); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.index(id)
	if i < 0 {
		return nil
	}

	removed := c.docs[i]
	docs := make([]T, 0, len(c.docs)-1)
	docs = append(docs, c.docs[:i]...)
	c.docs = append(docs, c.docs[i+1:]...)

	c.publish(owner[T, P](removed))
	return nil
}

func (c *Collection[T, P]) Subscribe(ctx context.Context, owner string) (remote.Stream[T], error) {
	if err := c.store.before(ctx, c.kind, OpSubscribe); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.next
	c.next++

	s := &stream[T]{
		owner: owner,
		ch:    make(chan []T, 1),
	}
	s.detach = func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.drop(key, nil)
	}
	s.stop = context.AfterFunc(ctx, s.detach)

	c.streams[key] = s
	s.send(c.ordered(owner))

	return s, nil
}

// index returns the position of the document with id. c.mu must be held.
func (c *Collection[T, P]) index(id string) int {
	for i, r := range c.docs {
		if P(&r).GetID() == id {
			return i
		}
	}
	return -1
}

func (c *Collection[T, P]) owned(o string) []T {
	out := make([]T, 0)
	for _, r := range c.docs {
		if owner[T, P](r) == o {
			out = append(out, r)
		}
	}
	return out
}

func (c *Collection[T, P]) ordered(o string) []T {
	out := c.owned(o)
	remote.Sort(out)
	return out
}

// publish sends the current snapshot to all streams of o. c.mu must be held.
func (c *Collection[T, P]) publish(o string) {
	var snapshot []T
	for _, s := range c.streams {
		if s.owner != o {
			continue
		}
		if snapshot == nil {
			snapshot = c.ordered(o)
		}
		s.send(snapshot)
	}
}

// drop removes the stream with key and closes its channel. c.mu must be held.
func (c *Collection[T, P]) drop(key int, err error) {
	s, ok := c.streams[key]
	if !ok {
		return
	}

	delete(c.streams, key)
	s.err = err
	close(s.ch)
}

func (c *Collection[T, P]) streamCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.streams)
}

func (c *Collection[T, P]) closeStreams(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.streams {
		c.drop(key, err)
	}
}
