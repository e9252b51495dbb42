// Package cache persists the state snapshot of one identity in the local
// key-value store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/envelope-zero/tracker/internal/kv"
	"github.com/envelope-zero/tracker/internal/state"
)

const (
	keySnapshot = "tracker.state"
	keyOwner    = "tracker.owner"
	keyDarkMode = "tracker.darkMode"
)

var ErrCorruptSnapshot = errors.New("the cached snapshot cannot be decoded")

// Adapter reads and writes the cached snapshot and the identity owning it.
type Adapter struct {
	store kv.Store
}

// New returns an Adapter on store.
func New(store kv.Store) *Adapter {
	return &Adapter{store: store}
}

// Snapshot returns the cached snapshot, or nil when there is none.
func (a *Adapter) Snapshot(ctx context.Context) (*state.Snapshot, error) {
	raw, err := a.store.Get(ctx, keySnapshot)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("reading cached snapshot: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return &snap, nil
}

// SetSnapshot replaces the cached snapshot.
func (a *Adapter) SetSnapshot(ctx context.Context, snap state.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if err := a.store.Set(ctx, keySnapshot, raw); err != nil {
		return fmt.Errorf("writing cached snapshot: %w", err)
	}
	return nil
}

// OwningIdentity returns the identity the cached snapshot belongs to, "" if
// none is recorded.
func (a *Adapter) OwningIdentity(ctx context.Context) (string, error) {
	raw, err := a.store.Get(ctx, keyOwner)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("reading owning identity: %w", err)
	}
	return string(raw), nil
}

// SetOwningIdentity records identity as the owner of the cached snapshot.
func (a *Adapter) SetOwningIdentity(ctx context.Context, identity string) error {
	if err := a.store.Set(ctx, keyOwner, []byte(identity)); err != nil {
		return fmt.Errorf("writing owning identity: %w", err)
	}
	return nil
}

// Clear removes the snapshot and the owning identity. The dark mode setting
// is not identity scoped and is kept.
func (a *Adapter) Clear(ctx context.Context) error {
	for _, key := range []string{keyOwner, keySnapshot} {
		if err := a.store.Remove(ctx, key); err != nil {
			return fmt.Errorf("clearing %s: %w", key, err)
		}
	}
	return nil
}

// DarkMode returns the persisted dark mode setting, false if unset.
func (a *Adapter) DarkMode(ctx context.Context) (bool, error) {
	raw, err := a.store.Get(ctx, keyDarkMode)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("reading dark mode: %w", err)
	}

	on, err := strconv.ParseBool(string(raw))
	if err != nil {
		return false, nil
	}
	return on, nil
}

func (a *Adapter) SetDarkMode(ctx context.Context, on bool) error {
	if err := a.store.Set(ctx, keyDarkMode, []byte(strconv.FormatBool(on))); err != nil {
		return fmt.Errorf("writing dark mode: %w", err)
	}
	return nil
}
