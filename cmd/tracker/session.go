package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/envelope-zero/tracker/internal/cache"
	"github.com/envelope-zero/tracker/internal/kv"
	"github.com/envelope-zero/tracker/internal/remote/httpstore"
	"github.com/envelope-zero/tracker/internal/state"
	"github.com/envelope-zero/tracker/internal/syncer"
	"github.com/rs/zerolog/log"
)

var errUserRequired = errors.New("--user is required")

// loadTimeout bounds how long a command waits for the initial fetch.
const loadTimeout = 30 * time.Second

// session is a signed in coordinator over the local cache.
type session struct {
	co    *syncer.Coordinator
	store kv.Store
}

// open starts a coordinator for the configured cache and remote and signs in
// as the user. It returns once the remote data was loaded.
func open(ctx context.Context, f *flags) (*session, error) {
	if f.user == "" {
		return nil, errUserRequired
	}

	if f.cfg.Cache.Backend != kv.BackendBadger {
		if err := os.MkdirAll(filepath.Dir(f.cfg.Cache.Path), 0o750); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	store, err := kv.Open(f.cfg.Cache.Backend, f.cfg.Cache.Path, kv.WithLogger(log.Logger))
	if err != nil {
		return nil, err
	}

	client, err := httpstore.New(f.cfg.RemoteURL, httpstore.WithLogger(log.Logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	s := &session{
		co:    syncer.New(state.NewStore(state.Initial()), cache.New(store), client.Gateway(), syncer.WithLogger(log.Logger)),
		store: store,
	}

	if err := s.co.Start(ctx); err != nil {
		s.close()
		return nil, err
	}

	loaded := make(chan struct{}, 1)
	cancel := s.co.Store().Subscribe(func(st state.State) {
		if st.Identity == f.user && !st.DataLoading {
			select {
			case loaded <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	if err := s.co.HandleIdentity(ctx, f.user); err != nil {
		s.close()
		return nil, err
	}

	if st := s.co.Store().State(); st.Identity == f.user && !st.DataLoading {
		return s, nil
	}

	wait, stop := context.WithTimeout(ctx, loadTimeout)
	defer stop()

	select {
	case <-loaded:
		return s, nil
	case <-wait.Done():
		s.close()
		return nil, fmt.Errorf("loading data: %w", wait.Err())
	}
}

func (s *session) state() state.State {
	return s.co.Store().State()
}

// close waits for all queued remote writes and releases the cache.
func (s *session) close() {
	s.co.Close()
	if err := s.store.Close(); err != nil {
		log.Error().Err(err).Msg("closing cache")
	}
}
