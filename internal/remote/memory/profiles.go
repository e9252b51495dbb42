package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
)

// Profiles stores user profiles by identity.
type Profiles struct {
	store *Store

	mu       sync.Mutex
	profiles map[string]models.UserProfile
}

func (p *Profiles) Get(ctx context.Context, identity string) (models.UserProfile, error) {
	if err := p.store.before(ctx, models.KindUsers, OpGet); err != nil {
		return models.UserProfile{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	profile, ok := p.profiles[identity]
	if !ok {
		return models.UserProfile{}, fmt.Errorf("%w: %s/%s", remote.ErrNotFound, models.KindUsers, identity)
	}
	return profile, nil
}

// Create stores profile. An existing profile for the identity is replaced.
func (p *Profiles) Create(ctx context.Context, profile models.UserProfile) error {
	if err := p.store.before(ctx, models.KindUsers, OpCreate); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.profiles[profile.UserID] = profile
	return nil
}

func (p *Profiles) Update(ctx context.Context, profile models.UserProfile) error {
	if err := p.store.before(ctx, models.KindUsers, OpUpdate); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.profiles[profile.UserID]; !ok {
		return fmt.Errorf("%w: %s/%s", remote.ErrNotFound, models.KindUsers, profile.UserID)
	}

	p.profiles[profile.UserID] = profile
	return nil
}
