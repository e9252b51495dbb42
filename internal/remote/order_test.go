package remote_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/stretchr/testify/assert"
)

func TestSortDated(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }

	transactions := []models.Transaction{
		{Model: models.Model{ID: "a"}, Date: day(2)},
		{Model: models.Model{ID: "b"}, Date: day(5)},
		{Model: models.Model{ID: "c"}, Date: day(1)},
		{Model: models.Model{ID: "d"}, Date: day(5)},
	}
	remote.Sort(transactions)
	assert.Equal(t, []string{"b", "d", "a", "c"}, models.IDs(transactions))

	goals := []models.Goal{
		{Model: models.Model{ID: "g1"}, CreatedAt: day(1)},
		{Model: models.Model{ID: "g2"}, CreatedAt: day(3)},
	}
	remote.Sort(goals)
	assert.Equal(t, []string{"g2", "g1"}, models.IDs(goals))
}

func TestSortUndated(t *testing.T) {
	wallets := []models.Wallet{{Model: models.Model{ID: "w2"}}, {Model: models.Model{ID: "w1"}}}
	remote.Sort(wallets)
	assert.Equal(t, []string{"w2", "w1"}, models.IDs(wallets))
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{remote.ErrIndexMissing, true},
		{fmt.Errorf("fetching: %w", remote.ErrUnavailable), true},
		{remote.ErrNotFound, false},
		{errors.New("boom"), false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, remote.Retryable(tt.err), tt.err.Error())
	}
}
