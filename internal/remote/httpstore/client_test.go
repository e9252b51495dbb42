package httpstore_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/envelope-zero/tracker/internal/controllers"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/envelope-zero/tracker/internal/remote/httpstore"
	"github.com/envelope-zero/tracker/internal/remote/memory"
	"github.com/envelope-zero/tracker/internal/uuid"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClientSuite struct {
	suite.Suite
	store  *memory.Store
	server *httptest.Server
	gw     remote.Gateway
}

func TestClient(t *testing.T) {
	gin.SetMode(gin.TestMode)
	suite.Run(t, new(ClientSuite))
}

func (suite *ClientSuite) SetupTest() {
	suite.store = memory.New()

	engine := gin.New()
	controllers.RegisterRoutes(engine.Group("/v1"), suite.store.Gateway())
	suite.server = httptest.NewServer(engine)

	client, err := httpstore.New(suite.server.URL + "/v1")
	suite.Require().Nil(err)
	suite.gw = client.Gateway()
}

func (suite *ClientSuite) TearDownTest() {
	suite.store.Close()
	suite.server.Close()
}

func (suite *ClientSuite) TestCRUD() {
	ctx := context.Background()

	id := uuid.New()
	created, err := suite.gw.Transactions.Create(ctx, models.Transaction{
		Model:    models.Model{ID: id, UserID: "u1"},
		Amount:   decimal.RequireFromString("-4.20"),
		Category: "Food",
		WalletID: "w1",
		Date:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	})
	suite.Require().Nil(err)
	suite.Equal(id, created.ID)

	list, err := suite.gw.Transactions.FetchByOwner(ctx, "u1")
	suite.Require().Nil(err)
	suite.Require().Len(list, 1)
	suite.True(list[0].Amount.Equal(decimal.RequireFromString("-4.20")))

	suite.Require().Nil(suite.gw.Transactions.Update(ctx, id, models.Patch{"note": "Bakery"}))

	list, err = suite.gw.Transactions.FetchByOwnerUnordered(ctx, "u1")
	suite.Require().Nil(err)
	suite.Equal("Bakery", list[0].Note)

	suite.Require().Nil(suite.gw.Transactions.Delete(ctx, id))

	list, err = suite.gw.Transactions.FetchAll(ctx)
	suite.Require().Nil(err)
	suite.NotNil(list)
	suite.Empty(list)
}

func (suite *ClientSuite) TestErrors() {
	ctx := context.Background()

	suite.ErrorIs(suite.gw.Goals.Update(ctx, "missing", models.Patch{"name": "x"}), remote.ErrNotFound)

	_, err := suite.gw.Categories.Create(ctx, models.Category{})
	suite.ErrorIs(err, models.ErrInvalid)

	suite.store.SetHook(func(_ context.Context, kind models.Kind, op memory.Op) error {
		if op == memory.OpFetchByOwner {
			return remote.ErrIndexMissing
		}
		if kind == models.KindUsers {
			return remote.ErrUnavailable
		}
		return nil
	})

	_, err = suite.gw.Goals.FetchByOwner(ctx, "u1")
	suite.ErrorIs(err, remote.ErrIndexMissing)

	_, err = suite.gw.Goals.FetchByOwnerUnordered(ctx, "u1")
	suite.Nil(err)

	_, err = suite.gw.Profiles.Get(ctx, "u1")
	suite.ErrorIs(err, remote.ErrUnavailable)
}

func (suite *ClientSuite) TestProfiles() {
	ctx := context.Background()

	_, err := suite.gw.Profiles.Get(ctx, "u1")
	suite.ErrorIs(err, remote.ErrNotFound)

	suite.Require().Nil(suite.gw.Profiles.Create(ctx, models.NewUserProfile("u1", "", time.Now())))
	suite.Require().Nil(suite.gw.Profiles.Update(ctx, models.UserProfile{UserID: "u1", DisplayName: "Jane"}))

	p, err := suite.gw.Profiles.Get(ctx, "u1")
	suite.Require().Nil(err)
	suite.Equal("Jane", p.DisplayName)
}

func (suite *ClientSuite) TestSubscribe() {
	ctx := context.Background()
	suite.store.Wallets.Seed(models.Wallet{Model: models.Model{ID: "w1", UserID: "u1"}, Name: "Cash"})

	stream, err := suite.gw.Wallets.Subscribe(ctx, "u1")
	suite.Require().Nil(err)
	defer stream.Close()

	suite.Equal([]string{"w1"}, models.IDs(next(suite.T(), stream)))

	_, err = suite.gw.Wallets.Create(ctx, models.Wallet{Model: models.Model{ID: "w2", UserID: "u1"}, Name: "Card", Type: models.WalletTypeCash})
	suite.Require().Nil(err)

	suite.Len(next(suite.T(), stream), 2)

	suite.store.Close()
	for range stream.Snapshots() {
	}
	suite.ErrorIs(stream.Err(), remote.ErrUnavailable)
}

func (suite *ClientSuite) TestStreamClose() {
	stream, err := suite.gw.Notifications.Subscribe(context.Background(), "u1")
	suite.Require().Nil(err)

	next(suite.T(), stream)

	stream.Close()
	stream.Close()

	for range stream.Snapshots() {
	}
	suite.Nil(stream.Err())
	suite.Eventually(func() bool { return suite.store.Streams() == 0 }, 5*time.Second, 5*time.Millisecond)
}

func (suite *ClientSuite) TestStreamContextCancel() {
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := suite.gw.Budgets.Subscribe(ctx, "u1")
	suite.Require().Nil(err)
	cancel()

	for range stream.Snapshots() {
	}
	stream.Close()
}

func (suite *ClientSuite) TestSubscribeFails() {
	suite.store.SetHook(func(_ context.Context, _ models.Kind, op memory.Op) error {
		if op == memory.OpSubscribe {
			return remote.ErrUnavailable
		}
		return nil
	})

	stream, err := suite.gw.Receipts.Subscribe(context.Background(), "u1")
	suite.Require().Nil(err, "the connection is accepted before subscribing")

	for range stream.Snapshots() {
	}
	suite.ErrorIs(stream.Err(), remote.ErrUnavailable)
	stream.Close()
}

func next[T any](t *testing.T, s remote.Stream[T]) []T {
	t.Helper()

	select {
	case snapshot, ok := <-s.Snapshots():
		require.True(t, ok, "stream closed: %v", s.Err())
		return snapshot
	case <-time.After(5 * time.Second):
		require.FailNow(t, "no snapshot delivered")
	}
	return nil
}

func TestNewInvalidURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8080", "ftp://example.com", "http://"} {
		_, err := httpstore.New(u)
		assert.ErrorIs(t, err, httpstore.ErrInvalidURL, u)
	}
}

func TestUnreachable(t *testing.T) {
	server := httptest.NewServer(nil)
	url := server.URL
	server.Close()

	client, err := httpstore.New(url + "/v1")
	require.Nil(t, err)
	gw := client.Gateway()

	_, err = gw.Transactions.FetchByOwner(context.Background(), "u1")
	assert.ErrorIs(t, err, remote.ErrUnavailable)

	_, err = gw.Transactions.Subscribe(context.Background(), "u1")
	assert.ErrorIs(t, err, remote.ErrUnavailable)
}
