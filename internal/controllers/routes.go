// Package controllers serves a remote document store over HTTP.
//
// Every collection is served under /v1/<collection>. Snapshots are pushed
// over a websocket opened at /v1/<collection>/subscribe.
package controllers

import (
	"net/http"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the routes of all collections of gw on group.
func RegisterRoutes(group *gin.RouterGroup, gw remote.Gateway) {
	group.GET("", GetV1)

	RegisterCollectionRoutes(group.Group("/"+string(models.KindTransactions)), gw.Transactions)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindBudgets)), gw.Budgets)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindGoals)), gw.Goals)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindWallets)), gw.Wallets)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindRecurringTransactions)), gw.RecurringTransactions)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindSharedExpenses)), gw.SharedExpenses)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindReceipts)), gw.Receipts)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindNotifications)), gw.Notifications)
	RegisterCollectionRoutes(group.Group("/"+string(models.KindCategories)), gw.Categories)
	RegisterProfileRoutes(group.Group("/"+string(models.KindUsers)), gw.Profiles)
}

type V1Response struct {
	Links map[models.Kind]string `json:"links"`
}

// GetV1 lists the collections served.
func GetV1(c *gin.Context) {
	base := c.Request.URL.Path

	kinds := append([]models.Kind{models.KindUsers}, models.Kinds...)

	links := map[models.Kind]string{}
	for _, kind := range kinds {
		links[kind] = base + "/" + string(kind)
	}

	c.JSON(http.StatusOK, V1Response{Links: links})
}
