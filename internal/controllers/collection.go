package controllers

import (
	"net/http"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/gin-gonic/gin"
)

// ListQuery filters the documents of a collection.
type ListQuery struct {
	Owner     string `form:"owner"`     // Identity owning the documents. All documents are returned when empty
	Unordered bool   `form:"unordered"` // Skip the collection order
}

// URIID addresses a single document.
type URIID struct {
	ID string `uri:"id" binding:"required"`
}

type collection[T any] struct {
	c remote.Collection[T]
}

// RegisterCollectionRoutes registers the routes for one remote collection.
func RegisterCollectionRoutes[T any](r *gin.RouterGroup, c remote.Collection[T]) {
	h := collection[T]{c: c}

	{
		r.OPTIONS("", httputil.OptionsGetPost)
		r.GET("", h.List)
		r.POST("", h.Create)
	}
	{
		r.GET("/subscribe", h.Subscribe)
	}
	{
		r.OPTIONS("/:id", httputil.OptionsPatchDelete)
		r.PATCH("/:id", h.Update)
		r.DELETE("/:id", h.Delete)
	}
}

// List returns the documents of the collection.
func (h collection[T]) List(c *gin.Context) {
	var query ListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.NewError(c, httputil.ErrInvalidBody)
		return
	}

	var (
		docs []T
		err  error
	)
	switch {
	case query.Owner == "":
		docs, err = h.c.FetchAll(c.Request.Context())
	case query.Unordered:
		docs, err = h.c.FetchByOwnerUnordered(c.Request.Context(), query.Owner)
	default:
		docs, err = h.c.FetchByOwner(c.Request.Context(), query.Owner)
	}

	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.Response[[]T]{Data: docs})
}

// Create stores a new document. The response contains the document with the
// ID it was stored under.
func (h collection[T]) Create(c *gin.Context) {
	var record T
	if err := httputil.BindData(c, &record); err != nil {
		return
	}

	if err := models.Validate(record); err != nil {
		httputil.NewError(c, err)
		return
	}

	created, err := h.c.Create(c.Request.Context(), record)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httputil.Response[T]{Data: created})
}

// Update merges the body into the document.
func (h collection[T]) Update(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidBody)
		return
	}

	var patch models.Patch
	if err := httputil.BindData(c, &patch); err != nil {
		return
	}

	if err := h.c.Update(c.Request.Context(), uri.ID, patch); err != nil {
		httputil.NewError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h collection[T]) Delete(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidBody)
		return
	}

	if err := h.c.Delete(c.Request.Context(), uri.ID); err != nil {
		httputil.NewError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
