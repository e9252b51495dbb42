package controllers

import (
	"net/http"

	"github.com/envelope-zero/tracker/internal/httputil"
	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/remote"
	"github.com/gin-gonic/gin"
)

type profiles struct {
	p remote.Profiles
}

// RegisterProfileRoutes registers the routes for user profiles.
func RegisterProfileRoutes(r *gin.RouterGroup, p remote.Profiles) {
	h := profiles{p: p}

	r.POST("", h.Create)
	{
		r.OPTIONS("/:id", httputil.OptionsGetPut)
		r.GET("/:id", h.Get)
		r.PUT("/:id", h.Update)
	}
}

func (h profiles) Get(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidBody)
		return
	}

	profile, err := h.p.Get(c.Request.Context(), uri.ID)
	if err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusOK, httputil.Response[models.UserProfile]{Data: profile})
}

func (h profiles) Create(c *gin.Context) {
	var profile models.UserProfile
	if err := httputil.BindData(c, &profile); err != nil {
		return
	}

	if err := models.Validate(profile); err != nil {
		httputil.NewError(c, err)
		return
	}

	if err := h.p.Create(c.Request.Context(), profile); err != nil {
		httputil.NewError(c, err)
		return
	}

	c.JSON(http.StatusCreated, httputil.Response[models.UserProfile]{Data: profile})
}

// Update replaces the profile. The identity is always taken from the path.
func (h profiles) Update(c *gin.Context) {
	var uri URIID
	if err := c.ShouldBindUri(&uri); err != nil {
		httputil.NewError(c, httputil.ErrInvalidBody)
		return
	}

	var profile models.UserProfile
	if err := httputil.BindData(c, &profile); err != nil {
		return
	}
	profile.UserID = uri.ID

	if err := models.Validate(profile); err != nil {
		httputil.NewError(c, err)
		return
	}

	if err := h.p.Update(c.Request.Context(), profile); err != nil {
		httputil.NewError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
