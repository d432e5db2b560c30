package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/dateutil"
	"github.com/Sh16coder/Trackitstudy/internal/service"
)

func GetShareCode(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		code, err := service.EnsureShareCode(c.Request.Context(), app.ProfileRepo(), user.ID)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to ensure share code")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"share_code": code}, nil)
	}
}

// GetSharedView is unauthenticated: the share code itself is the grant.
// It only ever yields aggregates, never raw sessions, and never allows
// writes under the resolved identity.
func GetSharedView(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")

		view, err := service.LoadSharedView(
			c.Request.Context(),
			app.ProfileRepo(),
			app.SessionRepo(),
			app.ViewCache(),
			code,
			dateutil.Today(),
		)
		if err != nil {
			if errors.Is(err, service.ErrCodeNotFound) {
				HandleError(c, app.Logger(), err, 404, "No user found with this share code")
				return
			}
			HandleError(c, app.Logger(), err, 500, "Failed to load shared view")
			return
		}

		HandleSuccess(c, app.Logger(), view, nil)
	}
}

func PutProfile(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var body struct {
			DisplayName string `json:"display_name"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		body.DisplayName = strings.TrimSpace(body.DisplayName)
		if body.DisplayName == "" {
			HandleError(c, app.Logger(), errors.New("display_name required"), 400, "Validation failed")
			return
		}

		if err := service.UpdateDisplayName(c.Request.Context(), app.ProfileRepo(), user.ID, body.DisplayName); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to update profile")
			return
		}

		HandleSuccess(c, app.Logger(), gin.H{"display_name": body.DisplayName}, nil)
	}
}
