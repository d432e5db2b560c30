package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Sh16coder/Trackitstudy/internal"
	"github.com/Sh16coder/Trackitstudy/internal/dateutil"
	"github.com/Sh16coder/Trackitstudy/internal/service"
	"github.com/Sh16coder/Trackitstudy/internal/storage"
)

func PostSession(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		var body service.SessionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		if err := service.ValidateSessionRequest(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Validation failed")
			return
		}

		sess, err := service.CreateSession(c.Request.Context(), app.SessionRepo(), user, &body)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to save session")
			return
		}

		app.Hub().NotifyChange(c.Request.Context(), user.ID)
		HandleSuccess(c, app.Logger(), sess, nil)
	}
}

func GetSessions(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		limit := storage.DefaultListLimit
		if l := c.Query("limit"); l != "" {
			if n, err := strconv.Atoi(l); err == nil && n > 0 {
				limit = n
			}
		}

		sessions, err := app.SessionRepo().ListSessions(c.Request.Context(), user.ID, limit)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to fetch sessions")
			return
		}

		HandleSuccess(c, app.Logger(), sessions, nil)
	}
}

func GetDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)

		referenceDay := dateutil.Today()
		if q := c.Query("date"); q != "" {
			day, err := dateutil.ParseDay(q)
			if err != nil {
				HandleError(c, app.Logger(), err, 400, "Invalid date")
				return
			}
			referenceDay = day
		}

		view, err := service.LoadDashboard(c.Request.Context(), app.SessionRepo(), user.ID, referenceDay)
		if err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to compute dashboard")
			return
		}

		HandleSuccess(c, app.Logger(), view, map[string]any{"reference_date": referenceDay})
	}
}

// LiveDashboard upgrades to a WebSocket and streams a fresh view on
// every session-list change.
func LiveDashboard(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := c.MustGet("user").(*internal.User)
		app.Hub().HandleConnection(c.Writer, c.Request, user.ID)
	}
}
