package app

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var usernameRe = regexp.MustCompile(`^[a-z0-9\-]{3,30}$`)

func (a *App) renderError(c *gin.Context, err error) {
	var vErr *ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPastDate),
		errors.Is(err, ErrSlotTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrUsernameTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		a.Log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

type createUserReq struct {
	Username string `json:"username" binding:"required"`
	Name     string `json:"name" binding:"required"`
}

// POST /api/users
func (a *App) CreateUserHandler(c *gin.Context) {
	var req createUserReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !usernameRe.MatchString(req.Username) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username must be 3-30 lowercase letters, digits or hyphens"})
		return
	}

	user := &User{ID: uuid.NewString(), Username: req.Username, Name: req.Name}
	if err := a.Users.Insert(c.Request.Context(), user); err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

type updateProfileReq struct {
	Bio string `json:"bio" binding:"required"`
}

// PUT /api/me/profile
func (a *App) UpdateProfileHandler(c *gin.Context) {
	var req updateProfileReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.Users.UpdateBio(c.Request.Context(), authedUserID(c), req.Bio); err != nil {
		a.renderError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type setIntervalsReq struct {
	Intervals []WeeklyInterval `json:"intervals" binding:"required"`
}

// POST /api/me/time-intervals
func (a *App) SetTimeIntervalsHandler(c *gin.Context) {
	var req setIntervalsReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := a.ReplaceIntervals(c.Request.Context(), authedUserID(c), req.Intervals); err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"intervals": req.Intervals})
}

// GET /api/users/:username/availability?date=YYYY-MM-DD
func (a *App) AvailabilityHandler(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := a.Users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		a.renderError(c, err)
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date required (YYYY-MM-DD)"})
		return
	}

	availability, err := a.ResolveAvailability(ctx, user.ID, date)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// GET /api/users/:username/blocked-dates?year=YYYY&month=MM
func (a *App) BlockedDatesHandler(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := a.Users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		a.renderError(c, err)
		return
	}

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year required"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month required (1-12)"})
		return
	}

	overview, err := a.ResolveBlockedDates(ctx, user.ID, year, time.Month(month))
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

type createScheduleReq struct {
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email" binding:"required"`
	Observations string `json:"observations,omitempty"`
	DateStr      string `json:"date" binding:"required"` // RFC3339
}

// POST /api/users/:username/schedule
func (a *App) CreateScheduleHandler(c *gin.Context) {
	ctx := c.Request.Context()

	user, err := a.Users.FindByUsername(ctx, c.Param("username"))
	if err != nil {
		a.renderError(c, err)
		return
	}

	var req createScheduleReq
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse(time.RFC3339, req.DateStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date (RFC3339 required)"})
		return
	}

	booking, err := a.CreateScheduling(ctx, user, ScheduleInput{
		Name:         req.Name,
		Email:        req.Email,
		Observations: req.Observations,
		Date:         date,
	})
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// GET /api/me/bookings?from=ISO&to=ISO
func (a *App) ListBookingsHandler(c *gin.Context) {
	userID := authedUserID(c)
	fromStr := c.Query("from")
	toStr := c.Query("to")

	if (fromStr == "") != (toStr == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from and to must be provided together"})
		return
	}

	var (
		from time.Time
		to   time.Time
		err  error
	)
	ranged := fromStr != "" && toStr != ""
	if ranged {
		from, err = time.Parse(time.RFC3339, fromStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		to, err = time.Parse(time.RFC3339, toStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		if !from.Before(to) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be before to"})
			return
		}
	}

	bookings, err := a.Bookings.ListByUser(c.Request.Context(), userID, from, to, ranged)
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// GET /api/calendar/auth
func (a *App) GoogleAuthHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}
	url, err := a.Calendar.AuthURL(authedUserID(c))
	if err != nil {
		a.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_url": url})
}

// GET /oauth2callback
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	if a.Calendar == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}
	userID, ok := a.Calendar.UserIDFromState(c.Query("state"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid state"})
		return
	}

	ctx := c.Request.Context()
	if _, err := a.Users.FindByID(ctx, userID); err != nil {
		a.renderError(c, err)
		return
	}

	token, err := a.Calendar.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}
	if err := a.Credentials.Save(ctx, userID, token); err != nil {
		a.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "calendar connected"})
}
