package handlers

import (
	"strconv"

	"github.com/geocoder89/timehub/internal/domain/timelog"
	"github.com/geocoder89/timehub/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

type TimeLogPage struct {
	Items      []timelog.TimeLog `json:"items"`
	NextCursor *string           `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

// parseTimeLogPage reads ?limit= and ?cursor=. It writes a 400 and returns
// false on bad input.
func parseTimeLogPage(ctx *gin.Context) (timelog.Page, bool) {
	page := timelog.Page{Limit: defaultPageLimit}

	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxPageLimit {
			RespondBadRequest(ctx, "limit must be between 1 and 200", gin.H{"field": "limit"})
			return timelog.Page{}, false
		}
		page.Limit = n
	}

	if raw := ctx.Query("cursor"); raw != "" {
		c, err := utils.DecodeTimeLogCursor(raw)
		if err != nil {
			RespondBadRequest(ctx, "Invalid cursor", gin.H{"field": "cursor"})
			return timelog.Page{}, false
		}
		page.AfterDate = c.Date
		page.AfterCreatedAt = c.CreatedAt
		page.AfterID = c.ID
	}

	return page, true
}

func newTimeLogPage(items []timelog.TimeLog, next *string, hasMore bool) TimeLogPage {
	if items == nil {
		items = []timelog.TimeLog{}
	}
	return TimeLogPage{Items: items, NextCursor: next, HasMore: hasMore}
}
