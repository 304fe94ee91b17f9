package handler

import (
	"time"

	"github.com/gin-gonic/gin"
)

// parseDateRange extracts the optional start_date/end_date query params
// (YYYY-MM-DD). A malformed date is reported back to the client as ok=false.
func parseDateRange(c *gin.Context) (start, end *time.Time, ok bool) {
	if s := c.Query("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, false
		}
		start = &t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return nil, nil, false
		}
		end = &t
	}
	return start, end, true
}
