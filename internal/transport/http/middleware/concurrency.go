package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	resp "go-gin-gorm-accounts/internal/transport/http/response"
)

// ConcurrencyLimit caps in-flight requests. A request that cannot get a slot
// before its context ends is answered 503.
func ConcurrencyLimit(max int64) gin.HandlerFunc {
	if max <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	sem := semaphore.NewWeighted(max)
	return func(c *gin.Context) {
		if err := sem.Acquire(c.Request.Context(), 1); err != nil {
			resp.Abort(c, http.StatusServiceUnavailable, resp.CodeUnavailable, "Server busy")
			return
		}
		defer sem.Release(1)
		c.Next()
	}
}
