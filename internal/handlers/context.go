package handlers

import (
	"context"

	"github.com/gin-gonic/gin"
)

// requestContext hands the caller's context to the service layer so database
// work is abandoned when the client disconnects. Handlers invoked without a
// request, as in some tests, fall back to Background.
func requestContext(c *gin.Context) context.Context {
	if c != nil && c.Request != nil {
		return c.Request.Context()
	}
	return context.Background()
}
