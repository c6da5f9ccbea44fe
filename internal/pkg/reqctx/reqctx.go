package reqctx

import (
	"weddinghub/internal/domain"

	"github.com/gin-gonic/gin"
)

// Actor builds the acting identity from what the auth middleware stored on
// the context. Handlers must never read actor ids from request bodies.
func Actor(c *gin.Context) domain.Actor {
	return domain.Actor{
		ID:   c.GetInt64("user_id"),
		Role: c.GetString("role"),
		Name: c.GetString("name"),
	}
}

// Meta captures request provenance for audit rows and acknowledgments.
func Meta(c *gin.Context) domain.RequestMeta {
	return domain.RequestMeta{
		SourceIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}
