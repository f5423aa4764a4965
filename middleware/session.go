package middleware

import (
	"coolie/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionMiddleware attaches the browse session id to the context, minting a
// new one when the client sends none or an unparseable one. The id is echoed
// back so the client can keep it.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(utils.SessionHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(utils.ContextSessionID, id)
		c.Header(utils.SessionHeader, id)
		c.Next()
	}
}
