package identity

import (
	"strings"

	"github.com/beka-birhanu/quill-api/api/apierr"
	"github.com/beka-birhanu/quill-api/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextUserID is the key used to store the authenticated user ID in the Gin context.
	ContextUserID = "userID"
)

// Authorize resolves the bearer token of each request to a user ID.
func Authorize(ts i.TokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			apierr.Unauthorized(c)
			return
		}

		userID, err := ts.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			apierr.Abort(c, err)
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the ID stored by Authorize.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// MustUserID is UserID for handlers mounted behind Authorize.
func MustUserID(c *gin.Context) uuid.UUID {
	id, ok := UserID(c)
	if !ok {
		panic("identity: handler mounted without Authorize")
	}
	return id
}
