package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akarpov/projecttodo/internal/auth"
	"github.com/akarpov/projecttodo/internal/services"
)

const userIDCtxKey = "user_id"

// HandleAuthMiddleware resolves the Basic credentials carried by the
// request and stashes the principal's id in the gin context. The hash
// comparison runs on every request; that cost is the price of keeping
// the server session-free.
//
// A header that fails to parse is a 400; credentials that parse but do
// not verify (unknown user or wrong password, deliberately not told
// apart) are a 401.
func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	header := c.GetHeader("Authorization")

	user, err := h.authenticator.Authenticate(c.Request.Context(), header)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMalformedHeader):
			abort(c, newBadRequestError("Authorization header missing or malformed"))
		case errors.Is(err, services.ErrUserNotFound),
			errors.Is(err, services.ErrPasswordMismatch):
			abort(c, newUnauthorizedError("Invalid credentials"))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to authenticate request")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.Set(userIDCtxKey, user.ID)
	c.Next()
}

// RequestTimeout bounds every request at the transport boundary. A
// datastore call that outlives the deadline fails the request; nothing
// is retried internally, so a timed-out write never runs twice.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func getUserIDFromContext(c *gin.Context) (string, bool) {
	value, exists := c.Get(userIDCtxKey)
	if !exists {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok
}
