package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akarpov/projecttodo/internal/auth"
	"github.com/akarpov/projecttodo/internal/services"
)

type registerRequest struct {
	Username string `json:"username" binding:"required,max=255"`
	Password string `json:"password" binding:"required,min=6,max=255"`
}

func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Debug().
			Err(err).
			Msg("failed to bind json")
		abortWithBindingError(c, err)
		return
	}
	h.logger.Info().
		Str("username", req.Username).
		Msg("register request")

	// A colon would make the username:password encoding of the Basic
	// header ambiguous, so such a credential could never authenticate.
	if strings.Contains(req.Username, ":") {
		abort(c, newBadRequestError("Username must not contain ':'"))
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrUserAlreadyExists):
			abort(c, newBadRequestError("Username already exists"))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to register user")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	// Hand back a ready-to-use header so clients don't have to encode
	// the pair themselves.
	c.JSON(http.StatusCreated, gin.H{
		"message":       "User registered successfully",
		"authorization": auth.EncodeBasicAuth(user.Username, req.Password),
	})
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	header := c.GetHeader("Authorization")

	_, err := h.authenticator.Authenticate(c.Request.Context(), header)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrMalformedHeader):
			abort(c, newBadRequestError("Authorization header missing or malformed"))
		case errors.Is(err, services.ErrUserNotFound):
			abort(c, newNotFoundError("User not found"))
		case errors.Is(err, services.ErrPasswordMismatch):
			abort(c, newUnauthorizedError("Invalid credentials"))
		default:
			h.logger.Error().
				Err(err).
				Msg("failed to login")
			abort(c, newStatusTextError(http.StatusInternalServerError))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged in successfully"})
}
