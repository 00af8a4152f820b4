package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"github.com/akarpov/projecttodo/internal/models"
)

// ErrMalformedHeader covers every transport-shape failure: missing header,
// wrong scheme, invalid base64 and a decoded value that is not a complete
// "username:password" pair. A pair with an empty username or password is
// treated as malformed too, since it cannot match any registered user.
var ErrMalformedHeader = errors.New("authorization header missing or malformed")

const basicScheme = "Basic"

type Credentials struct {
	Username string
	Password string
}

// ParseBasicAuth decodes an HTTP Basic Authorization header value.
// The scheme token is matched case-sensitively.
func ParseBasicAuth(header string) (Credentials, error) {
	if header == "" {
		return Credentials{}, ErrMalformedHeader
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != basicScheme {
		return Credentials{}, ErrMalformedHeader
	}

	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return Credentials{}, ErrMalformedHeader
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok || username == "" || password == "" {
		return Credentials{}, ErrMalformedHeader
	}

	return Credentials{
		Username: username,
		Password: password,
	}, nil
}

// EncodeBasicAuth builds a ready-to-use Authorization header value
// for the given credentials.
func EncodeBasicAuth(username, password string) string {
	token := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return basicScheme + " " + token
}

// UserResolver verifies a plaintext credential pair against the
// credential store and returns the matching user.
type UserResolver interface {
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
}

// Authenticator resolves a raw Authorization header into a principal.
// It is shared by the login handler and the auth middleware so that
// credential parsing exists in exactly one place.
type Authenticator struct {
	logger zerolog.Logger
	users  UserResolver
}

func NewAuthenticator(logger zerolog.Logger, users UserResolver) *Authenticator {
	return &Authenticator{
		logger: logger,
		users:  users,
	}
}

// Authenticate returns the principal for the header, ErrMalformedHeader,
// or whatever typed error the resolver reports (unknown user, bad password).
// Verification re-derives the password hash on every call; there is no
// caching of verified credentials across requests.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (*models.User, error) {
	creds, err := ParseBasicAuth(header)
	if err != nil {
		a.logger.Debug().Msg("malformed authorization header")
		return nil, err
	}

	return a.users.Authenticate(ctx, creds.Username, creds.Password)
}
