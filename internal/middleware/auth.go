package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/Ashu12122005/ppp-management/internal/auth"
)

var (
	ErrMissingAuthorization = errors.New("missing authorization header")
	ErrInvalidAuthorization = errors.New("invalid authorization header")
)

type AccessTokenParser interface {
	ParseAccessToken(token string) (auth.Claims, error)
}

type Principal struct {
	AccountID string
	Role      string
	SessionID string
}

func (p Principal) IsStaff() bool { return p.Role == auth.RoleStaff }

// AuthenticateRequest extracts and verifies the Bearer token on a request.
func AuthenticateRequest(r *http.Request, parser AccessTokenParser) (Principal, error) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if raw == "" {
		return Principal{}, ErrMissingAuthorization
	}

	parts := strings.SplitN(raw, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return Principal{}, ErrInvalidAuthorization
	}

	claims, err := parser.ParseAccessToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return Principal{}, err
	}

	return Principal{AccountID: claims.Sub, Role: claims.Role, SessionID: claims.SessionID}, nil
}
