package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	RoleStaff   = "staff"
	RoleStudent = "student"
)

type Claims struct {
	Sub       string `json:"sub"`
	Role      string `json:"role"`
	SessionID string `json:"sid"`
	Iss       string `json:"iss"`
	Iat       int64  `json:"iat"`
	Exp       int64  `json:"exp"`
}

// TokenManager issues and verifies HS256 access tokens and opaque refresh
// tokens. Refresh tokens are stored server-side as sha256 digests only.
type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (m *TokenManager) IssueAccessToken(accountID, role, sessionID string) (string, time.Time, error) {
	now := time.Now().UTC()
	expiresAt := now.Add(m.accessTTL)

	claims := Claims{
		Sub:       accountID,
		Role:      role,
		SessionID: sessionID,
		Iss:       m.issuer,
		Iat:       now.Unix(),
		Exp:       expiresAt.Unix(),
	}

	headerBytes, err := json.Marshal(map[string]string{"alg": "HS256", "typ": "JWT"})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal token header: %w", err)
	}
	claimBytes, err := json.Marshal(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("marshal token claims: %w", err)
	}

	signingInput := base64.RawURLEncoding.EncodeToString(headerBytes) +
		"." + base64.RawURLEncoding.EncodeToString(claimBytes)
	signature := base64.RawURLEncoding.EncodeToString(m.sign(signingInput))

	return signingInput + "." + signature, expiresAt, nil
}

func (m *TokenManager) ParseAccessToken(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, errors.New("invalid token format")
	}

	signingInput := parts[0] + "." + parts[1]
	providedSig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return Claims{}, errors.New("invalid token signature encoding")
	}
	if !hmac.Equal(m.sign(signingInput), providedSig) {
		return Claims{}, errors.New("invalid token signature")
	}

	claimBytes, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Claims{}, errors.New("invalid token payload encoding")
	}

	var claims Claims
	if err := json.Unmarshal(claimBytes, &claims); err != nil {
		return Claims{}, errors.New("invalid token payload")
	}

	if claims.Exp < time.Now().UTC().Unix() {
		return Claims{}, errors.New("token is expired")
	}
	if claims.Iss != m.issuer {
		return Claims{}, errors.New("invalid token issuer")
	}
	if claims.Role != RoleStaff && claims.Role != RoleStudent {
		return Claims{}, errors.New("invalid token role")
	}

	return claims, nil
}

func (m *TokenManager) IssueRefreshToken() (token string, tokenHash string, expiresAt time.Time, err error) {
	raw := make([]byte, 32)
	if _, err = rand.Read(raw); err != nil {
		return "", "", time.Time{}, fmt.Errorf("generate refresh token: %w", err)
	}
	token = base64.RawURLEncoding.EncodeToString(raw)
	return token, m.HashRefreshToken(token), time.Now().UTC().Add(m.refreshTTL), nil
}

func (m *TokenManager) HashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (m *TokenManager) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}
