// Package token issues and verifies the HS256 session tokens handed out at login.
//
// Issued claims: sub (username), uid (user id as a string), role ("User"),
// jti (random per token), iss, aud, iat and exp. Tokens live exactly
// Lifetime and cannot be revoked or refreshed.
package token

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-society-hub/internal/model"
	"go-society-hub/pkg/apierror"
)

const (
	Lifetime = 2 * time.Hour
	RoleUser = "User"

	claimUserID = "uid"
	claimRole   = "role"
)

// Config is the shared signing configuration. Issuers and verifiers built from
// the same Config accept each other's tokens.
type Config struct {
	Key      string
	Issuer   string
	Audience string
}

type Issuer struct {
	key      []byte
	issuer   string
	audience string
	now      func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{
		key:      []byte(cfg.Key),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		now:      time.Now,
	}
}

// Issue signs a token for the given identity. A missing signing key is a
// configuration error and is reported as model.ErrSigningKeyMissing.
func (i *Issuer) Issue(userID int64, username string) (string, error) {
	if len(strings.TrimSpace(string(i.key))) == 0 {
		return "", fmt.Errorf("issue token: %w", model.ErrSigningKeyMissing)
	}

	now := i.now().UTC()
	claims := jwt.MapClaims{
		"sub":       username,
		claimUserID: strconv.FormatInt(userID, 10),
		claimRole:   RoleUser,
		"jti":       uuid.NewString(),
		"iss":       i.issuer,
		"aud":       i.audience,
		"iat":       now.Unix(),
		"exp":       now.Add(Lifetime).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

type Verifier struct {
	key    []byte
	parser *jwt.Parser
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		key: []byte(cfg.Key),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify checks signature, issuer, audience and expiry and returns the claims.
func (v *Verifier) Verify(tokenString string) (*model.AuthClaims, error) {
	if len(v.key) == 0 {
		return nil, fmt.Errorf("verify token: %w", model.ErrSigningKeyMissing)
	}

	claimsMap := jwt.MapClaims{}
	parsed, err := v.parser.ParseWithClaims(tokenString, claimsMap, func(*jwt.Token) (interface{}, error) {
		return v.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierror.Wrap(model.ErrUnauthorized, "UNAUTHORIZED", "invalid token", "", http.StatusUnauthorized)
	}

	claims := &model.AuthClaims{}
	claims.Username, _ = claimsMap["sub"].(string)
	claims.Role, _ = claimsMap[claimRole].(string)
	claims.TokenID, _ = claimsMap["jti"].(string)

	rawID, _ := claimsMap[claimUserID].(string)
	userID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil || userID <= 0 || claims.Username == "" {
		return nil, apierror.Wrap(model.ErrUnauthorized, "UNAUTHORIZED", "invalid token subject", "", http.StatusUnauthorized)
	}
	claims.UserID = userID

	return claims, nil
}
