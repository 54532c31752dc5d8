// Package auth provides token validators for the websocket handshake. The
// production deployment issues Cognito access tokens; hosts are members of a
// dedicated user-pool group.
package auth

import (
	"crypto/rsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jaredblack/trivia-wizard-2/trivia"
	"github.com/jaredblack/trivia-wizard-2/wlog"
)

var logger = wlog.NewPrefixLogger("auth")

// DefaultHostsGroup is the group whose members may host games.
const DefaultHostsGroup = "Trivia-Hosts"

// Claims are the token claims this server cares about.
type Claims struct {
	Groups   []string `json:"cognito:groups"`
	TokenUse string   `json:"token_use"`
	ClientID string   `json:"client_id"`
	jwt.RegisteredClaims
}

// JWTValidator validates signed JWTs against a fixed key, issuer, and
// client id, and maps group membership to the host flag.
type JWTValidator struct {
	key          interface{}
	validMethods []string
	issuer       string
	clientID     string
	hostsGroup   string
}

// NewHS256Validator creates a validator for HMAC-SHA256 signed tokens.
func NewHS256Validator(secret []byte, issuer string, clientID string) *JWTValidator {
	return &JWTValidator{
		key:          secret,
		validMethods: []string{jwt.SigningMethodHS256.Alg()},
		issuer:       issuer,
		clientID:     clientID,
		hostsGroup:   DefaultHostsGroup,
	}
}

// NewRS256Validator creates a validator for RSA-SHA256 signed tokens, the
// scheme Cognito user pools use.
func NewRS256Validator(publicKey *rsa.PublicKey, issuer string, clientID string) *JWTValidator {
	return &JWTValidator{
		key:          publicKey,
		validMethods: []string{jwt.SigningMethodRS256.Alg()},
		issuer:       issuer,
		clientID:     clientID,
		hostsGroup:   DefaultHostsGroup,
	}
}

// SetHostsGroup overrides the group that grants hosting rights.
func (v *JWTValidator) SetHostsGroup(group string) {
	v.hostsGroup = group
}

// Validate checks the token's signature and claims and resolves the caller's
// identity.
func (v *JWTValidator) Validate(token string) (*trivia.AuthResult, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) { return v.key, nil },
		jwt.WithValidMethods(v.validMethods),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		logger.Debug("token rejected: %s", err)
		return nil, fmt.Errorf("%w: %s", trivia.ErrTokenInvalid, err)
	}
	if !parsed.Valid {
		return nil, trivia.ErrTokenInvalid
	}

	if claims.TokenUse != "access" {
		return nil, errors.New("invalid token_use: expected 'access'")
	}
	if claims.ClientID != v.clientID {
		return nil, errors.New("invalid client_id")
	}
	if claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}

	isHost := false
	for _, group := range claims.Groups {
		if group == v.hostsGroup {
			isHost = true
			break
		}
	}

	return &trivia.AuthResult{UserID: claims.Subject, IsHost: isHost}, nil
}
