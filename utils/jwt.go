package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or claim checks.
var ErrInvalidToken = errors.New("invalid token")

// ViewerClaims is what the session token carries about the signed-in viewer.
type ViewerClaims struct {
	ViewerID string
	Email    string
}

// TokenSigner issues and validates HS256 viewer tokens.
type TokenSigner struct {
	secret []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secret: []byte(secret)}
}

// GenerateToken creates a signed JWT token with the given subject (the viewer id) and email.
// The token expires after the specified duration.
func (s *TokenSigner) GenerateToken(subject, email string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":   subject,
		"email": email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken parses and validates a token string and returns the token if valid.
func (s *TokenSigner) ValidateToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
}

// ExtractViewer returns the viewer carried by a valid token.
func (s *TokenSigner) ExtractViewer(tokenString string) (*ViewerClaims, error) {
	token, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}
	email, _ := claims["email"].(string)

	return &ViewerClaims{ViewerID: sub, Email: email}, nil
}
