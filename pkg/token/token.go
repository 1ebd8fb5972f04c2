// pkg/token/token.go
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "clubhub"

// Claims defines the structure of the JWT claims issued at sign-in.
type Claims struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// ValidateJWT parses, validates, and returns claims from a JWT string.
func ValidateJWT(tokenString string, secretKey string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}
	if secretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}

	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		if errors.Is(err, jwt.ErrTokenNotValidYet) {
			return nil, errors.New("token is not yet valid")
		}
		if errors.Is(err, jwt.ErrSignatureInvalid) {
			return nil, errors.New("token signature is invalid")
		}
		return nil, fmt.Errorf("could not parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is invalid")
	}

	if claims.UserID == "" {
		return nil, errors.New("user_id claim is missing")
	}

	return claims, nil
}

// GenerateJWT signs an access token for the given identity.
func GenerateJWT(userID, email, clientID string, secretKey string, expiryMinutes int) (string, time.Time, error) {
	now := time.Now()
	expirationTime := now.Add(time.Duration(expiryMinutes) * time.Minute)
	claims := &Claims{
		UserID:   userID,
		Email:    email,
		ClientID: clientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expirationTime, nil
}

const purposePasswordReset = "password_reset"

// ResetClaims authorise a single password change. Fingerprint is derived from
// the password hash at issue time, so the token stops working once the
// password changes.
type ResetClaims struct {
	AccountID   string `json:"account_id"`
	Fingerprint string `json:"fingerprint"`
	Purpose     string `json:"purpose"`
	jwt.RegisteredClaims
}

// GenerateResetToken signs a password reset token for an account.
func GenerateResetToken(accountID, fingerprint, secretKey string, expiryMinutes int) (string, time.Time, error) {
	if secretKey == "" {
		return "", time.Time{}, errors.New("jwt secret key is empty")
	}
	now := time.Now()
	expirationTime := now.Add(time.Duration(expiryMinutes) * time.Minute)
	claims := &ResetClaims{
		AccountID:   accountID,
		Fingerprint: fingerprint,
		Purpose:     purposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expirationTime, nil
}

// ValidateResetToken parses a password reset token. Access tokens are refused.
func ValidateResetToken(tokenString, secretKey string) (*ResetClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}
	if secretKey == "" {
		return nil, errors.New("jwt secret key is empty")
	}
	claims := &ResetClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secretKey), nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.New("token has expired")
		}
		return nil, fmt.Errorf("could not parse token: %w", err)
	}
	if claims.Purpose != purposePasswordReset || claims.AccountID == "" {
		return nil, errors.New("not a password reset token")
	}
	return claims, nil
}
