package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Session roles carried inside the token.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// Claims are the JWT claims stored in the session cookie.
type Claims struct {
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

func (c *Claims) IsCustomer() bool {
	return c.Role == RoleCustomer && c.CustomerID != ""
}

// TokenGenerator mints and validates session tokens.
type TokenGenerator interface {
	GenerateCustomerToken(customerID string) (string, error)
	GenerateAdminToken() (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type JWTTokenGenerator struct {
	Secret     []byte
	SessionTTL time.Duration
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &JWTTokenGenerator{
		Secret:     []byte(secret),
		SessionTTL: ttl,
	}
}

func (g *JWTTokenGenerator) GenerateCustomerToken(customerID string) (string, error) {
	return g.sign(&Claims{
		Role:       RoleCustomer,
		CustomerID: customerID,
	})
}

func (g *JWTTokenGenerator) GenerateAdminToken() (string, error) {
	return g.sign(&Claims{Role: RoleAdmin})
}

func (g *JWTTokenGenerator) sign(claims *Claims) (string, error) {
	now := time.Now()
	claims.RegisteredClaims = jwt.RegisteredClaims{
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(g.SessionTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.Secret)
}

func (g *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.Secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
