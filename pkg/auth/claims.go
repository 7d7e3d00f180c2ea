package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ShopperTokenClaims represents the typed JWT presented by identified shoppers.
type ShopperTokenClaims struct {
	ShopperID uuid.UUID `json:"shopper_id"`
	jwt.RegisteredClaims
}
