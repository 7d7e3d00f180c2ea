package cart

import "github.com/google/uuid"

// Caller identifies who a cart operation runs for. SessionID is always set;
// ShopperID is set only when the shopper is authenticated. The authoritative
// backend follows from that: identified shoppers get the persisted cart,
// anonymous visitors get the session cart.
type Caller struct {
	SessionID string
	ShopperID *uuid.UUID
}

// Identified reports whether the caller has an authenticated shopper identity.
func (c Caller) Identified() bool {
	return c.ShopperID != nil && *c.ShopperID != uuid.Nil
}
