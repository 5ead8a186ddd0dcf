package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is a listing posted by a farmer.
type Product struct {
	ID        uuid.UUID
	Name      string
	Price     float64
	Farmer    string    // Display name of the seller, taken from the request body.
	CreatedBy uuid.UUID // Authenticated user that created the listing.
	CreatedAt time.Time
}
