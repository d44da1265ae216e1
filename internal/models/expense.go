package models

import (
	"time"
)

// Expense is a single recorded purchase owned by a user. It serializes
// directly into API responses, so field names follow the wire format.
type Expense struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	Category      string    `json:"category"`
	ItemName      string    `json:"itemName"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description,omitempty"`
	PurchasedDate time.Time `json:"purchasedDate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
