package users

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	TotalSpent   int64     `json:"total_spent"`
	MembershipID *string   `json:"membership_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Tier is one row of the membership ladder: reach MinSpending in cumulative
// spending and the discount applies.
type Tier struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	MinSpending     int64  `json:"min_spending"`
	DiscountPercent int    `json:"discount_percent"`
}
