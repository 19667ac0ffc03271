package domain

// Customer is a loyalty-program member.
type Customer struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
	Phone         string `json:"phone"`
	LoyaltyPoints int    `json:"loyaltyPoints" validate:"gte=0"`
	Status        Status `json:"status" validate:"required,oneof=Active Inactive"`
}

func (c Customer) EntityID() string { return c.ID }

func (c Customer) Clone() Customer { return c }

// Vendor supplies inventory.
type Vendor struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	ContactName string `json:"contactName"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone"`
	Status      Status `json:"status" validate:"required,oneof=Active Inactive"`
}

func (v Vendor) EntityID() string { return v.ID }

func (v Vendor) Clone() Vendor { return v }
