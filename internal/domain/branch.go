package domain

// Branch is a physical store location.
type Branch struct {
	ID      string `json:"id"`
	Code    string `json:"code" validate:"required"`
	Name    string `json:"name" validate:"required"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Status  Status `json:"status" validate:"required,oneof=Active Inactive"`
}

func (b Branch) EntityID() string { return b.ID }

func (b Branch) Clone() Branch { return b }
