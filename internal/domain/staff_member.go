package domain

// StaffRole enumerates back-office and floor roles.
type StaffRole string

const (
	StaffRoleAdmin   StaffRole = "Admin"
	StaffRoleManager StaffRole = "Manager"
	StaffRoleCashier StaffRole = "Cashier"
	StaffRoleWaiter  StaffRole = "Waiter"
	StaffRoleChef    StaffRole = "Chef"
)

// StaffMember models an employee who can sign in to terminals.
type StaffMember struct {
	ID       string    `json:"id"`
	Name     string    `json:"name" validate:"required"`
	Email    string    `json:"email" validate:"omitempty,email"`
	Phone    string    `json:"phone"`
	Role     StaffRole `json:"role" validate:"required"`
	BranchID string    `json:"branchId"`
	HasPIN   bool      `json:"hasPin"`
	Status   Status    `json:"status" validate:"required,oneof=Active Inactive"`
}

func (s StaffMember) EntityID() string { return s.ID }

func (s StaffMember) Clone() StaffMember { return s }
