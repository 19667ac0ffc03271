package workspace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillwork/posadmin/internal/csvio"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/filter"
	"github.com/tillwork/posadmin/internal/manager"
	"github.com/tillwork/posadmin/internal/transform"
)

// Resource names served by the console.
const (
	Branches  = "branches"
	Terminals = "terminals"
	Staff     = "staff"
	Inventory = "inventory"
	Menu      = "menu"
	Customers = "customers"
	Vendors   = "vendors"
)

// RegisterDefaults adds every built-in page to r.
func RegisterDefaults(r *Registry) {
	Register(r, "/branches", transform.BranchFromWire, transform.BranchToWire, BranchPage(), nil)
	Register(r, "/terminals", transform.TerminalFromWire, transform.TerminalToWire, TerminalPage(), &BranchRef[domain.Terminal]{
		Get: func(t domain.Terminal) string { return t.BranchID },
		Set: func(t *domain.Terminal, id string) { t.BranchID = id },
	})
	Register(r, "/staff", transform.StaffFromWire, transform.StaffToWire, StaffPage(), &BranchRef[domain.StaffMember]{
		Get: func(s domain.StaffMember) string { return s.BranchID },
		Set: func(s *domain.StaffMember, id string) { s.BranchID = id },
	})
	Register(r, "/inventory", transform.InventoryFromWire, transform.InventoryToWire, InventoryPage(), &BranchRef[domain.InventoryItem]{
		Get: func(i domain.InventoryItem) string { return i.BranchID },
		Set: func(i *domain.InventoryItem, id string) { i.BranchID = id },
	})
	Register(r, "/menu-items", transform.MenuItemFromWire, transform.MenuItemToWire, MenuPage(), nil)
	Register(r, "/customers", transform.CustomerFromWire, transform.CustomerToWire, CustomerPage(), nil)
	Register(r, "/vendors", transform.VendorFromWire, transform.VendorToWire, VendorPage(), nil)
}

func status[T any](get func(T) domain.Status) func(T) string {
	return func(v T) string { return string(get(v)) }
}

func textColumn[T any](header string, get func(T) string, set func(*T, string)) csvio.Column[T] {
	return csvio.Column[T]{
		Header: header,
		Get:    get,
		Set: func(v *T, raw string) error {
			set(v, raw)
			return nil
		},
	}
}

func statusColumn[T any](get func(T) domain.Status, set func(*T, domain.Status)) csvio.Column[T] {
	return csvio.Column[T]{
		Header: "Status",
		Get:    func(v T) string { return string(get(v)) },
		Set: func(v *T, raw string) error {
			if raw == "" {
				set(v, domain.StatusActive)
				return nil
			}
			s, err := domain.ParseStatus(raw)
			if err != nil {
				return err
			}
			set(v, s)
			return nil
		},
	}
}

func decimalColumn[T any](header string, get func(T) decimal.Decimal, set func(*T, decimal.Decimal)) csvio.Column[T] {
	return csvio.Column[T]{
		Header: header,
		Get:    func(v T) string { return get(v).String() },
		Set: func(v *T, raw string) error {
			if raw == "" {
				set(v, decimal.Zero)
				return nil
			}
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return fmt.Errorf("not a number: %q", raw)
			}
			set(v, d)
			return nil
		},
	}
}

func idColumn[T any](get func(T) string) csvio.Column[T] {
	return csvio.Column[T]{Header: "ID", Get: get}
}

func byName[T any](name func(T) string) func(a, b T) bool {
	return func(a, b T) bool {
		return strings.ToLower(name(a)) < strings.ToLower(name(b))
	}
}

// BranchPage describes the branches list.
func BranchPage() manager.Definition[domain.Branch] {
	return manager.Definition[domain.Branch]{
		Resource: Branches,
		Singular: "Branch",
		Plural:   "branches",
		Filter: filter.Spec[domain.Branch]{
			Text: func(b domain.Branch) []string { return []string{b.Name, b.Code, b.Address, b.Phone} },
			Discrete: map[string]func(domain.Branch) string{
				"status": status(func(b domain.Branch) domain.Status { return b.Status }),
			},
		},
		Less:  byName(func(b domain.Branch) string { return b.Name }),
		Blank: func() domain.Branch { return domain.Branch{Status: domain.StatusActive} },
		CSV: csvio.Codec[domain.Branch]{
			New: func() domain.Branch { return domain.Branch{Status: domain.StatusActive} },
			Columns: []csvio.Column[domain.Branch]{
				idColumn(func(b domain.Branch) string { return b.ID }),
				textColumn("Code", func(b domain.Branch) string { return b.Code }, func(b *domain.Branch, v string) { b.Code = v }),
				textColumn("Name", func(b domain.Branch) string { return b.Name }, func(b *domain.Branch, v string) { b.Name = v }),
				textColumn("Address", func(b domain.Branch) string { return b.Address }, func(b *domain.Branch, v string) { b.Address = v }),
				textColumn("Phone", func(b domain.Branch) string { return b.Phone }, func(b *domain.Branch, v string) { b.Phone = v }),
				statusColumn(func(b domain.Branch) domain.Status { return b.Status }, func(b *domain.Branch, s domain.Status) { b.Status = s }),
			},
		},
	}
}

// TerminalPage describes the POS terminals list.
func TerminalPage() manager.Definition[domain.Terminal] {
	return manager.Definition[domain.Terminal]{
		Resource: Terminals,
		Singular: "Terminal",
		Plural:   "terminals",
		Filter: filter.Spec[domain.Terminal]{
			Text: func(t domain.Terminal) []string { return []string{t.Name, t.SerialNumber} },
			Discrete: map[string]func(domain.Terminal) string{
				"status": status(func(t domain.Terminal) domain.Status { return t.Status }),
				"state":  func(t domain.Terminal) string { return string(t.State) },
				"branch": func(t domain.Terminal) string { return t.BranchID },
			},
		},
		Less:  byName(func(t domain.Terminal) string { return t.Name }),
		Blank: func() domain.Terminal { return domain.Terminal{Status: domain.StatusActive, State: domain.TerminalOffline} },
		CSV: csvio.Codec[domain.Terminal]{
			New: func() domain.Terminal { return domain.Terminal{Status: domain.StatusActive, State: domain.TerminalOffline} },
			Columns: []csvio.Column[domain.Terminal]{
				idColumn(func(t domain.Terminal) string { return t.ID }),
				textColumn("Name", func(t domain.Terminal) string { return t.Name }, func(t *domain.Terminal, v string) { t.Name = v }),
				textColumn("Serial Number", func(t domain.Terminal) string { return t.SerialNumber }, func(t *domain.Terminal, v string) { t.SerialNumber = v }),
				textColumn("Branch", func(t domain.Terminal) string { return t.BranchID }, func(t *domain.Terminal, v string) { t.BranchID = v }),
				{Header: "State", Get: func(t domain.Terminal) string { return string(t.State) }},
				statusColumn(func(t domain.Terminal) domain.Status { return t.Status }, func(t *domain.Terminal, s domain.Status) { t.Status = s }),
			},
		},
	}
}

var staffRoles = map[string]domain.StaffRole{
	"admin":   domain.StaffRoleAdmin,
	"manager": domain.StaffRoleManager,
	"cashier": domain.StaffRoleCashier,
	"waiter":  domain.StaffRoleWaiter,
	"chef":    domain.StaffRoleChef,
}

// StaffPage describes the staff list.
func StaffPage() manager.Definition[domain.StaffMember] {
	return manager.Definition[domain.StaffMember]{
		Resource: Staff,
		Singular: "Staff member",
		Plural:   "staff members",
		Filter: filter.Spec[domain.StaffMember]{
			Text: func(s domain.StaffMember) []string { return []string{s.Name, s.Email, s.Phone} },
			Discrete: map[string]func(domain.StaffMember) string{
				"status": status(func(s domain.StaffMember) domain.Status { return s.Status }),
				"role":   func(s domain.StaffMember) string { return string(s.Role) },
				"branch": func(s domain.StaffMember) string { return s.BranchID },
			},
		},
		Less:  byName(func(s domain.StaffMember) string { return s.Name }),
		Blank: func() domain.StaffMember { return domain.StaffMember{Status: domain.StatusActive, Role: domain.StaffRoleCashier} },
		Validate: func(s domain.StaffMember) error {
			if _, ok := staffRoles[strings.ToLower(string(s.Role))]; !ok {
				return errors.New("Role must be one of: Admin, Manager, Cashier, Waiter, Chef")
			}
			return nil
		},
		CSV: csvio.Codec[domain.StaffMember]{
			New: func() domain.StaffMember {
				return domain.StaffMember{Status: domain.StatusActive, Role: domain.StaffRoleCashier}
			},
			Columns: []csvio.Column[domain.StaffMember]{
				idColumn(func(s domain.StaffMember) string { return s.ID }),
				{
					Header:   "Name",
					Required: true,
					Get:      func(s domain.StaffMember) string { return s.Name },
					Set:      func(s *domain.StaffMember, v string) error { s.Name = v; return nil },
				},
				textColumn("Email", func(s domain.StaffMember) string { return s.Email }, func(s *domain.StaffMember, v string) { s.Email = v }),
				textColumn("Phone", func(s domain.StaffMember) string { return s.Phone }, func(s *domain.StaffMember, v string) { s.Phone = v }),
				{
					Header: "Role",
					Get:    func(s domain.StaffMember) string { return string(s.Role) },
					Set: func(s *domain.StaffMember, v string) error {
						if v == "" {
							return nil
						}
						role, ok := staffRoles[strings.ToLower(v)]
						if !ok {
							return fmt.Errorf("unknown role %q", v)
						}
						s.Role = role
						return nil
					},
				},
				textColumn("Branch", func(s domain.StaffMember) string { return s.BranchID }, func(s *domain.StaffMember, v string) { s.BranchID = v }),
				statusColumn(func(s domain.StaffMember) domain.Status { return s.Status }, func(s *domain.StaffMember, st domain.Status) { s.Status = st }),
			},
		},
	}
}

// InventoryPage describes the stock list. The "stock" dimension filters on
// "low" or "ok".
func InventoryPage() manager.Definition[domain.InventoryItem] {
	return manager.Definition[domain.InventoryItem]{
		Resource: Inventory,
		Singular: "Inventory item",
		Plural:   "inventory items",
		Filter: filter.Spec[domain.InventoryItem]{
			Text: func(i domain.InventoryItem) []string { return []string{i.Name, i.SKU, i.Category} },
			Discrete: map[string]func(domain.InventoryItem) string{
				"status":   status(func(i domain.InventoryItem) domain.Status { return i.Status }),
				"category": func(i domain.InventoryItem) string { return i.Category },
				"branch":   func(i domain.InventoryItem) string { return i.BranchID },
				"stock": func(i domain.InventoryItem) string {
					if i.LowStock() {
						return "low"
					}
					return "ok"
				},
			},
		},
		Less:  byName(func(i domain.InventoryItem) string { return i.Name }),
		Blank: func() domain.InventoryItem { return domain.InventoryItem{Status: domain.StatusActive, Unit: domain.UnitPiece} },
		Validate: func(i domain.InventoryItem) error {
			if i.Quantity.IsNegative() {
				return errors.New("Quantity must not be negative")
			}
			if i.UnitCost.IsNegative() {
				return errors.New("Unit cost must not be negative")
			}
			return nil
		},
		CSV: csvio.Codec[domain.InventoryItem]{
			New: func() domain.InventoryItem { return domain.InventoryItem{Status: domain.StatusActive, Unit: domain.UnitPiece} },
			Columns: []csvio.Column[domain.InventoryItem]{
				idColumn(func(i domain.InventoryItem) string { return i.ID }),
				textColumn("SKU", func(i domain.InventoryItem) string { return i.SKU }, func(i *domain.InventoryItem, v string) { i.SKU = v }),
				textColumn("Name", func(i domain.InventoryItem) string { return i.Name }, func(i *domain.InventoryItem, v string) { i.Name = v }),
				textColumn("Category", func(i domain.InventoryItem) string { return i.Category }, func(i *domain.InventoryItem, v string) { i.Category = v }),
				textColumn("Branch", func(i domain.InventoryItem) string { return i.BranchID }, func(i *domain.InventoryItem, v string) { i.BranchID = v }),
				decimalColumn("Quantity", func(i domain.InventoryItem) decimal.Decimal { return i.Quantity }, func(i *domain.InventoryItem, d decimal.Decimal) { i.Quantity = d }),
				textColumn("Unit", func(i domain.InventoryItem) string { return string(i.Unit) }, func(i *domain.InventoryItem, v string) {
					if v != "" {
						i.Unit = domain.StockUnit(strings.ToLower(v))
					}
				}),
				decimalColumn("Reorder Level", func(i domain.InventoryItem) decimal.Decimal { return i.ReorderLevel }, func(i *domain.InventoryItem, d decimal.Decimal) { i.ReorderLevel = d }),
				decimalColumn("Unit Cost", func(i domain.InventoryItem) decimal.Decimal { return i.UnitCost }, func(i *domain.InventoryItem, d decimal.Decimal) { i.UnitCost = d }),
				{Header: "Stock Value", Get: func(i domain.InventoryItem) string { return i.StockValue().StringFixed(2) }},
				statusColumn(func(i domain.InventoryItem) domain.Status { return i.Status }, func(i *domain.InventoryItem, s domain.Status) { i.Status = s }),
			},
		},
	}
}

// MenuPage describes the menu list. Search is fuzzy so "chkn" finds "Chicken".
func MenuPage() manager.Definition[domain.MenuItem] {
	return manager.Definition[domain.MenuItem]{
		Resource: Menu,
		Singular: "Menu item",
		Plural:   "menu items",
		Filter: filter.Spec[domain.MenuItem]{
			Text: func(m domain.MenuItem) []string {
				return append([]string{m.Name, m.Category}, m.Modifiers...)
			},
			Discrete: map[string]func(domain.MenuItem) string{
				"status":   status(func(m domain.MenuItem) domain.Status { return m.Status }),
				"category": func(m domain.MenuItem) string { return m.Category },
			},
			Mode: filter.Fuzzy,
		},
		Less:  byName(func(m domain.MenuItem) string { return m.Name }),
		Blank: func() domain.MenuItem { return domain.MenuItem{Status: domain.StatusActive} },
		Validate: func(m domain.MenuItem) error {
			if m.Price.IsNegative() {
				return errors.New("Price must not be negative")
			}
			return nil
		},
		CSV: csvio.Codec[domain.MenuItem]{
			New: func() domain.MenuItem { return domain.MenuItem{Status: domain.StatusActive} },
			Columns: []csvio.Column[domain.MenuItem]{
				idColumn(func(m domain.MenuItem) string { return m.ID }),
				textColumn("Name", func(m domain.MenuItem) string { return m.Name }, func(m *domain.MenuItem, v string) { m.Name = v }),
				textColumn("Category", func(m domain.MenuItem) string { return m.Category }, func(m *domain.MenuItem, v string) { m.Category = v }),
				decimalColumn("Price", func(m domain.MenuItem) decimal.Decimal { return m.Price }, func(m *domain.MenuItem, d decimal.Decimal) { m.Price = d }),
				textColumn("Modifiers", func(m domain.MenuItem) string { return strings.Join(m.Modifiers, "; ") }, func(m *domain.MenuItem, v string) {
					m.Modifiers = nil
					for _, mod := range strings.Split(v, ";") {
						if mod = strings.TrimSpace(mod); mod != "" {
							m.Modifiers = append(m.Modifiers, mod)
						}
					}
				}),
				statusColumn(func(m domain.MenuItem) domain.Status { return m.Status }, func(m *domain.MenuItem, s domain.Status) { m.Status = s }),
			},
		},
	}
}

// CustomerPage describes the loyalty customers list.
func CustomerPage() manager.Definition[domain.Customer] {
	return manager.Definition[domain.Customer]{
		Resource: Customers,
		Singular: "Customer",
		Plural:   "customers",
		Filter: filter.Spec[domain.Customer]{
			Text: func(c domain.Customer) []string { return []string{c.Name, c.Email, c.Phone} },
			Discrete: map[string]func(domain.Customer) string{
				"status": status(func(c domain.Customer) domain.Status { return c.Status }),
			},
		},
		Less:  byName(func(c domain.Customer) string { return c.Name }),
		Blank: func() domain.Customer { return domain.Customer{Status: domain.StatusActive} },
		CSV: csvio.Codec[domain.Customer]{
			New: func() domain.Customer { return domain.Customer{Status: domain.StatusActive} },
			Columns: []csvio.Column[domain.Customer]{
				idColumn(func(c domain.Customer) string { return c.ID }),
				textColumn("Name", func(c domain.Customer) string { return c.Name }, func(c *domain.Customer, v string) { c.Name = v }),
				textColumn("Email", func(c domain.Customer) string { return c.Email }, func(c *domain.Customer, v string) { c.Email = v }),
				textColumn("Phone", func(c domain.Customer) string { return c.Phone }, func(c *domain.Customer, v string) { c.Phone = v }),
				{
					Header: "Loyalty Points",
					Get:    func(c domain.Customer) string { return strconv.Itoa(c.LoyaltyPoints) },
					Set: func(c *domain.Customer, v string) error {
						if v == "" {
							return nil
						}
						n, err := strconv.Atoi(v)
						if err != nil {
							return fmt.Errorf("not a whole number: %q", v)
						}
						c.LoyaltyPoints = n
						return nil
					},
				},
				statusColumn(func(c domain.Customer) domain.Status { return c.Status }, func(c *domain.Customer, s domain.Status) { c.Status = s }),
			},
		},
	}
}

// VendorPage describes the suppliers list.
func VendorPage() manager.Definition[domain.Vendor] {
	return manager.Definition[domain.Vendor]{
		Resource: Vendors,
		Singular: "Vendor",
		Plural:   "vendors",
		Filter: filter.Spec[domain.Vendor]{
			Text: func(v domain.Vendor) []string { return []string{v.Name, v.ContactName, v.Email, v.Phone} },
			Discrete: map[string]func(domain.Vendor) string{
				"status": status(func(v domain.Vendor) domain.Status { return v.Status }),
			},
		},
		Less:  byName(func(v domain.Vendor) string { return v.Name }),
		Blank: func() domain.Vendor { return domain.Vendor{Status: domain.StatusActive} },
		CSV: csvio.Codec[domain.Vendor]{
			New: func() domain.Vendor { return domain.Vendor{Status: domain.StatusActive} },
			Columns: []csvio.Column[domain.Vendor]{
				idColumn(func(v domain.Vendor) string { return v.ID }),
				textColumn("Name", func(v domain.Vendor) string { return v.Name }, func(v *domain.Vendor, s string) { v.Name = s }),
				textColumn("Contact", func(v domain.Vendor) string { return v.ContactName }, func(v *domain.Vendor, s string) { v.ContactName = s }),
				textColumn("Email", func(v domain.Vendor) string { return v.Email }, func(v *domain.Vendor, s string) { v.Email = s }),
				textColumn("Phone", func(v domain.Vendor) string { return v.Phone }, func(v *domain.Vendor, s string) { v.Phone = s }),
				statusColumn(func(v domain.Vendor) domain.Status { return v.Status }, func(v *domain.Vendor, s domain.Status) { v.Status = s }),
			},
		},
	}
}
