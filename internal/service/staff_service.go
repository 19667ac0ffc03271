package service

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/go-playground/validator/v10"

	"github.com/tillwork/posadmin/internal/apiclient"
	"github.com/tillwork/posadmin/internal/domain"
	"github.com/tillwork/posadmin/internal/session"
	"github.com/tillwork/posadmin/internal/transform"
	apperrors "github.com/tillwork/posadmin/pkg/util/errorutil"
)

// StaffService performs the staff actions that fall outside plain CRUD:
// creating an account with its PIN, rotating a PIN and toggling status.
type StaffService struct {
	clients  *session.Clients
	validate *validator.Validate
}

// NewStaffService constructs the service.
func NewStaffService(clients *session.Clients) *StaffService {
	return &StaffService{clients: clients, validate: validator.New(validator.WithRequiredStructEnabled())}
}

type staffCreateWire struct {
	transform.StaffWire
	PIN string `json:"pin,omitempty"`
}

func requireManager(actor *domain.Profile) error {
	if actor == nil {
		return apperrors.NewUnauthorized("not signed in")
	}
	if actor.Role != domain.StaffRoleAdmin && actor.Role != domain.StaffRoleManager {
		return apperrors.NewForbidden("manager role required")
	}
	return nil
}

func (s *StaffService) resource(sessionID string) *Resource[transform.StaffWire, domain.StaffMember] {
	return NewResource[transform.StaffWire, domain.StaffMember](s.clients.For(sessionID), "/staff", transform.StaffFromWire, transform.StaffToWire)
}

func (s *StaffService) checkPIN(pin string) error {
	if err := s.validate.Var(pin, "required,numeric,min=4,max=6"); err != nil {
		return apperrors.NewValidationError("PIN must be 4 to 6 digits", map[string]any{"pin": "invalid"})
	}
	return nil
}

// CreateStaff creates a staff member with an initial PIN.
func (s *StaffService) CreateStaff(ctx context.Context, sessionID string, actor *domain.Profile, member domain.StaffMember, pin string) (domain.StaffMember, error) {
	if err := requireManager(actor); err != nil {
		return domain.StaffMember{}, err
	}
	if err := s.validate.Struct(member); err != nil {
		return domain.StaffMember{}, apperrors.NewValidationError(err.Error(), nil)
	}
	if pin != "" {
		if err := s.checkPIN(pin); err != nil {
			return domain.StaffMember{}, err
		}
	}

	env := apiclient.Post[*transform.StaffWire](ctx, s.clients.For(sessionID), "/staff", staffCreateWire{
		StaffWire: transform.StaffToWire(member),
		PIN:       pin,
	})
	if err := env.Err(); err != nil {
		return domain.StaffMember{}, err
	}
	if env.Data == nil {
		return member, nil
	}
	return transform.StaffFromWire(*env.Data, -1), nil
}

// UpdateStaffPIN sets a new PIN for the staff member.
func (s *StaffService) UpdateStaffPIN(ctx context.Context, sessionID string, actor *domain.Profile, id, pin string) error {
	if err := requireManager(actor); err != nil {
		return err
	}
	if err := s.checkPIN(pin); err != nil {
		return err
	}
	env := apiclient.Put[json.RawMessage](ctx, s.clients.For(sessionID), "/staff/"+url.PathEscape(id)+"/pin", map[string]string{"pin": pin})
	return env.Err()
}

// ToggleStaffStatus flips the member between Active and Inactive and
// returns the updated row.
func (s *StaffService) ToggleStaffStatus(ctx context.Context, sessionID string, actor *domain.Profile, id string) (domain.StaffMember, error) {
	if err := requireManager(actor); err != nil {
		return domain.StaffMember{}, err
	}
	if actor.ID == id {
		return domain.StaffMember{}, apperrors.NewConflict("you cannot deactivate your own account", nil)
	}
	return s.resource(sessionID).Patch(ctx, id, "toggle-status", nil)
}
