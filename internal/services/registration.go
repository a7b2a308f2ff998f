package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
	"github.com/aschalew-star/tenderalert/pkg/logger"
	"github.com/aschalew-star/tenderalert/pkg/validator"
)

// RegisterUserInput defines attributes required to register a system user.
type RegisterUserInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" validate:"required,min=8"`
	Role      string `json:"role" validate:"omitempty,oneof=admin staff"`
}

// RegisterCustomerInput defines attributes required to register a customer.
type RegisterCustomerInput struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	Password  string `json:"password" validate:"required,min=8"`
}

// RegistrationService creates recipients and sends the registration
// notifications: a welcome to the new account, and for system users a
// fan-out to every active admin.
type RegistrationService struct {
	db         *gorm.DB
	dispatcher *DispatcherService
	log        *zap.Logger
}

// NewRegistrationService constructs a RegistrationService.
func NewRegistrationService(db *gorm.DB, dispatcher *DispatcherService) (*RegistrationService, error) {
	if db == nil {
		return nil, errors.New("registration service: db is required")
	}
	if dispatcher == nil {
		return nil, errors.New("registration service: dispatcher is required")
	}
	return &RegistrationService{
		db:         db,
		dispatcher: dispatcher,
		log:        logger.WithModule("registration"),
	}, nil
}

// RegisterUser persists a new system user and fires the registration
// notifications.
func (s *RegistrationService) RegisterUser(ctx context.Context, input RegisterUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	if err := validator.Struct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("registration service: hash password: %w", err)
	}

	role := input.Role
	if role == "" {
		role = models.RoleStaff
	}

	user := models.User{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  string(hash),
		Role:      role,
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("registration service: create user: %w", err)
	}

	s.NotifyRegistered(ctx, UserRecipient(user.ID))
	return &user, nil
}

// RegisterCustomer persists a new customer and fires the welcome
// notification. Subscription state stays off until a payment activates it.
func (s *RegistrationService) RegisterCustomer(ctx context.Context, input RegisterCustomerInput) (*models.Customer, error) {
	ctx = ensureContext(ctx)

	if err := validator.Struct(input); err != nil {
		return nil, apperrors.NewBadRequest(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("registration service: hash password: %w", err)
	}

	customer := models.Customer{
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Password:  string(hash),
	}
	if err := s.db.WithContext(ctx).Create(&customer).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict
		}
		return nil, fmt.Errorf("registration service: create customer: %w", err)
	}

	s.NotifyRegistered(ctx, CustomerRecipient(customer.ID))
	return &customer, nil
}

// NotifyRegistered sends the registration notifications for a new recipient.
// No tender is involved, so each dispatch is independent and the
// tender-scoped dedup guard does not apply.
func (s *RegistrationService) NotifyRegistered(ctx context.Context, recipient Recipient) {
	ctx = ensureContext(ctx)

	s.dispatcher.Dispatch(ctx, DispatchInput{
		Recipient: recipient,
		Type:      models.NotificationTypeWelcome,
		Subject:   "Welcome to TenderAlert",
		Message:   "Your account has been created. You will be notified about tenders matching your reminders.",
	})

	if recipient.Kind != RecipientUser {
		return
	}

	var newUser models.User
	if err := s.db.WithContext(ctx).First(&newUser, "id = ?", recipient.ID).Error; err != nil {
		s.log.Error("load registered user failed", zap.Error(err), zap.String("user_id", recipient.ID))
		return
	}

	var admins []models.User
	if err := s.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", models.RoleAdmin, true).
		Where("id <> ?", recipient.ID).
		Find(&admins).Error; err != nil {
		s.log.Error("load admins failed", zap.Error(err))
		return
	}

	message := fmt.Sprintf("A new user registered: %s %s (%s).", newUser.FirstName, newUser.LastName, newUser.Email)
	for _, admin := range admins {
		s.dispatcher.Dispatch(ctx, DispatchInput{
			Recipient: UserRecipient(admin.ID),
			Type:      models.NotificationTypeNewUser,
			Subject:   "New user registration",
			Message:   message,
		})
	}
}
