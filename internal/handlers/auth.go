package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	iauth "github.com/aschalew-star/tenderalert/internal/auth"
	"github.com/aschalew-star/tenderalert/internal/models"
	"github.com/aschalew-star/tenderalert/internal/services"
	appErrors "github.com/aschalew-star/tenderalert/pkg/errors"
	"github.com/aschalew-star/tenderalert/pkg/response"
)

// AuthHandler manages login and account registration for both recipient
// populations.
type AuthHandler struct {
	db           *gorm.DB
	jwt          *iauth.JWTService
	registration *services.RegistrationService
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(db *gorm.DB, jwt *iauth.JWTService, registration *services.RegistrationService) (*AuthHandler, error) {
	if db == nil {
		return nil, errors.New("auth handler: db is required")
	}
	if jwt == nil {
		return nil, errors.New("auth handler: jwt service is required")
	}
	if registration == nil {
		return nil, errors.New("auth handler: registration service is required")
	}
	return &AuthHandler{db: db, jwt: jwt, registration: registration}, nil
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Kind        string `json:"kind"`
}

// POST /api/v1/login
//
// Users and customers share the login endpoint; the user table is consulted
// first, then customers.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	recipient, role, hash, ok := h.lookupCredentials(c, email)
	if !ok {
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		response.Error(c, appErrors.ErrInvalidCredentials)
		return
	}

	token, err := h.jwt.GenerateAccessToken(iauth.AccessTokenInput{
		Recipient: recipient,
		Role:      role,
	})
	if err != nil {
		response.Error(c, appErrors.ErrInternalServer)
		return
	}

	response.Success(c, http.StatusOK, tokenResponse{
		AccessToken: token,
		Kind:        string(recipient.Kind),
	})
}

func (h *AuthHandler) lookupCredentials(c *gin.Context, email string) (services.Recipient, string, string, bool) {
	ctx := c.Request.Context()

	var user models.User
	err := h.db.WithContext(ctx).First(&user, "email = ? AND is_active = ?", email, true).Error
	if err == nil {
		return services.UserRecipient(user.ID), user.Role, user.Password, true
	}

	var customer models.Customer
	err = h.db.WithContext(ctx).First(&customer, "email = ?", email).Error
	if err == nil {
		return services.CustomerRecipient(customer.ID), "", customer.Password, true
	}

	return services.Recipient{}, "", "", false
}

// POST /api/v1/register/customer
func (h *AuthHandler) RegisterCustomer(c *gin.Context) {
	var req services.RegisterCustomerInput
	if !bindAndValidate(c, &req) {
		return
	}

	customer, err := h.registration.RegisterCustomer(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, customer)
}

// POST /api/v1/register/user  (admin only)
func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req services.RegisterUserInput
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.registration.RegisterUser(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, user)
}
