package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/aschalew-star/tenderalert/internal/models"
	apperrors "github.com/aschalew-star/tenderalert/pkg/errors"
)

// RecipientKind discriminates the two recipient populations.
type RecipientKind string

const (
	RecipientUser     RecipientKind = "user"
	RecipientCustomer RecipientKind = "customer"
)

// Recipient identifies a notification target: a system user or a customer,
// never both. The storage layer keeps two nullable foreign keys; service code
// only ever sees this tagged value.
type Recipient struct {
	Kind RecipientKind
	ID   string
}

// UserRecipient builds a system-user recipient.
func UserRecipient(id string) Recipient {
	return Recipient{Kind: RecipientUser, ID: id}
}

// CustomerRecipient builds a customer recipient.
func CustomerRecipient(id string) Recipient {
	return Recipient{Kind: RecipientCustomer, ID: id}
}

// Valid reports whether the recipient names an addressable target.
func (r Recipient) Valid() bool {
	return r.ID != "" && (r.Kind == RecipientUser || r.Kind == RecipientCustomer)
}

// Key returns a stable identity for per-run dedup sets.
func (r Recipient) Key() string {
	return string(r.Kind) + ":" + r.ID
}

func (r Recipient) String() string {
	return r.Key()
}

// columns maps the recipient onto the (user_id, customer_id) column pair.
func (r Recipient) columns() (userID, customerID *string) {
	id := r.ID
	switch r.Kind {
	case RecipientUser:
		return &id, nil
	case RecipientCustomer:
		return nil, &id
	}
	return nil, nil
}

// recipientFromColumns rebuilds a Recipient from the stored column pair.
// The second return is false for the malformed neither-set case.
func recipientFromColumns(userID, customerID *string) (Recipient, bool) {
	switch {
	case userID != nil && *userID != "":
		return UserRecipient(*userID), true
	case customerID != nil && *customerID != "":
		return CustomerRecipient(*customerID), true
	}
	return Recipient{}, false
}

// Contact is the deliverable identity of a recipient.
type Contact struct {
	Email     string
	FirstName string
}

// DirectoryService is the read-only view over users and customers used to
// resolve delivery addresses.
type DirectoryService struct {
	db *gorm.DB
}

// NewDirectoryService constructs a DirectoryService.
func NewDirectoryService(db *gorm.DB) (*DirectoryService, error) {
	if db == nil {
		return nil, errors.New("directory service: db is required")
	}
	return &DirectoryService{db: db}, nil
}

// Lookup resolves a recipient's email and display name. Returns
// apperrors.ErrNotFound when no matching row exists.
func (s *DirectoryService) Lookup(ctx context.Context, r Recipient) (Contact, error) {
	ctx = ensureContext(ctx)

	switch r.Kind {
	case RecipientUser:
		var user models.User
		if err := s.db.WithContext(ctx).First(&user, "id = ?", r.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Contact{}, apperrors.ErrNotFound
			}
			return Contact{}, fmt.Errorf("directory service: load user: %w", err)
		}
		return Contact{Email: user.Email, FirstName: user.FirstName}, nil
	case RecipientCustomer:
		var customer models.Customer
		if err := s.db.WithContext(ctx).First(&customer, "id = ?", r.ID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return Contact{}, apperrors.ErrNotFound
			}
			return Contact{}, fmt.Errorf("directory service: load customer: %w", err)
		}
		return Contact{Email: customer.Email, FirstName: customer.FirstName}, nil
	}

	return Contact{}, apperrors.ErrNotFound
}
