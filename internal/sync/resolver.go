package sync

import (
	"errors"
	"fmt"

	"whatsapp-admin/internal/models"

	"gorm.io/gorm"
)

// ErrNoCredential means the ownership chain from the requested scope to an
// App with an access token is broken somewhere.
var ErrNoCredential = errors.New("no resolvable access credential; ensure this is linked to an app")

// CredentialResolver walks the persisted ownership chain (phone number →
// waba account → app) to find a usable access token. Tokens are provisioned
// per App, not per leaf entity, and a phone number sync can be triggered on
// its own, so the token is re-derived from stored relationships each time.
type CredentialResolver struct {
	db *gorm.DB
}

func NewCredentialResolver(db *gorm.DB) *CredentialResolver {
	return &CredentialResolver{db: db}
}

// ForAccount resolves the app holding the credential for a messaging
// account identified by local id.
func (r *CredentialResolver) ForAccount(accountID uint) (*models.App, error) {
	var account models.WabaAccount
	if err := r.db.First(&account, accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %d: %w", accountID, ErrNoCredential)
		}
		return nil, err
	}
	return r.appFor(&account)
}

// ForPhoneNumber resolves the app holding the credential for a phone number
// identified by local id.
func (r *CredentialResolver) ForPhoneNumber(phoneID uint) (*models.App, error) {
	var phone models.PhoneNumber
	if err := r.db.First(&phone, phoneID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("phone number %d: %w", phoneID, ErrNoCredential)
		}
		return nil, err
	}
	if phone.AccountID == nil {
		return nil, fmt.Errorf("phone number %d has no account: %w", phoneID, ErrNoCredential)
	}
	return r.ForAccount(*phone.AccountID)
}

func (r *CredentialResolver) appFor(account *models.WabaAccount) (*models.App, error) {
	if account.AppID == 0 {
		return nil, fmt.Errorf("account %d has no app: %w", account.ID, ErrNoCredential)
	}
	var app models.App
	if err := r.db.First(&app, account.AppID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("account %d app missing: %w", account.ID, ErrNoCredential)
		}
		return nil, err
	}
	if app.AccessToken == "" {
		return nil, fmt.Errorf("app %d has no token: %w", app.ID, ErrNoCredential)
	}
	return &app, nil
}
