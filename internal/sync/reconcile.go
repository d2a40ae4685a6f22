package sync

import (
	"encoding/json"
	"errors"

	"whatsapp-admin/internal/meta"
	"whatsapp-admin/internal/models"

	"gorm.io/gorm"
)

// Reconciler maps remote records onto local rows. Every upsert is keyed by
// remote id (scoped by account for templates); sync never deletes
// businesses, accounts or phone numbers, only templates fall out when they
// disappear upstream.
type Reconciler struct {
	db *gorm.DB
}

func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{db: db}
}

func (rc *Reconciler) UpsertBusiness(rec *meta.Business) (uint, error) {
	var row models.Business
	err := rc.db.Where("remote_id = ?", rec.ID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row.RemoteID = rec.ID
	row.Name = rec.Name
	row.Status = rec.VerificationStatus
	row.Type = rec.Vertical

	if err := rc.db.Save(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// UpsertAccount writes a messaging account. businessID may be nil — an
// account is not required to have an associated business.
func (rc *Reconciler) UpsertAccount(rec *meta.WabaAccount, businessID *uint, appID uint) (uint, error) {
	var row models.WabaAccount
	err := rc.db.Where("remote_id = ?", rec.ID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row.RemoteID = rec.ID
	row.Name = rec.Name
	row.Status = rec.Status
	row.OwnershipType = rec.OwnershipType
	row.ReviewStatus = rec.AccountReviewStatus
	row.Namespace = rec.MessageTemplateNamespace
	row.HealthStatus = blob(rec.HealthStatus)
	row.Timezone = rec.TimezoneID
	row.InsightsEnabled = rec.IsEnabledForInsights
	row.SubscribedApps = blob(rec.SubscribedApps)
	row.AppID = appID
	if businessID != nil {
		row.BusinessID = businessID
	}

	if err := rc.db.Save(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// UpsertPhoneNumber writes a phone number. A nil accountID leaves any
// existing account link untouched: a targeted number sync must not detach
// the number from its account.
func (rc *Reconciler) UpsertPhoneNumber(rec *meta.PhoneNumber, accountID *uint) (uint, error) {
	var row models.PhoneNumber
	err := rc.db.Where("remote_id = ?", rec.ID).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	row.RemoteID = rec.ID
	row.DisplayNumber = rec.DisplayPhoneNumber
	row.Status = rec.Status
	row.AccountMode = rec.AccountMode
	row.HealthStatus = blob(rec.HealthStatus)
	row.MessagingLimitTier = rec.MessagingLimitTier
	row.NameStatus = rec.NameStatus
	row.QualityScore = blob(rec.QualityScore)
	row.VerifiedName = rec.VerifiedName
	row.PlatformType = rec.PlatformType
	row.WebhookConfig = blob(rec.WebhookConfiguration)
	if accountID != nil {
		row.AccountID = accountID
	}

	if err := rc.db.Save(&row).Error; err != nil {
		return 0, err
	}
	return row.ID, nil
}

// ReconcileTemplates replaces the template set of an account with the just
// fetched one: matched rows are updated, new rows inserted, and every local
// template whose remote id is absent from recs is deleted. An empty recs
// deletes all templates for the account — an empty fetch means the account
// really has none, a failed fetch never reaches this point.
func (rc *Reconciler) ReconcileTemplates(accountID uint, recs []meta.MessageTemplate) (kept int, deleted int64, err error) {
	seen := make([]string, 0, len(recs))
	for i := range recs {
		rec := &recs[i]

		var row models.MessageTemplate
		err := rc.db.Where("account_id = ? AND remote_id = ?", accountID, rec.ID).First(&row).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return kept, deleted, err
		}

		row.RemoteID = rec.ID
		row.AccountID = accountID
		row.Name = rec.Name
		row.Status = rec.Status
		row.Category = rec.Category
		row.Language = rec.Language
		row.Components = blob(rec.Components)
		row.ParameterFormat = rec.ParameterFormat
		row.SubCategory = rec.SubCategory

		if err := rc.db.Save(&row).Error; err != nil {
			return kept, deleted, err
		}
		kept++
		seen = append(seen, rec.ID)
	}

	stale := rc.db.Where("account_id = ?", accountID)
	if len(seen) > 0 {
		stale = stale.Where("remote_id NOT IN ?", seen)
	}
	res := stale.Delete(&models.MessageTemplate{})
	if res.Error != nil {
		return kept, deleted, res.Error
	}
	return kept, res.RowsAffected, nil
}

// blob serializes an opaque structured sub-object for storage. These are
// only round-tripped for display, never decomposed.
func blob(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	return string(raw)
}
