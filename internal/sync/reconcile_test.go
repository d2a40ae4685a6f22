package sync

import (
	"encoding/json"
	"testing"

	"whatsapp-admin/internal/meta"
	"whatsapp-admin/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedTemplates(t *testing.T, db *gorm.DB, accountID uint, remoteIDs ...string) {
	t.Helper()
	for _, id := range remoteIDs {
		require.NoError(t, db.Create(&models.MessageTemplate{
			RemoteID:  id,
			AccountID: accountID,
			Name:      "tpl-" + id,
			Status:    "APPROVED",
		}).Error)
	}
}

func templateRemoteIDs(t *testing.T, db *gorm.DB, accountID uint) []string {
	t.Helper()
	var ids []string
	require.NoError(t, db.Model(&models.MessageTemplate{}).
		Where("account_id = ?", accountID).Order("remote_id").Pluck("remote_id", &ids).Error)
	return ids
}

func TestReconcileTemplatesDiff(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db, 7, "t-1", "t-2", "t-3", "t-4", "t-5")

	fetched := []meta.MessageTemplate{
		{ID: "t-1", Name: "welcome", Status: "APPROVED"},
		{ID: "t-3", Name: "promo", Status: "PAUSED"},
		{ID: "t-5", Name: "receipt", Status: "APPROVED"},
		{ID: "t-6", Name: "reminder", Status: "PENDING"},
	}

	kept, deleted, err := NewReconciler(db).ReconcileTemplates(7, fetched)
	require.NoError(t, err)
	assert.Equal(t, 4, kept)
	assert.EqualValues(t, 2, deleted)

	assert.Equal(t, []string{"t-1", "t-3", "t-5", "t-6"}, templateRemoteIDs(t, db, 7))

	// matched rows are updated in place
	var t3 models.MessageTemplate
	require.NoError(t, db.Where("account_id = ? AND remote_id = ?", 7, "t-3").First(&t3).Error)
	assert.Equal(t, "promo", t3.Name)
	assert.Equal(t, "PAUSED", t3.Status)
}

func TestReconcileTemplatesEmptyFetchDeletesAll(t *testing.T) {
	db := newTestDB(t)
	seedTemplates(t, db, 7, "t-1", "t-2")
	seedTemplates(t, db, 8, "t-1") // same remote id, different account

	kept, deleted, err := NewReconciler(db).ReconcileTemplates(7, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, kept)
	assert.EqualValues(t, 2, deleted)

	assert.Empty(t, templateRemoteIDs(t, db, 7))
	// the other account's collection is untouched
	assert.Equal(t, []string{"t-1"}, templateRemoteIDs(t, db, 8))
}

func TestUpsertAccountCreatesThenUpdates(t *testing.T) {
	db := newTestDB(t)
	rc := NewReconciler(db)

	health := json.RawMessage(`{"can_send_message":"AVAILABLE"}`)
	rec := &meta.WabaAccount{
		ID:           "acc-1",
		Name:         "Main WABA",
		Status:       "ACTIVE",
		HealthStatus: health,
		TimezoneID:   "54",
	}

	id1, err := rc.UpsertAccount(rec, nil, 3)
	require.NoError(t, err)

	rec.Name = "Renamed WABA"
	bizID := uint(12)
	id2, err := rc.UpsertAccount(rec, &bizID, 3)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	var row models.WabaAccount
	require.NoError(t, db.First(&row, id1).Error)
	assert.Equal(t, "Renamed WABA", row.Name)
	assert.Equal(t, `{"can_send_message":"AVAILABLE"}`, row.HealthStatus)
	require.NotNil(t, row.BusinessID)
	assert.Equal(t, bizID, *row.BusinessID)
	assert.Equal(t, uint(3), row.AppID)

	var count int64
	db.Model(&models.WabaAccount{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestUpsertPhoneNumberKeepsAccountLink(t *testing.T) {
	db := newTestDB(t)
	rc := NewReconciler(db)

	accountID := uint(5)
	_, err := rc.UpsertPhoneNumber(&meta.PhoneNumber{ID: "pn-1", DisplayPhoneNumber: "+100"}, &accountID)
	require.NoError(t, err)

	// targeted number sync passes nil: the account link must survive
	_, err = rc.UpsertPhoneNumber(&meta.PhoneNumber{ID: "pn-1", DisplayPhoneNumber: "+100", Status: "CONNECTED"}, nil)
	require.NoError(t, err)

	var row models.PhoneNumber
	require.NoError(t, db.Where("remote_id = ?", "pn-1").First(&row).Error)
	require.NotNil(t, row.AccountID)
	assert.Equal(t, accountID, *row.AccountID)
	assert.Equal(t, "CONNECTED", row.Status)
}

func TestUpsertBusiness(t *testing.T) {
	db := newTestDB(t)
	rc := NewReconciler(db)

	id1, err := rc.UpsertBusiness(&meta.Business{ID: "biz-1", Name: "Acme", VerificationStatus: "verified", Vertical: "ECOMMERCE"})
	require.NoError(t, err)

	id2, err := rc.UpsertBusiness(&meta.Business{ID: "biz-1", Name: "Acme Corp", VerificationStatus: "verified", Vertical: "ECOMMERCE"})
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	var row models.Business
	require.NoError(t, db.First(&row, id1).Error)
	assert.Equal(t, "Acme Corp", row.Name)
	assert.Equal(t, "verified", row.Status)
	assert.Equal(t, "ECOMMERCE", row.Type)
}
