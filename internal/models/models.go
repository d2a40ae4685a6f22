package models

import (
	"time"
)

// App holds the access credential used to call the Graph API on behalf of
// a business. Apps are provisioned by an operator; the sync engine only
// reads them.
type App struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	Name             string    `gorm:"type:varchar(255)" json:"name"`
	AppID            string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"app_id"`
	AccessToken      string    `gorm:"type:text" json:"-"`
	BusinessRemoteID string    `gorm:"type:varchar(64)" json:"business_remote_id"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (App) TableName() string {
	return "apps"
}

// Business is the remote organizational owner of one or more WABA accounts.
// Never deleted by sync, even if it disappears upstream.
type Business struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RemoteID  string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"remote_id"`
	Name      string    `gorm:"type:varchar(255)" json:"name"`
	Status    string    `gorm:"type:varchar(50)" json:"status"`
	Type      string    `gorm:"type:varchar(50)" json:"type"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Business) TableName() string {
	return "businesses"
}

// WabaAccount mirrors a remote WhatsApp Business Account. Phone numbers and
// message templates hang off it.
type WabaAccount struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RemoteID        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"remote_id"`
	Name            string    `gorm:"type:varchar(255)" json:"name"`
	Status          string    `gorm:"type:varchar(50)" json:"status"`
	OwnershipType   string    `gorm:"type:varchar(50)" json:"ownership_type"`
	ReviewStatus    string    `gorm:"type:varchar(50)" json:"review_status"`
	Namespace       string    `gorm:"type:varchar(255)" json:"namespace"`
	HealthStatus    string    `gorm:"type:text" json:"health_status"` // JSON blob
	Timezone        string    `gorm:"type:varchar(50)" json:"timezone"`
	InsightsEnabled bool      `json:"insights_enabled"`
	SubscribedApps  string    `gorm:"type:text" json:"subscribed_apps"` // JSON blob
	BusinessID      *uint     `gorm:"index" json:"business_id"`
	AppID           uint      `gorm:"index" json:"app_local_id"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (WabaAccount) TableName() string {
	return "waba_accounts"
}

// PhoneNumber is a messaging endpoint belonging to a WABA account. The
// account reference is nullable because a number can be synced on its own
// before its account was ever swept.
type PhoneNumber struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	RemoteID           string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"remote_id"`
	AccountID          *uint     `gorm:"index" json:"account_id"`
	DisplayNumber      string    `gorm:"type:varchar(50)" json:"display_number"`
	Status             string    `gorm:"type:varchar(50)" json:"status"`
	AccountMode        string    `gorm:"type:varchar(50)" json:"account_mode"`
	HealthStatus       string    `gorm:"type:text" json:"health_status"` // JSON blob
	MessagingLimitTier string    `gorm:"type:varchar(50)" json:"messaging_limit_tier"`
	NameStatus         string    `gorm:"type:varchar(50)" json:"name_status"`
	QualityScore       string    `gorm:"type:text" json:"quality_score"` // JSON blob
	VerifiedName       string    `gorm:"type:varchar(255)" json:"verified_name"`
	PlatformType       string    `gorm:"type:varchar(50)" json:"platform_type"`
	WebhookConfig      string    `gorm:"type:text" json:"webhook_config"` // JSON blob
	CreatedAt          time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PhoneNumber) TableName() string {
	return "phone_numbers"
}

// MessageTemplate is keyed by (account, remote id). Template collections
// are full-replace on every sync: rows absent from the latest fetch are
// deleted.
type MessageTemplate struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	RemoteID        string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_account_remote" json:"remote_id"`
	AccountID       uint      `gorm:"not null;uniqueIndex:idx_account_remote" json:"account_id"`
	Name            string    `gorm:"type:varchar(255)" json:"name"`
	Status          string    `gorm:"type:varchar(50)" json:"status"`
	Category        string    `gorm:"type:varchar(100)" json:"category"`
	Language        string    `gorm:"type:varchar(50)" json:"language"`
	Components      string    `gorm:"type:text" json:"components"` // JSON components
	ParameterFormat string    `gorm:"type:varchar(50)" json:"parameter_format"`
	SubCategory     string    `gorm:"type:varchar(100)" json:"sub_category"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (MessageTemplate) TableName() string {
	return "message_templates"
}

// SyncLog records every triggered sync run for the admin UI.
type SyncLog struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Scope      string    `gorm:"type:varchar(20);index" json:"scope"` // all, account, phone_number
	TargetID   uint      `json:"target_id"`
	Success    bool      `json:"success"`
	Message    string    `gorm:"type:text" json:"message"`
	DurationMs int64     `json:"duration_ms"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (SyncLog) TableName() string {
	return "sync_logs"
}

// Tables lists every model for AutoMigrate.
var Tables = []interface{}{
	&App{},
	&Business{},
	&WabaAccount{},
	&PhoneNumber{},
	&MessageTemplate{},
	&SyncLog{},
}
