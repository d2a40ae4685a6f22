package meta

import "encoding/json"

// Page is the collection envelope returned by Graph list endpoints.
type Page struct {
	Data   []json.RawMessage `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// Remote records are best-effort populated subsets of a known schema: the
// adaptive fetcher may have dropped fields the tenant cannot read, so every
// field except ID can be empty.

type Business struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	VerificationStatus string `json:"verification_status"`
	Vertical           string `json:"vertical"`
}

type WabaAccount struct {
	ID                       string          `json:"id"`
	Name                     string          `json:"name"`
	Status                   string          `json:"status"`
	OwnershipType            string          `json:"ownership_type"`
	AccountReviewStatus      string          `json:"account_review_status"`
	MessageTemplateNamespace string          `json:"message_template_namespace"`
	HealthStatus             json.RawMessage `json:"health_status"`
	TimezoneID               string          `json:"timezone_id"`
	IsEnabledForInsights     bool            `json:"is_enabled_for_insights"`
	SubscribedApps           json.RawMessage `json:"subscribed_apps"`
}

type PhoneNumber struct {
	ID                   string          `json:"id"`
	DisplayPhoneNumber   string          `json:"display_phone_number"`
	Status               string          `json:"status"`
	AccountMode          string          `json:"account_mode"`
	HealthStatus         json.RawMessage `json:"health_status"`
	MessagingLimitTier   string          `json:"messaging_limit_tier"`
	NameStatus           string          `json:"name_status"`
	QualityScore         json.RawMessage `json:"quality_score"`
	VerifiedName         string          `json:"verified_name"`
	PlatformType         string          `json:"platform_type"`
	WebhookConfiguration json.RawMessage `json:"webhook_configuration"`
}

type MessageTemplate struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Status          string          `json:"status"`
	Category        string          `json:"category"`
	Language        string          `json:"language"`
	Components      json.RawMessage `json:"components"`
	ParameterFormat string          `json:"parameter_format"`
	SubCategory     string          `json:"sub_category"`
}

// Candidate field sets requested from the API, and the minimal sets that
// every tenant can read. The adaptive fetcher starts from the candidate
// list and negotiates down; the minimal list is the guaranteed fallback.
var (
	BusinessFields        = []string{"id", "name", "verification_status", "vertical"}
	BusinessMinimalFields = []string{"id", "name"}

	WabaAccountFields = []string{
		"id", "name", "status", "ownership_type", "account_review_status",
		"message_template_namespace", "health_status", "timezone_id",
		"is_enabled_for_insights",
	}
	WabaAccountMinimalFields = []string{"id", "name"}

	PhoneNumberFields = []string{
		"id", "display_phone_number", "status", "account_mode",
		"health_status", "messaging_limit_tier", "name_status",
		"quality_score", "verified_name", "platform_type",
		"webhook_configuration",
	}
	PhoneNumberMinimalFields = []string{"id", "display_phone_number"}

	TemplateFields = []string{
		"id", "name", "status", "category", "language", "components",
		"parameter_format", "sub_category",
	}
)
