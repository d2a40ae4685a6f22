package sync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"whatsapp-admin/internal/config"
	"whatsapp-admin/internal/meta"
	"whatsapp-admin/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// stubData is the remote hierarchy a test Graph server serves.
type stubData struct {
	businesses     map[string]map[string]interface{}
	accounts       map[string]map[string]interface{}
	phones         map[string]map[string]interface{}
	ownedAccounts  map[string][]string // business remote id -> account remote ids
	clientAccounts map[string][]string
	accountPhones  map[string][]string // account remote id -> phone remote ids
	templates      map[string][]map[string]interface{}
	failEntities   map[string]bool // entity ids whose single-entity fetch fails
}

func newStubData() *stubData {
	return &stubData{
		businesses:     map[string]map[string]interface{}{},
		accounts:       map[string]map[string]interface{}{},
		phones:         map[string]map[string]interface{}{},
		ownedAccounts:  map[string][]string{},
		clientAccounts: map[string][]string{},
		accountPhones:  map[string][]string{},
		templates:      map[string][]map[string]interface{}{},
		failEntities:   map[string]bool{},
	}
}

func newGraphServer(t *testing.T, d *stubData) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.TrimPrefix(r.URL.Path, "/v19.0/")
		fields := strings.Split(r.URL.Query().Get("fields"), ",")

		parts := strings.SplitN(path, "/", 2)
		id := parts[0]

		if len(parts) == 2 {
			switch parts[1] {
			case "owned_whatsapp_business_accounts":
				writeList(w, pick(d.accounts, d.ownedAccounts[id]), fields)
			case "client_whatsapp_business_accounts":
				writeList(w, pick(d.accounts, d.clientAccounts[id]), fields)
			case "phone_numbers":
				writeList(w, pick(d.phones, d.accountPhones[id]), fields)
			case "message_templates":
				writeList(w, d.templates[id], fields)
			default:
				writeStubError(w, http.StatusNotFound, "Unsupported get request")
			}
			return
		}

		if d.failEntities[id] {
			writeStubError(w, http.StatusInternalServerError, "(#2) Service temporarily unavailable")
			return
		}
		for _, records := range []map[string]map[string]interface{}{d.businesses, d.accounts, d.phones} {
			if rec, ok := records[id]; ok {
				json.NewEncoder(w).Encode(project(rec, fields))
				return
			}
		}
		writeStubError(w, http.StatusNotFound, "Unsupported get request")
	}))
	t.Cleanup(srv.Close)
	return srv
}

func pick(records map[string]map[string]interface{}, ids []string) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(ids))
	for _, id := range ids {
		if rec, ok := records[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// project mirrors the fields query parameter: only requested keys are
// returned, plus id.
func project(rec map[string]interface{}, fields []string) map[string]interface{} {
	out := map[string]interface{}{"id": rec["id"]}
	for _, f := range fields {
		if v, ok := rec[f]; ok {
			out[f] = v
		}
	}
	return out
}

func writeList(w http.ResponseWriter, records []map[string]interface{}, fields []string) {
	data := make([]map[string]interface{}, 0, len(records))
	for _, rec := range records {
		data = append(data, project(rec, fields))
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func writeStubError(w http.ResponseWriter, code int, message string) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"message": message, "code": 2},
	})
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "sync_test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(models.Tables...))
	return db
}

func newTestService(t *testing.T, db *gorm.DB, baseURL string) *Service {
	t.Helper()
	client := meta.NewClient(&config.Config{
		GraphBaseURL:    baseURL,
		GraphAPIVersion: "v19.0",
		HTTPTimeout:     5 * time.Second,
		FieldRetryLimit: 8,
	})
	return NewService(db, client)
}
