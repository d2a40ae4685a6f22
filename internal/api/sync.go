package api

import (
	"net/http"
	"strconv"
	"time"

	"whatsapp-admin/internal/models"
	"whatsapp-admin/internal/sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type SyncHandler struct {
	Service *sync.Service
	DB      *gorm.DB
}

func NewSyncHandler(service *sync.Service, db *gorm.DB) *SyncHandler {
	return &SyncHandler{Service: service, DB: db}
}

// SyncAll runs a full sweep across every provisioned app.
func (h *SyncHandler) SyncAll(c *gin.Context) {
	started := time.Now()
	result := h.Service.SyncAll(c.Request.Context())
	h.logRun("all", 0, result, started)
	respond(c, result)
}

// SyncAccount runs a targeted sync of one messaging account.
func (h *SyncHandler) SyncAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	started := time.Now()
	result := h.Service.SyncAccount(c.Request.Context(), uint(id))
	h.logRun("account", uint(id), result, started)
	respond(c, result)
}

// SyncPhoneNumber runs a targeted sync of one phone number.
func (h *SyncHandler) SyncPhoneNumber(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid phone number id"})
		return
	}

	started := time.Now()
	result := h.Service.SyncPhoneNumber(c.Request.Context(), uint(id))
	h.logRun("phone_number", uint(id), result, started)
	respond(c, result)
}

// GetSyncLogs returns the most recent sync runs.
func (h *SyncHandler) GetSyncLogs(c *gin.Context) {
	var logs []models.SyncLog
	if err := h.DB.Order("created_at DESC").Limit(100).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.SyncLog{}
	}
	c.JSON(http.StatusOK, logs)
}

func (h *SyncHandler) logRun(scope string, targetID uint, result sync.Result, started time.Time) {
	entry := models.SyncLog{
		Scope:      scope,
		TargetID:   targetID,
		Success:    result.Success,
		Message:    result.Message,
		DurationMs: time.Since(started).Milliseconds(),
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		zap.S().Warnf("recording sync log: %v", err)
	}
}

func respond(c *gin.Context, result sync.Result) {
	if !result.Success {
		c.JSON(http.StatusInternalServerError, gin.H{"error": result.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": result.Message})
}
