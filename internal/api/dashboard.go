package api

import (
	"net/http"

	"whatsapp-admin/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	DB *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
	return &DashboardHandler{DB: db}
}

// GetDashboard returns entity counts and the last sync run.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	var apps, businesses, accounts, numbers, templates int64
	h.DB.Model(&models.App{}).Count(&apps)
	h.DB.Model(&models.Business{}).Count(&businesses)
	h.DB.Model(&models.WabaAccount{}).Count(&accounts)
	h.DB.Model(&models.PhoneNumber{}).Count(&numbers)
	h.DB.Model(&models.MessageTemplate{}).Count(&templates)

	var lastSync models.SyncLog
	hasSync := h.DB.Order("created_at DESC").First(&lastSync).Error == nil

	resp := gin.H{
		"apps":              apps,
		"businesses":        businesses,
		"accounts":          accounts,
		"phone_numbers":     numbers,
		"message_templates": templates,
	}
	if hasSync {
		resp["last_sync"] = lastSync
	}
	c.JSON(http.StatusOK, resp)
}
