package api

import (
	"net/http"
	"strconv"

	"whatsapp-admin/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AppHandler provisions the apps holding Graph API credentials. The sync
// engine itself never writes this table.
type AppHandler struct {
	DB *gorm.DB
}

func NewAppHandler(db *gorm.DB) *AppHandler {
	return &AppHandler{DB: db}
}

func (h *AppHandler) GetApps(c *gin.Context) {
	var apps []models.App
	if err := h.DB.Order("name").Find(&apps).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if apps == nil {
		apps = []models.App{}
	}
	// AccessToken carries json:"-", tokens never leave the server
	c.JSON(http.StatusOK, apps)
}

type CreateAppRequest struct {
	Name             string `json:"name"`
	AppID            string `json:"app_id" binding:"required"`
	AccessToken      string `json:"access_token" binding:"required"`
	BusinessRemoteID string `json:"business_remote_id"`
}

func (h *AppHandler) CreateApp(c *gin.Context) {
	var req CreateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app := models.App{
		Name:             req.Name,
		AppID:            req.AppID,
		AccessToken:      req.AccessToken,
		BusinessRemoteID: req.BusinessRemoteID,
	}
	if err := h.DB.Create(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create app"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "App created", "id": app.ID})
}

type UpdateAppRequest struct {
	Name             string `json:"name"`
	AccessToken      string `json:"access_token"`
	BusinessRemoteID string `json:"business_remote_id"`
}

func (h *AppHandler) UpdateApp(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid app id"})
		return
	}

	var req UpdateAppRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var app models.App
	if err := h.DB.First(&app, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}

	if req.Name != "" {
		app.Name = req.Name
	}
	if req.AccessToken != "" {
		app.AccessToken = req.AccessToken
	}
	if req.BusinessRemoteID != "" {
		app.BusinessRemoteID = req.BusinessRemoteID
	}
	if err := h.DB.Save(&app).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update app"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "App updated"})
}

func (h *AppHandler) DeleteApp(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid app id"})
		return
	}

	result := h.DB.Delete(&models.App{}, uint(id))
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete app"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "App not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "App deleted"})
}
