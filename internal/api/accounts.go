package api

import (
	"net/http"
	"strconv"

	"whatsapp-admin/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AccountHandler struct {
	DB *gorm.DB
}

func NewAccountHandler(db *gorm.DB) *AccountHandler {
	return &AccountHandler{DB: db}
}

func (h *AccountHandler) GetAccounts(c *gin.Context) {
	var accounts []models.WabaAccount
	if err := h.DB.Order("name").Find(&accounts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Return empty array instead of null
	if accounts == nil {
		accounts = []models.WabaAccount{}
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	var account models.WabaAccount
	if err := h.DB.First(&account, uint(id)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
		return
	}
	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) GetAccountPhoneNumbers(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	var numbers []models.PhoneNumber
	if err := h.DB.Where("account_id = ?", uint(id)).Order("display_number").Find(&numbers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if numbers == nil {
		numbers = []models.PhoneNumber{}
	}
	c.JSON(http.StatusOK, numbers)
}

func (h *AccountHandler) GetAccountTemplates(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account id"})
		return
	}

	var templates []models.MessageTemplate
	if err := h.DB.Where("account_id = ?", uint(id)).Order("name").Find(&templates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if templates == nil {
		templates = []models.MessageTemplate{}
	}
	c.JSON(http.StatusOK, templates)
}

func (h *AccountHandler) GetBusinesses(c *gin.Context) {
	var businesses []models.Business
	if err := h.DB.Order("name").Find(&businesses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if businesses == nil {
		businesses = []models.Business{}
	}
	c.JSON(http.StatusOK, businesses)
}
