package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"github.com/Crayann/swiftbase-backend/internal/domain" // Importing domain models
	"github.com/Crayann/swiftbase-backend/internal/store"  // Persistence layer

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/google/uuid"   // Recipient ids
)

// Request struct for adding a recipient
type CreateRecipientRequest struct {
	FullName      string `json:"fullName" binding:"required"`                             // Recipient's legal name
	Country       string `json:"country" binding:"required"`                              // ISO country code
	Currency      string `json:"currency" binding:"required"`                             // Payout currency
	PayoutType    string `json:"payoutType" binding:"required,oneof=bank cash_pickup"`    // Payout method
	PayoutDetails string `json:"payoutDetails"`                                           // Account or branch reference
}

// CreateRecipientHandler adds a payout recipient for the authenticated sender
func CreateRecipientHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateRecipientRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		recipient := domain.Recipient{
			ID:            uuid.New(),                     // New recipient id
			UserID:        userID.(uint),                  // Owned by the caller
			FullName:      req.FullName,                   // Recipient name
			Country:       strings.ToUpper(req.Country),   // Normalized country code
			Currency:      strings.ToUpper(req.Currency),  // Normalized currency code
			PayoutType:    req.PayoutType,                 // bank or cash_pickup
			PayoutDetails: req.PayoutDetails,              // Masked account reference
		}
		if err := st.CreateRecipient(c.Request.Context(), &recipient); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create recipient"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"recipient": recipient})
	}
}

// ListRecipientsHandler returns the sender's recipients
func ListRecipientsHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		recipients, err := st.ListRecipients(c.Request.Context(), userID.(uint))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list recipients"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipients": recipients})
	}
}

// GetRecipientHandler returns one recipient owned by the sender
func GetRecipientHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := uuid.Parse(c.Param("id")) // Parse recipient id from path
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
		recipient, err := st.GetRecipient(c.Request.Context(), id, userID.(uint))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipient": recipient})
	}
}

// DeleteRecipientHandler removes a recipient owned by the sender
func DeleteRecipientHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := uuid.Parse(c.Param("id")) // Parse recipient id from path
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
		if err := st.DeleteRecipient(c.Request.Context(), id, userID.(uint)); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Recipient deleted"})
	}
}
