package api

import (
	"net/http" // HTTP status codes

	"github.com/Crayann/swiftbase-backend/internal/domain" // Importing domain models
	"github.com/Crayann/swiftbase-backend/internal/store"  // Persistence layer

	"github.com/gin-gonic/gin" // Gin web framework
	"github.com/google/uuid"   // Payment method ids
)

// Request struct for adding a payment method
type CreatePaymentMethodRequest struct {
	Type     string `json:"type" binding:"required,oneof=card bank_account"` // Funding method type
	Label    string `json:"label"`                                           // Display label
	LastFour string `json:"lastFour" binding:"required,len=4"`               // Last four digits for display
}

// CreatePaymentMethodHandler adds a funding method for the authenticated sender
func CreatePaymentMethodHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreatePaymentMethodRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		method := domain.PaymentMethod{
			ID:       uuid.New(),    // New payment method id
			UserID:   userID.(uint), // Owned by the caller
			Type:     req.Type,      // card or bank_account
			Label:    req.Label,     // Display label
			LastFour: req.LastFour,  // Display digits
		}
		if err := st.CreatePaymentMethod(c.Request.Context(), &method); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment method"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"paymentMethod": method})
	}
}

// ListPaymentMethodsHandler returns the sender's funding methods
func ListPaymentMethodsHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		methods, err := st.ListPaymentMethods(c.Request.Context(), userID.(uint))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list payment methods"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"paymentMethods": methods})
	}
}

// GetPaymentMethodHandler returns one funding method owned by the sender
func GetPaymentMethodHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := uuid.Parse(c.Param("id")) // Parse payment method id from path
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		method, err := st.GetPaymentMethod(c.Request.Context(), id, userID.(uint))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"paymentMethod": method})
	}
}

// DeletePaymentMethodHandler removes a funding method owned by the sender
func DeletePaymentMethodHandler(st store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		id, err := uuid.Parse(c.Param("id")) // Parse payment method id from path
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		if err := st.DeletePaymentMethod(c.Request.Context(), id, userID.(uint)); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment method not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Payment method deleted"})
	}
}
