package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment is a gateway payment record written by the checkout flow
type Payment struct {
	ID                uuid.UUID `json:"id"`
	Amount            float64   `json:"amount"`
	Method            string    `json:"method"`
	Status            string    `json:"status"`
	Timestamp         time.Time `json:"timestamp"`
	UserID            string    `json:"userId"`
	RazorpayOrderID   string    `json:"razorpayOrderId"`
	RazorpayPaymentID string    `json:"razorpayPaymentId"`
	Verified          bool      `json:"verified"`
}
