package domain

import (
	"time"

	"github.com/google/uuid"
)

// Order is a student order placed through the canteen app
type Order struct {
	ID                 uuid.UUID           `json:"id"`
	OrderNumber        int64               `json:"orderNumber,omitempty"`
	TokenNumber        string              `json:"tokenNumber,omitempty"`
	UserID             string              `json:"userId"`
	Items              []OrderItem         `json:"items"`
	TotalAmount        float64             `json:"totalAmount"`
	Status             OrderStatus         `json:"status"`
	Timestamp          time.Time           `json:"timestamp"`
	CollectionTimeSlot *CollectionTimeSlot `json:"collectionTimeSlot,omitempty"`
	BlockUntil         *time.Time          `json:"blockUntil,omitempty"`
	RazorpayOrderID    string              `json:"razorpayOrderId,omitempty"`
}

// OrderItem is a line of an order. CategoryID is empty for orders placed by older app builds.
type OrderItem struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Price      float64 `json:"price"`
	Qty        int     `json:"qty"`
	CategoryID string  `json:"categoryId,omitempty"`
}

// CollectionTimeSlot is the pickup window chosen by the student
type CollectionTimeSlot struct {
	DisplayText string `json:"displayText"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}
