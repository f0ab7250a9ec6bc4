package domain

import "github.com/google/uuid"

// Item is a catalog product sold by the canteen.
// CategoryName is stored alongside CategoryID because the ordering app reads it directly.
type Item struct {
	ID                 uuid.UUID   `json:"id"`
	Name               string      `json:"name"`
	Description        string      `json:"description,omitempty"`
	Price              float64     `json:"price"`
	CategoryID         string      `json:"categoryId"`
	CategoryName       string      `json:"categoryName"`
	ImageURL           string      `json:"imageUrl"`
	Quantity           int         `json:"quantity"`
	DefaultOrderStatus OrderStatus `json:"defaultOrderStatus"`
	IsAvailable        bool        `json:"isAvailable"`
}

// Category groups catalog items
type Category struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}
