package entity

import "time"

type Order struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	RestaurantID      string    `json:"restaurant_id"`
	DriverID          string    `json:"driver_id,omitempty"`
	Status            string    `json:"status"`
	TotalPrice        float64   `json:"total_price"`
	DeliveryAddressID string    `json:"delivery_address_id,omitempty"`
	PaymentMethod     string    `json:"payment_method,omitempty"`
	PaymentStatus     string    `json:"payment_status,omitempty"`
	DeliveryNotes     string    `json:"delivery_notes,omitempty"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}
