package entity

import "time"

type OrderItem struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	MenuItemID string    `json:"menu_item_id"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"` // ราคาต่อหน่วย ณ เวลาสั่ง
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}
