package entity

import "time"

type Restaurant struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Address     string    `json:"address"`
	Phone       string    `json:"phone,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	OwnerID     string    `json:"owner_id,omitempty"`
	CuisineType string    `json:"cuisine_type,omitempty"`
	Rating      float64   `json:"rating,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// RestaurantInfo คือ field ย่อยที่ backend embed มากับ order detail
type RestaurantInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
}
