package domain

import "time"

// Product is a sellable item in the store catalog. Specs is an open-ended
// attribute map maintained by operators (keys must be non-empty).
type Product struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Price            float64           `json:"price"`
	Stock            int32             `json:"stock"`
	Category         string            `json:"category"`
	Brand            string            `json:"brand"`
	Images           []string          `json:"images"`
	ShortDescription string            `json:"short_description"`
	LongDescription  string            `json:"long_description"`
	Specs            map[string]string `json:"specs"`
	Active           bool              `json:"active"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
