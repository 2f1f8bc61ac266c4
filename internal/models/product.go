package models

import "time"

// Variant is a single {type, value} option of a product, e.g. {"size", "XL"}.
type Variant struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Inventory tracks available stock. InStock is stored alongside Quantity and
// kept in sync by the order workflow; the generic product-update path writes
// it as-is.
type Inventory struct {
	Quantity int  `json:"quantity"`
	InStock  bool `json:"inStock"`
}

// Product is a catalog item. Nested documents (tags, variants, categoryData)
// are stored as JSON columns; inventory is embedded as scalar columns so
// stock can be decremented with a single conditional UPDATE.
type Product struct {
	ID           string                 `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Price        float64                `json:"price"`
	Category     string                 `json:"category"`
	Tags         []string               `json:"tags" gorm:"serializer:json"`
	Variants     []Variant              `json:"variants" gorm:"serializer:json"`
	Inventory    Inventory              `json:"inventory" gorm:"embedded;embeddedPrefix:inventory_"`
	CategoryData map[string]interface{} `json:"categoryData,omitempty" gorm:"serializer:json"`
	Image        string                 `json:"image,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
	UpdatedAt    time.Time              `json:"updated_at"`
}
