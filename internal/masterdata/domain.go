package masterdata

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// MaxProductImages caps the number of image URLs stored per product.
const MaxProductImages = 4

var errTooManyImages = errors.New("a product holds at most 4 images")

// Product is a catalog entry. SKU is unique across the catalog.
type Product struct {
	ID                string          `json:"id"`
	SKU               string          `json:"sku"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	LowStockThreshold int64           `json:"lowStockThreshold"`
	Images            []string        `json:"images"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

// Warehouse is a stock location.
type Warehouse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Supplier is a vendor purchase orders are issued against.
type Supplier struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Company is an issuing legal entity referenced by purchase orders.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TaxID     string    `json:"taxId"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProductInput carries the writable product fields.
type ProductInput struct {
	SKU               string
	Name              string
	Category          string
	Description       string
	Price             decimal.Decimal
	LowStockThreshold int64
	Images            []string
}

// WarehouseInput carries the writable warehouse fields.
type WarehouseInput struct {
	Name     string
	Location string
}

// SupplierInput carries the writable supplier fields.
type SupplierInput struct {
	Name        string
	ContactName string
	Email       string
	Phone       string
	Address     string
	IsActive    bool
}

// CompanyInput carries the writable company fields.
type CompanyInput struct {
	Name    string
	TaxID   string
	Address string
}

// LowStockItem pairs a product with its current total across warehouses.
type LowStockItem struct {
	Product  Product `json:"product"`
	Total    int64   `json:"total"`
	Shortage int64   `json:"shortage"`
}
