package model

// Product is a catalog entry. Products are read-only here; a refresh replaces
// the whole collection.
type Product struct {
	ID                   ID           `json:"id"`
	Title                string       `json:"title"`
	Description          string       `json:"description,omitempty"`
	Brand                string       `json:"brand,omitempty"`
	Category             string       `json:"category"`
	Price                float64      `json:"price"`
	DiscountPercentage   float64      `json:"discountPercentage,omitempty"`
	Stock                int          `json:"stock"`
	Rating               float64      `json:"rating"`
	AvailabilityStatus   string       `json:"availabilityStatus"`
	Thumbnail            string       `json:"thumbnail,omitempty"`
	Images               []string     `json:"images,omitempty"`
	WarrantyInformation  string       `json:"warrantyInformation,omitempty"`
	ShippingInformation  string       `json:"shippingInformation,omitempty"`
	ReturnPolicy         string       `json:"returnPolicy,omitempty"`
	MinimumOrderQuantity int          `json:"minimumOrderQuantity,omitempty"`
	Tags                 []string     `json:"tags,omitempty"`
	SKU                  string       `json:"sku,omitempty"`
	Weight               float64      `json:"weight,omitempty"`
	Dimensions           *Dimensions  `json:"dimensions,omitempty"`
	Meta                 *ProductMeta `json:"meta,omitempty"`
	Reviews              []Review     `json:"reviews,omitempty"`
}

// Dimensions of a product.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Depth  float64 `json:"depth"`
}

// ProductMeta carries catalog bookkeeping.
type ProductMeta struct {
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	Barcode   string `json:"barcode,omitempty"`
	QRCode    string `json:"qrCode,omitempty"`
}

// Review is a customer review of a product.
type Review struct {
	Rating        float64 `json:"rating"`
	Comment       string  `json:"comment"`
	Date          string  `json:"date,omitempty"`
	ReviewerName  string  `json:"reviewerName"`
	ReviewerEmail string  `json:"reviewerEmail,omitempty"`
}

// Availability statuses.
const (
	AvailabilityInStock    = "In Stock"
	AvailabilityLowStock   = "Low Stock"
	AvailabilityOutOfStock = "Out of Stock"
)

// LowStockThreshold is the stock level below which a product counts as low.
const LowStockThreshold = 10

// AvailabilityFor derives an availability status from a stock count.
func AvailabilityFor(stock int) string {
	switch {
	case stock <= 0:
		return AvailabilityOutOfStock
	case stock < LowStockThreshold:
		return AvailabilityLowStock
	default:
		return AvailabilityInStock
	}
}

// DiscountedPrice applies DiscountPercentage to Price.
func (p Product) DiscountedPrice() float64 {
	if p.DiscountPercentage <= 0 {
		return p.Price
	}
	return p.Price * (1 - p.DiscountPercentage/100)
}

// Revenue is the value of the stock on hand at list price.
func (p Product) Revenue() float64 {
	return p.Price * float64(p.Stock)
}
