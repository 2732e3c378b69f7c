package models

// Category is a product category offered by the form.
type Category string

const (
	CategorySmartphones Category = "Smartphones"
	CategoryLaptops     Category = "Laptops"
	CategoryHeadphones  Category = "Headphones"
	CategoryMicrophones Category = "Microphones"
	CategoryChargers    Category = "Chargers"
)

// Categories in the order the form lists them.
var Categories = []Category{
	CategorySmartphones,
	CategoryLaptops,
	CategoryHeadphones,
	CategoryMicrophones,
	CategoryChargers,
}

// Size is a product size offered by the form.
type Size string

const (
	SizeSmall  Size = "small"
	SizeMedium Size = "medium"
	SizeLarge  Size = "large"
)

var Sizes = []Size{SizeSmall, SizeMedium, SizeLarge}

// Product is a catalog record as served by the backend. ID is assigned there.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Size        Size     `json:"size"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Image       string   `json:"image"` // URI returned by the upload endpoint
	Priority    int      `json:"priority"`
	Description string   `json:"description"`
}

// Draft returns the editable fields of p.
func (p Product) Draft() Draft {
	return Draft{
		Name:        p.Name,
		Category:    p.Category,
		Size:        p.Size,
		Price:       p.Price,
		Quantity:    p.Quantity,
		Image:       p.Image,
		Priority:    p.Priority,
		Description: p.Description,
	}
}
