package enums

import "fmt"

// ProductCategory is the catalog grouping used by the KPI dashboard filters.
type ProductCategory string

const (
	CategoryElectronics  ProductCategory = "Electronics"
	CategoryAutomotive   ProductCategory = "Automotive"
	CategoryIndustrial   ProductCategory = "Industrial"
	CategoryConsumerGood ProductCategory = "Consumer Goods"
	CategoryRawMaterials ProductCategory = "Raw Materials"
)

var validProductCategories = []ProductCategory{
	CategoryElectronics,
	CategoryAutomotive,
	CategoryIndustrial,
	CategoryConsumerGood,
	CategoryRawMaterials,
}

// String implements fmt.Stringer.
func (c ProductCategory) String() string {
	return string(c)
}

// Valid reports whether the category is part of the catalog.
func (c ProductCategory) Valid() bool {
	for _, valid := range validProductCategories {
		if c == valid {
			return true
		}
	}
	return false
}

// ProductCategories returns the full catalog list in a stable order.
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(validProductCategories))
	copy(out, validProductCategories)
	return out
}

// ParseProductCategory converts a raw string into a ProductCategory.
func ParseProductCategory(value string) (ProductCategory, error) {
	category := ProductCategory(value)
	if !category.Valid() {
		return "", fmt.Errorf("invalid product category %q", value)
	}
	return category, nil
}
