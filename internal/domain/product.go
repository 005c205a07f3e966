package domain

import (
	"fmt"
	"strings"
	"time"
)

// Category is the fixed product category enumeration.
type Category string

const (
	CategoryCeremonial Category = "ceremonial"
	CategoryCulinary   Category = "culinary"
	CategorySets       Category = "sets"
)

// Categories lists the accepted category tags in display order.
var Categories = []Category{CategoryCeremonial, CategoryCulinary, CategorySets}

// ParseCategory maps a free-text tag onto the enumeration.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Categories {
		if c == known {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Product is a catalogue row. Prices are whole currency units.
type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Weight        string    `json:"weight"`
	OriginalPrice int64     `json:"original_price"`
	Price         int64     `json:"price"`
	Description   string    `json:"description"`
	Benefits      []string  `json:"benefits"`
	Image         string    `json:"image"`
	Category      Category  `json:"category"`
	IsActive      bool      `json:"is_active"`
	SortOrder     int       `json:"sort_order"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ProductInput carries every writable product field.
type ProductInput struct {
	Name          string   `json:"name"`
	Weight        string   `json:"weight"`
	OriginalPrice int64    `json:"original_price"`
	Price         int64    `json:"price"`
	Description   string   `json:"description"`
	Benefits      []string `json:"benefits"`
	Image         string   `json:"image"`
	Category      Category `json:"category"`
	IsActive      bool     `json:"is_active"`
	SortOrder     int      `json:"sort_order"`
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	Name          *string   `json:"name,omitempty"`
	Weight        *string   `json:"weight,omitempty"`
	OriginalPrice *int64    `json:"original_price,omitempty"`
	Price         *int64    `json:"price,omitempty"`
	Description   *string   `json:"description,omitempty"`
	Benefits      *[]string `json:"benefits,omitempty"`
	Image         *string   `json:"image,omitempty"`
	Category      *Category `json:"category,omitempty"`
	IsActive      *bool     `json:"is_active,omitempty"`
	SortOrder     *int      `json:"sort_order,omitempty"`
}

// PatchFromInput turns a full input into a patch that overwrites every field.
func PatchFromInput(in ProductInput) ProductPatch {
	benefits := in.Benefits
	return ProductPatch{
		Name:          &in.Name,
		Weight:        &in.Weight,
		OriginalPrice: &in.OriginalPrice,
		Price:         &in.Price,
		Description:   &in.Description,
		Benefits:      &benefits,
		Image:         &in.Image,
		Category:      &in.Category,
		IsActive:      &in.IsActive,
		SortOrder:     &in.SortOrder,
	}
}

// Apply copies the set fields of the patch onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Weight != nil {
		p.Weight = *pp.Weight
	}
	if pp.OriginalPrice != nil {
		p.OriginalPrice = *pp.OriginalPrice
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Benefits != nil {
		p.Benefits = append([]string(nil), (*pp.Benefits)...)
	}
	if pp.Image != nil {
		p.Image = *pp.Image
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.IsActive != nil {
		p.IsActive = *pp.IsActive
	}
	if pp.SortOrder != nil {
		p.SortOrder = *pp.SortOrder
	}
}

// Empty reports whether the patch changes nothing.
func (pp ProductPatch) Empty() bool {
	return pp.Name == nil && pp.Weight == nil && pp.OriginalPrice == nil && pp.Price == nil &&
		pp.Description == nil && pp.Benefits == nil && pp.Image == nil && pp.Category == nil &&
		pp.IsActive == nil && pp.SortOrder == nil
}
