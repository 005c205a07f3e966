package inventory

import (
	"fmt"
	"strconv"
	"strings"

	"chaeen-storefront/internal/domain"
)

// Form is the raw create/edit form as typed by the admin.
type Form struct {
	Name          string `json:"name" form:"name"`
	Weight        string `json:"weight" form:"weight"`
	Category      string `json:"category" form:"category"`
	OriginalPrice string `json:"original_price" form:"original_price"`
	Price         string `json:"price" form:"price"`
	SortOrder     string `json:"sort_order" form:"sort_order"`
	IsActive      bool   `json:"is_active" form:"is_active"`
	Image         string `json:"image" form:"image"`
	Description   string `json:"description" form:"description"`
	Benefits      string `json:"benefits" form:"benefits"`
}

// ValidationError lists the fields that block submission.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// NewForm returns the blank create form.
func NewForm() Form {
	return Form{
		Category:      string(domain.CategoryCeremonial),
		OriginalPrice: "0",
		Price:         "0",
		SortOrder:     "0",
		IsActive:      true,
	}
}

// FormFromProduct pre-fills the edit form.
func FormFromProduct(p domain.Product) Form {
	return Form{
		Name:          p.Name,
		Weight:        p.Weight,
		Category:      string(p.Category),
		OriginalPrice: strconv.FormatInt(p.OriginalPrice, 10),
		Price:         strconv.FormatInt(p.Price, 10),
		SortOrder:     strconv.Itoa(p.SortOrder),
		IsActive:      p.IsActive,
		Image:         p.Image,
		Description:   p.Description,
		Benefits:      strings.Join(p.Benefits, "\n"),
	}
}

// CanSubmit mirrors the submit button: it needs an image and no upload in flight.
func (f Form) CanSubmit(uploading bool) bool {
	return !uploading && strings.TrimSpace(f.Image) != ""
}

// Validate checks required fields and converts the form to a product input.
func (f Form) Validate(uploading bool) (domain.ProductInput, error) {
	var missing []string
	if strings.TrimSpace(f.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(f.Weight) == "" {
		missing = append(missing, "weight")
	}
	if strings.TrimSpace(f.Description) == "" {
		missing = append(missing, "description")
	}
	if !f.CanSubmit(uploading) {
		missing = append(missing, "image")
	}
	if len(missing) > 0 {
		return domain.ProductInput{}, &ValidationError{Fields: missing}
	}

	category := domain.CategoryCeremonial
	if strings.TrimSpace(f.Category) != "" {
		c, err := domain.ParseCategory(f.Category)
		if err != nil {
			return domain.ProductInput{}, &ValidationError{Fields: []string{"category"}}
		}
		category = c
	}

	return domain.ProductInput{
		Name:          f.Name,
		Weight:        f.Weight,
		OriginalPrice: parseLeadingInt(f.OriginalPrice),
		Price:         parseLeadingInt(f.Price),
		Description:   f.Description,
		Benefits:      SplitBenefits(f.Benefits),
		Image:         f.Image,
		Category:      category,
		IsActive:      f.IsActive,
		SortOrder:     int(parseLeadingInt(f.SortOrder)),
	}, nil
}

// ClearImage removes the current image reference.
func (f *Form) ClearImage() { f.Image = "" }

// UseImageURL takes a pasted URL as the image, unvalidated.
func (f *Form) UseImageURL(url string) { f.Image = url }

// SplitBenefits splits newline separated text, dropping blank lines.
func SplitBenefits(text string) []string {
	out := []string{}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// parseLeadingInt reads an optionally signed run of leading digits and
// returns 0 when there is none.
func parseLeadingInt(s string) int64 {
	s = strings.TrimLeft(s, " \t\r\n")
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
