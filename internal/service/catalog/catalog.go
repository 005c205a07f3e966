// Package catalog builds the public catalog and product detail views.
package catalog

import (
	"context"
	"errors"
	"io"
	"log"
	"net/url"
	"strconv"
	"strings"

	"chaeen-storefront/internal/domain"
	"chaeen-storefront/internal/querycache"
)

const (
	EmptyMessage          = "No products available at the moment."
	DefaultWhatsAppNumber = "919310781313"
	currencySymbol        = "₹"
)

var errNoProduct = errors.New("product not found")

// Source is the read side of the storefront API.
type Source interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id string) *domain.Product
}

// Card is a product as shown in the catalog grid.
type Card struct {
	domain.Product
	Savings            int64  `json:"savings"`
	OnSale             bool   `json:"on_sale"`
	CategoryLabel      string `json:"category_label"`
	PriceLabel         string `json:"price_label"`
	OriginalPriceLabel string `json:"original_price_label,omitempty"`
	InquiryURL         string `json:"inquiry_url"`
}

// DetailView is the single product page.
type DetailView struct {
	Card
	SavingsLabel string `json:"savings_label,omitempty"`
}

// ListView is the catalog page.
type ListView struct {
	Products     []Card `json:"products"`
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"empty_message,omitempty"`
}

type Service struct {
	src      Source
	cache    *querycache.Cache
	whatsapp string
	logger   *log.Logger
}

func New(src Source, cache *querycache.Cache, whatsappNumber string, logger *log.Logger) *Service {
	if cache == nil {
		cache = querycache.New(0)
	}
	if whatsappNumber == "" {
		whatsappNumber = DefaultWhatsAppNumber
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{src: src, cache: cache, whatsapp: whatsappNumber, logger: logger}
}

// List renders the catalog. A failed fetch renders as the empty catalog.
func (s *Service) List(ctx context.Context) ListView {
	products, err := querycache.Fetch(ctx, s.cache, querycache.KeyPublicProducts, s.src.Products)
	if err != nil {
		s.logger.Printf("catalog: list products error=%v", err)
		products = nil
	}
	view := ListView{Products: make([]Card, 0, len(products))}
	for _, p := range products {
		view.Products = append(view.Products, s.card(p))
	}
	if len(view.Products) == 0 {
		view.Empty = true
		view.EmptyMessage = EmptyMessage
	}
	return view
}

// Detail renders one product. ok is false for a missing product or a failed fetch.
func (s *Service) Detail(ctx context.Context, id string) (*DetailView, bool) {
	if strings.TrimSpace(id) == "" {
		return nil, false
	}
	p, err := querycache.Fetch(ctx, s.cache, querycache.ProductKey(id), func(ctx context.Context) (*domain.Product, error) {
		if p := s.src.Product(ctx, id); p != nil {
			return p, nil
		}
		return nil, errNoProduct
	})
	if err != nil {
		return nil, false
	}
	view := &DetailView{Card: s.card(*p)}
	if view.OnSale {
		view.SavingsLabel = "Save " + formatPrice(view.Savings)
	}
	return view, true
}

// InquiryURL links to the shop's WhatsApp chat with a prefilled message.
func (s *Service) InquiryURL(p domain.Product) string {
	msg := "Hi, I am interested in buying " + p.Name + " (" + p.Weight + ")"
	return "https://wa.me/" + s.whatsapp + "?text=" + encodeURIComponent(msg)
}

func (s *Service) card(p domain.Product) Card {
	c := Card{
		Product:       p,
		Savings:       Savings(p),
		CategoryLabel: CategoryLabel(p.Category),
		PriceLabel:    formatPrice(p.Price),
		InquiryURL:    s.InquiryURL(p),
	}
	c.OnSale = c.Savings > 0
	if c.OnSale {
		c.OriginalPriceLabel = formatPrice(p.OriginalPrice)
	}
	return c
}

// Savings is the discount off the original price, or 0 when there is none.
func Savings(p domain.Product) int64 {
	if p.OriginalPrice > p.Price {
		return p.OriginalPrice - p.Price
	}
	return 0
}

func CategoryLabel(c domain.Category) string {
	if c == domain.CategoryCeremonial {
		return "Ceremonial Grade A"
	}
	return string(c)
}

func formatPrice(v int64) string {
	return currencySymbol + strconv.FormatInt(v, 10)
}

var uriComponentUnescape = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
	"%7E", "~",
)

// encodeURIComponent escapes like the browser function of the same name.
func encodeURIComponent(s string) string {
	return uriComponentUnescape.Replace(url.QueryEscape(s))
}
