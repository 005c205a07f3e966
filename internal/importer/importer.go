package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"chaeen-storefront/internal/domain"
	"github.com/google/uuid"
)

type ProductWriter interface {
	Create(ctx context.Context, in domain.ProductInput) (*domain.Product, error)
	Save(ctx context.Context, id string, in domain.ProductInput) (*domain.Product, error)
}

// CSVImporter reads product spreadsheets and inserts or overwrites products.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

type csvRow struct {
	ID       string
	Input    domain.ProductInput
	Category string
	Line     int
}

// Run parses CSV rows and saves one product per named row. Rows without a
// name carry extra benefits for the product above them.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var (
		current  *csvRow
		imported int
		line     = 1
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		row := parseRow(record, index)
		if row == nil {
			continue
		}
		row.Line = line

		if row.Input.Name != "" {
			if current != nil {
				if err := i.save(ctx, current); err != nil {
					return imported, err
				}
				imported++
			}
			current = row
			continue
		}

		// Continuation rows (benefits) belong to the current product.
		if current != nil {
			current.Input.Benefits = append(current.Input.Benefits, row.Input.Benefits...)
		}
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	in := row.Input
	if in.Weight == "" || in.Description == "" {
		return fmt.Errorf("invalid product row (missing required fields) on line %d", row.Line)
	}
	if row.ID != "" {
		if _, err := uuid.Parse(row.ID); err != nil {
			return fmt.Errorf("invalid id on line %d: %s", row.Line, row.ID)
		}
	}
	in.Category = domain.CategoryCeremonial
	if row.Category != "" {
		c, err := domain.ParseCategory(row.Category)
		if err != nil {
			return fmt.Errorf("line %d: %w", row.Line, err)
		}
		in.Category = c
	}

	var err error
	if row.ID != "" {
		_, err = i.productRepo.Save(ctx, row.ID, in)
	} else {
		_, err = i.productRepo.Create(ctx, in)
	}
	if err != nil {
		return fmt.Errorf("save product %q (line %d): %w", in.Name, row.Line, err)
	}
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) *csvRow {
	name := pick(record, index, "name")
	benefits := splitList(pick(record, index, "benefits"))

	if name == "" && len(benefits) == 0 {
		return nil
	}

	active := true
	if v := pick(record, index, "is_active"); v != "" {
		active, _ = strconv.ParseBool(v)
	}
	sortOrder, _ := strconv.Atoi(pick(record, index, "sort_order"))

	return &csvRow{
		ID:       pick(record, index, "id"),
		Category: pick(record, index, "category"),
		Input: domain.ProductInput{
			Name:          name,
			Weight:        pick(record, index, "weight"),
			OriginalPrice: parseAmount(pick(record, index, "original_price")),
			Price:         parseAmount(pick(record, index, "price")),
			Description:   pick(record, index, "description"),
			Benefits:      benefits,
			Image:         pick(record, index, "image"),
			IsActive:      active,
			SortOrder:     sortOrder,
		},
	}
}

func parseAmount(s string) int64 {
	v, _ := strconv.ParseInt(strings.TrimPrefix(s, "₹"), 10, 64)
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
