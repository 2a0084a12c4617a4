package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"storefront/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Kind is the detected input format.
type Kind string

const (
	KindCSV  Kind = "csv"
	KindJSON Kind = "json"
)

// DetectKind peeks at the first non-blank byte: a JSON feed starts with '['.
func DetectKind(r *bufio.Reader) (Kind, error) {
	for {
		b, err := r.Peek(1)
		if err != nil {
			return "", fmt.Errorf("detect kind: %w", err)
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n', 0xEF, 0xBB, 0xBF:
			if _, err := r.Discard(1); err != nil {
				return "", err
			}
		case '[':
			return KindJSON, nil
		default:
			return KindCSV, nil
		}
	}
}

// Importer upserts catalog products read from a CSV export or a JSON feed.
type Importer struct {
	kind        Kind
	r           io.Reader
	productRepo ProductWriter
	category    string
}

// NewCSVImporter reads rows with the headers id, category, name, brand,
// price, image, description. category fills rows that leave it blank.
func NewCSVImporter(r io.Reader, repo ProductWriter, category string) *Importer {
	return &Importer{kind: KindCSV, r: r, productRepo: repo, category: category}
}

// NewJSONImporter reads a storefront product feed (a JSON array of records
// keyed Id, NameWithoutBrand, FinalPrice, ...) for one category.
func NewJSONImporter(r io.Reader, repo ProductWriter, category string) *Importer {
	return &Importer{kind: KindJSON, r: r, productRepo: repo, category: category}
}

// Run returns how many products were upserted before any error.
func (i *Importer) Run(ctx context.Context) (int, error) {
	if i.kind == KindJSON {
		return i.runJSON(ctx)
	}
	return i.runCSV(ctx)
}

func (i *Importer) runCSV(ctx context.Context) (int, error) {
	reader := csv.NewReader(i.r)
	reader.FieldsPerRecord = -1 // rows may have trailing commas
	headers, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["id"]; !ok {
		return 0, errors.New("read headers: missing id column")
	}

	imported := 0
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		p, err := i.parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if p == nil {
			continue
		}
		if err := i.save(ctx, *p); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *Importer) parseRow(record []string, index map[string]int) (*domain.Product, error) {
	id := pick(record, index, "id")
	if id == "" {
		return nil, nil
	}
	cents, err := parseCents(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", id, err)
	}
	category := pick(record, index, "category")
	if category == "" {
		category = i.category
	}
	return &domain.Product{
		ID:          id,
		Category:    category,
		Name:        pick(record, index, "name"),
		Brand:       pick(record, index, "brand"),
		Description: pick(record, index, "description"),
		Image:       pick(record, index, "image"),
		PriceCents:  cents,
	}, nil
}

type feedRecord struct {
	ID                    string      `json:"Id"`
	Name                  string      `json:"Name"`
	NameWithoutBrand      string      `json:"NameWithoutBrand"`
	FinalPrice            json.Number `json:"FinalPrice"`
	Image                 string      `json:"Image"`
	DescriptionHTMLSimple string      `json:"DescriptionHtmlSimple"`
	Brand                 struct {
		Name string `json:"Name"`
	} `json:"Brand"`
	Images struct {
		PrimaryMedium string `json:"PrimaryMedium"`
	} `json:"Images"`
}

func (i *Importer) runJSON(ctx context.Context) (int, error) {
	dec := json.NewDecoder(i.r)
	dec.UseNumber()
	var records []feedRecord
	if err := dec.Decode(&records); err != nil {
		return 0, fmt.Errorf("decode feed: %w", err)
	}

	imported := 0
	for n, rec := range records {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			continue
		}
		cents, err := parseCents(rec.FinalPrice.String())
		if err != nil {
			return imported, fmt.Errorf("record %d (%s): %w", n, id, err)
		}
		name := rec.NameWithoutBrand
		if name == "" {
			name = rec.Name
		}
		image := rec.Images.PrimaryMedium
		if image == "" {
			image = rec.Image
		}
		p := domain.Product{
			ID:          id,
			Category:    i.category,
			Name:        strings.TrimSpace(name),
			Brand:       strings.TrimSpace(rec.Brand.Name),
			Description: strings.TrimSpace(rec.DescriptionHTMLSimple),
			Image:       strings.TrimSpace(image),
			PriceCents:  cents,
		}
		if err := i.save(ctx, p); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *Importer) save(ctx context.Context, p domain.Product) error {
	if p.Name == "" || p.Category == "" {
		return fmt.Errorf("invalid product %q (missing name or category)", p.ID)
	}
	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", p.ID, err)
	}
	return nil
}

// parseCents reads a dollar amount such as "199.99" and rounds it to cents.
func parseCents(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "$")
	if s == "" {
		return 0, errors.New("price is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("negative price %q", s)
	}
	return d.Shift(2).Round(0).IntPart(), nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
