package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"orderdesk/models"
)

// Columns maps product fields to the CSV header names holding them.
type Columns struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Points   string `yaml:"points"`
	Price    string `yaml:"price"`
}

// DefaultColumns returns the header names of the price sheet the tool was
// built around.
func DefaultColumns() Columns {
	return Columns{
		ID:       "貨號",
		Name:     "品名",
		Category: "類別",
		Points:   "積分額 SV",
		Price:    "含稅價 DPT",
	}
}

func (c Columns) withDefaults() Columns {
	d := DefaultColumns()
	if c.ID == "" {
		c.ID = d.ID
	}
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Category == "" {
		c.Category = d.Category
	}
	if c.Points == "" {
		c.Points = d.Points
	}
	if c.Price == "" {
		c.Price = d.Price
	}
	return c
}

// CSVSource reads a catalog from a CSV file with a header row.
type CSVSource struct {
	Path    string
	Columns Columns
}

func (s CSVSource) String() string {
	return s.Path
}

func (s CSVSource) Load(ctx context.Context) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, loadErr(s.Path, 0, "", "cannot open source", err)
	}
	defer f.Close()

	return ReadCSV(f, s.Path, s.Columns)
}

// ReadCSV parses catalog rows from r. name only labels errors.
// Ids are taken verbatim (after trimming spaces) and never parsed as numbers.
func ReadCSV(r io.Reader, name string, cols Columns) ([]models.Product, error) {
	cols = cols.withDefaults()

	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, loadErr(name, 0, "", "source is empty", nil)
	}
	if err != nil {
		return nil, loadErr(name, 0, "", "cannot read header", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		index[strings.TrimSpace(h)] = i
	}

	var missing []string
	required := []string{cols.ID, cols.Name, cols.Category, cols.Points, cols.Price}
	for _, h := range required {
		if _, ok := index[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return nil, loadErr(name, 0, strings.Join(missing, ", "), "missing required columns", nil)
	}

	var products []models.Product
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, loadErr(name, row, "", "malformed row", err)
		}

		points, err := parseNumber(rec[index[cols.Points]])
		if err != nil {
			return nil, loadErr(name, row, cols.Points, "unparseable number", err)
		}
		price, err := parseNumber(rec[index[cols.Price]])
		if err != nil {
			return nil, loadErr(name, row, cols.Price, "unparseable number", err)
		}

		products = append(products, models.Product{
			ID:       strings.TrimSpace(rec[index[cols.ID]]),
			Name:     strings.TrimSpace(rec[index[cols.Name]]),
			Category: strings.TrimSpace(rec[index[cols.Category]]),
			Points:   points,
			Price:    price,
		})
	}
	return products, nil
}

func parseNumber(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errors.New("empty value")
	}
	return decimal.NewFromString(raw)
}
