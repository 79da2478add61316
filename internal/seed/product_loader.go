// Package seed loads a starting product catalog from CSV.
package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/catalog"
	"pdv/m/internal/logger"
	"pdv/m/internal/money"
)

// LoadProducts ingests the CSV at csvPath into accountID's catalog, skipping
// products whose name already exists. Columns are name, description, price
// (in reais, comma or dot decimals) and image_url; the first row is a header.
func LoadProducts(ctx context.Context, store *catalog.Store, accountID int64, csvPath string) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open product catalog %s: %w", csvPath, err)
	}
	defer file.Close()
	return loadProducts(ctx, store, accountID, file)
}

func loadProducts(ctx context.Context, store *catalog.Store, accountID int64, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	// Skip header
	if _, err := reader.Read(); err != nil {
		return 0, fmt.Errorf("read product header: %w", err)
	}

	rows := 0
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("unable to read product row", "line", line, "error", err)
			continue
		}
		if len(record) < 3 {
			continue
		}
		name := strings.TrimSpace(record[0])
		if name == "" {
			continue
		}
		price, err := money.FromMajorInput(record[2])
		if err != nil {
			logger.Warn("skipping product with invalid price", "line", line, "name", name, "error", err)
			continue
		}

		if _, err := store.FindProductByName(ctx, accountID, name); err == nil {
			continue
		} else if !apperr.IsNotFound(err) {
			return rows, err
		}

		p := domain.Product{Name: name, Price: price}
		if desc := strings.TrimSpace(record[1]); desc != "" {
			p.Description = &desc
		}
		if len(record) > 3 {
			if img := strings.TrimSpace(record[3]); img != "" {
				p.ImageURL = &img
			}
		}
		if _, err := store.CreateProduct(ctx, accountID, p); err != nil {
			var verr *apperr.ValidationError
			if errors.As(err, &verr) {
				logger.Warn("skipping invalid product", "line", line, "name", name, "error", err)
				continue
			}
			return rows, err
		}
		rows++
	}
	logger.Info("seeded product catalog", "rows", rows)
	return rows, nil
}
