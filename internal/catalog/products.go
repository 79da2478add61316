package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
)

const productColumns = `id, user_id, name, description, price, image_url, created_at, updated_at`

func (s *Store) ListProducts(ctx context.Context, accountID int64) ([]domain.Product, error) {
	products := []domain.Product{}
	err := s.db.SelectContext(ctx, &products, s.db.Rebind(`SELECT `+productColumns+` FROM products WHERE user_id = ? ORDER BY name, id`), accountID)
	if err != nil {
		return nil, apperr.Classify("list products", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, accountID, id int64) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+productColumns+` FROM products WHERE id = ? AND user_id = ?`), id, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperr.NotFound("product", id)
	}
	if err != nil {
		return domain.Product{}, apperr.Classify("get product", err)
	}
	return p, nil
}

// ProductsByIDs loads the account's products among ids, keyed by id. Unknown
// or foreign ids are simply absent from the result.
func (s *Store) ProductsByIDs(ctx context.Context, accountID int64, ids []int64) (map[int64]domain.Product, error) {
	result := make(map[int64]domain.Product, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE user_id = ? AND id IN (?)`, accountID, ids)
	if err != nil {
		return nil, apperr.Classify("prepare products query", err)
	}
	var rows []domain.Product
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, apperr.Classify("load products", err)
	}
	for _, p := range rows {
		result[p.ID] = p
	}
	return result, nil
}

// FindProductByName returns the account's product with exactly that name.
func (s *Store) FindProductByName(ctx context.Context, accountID int64, name string) (domain.Product, error) {
	var p domain.Product
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+productColumns+` FROM products WHERE user_id = ? AND name = ? ORDER BY id LIMIT 1`), accountID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, apperr.NotFound("product", 0)
	}
	if err != nil {
		return domain.Product{}, apperr.Classify("find product", err)
	}
	return p, nil
}

func (s *Store) CreateProduct(ctx context.Context, accountID int64, p domain.Product) (domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return domain.Product{}, apperr.Validation("name", "must not be empty")
	}
	if p.Price < 0 {
		return domain.Product{}, apperr.Validation("price", "must be zero or positive")
	}

	now := s.now()
	p.UserID = accountID
	p.CreatedAt, p.UpdatedAt = now, now
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO products (user_id, name, description, price, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		p.UserID, p.Name, p.Description, p.Price, p.ImageURL, p.CreatedAt, p.UpdatedAt).Scan(&p.ID)
	if err != nil {
		return domain.Product{}, apperr.Classify("create product", err)
	}
	return p, nil
}

// UpdateProduct applies the non-nil fields of patch. Prices already recorded
// on sale items are snapshots and do not change.
func (s *Store) UpdateProduct(ctx context.Context, accountID, id int64, patch domain.ProductPatch) (domain.Product, error) {
	var set setBuilder
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Product{}, apperr.Validation("name", "must not be empty")
		}
		set.add("name", name)
	}
	if patch.Description != nil {
		set.add("description", *patch.Description)
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return domain.Product{}, apperr.Validation("price", "must be zero or positive")
		}
		set.add("price", *patch.Price)
	}
	if patch.ImageURL != nil {
		set.add("image_url", *patch.ImageURL)
	}
	if set.empty() {
		return s.GetProduct(ctx, accountID, id)
	}
	set.add("updated_at", s.now())

	args := append(set.args, id, accountID)
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE products SET `+set.sql()+` WHERE id = ? AND user_id = ?`), args...)
	if err != nil {
		return domain.Product{}, apperr.Classify("update product", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Product{}, apperr.NotFound("product", id)
	}
	return s.GetProduct(ctx, accountID, id)
}

func (s *Store) DeleteProduct(ctx context.Context, accountID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM products WHERE id = ? AND user_id = ?`), id, accountID)
	if err != nil {
		return apperr.Classify("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Classify("delete product", err)
	}
	if n == 0 {
		return apperr.NotFound("product", id)
	}
	return nil
}
