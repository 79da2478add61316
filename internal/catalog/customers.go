package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
)

const customerColumns = `id, user_id, name, email, phone, cpf, created_at, updated_at`

func (s *Store) ListCustomers(ctx context.Context, accountID int64) ([]domain.Customer, error) {
	customers := []domain.Customer{}
	err := s.db.SelectContext(ctx, &customers, s.db.Rebind(`SELECT `+customerColumns+` FROM customers WHERE user_id = ? ORDER BY name, id`), accountID)
	if err != nil {
		return nil, apperr.Classify("list customers", err)
	}
	return customers, nil
}

func (s *Store) GetCustomer(ctx context.Context, accountID, id int64) (domain.Customer, error) {
	var c domain.Customer
	err := s.db.GetContext(ctx, &c, s.db.Rebind(`SELECT `+customerColumns+` FROM customers WHERE id = ? AND user_id = ?`), id, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, apperr.NotFound("customer", id)
	}
	if err != nil {
		return domain.Customer{}, apperr.Classify("get customer", err)
	}
	return c, nil
}

func (s *Store) CreateCustomer(ctx context.Context, accountID int64, c domain.Customer) (domain.Customer, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = strings.TrimSpace(c.Phone)
	if err := validateCustomer(c.Name, c.Email, c.Phone, c.CPF); err != nil {
		return domain.Customer{}, err
	}

	now := s.now()
	c.UserID = accountID
	c.CreatedAt, c.UpdatedAt = now, now
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(`INSERT INTO customers (user_id, name, email, phone, cpf, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		c.UserID, c.Name, c.Email, c.Phone, c.CPF, c.CreatedAt, c.UpdatedAt).Scan(&c.ID)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return domain.Customer{}, apperr.Validation("cpf", "already registered for another customer")
		}
		return domain.Customer{}, apperr.Classify("create customer", err)
	}
	return c, nil
}

// UpdateCustomer applies the non-nil fields of patch and returns the stored
// customer.
func (s *Store) UpdateCustomer(ctx context.Context, accountID, id int64, patch domain.CustomerPatch) (domain.Customer, error) {
	var set setBuilder
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return domain.Customer{}, apperr.Validation("name", "must not be empty")
		}
		set.add("name", name)
	}
	if patch.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*patch.Email))
		if email == "" {
			return domain.Customer{}, apperr.Validation("email", "must not be empty")
		}
		set.add("email", email)
	}
	if patch.Phone != nil {
		phone := strings.TrimSpace(*patch.Phone)
		if phone == "" {
			return domain.Customer{}, apperr.Validation("phone", "must not be empty")
		}
		set.add("phone", phone)
	}
	if patch.CPF != nil {
		if !validCPF(*patch.CPF) {
			return domain.Customer{}, apperr.Validation("cpf", "must contain exactly 11 digits")
		}
		set.add("cpf", *patch.CPF)
	}
	if set.empty() {
		return s.GetCustomer(ctx, accountID, id)
	}
	set.add("updated_at", s.now())

	args := append(set.args, id, accountID)
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE customers SET `+set.sql()+` WHERE id = ? AND user_id = ?`), args...)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return domain.Customer{}, apperr.Validation("cpf", "already registered for another customer")
		}
		return domain.Customer{}, apperr.Classify("update customer", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Customer{}, apperr.NotFound("customer", id)
	}
	return s.GetCustomer(ctx, accountID, id)
}

// DeleteCustomer removes the customer. Past sales keep their customer id and
// simply stop resolving it.
func (s *Store) DeleteCustomer(ctx context.Context, accountID, id int64) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM customers WHERE id = ? AND user_id = ?`), id, accountID)
	if err != nil {
		return apperr.Classify("delete customer", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperr.Classify("delete customer", err)
	}
	if n == 0 {
		return apperr.NotFound("customer", id)
	}
	return nil
}

func validateCustomer(name, email, phone, cpf string) error {
	switch {
	case name == "":
		return apperr.Validation("name", "must not be empty")
	case email == "":
		return apperr.Validation("email", "must not be empty")
	case phone == "":
		return apperr.Validation("phone", "must not be empty")
	case !validCPF(cpf):
		return apperr.Validation("cpf", "must contain exactly 11 digits")
	}
	return nil
}

func validCPF(cpf string) bool {
	if len(cpf) != 11 {
		return false
	}
	for _, r := range cpf {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
