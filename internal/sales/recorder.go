// Package sales records completed checkouts and reads them back.
package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/money"
)

// MaxItems caps the number of lines in one sale.
const MaxItems = 1000

// MaxInstallments is the largest card split offered at checkout.
const MaxInstallments = 10

type ItemInput struct {
	ProductID int64
	Quantity  int64
	UnitPrice int64
	// TotalPrice is optional; when given it must equal Quantity × UnitPrice.
	TotalPrice *int64
}

type SaleInput struct {
	CustomerID int64
	// TotalAmount is optional; the total is always recomputed from Items and
	// a supplied value must match it.
	TotalAmount    *int64
	PaymentMethod  domain.PaymentMethod
	Installments   int
	AmountReceived *int64
	Change         *int64
	Items          []ItemInput
}

type Recorder struct {
	db  *sqlx.DB
	now func() time.Time

	// afterHeader runs inside the transaction right after the sale header
	// insert; tests use it to fail between the two writes.
	afterHeader func(ctx context.Context, tx *sqlx.Tx, saleID int64) error
}

func NewRecorder(db *sqlx.DB) *Recorder {
	return &Recorder{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// RecordSale validates in and stores the sale header together with all of its
// line items in one transaction. Either every row is committed or none is.
func (r *Recorder) RecordSale(ctx context.Context, accountID int64, in SaleInput) (domain.Sale, error) {
	sale, items, err := Prepare(in)
	if err != nil {
		return domain.Sale{}, err
	}

	now := r.now()
	sale.UserID = accountID
	sale.CreatedAt, sale.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.Sale{}, apperr.Classify("begin sale", err)
	}
	defer tx.Rollback()

	if err := checkOwnership(ctx, tx, accountID, sale.CustomerID, items); err != nil {
		return domain.Sale{}, err
	}

	err = tx.QueryRowxContext(ctx, tx.Rebind(`
		INSERT INTO sales (user_id, customer_id, total_amount, payment_method, installments, amount_received, change_returned, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`),
		sale.UserID, sale.CustomerID, sale.TotalAmount, string(sale.PaymentMethod), sale.Installments,
		sale.AmountReceived, sale.Change, string(sale.Status), sale.CreatedAt, sale.UpdatedAt).Scan(&sale.ID)
	if err != nil {
		return domain.Sale{}, apperr.Classify("insert sale", err)
	}

	if r.afterHeader != nil {
		if err := r.afterHeader(ctx, tx, sale.ID); err != nil {
			return domain.Sale{}, err
		}
	}

	insertItem := tx.Rebind(`
		INSERT INTO sale_items (sale_id, product_id, quantity, unit_price, total_price, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	for i, item := range items {
		if _, err := tx.ExecContext(ctx, insertItem, sale.ID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice, now); err != nil {
			return domain.Sale{}, apperr.Classify(fmt.Sprintf("insert sale item %d", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Sale{}, apperr.Classify("commit sale", err)
	}
	return sale, nil
}

// Prepare checks in without touching storage and returns the sale header and
// line items that RecordSale would write. The header has no id or owner yet.
func Prepare(in SaleInput) (domain.Sale, []domain.SaleItem, error) {
	if len(in.Items) == 0 {
		return domain.Sale{}, nil, apperr.Validation("items", "at least one item is required")
	}
	if len(in.Items) > MaxItems {
		return domain.Sale{}, nil, apperr.Validationf("items", "at most %d items per sale", MaxItems)
	}
	if in.CustomerID <= 0 {
		return domain.Sale{}, nil, apperr.Validation("customerId", "is required")
	}
	if !in.PaymentMethod.Valid() {
		return domain.Sale{}, nil, apperr.Validationf("paymentMethod", "unknown payment method %q", in.PaymentMethod)
	}

	items := make([]domain.SaleItem, 0, len(in.Items))
	lineTotals := make([]int64, 0, len(in.Items))
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if it.ProductID <= 0 {
			return domain.Sale{}, nil, apperr.Validation(field+".productId", "is required")
		}
		if it.Quantity < 1 {
			return domain.Sale{}, nil, apperr.Validation(field+".quantity", "must be at least 1")
		}
		if it.UnitPrice < 0 {
			return domain.Sale{}, nil, apperr.Validation(field+".unitPrice", "must be zero or positive")
		}
		if it.UnitPrice > 0 && it.Quantity > money.MaxLineAmount/it.UnitPrice {
			return domain.Sale{}, nil, apperr.Validation(field, "line amount is too large")
		}
		lineTotal := money.Multiply(it.UnitPrice, it.Quantity)
		if it.TotalPrice != nil && *it.TotalPrice != lineTotal {
			return domain.Sale{}, nil, apperr.Validationf(field+".totalPrice", "expected %d, got %d", lineTotal, *it.TotalPrice)
		}
		lineTotals = append(lineTotals, lineTotal)
		items = append(items, domain.SaleItem{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: lineTotal,
		})
	}

	total := money.Sum(lineTotals...)
	if in.TotalAmount != nil && *in.TotalAmount != total {
		return domain.Sale{}, nil, apperr.Validation("totalAmount", "totalAmount mismatch")
	}

	installments := in.Installments
	if installments == 0 {
		installments = 1
	}
	if installments < 1 {
		return domain.Sale{}, nil, apperr.Validation("installments", "must be at least 1")
	}
	if installments > MaxInstallments {
		return domain.Sale{}, nil, apperr.Validationf("installments", "must be at most %d", MaxInstallments)
	}
	if in.PaymentMethod != domain.PaymentCard {
		installments = 1
	}

	sale := domain.Sale{
		CustomerID:    in.CustomerID,
		TotalAmount:   total,
		PaymentMethod: in.PaymentMethod,
		Installments:  installments,
		Status:        domain.StatusCompleted,
	}

	if in.PaymentMethod == domain.PaymentCash {
		if in.AmountReceived == nil {
			return domain.Sale{}, nil, apperr.Validation("amountReceived", "is required for cash payments")
		}
		received := *in.AmountReceived
		if received < total {
			return domain.Sale{}, nil, apperr.Validationf("amountReceived", "%s is less than the total %s", money.ToMajor(received), money.ToMajor(total))
		}
		change := received - total
		if in.Change != nil && *in.Change != change {
			return domain.Sale{}, nil, apperr.Validationf("change", "expected %d, got %d", change, *in.Change)
		}
		sale.AmountReceived = &received
		sale.Change = &change
	}

	return sale, items, nil
}

func checkOwnership(ctx context.Context, tx *sqlx.Tx, accountID, customerID int64, items []domain.SaleItem) error {
	var exists bool
	err := tx.GetContext(ctx, &exists, tx.Rebind(`SELECT EXISTS(SELECT 1 FROM customers WHERE id = ? AND user_id = ?)`), customerID, accountID)
	if err != nil {
		return apperr.Classify("check customer", err)
	}
	if !exists {
		return apperr.Validation("customerId", "customer not found")
	}

	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}
	query, args, err := sqlx.In(`SELECT id FROM products WHERE user_id = ? AND id IN (?)`, accountID, ids)
	if err != nil {
		return apperr.Classify("check products", err)
	}
	var owned []int64
	if err := tx.SelectContext(ctx, &owned, tx.Rebind(query), args...); err != nil {
		return apperr.Classify("check products", err)
	}
	known := make(map[int64]bool, len(owned))
	for _, id := range owned {
		known[id] = true
	}
	for i, it := range items {
		if !known[it.ProductID] {
			return apperr.Validation(fmt.Sprintf("items[%d].productId", i), "product not found")
		}
	}
	return nil
}
