package sales

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/money"
)

const summarySelect = `SELECT s.id, s.user_id, s.customer_id, s.total_amount, s.payment_method, s.installments,
		s.amount_received, s.change_returned, s.status, s.created_at, s.updated_at,
		c.name AS customer_name, c.email AS customer_email, c.phone AS customer_phone, c.cpf AS customer_cpf
	FROM sales s
	LEFT JOIN customers c ON c.id = s.customer_id AND c.user_id = s.user_id`

type History struct {
	db *sqlx.DB
}

func NewHistory(db *sqlx.DB) *History {
	return &History{db: db}
}

// ListSales returns the account's sales, newest first, with the customer
// fields left empty when the customer no longer exists.
func (h *History) ListSales(ctx context.Context, accountID int64) ([]domain.SaleSummary, error) {
	sales := []domain.SaleSummary{}
	query := h.db.Rebind(summarySelect + ` WHERE s.user_id = ? ORDER BY s.created_at DESC, s.id DESC`)
	if err := h.db.SelectContext(ctx, &sales, query, accountID); err != nil {
		return nil, apperr.Classify("list sales", err)
	}
	return sales, nil
}

// GetSaleDetail returns one sale with its items. A sale of another account
// is reported as not found.
func (h *History) GetSaleDetail(ctx context.Context, accountID, saleID int64) (domain.SaleDetail, error) {
	var header domain.SaleSummary
	err := h.db.GetContext(ctx, &header, h.db.Rebind(summarySelect+` WHERE s.id = ? AND s.user_id = ?`), saleID, accountID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.SaleDetail{}, apperr.NotFound("sale", saleID)
	}
	if err != nil {
		return domain.SaleDetail{}, apperr.Classify("get sale", err)
	}

	items := []domain.SaleItemDetail{}
	err = h.db.SelectContext(ctx, &items, h.db.Rebind(`
		SELECT si.id, si.sale_id, si.product_id, si.quantity, si.unit_price, si.total_price, si.created_at,
			COALESCE(p.name, '') AS product_name
		FROM sale_items si
		LEFT JOIN products p ON p.id = si.product_id AND p.user_id = ?
		WHERE si.sale_id = ?
		ORDER BY si.id`), accountID, saleID)
	if err != nil {
		return domain.SaleDetail{}, apperr.Classify("load sale items", err)
	}

	detail := domain.SaleDetail{Sale: header.Sale, CustomerSnapshot: header.CustomerSnapshot, Items: items}
	if detail.Installments > 1 {
		v := money.Split(detail.TotalAmount, detail.Installments)
		detail.InstallmentValue = &v
	}
	return detail, nil
}

// Summary totals the account's completed sales created in [from, to).
func (h *History) Summary(ctx context.Context, accountID int64, from, to time.Time) (domain.SalesSummary, error) {
	summary := domain.SalesSummary{From: from, To: to}
	err := h.db.QueryRowxContext(ctx, h.db.Rebind(`
		SELECT CAST(COALESCE(SUM(total_amount), 0) AS BIGINT) AS revenue, COUNT(*) AS sales_count
		FROM sales
		WHERE user_id = ? AND status = ? AND created_at >= ? AND created_at < ?`),
		accountID, string(domain.StatusCompleted), from.UTC(), to.UTC()).Scan(&summary.Revenue, &summary.SalesCount)
	if err != nil {
		return domain.SalesSummary{}, apperr.Classify("summarize sales", err)
	}
	return summary, nil
}

// DayRange is the [start of day, start of next day) window containing t in
// t's location.
func DayRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// MonthRange is the calendar month containing t, in t's location.
func MonthRange(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 1, 0)
}
