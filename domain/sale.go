package domain

import "time"

type PaymentMethod string

const (
	PaymentPix  PaymentMethod = "pix"
	PaymentCard PaymentMethod = "cartao"
	PaymentCash PaymentMethod = "dinheiro"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentPix, PaymentCard, PaymentCash:
		return true
	}
	return false
}

// Label is the human readable name printed on receipts.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentPix:
		return "PIX"
	case PaymentCard:
		return "Cartao de Credito"
	case PaymentCash:
		return "Dinheiro"
	}
	return "Desconhecido"
}

type SaleStatus string

// Only StatusCompleted is ever written; pending and cancelled are reserved.
const (
	StatusPending   SaleStatus = "pending"
	StatusCompleted SaleStatus = "completed"
	StatusCancelled SaleStatus = "cancelled"
)

type Sale struct {
	ID             int64         `db:"id" json:"id"`
	UserID         int64         `db:"user_id" json:"userId"`
	CustomerID     int64         `db:"customer_id" json:"customerId"`
	TotalAmount    int64         `db:"total_amount" json:"totalAmount"`
	PaymentMethod  PaymentMethod `db:"payment_method" json:"paymentMethod"`
	Installments   int           `db:"installments" json:"installments"`
	AmountReceived *int64        `db:"amount_received" json:"amountReceived"`
	Change         *int64        `db:"change_returned" json:"change"`
	Status         SaleStatus    `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updatedAt"`
}

type SaleItem struct {
	ID         int64     `db:"id" json:"id"`
	SaleID     int64     `db:"sale_id" json:"saleId"`
	ProductID  int64     `db:"product_id" json:"productId"`
	Quantity   int64     `db:"quantity" json:"quantity"`
	UnitPrice  int64     `db:"unit_price" json:"unitPrice"`
	TotalPrice int64     `db:"total_price" json:"totalPrice"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// SaleItemDetail is a line item with the current product name, empty when
// the product has been deleted since.
type SaleItemDetail struct {
	SaleItem
	ProductName string `db:"product_name" json:"productName"`
}

// SaleSummary is one row of the sales history list.
type SaleSummary struct {
	Sale
	CustomerSnapshot
}

type SaleDetail struct {
	Sale
	CustomerSnapshot
	Items []SaleItemDetail `json:"items"`
	// InstallmentValue is display only: TotalAmount split across
	// Installments, truncated to the centavo.
	InstallmentValue *int64 `json:"installmentValue,omitempty"`
}

// SalesSummary aggregates completed sales over a period.
type SalesSummary struct {
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	Revenue    int64     `db:"revenue" json:"revenue"`
	SalesCount int64     `db:"sales_count" json:"salesCount"`
}
