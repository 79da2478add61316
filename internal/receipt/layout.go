// Package receipt turns a stored sale into a one page PDF receipt. Layout is
// pure data so it can be checked without parsing PDF output.
package receipt

import (
	"fmt"
	"strconv"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/money"
)

const (
	maxNameRunes = 30
	ellipsis     = "..."
)

type Row struct {
	Product   string
	Quantity  string
	UnitPrice string
	Total     string
}

// SummaryLine is a financial summary entry; Value, when set, is printed
// right aligned.
type SummaryLine struct {
	Text  string
	Value string
}

type Document struct {
	Title    string
	SaleLine string
	DateLine string
	Customer []string
	Columns  [4]string
	Rows     []Row
	Summary  []SummaryLine
	Footer   string
}

// FileName is the name a receipt for saleID is saved under.
func FileName(saleID int64) string {
	return fmt.Sprintf("venda-%d.pdf", saleID)
}

// Layout computes the receipt content for sale.
func Layout(sale domain.SaleDetail) (Document, error) {
	if err := validate(sale); err != nil {
		return Document{}, err
	}

	doc := Document{
		Title:    "COMPROVANTE DE VENDA",
		SaleLine: fmt.Sprintf("Venda #%d", sale.ID),
		DateLine: "Data: " + sale.CreatedAt.Format("02/01/2006"),
		Customer: []string{
			"Nome: " + orDefault(sale.CustomerSnapshot.Name, "Cliente"),
			"CPF: " + orDefault(sale.CustomerSnapshot.CPF, ""),
			"Email: " + orDefault(sale.CustomerSnapshot.Email, ""),
			"Telefone: " + orDefault(sale.CustomerSnapshot.Phone, ""),
		},
		Columns: [4]string{"Produto", "Qtd", "Valor Unit.", "Total"},
		Footer:  "Obrigado pela compra! Volte sempre.",
	}

	for _, it := range sale.Items {
		name := it.ProductName
		if name == "" {
			name = fmt.Sprintf("Produto #%d", it.ProductID)
		}
		doc.Rows = append(doc.Rows, Row{
			Product:   Truncate(name),
			Quantity:  strconv.FormatInt(it.Quantity, 10),
			UnitPrice: money.Format(it.UnitPrice),
			Total:     money.Format(it.TotalPrice),
		})
	}

	doc.Summary = append(doc.Summary,
		SummaryLine{Text: "Total da Venda:", Value: money.Format(sale.TotalAmount)},
		SummaryLine{Text: "Forma de Pagamento: " + sale.PaymentMethod.Label()},
	)
	if sale.Installments > 1 {
		doc.Summary = append(doc.Summary, SummaryLine{
			Text: fmt.Sprintf("Parcelas: %dx de %s", sale.Installments, money.Format(money.Split(sale.TotalAmount, sale.Installments))),
		})
	}
	if sale.PaymentMethod == domain.PaymentCash {
		doc.Summary = append(doc.Summary,
			SummaryLine{Text: "Valor Recebido: " + money.Format(*sale.AmountReceived)},
			SummaryLine{Text: "Troco: " + money.Format(*sale.Change)},
		)
	}
	return doc, nil
}

// Truncate shortens product names longer than the table column allows.
func Truncate(name string) string {
	runes := []rune(name)
	if len(runes) <= maxNameRunes {
		return name
	}
	return string(runes[:maxNameRunes-len(ellipsis)]) + ellipsis
}

func validate(sale domain.SaleDetail) error {
	switch {
	case sale.ID <= 0:
		return apperr.Validation("id", "is required")
	case sale.CreatedAt.IsZero():
		return apperr.Validation("createdAt", "is required")
	case !sale.PaymentMethod.Valid():
		return apperr.Validationf("paymentMethod", "unknown payment method %q", sale.PaymentMethod)
	case sale.Installments < 1:
		return apperr.Validation("installments", "must be at least 1")
	case len(sale.Items) == 0:
		return apperr.Validation("items", "a receipt needs at least one item")
	case sale.PaymentMethod == domain.PaymentCash && (sale.AmountReceived == nil || sale.Change == nil):
		return apperr.Validation("amountReceived", "cash sales need the amount received and change")
	}
	return nil
}

func orDefault(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
