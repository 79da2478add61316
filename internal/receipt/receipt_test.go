package receipt

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
)

func ptr[T any](v T) *T { return &v }

func cashSale() domain.SaleDetail {
	return domain.SaleDetail{
		Sale: domain.Sale{
			ID:             42,
			CustomerID:     1,
			TotalAmount:    2200,
			PaymentMethod:  domain.PaymentCash,
			Installments:   1,
			AmountReceived: ptr(int64(2500)),
			Change:         ptr(int64(300)),
			Status:         domain.StatusCompleted,
			CreatedAt:      time.Date(2026, 10, 19, 14, 5, 0, 0, time.UTC),
		},
		CustomerSnapshot: domain.CustomerSnapshot{
			Name:  ptr("Joana Conceição"),
			Email: ptr("joana@example.com"),
			Phone: ptr("11999990000"),
			CPF:   ptr("12345678901"),
		},
		Items: []domain.SaleItemDetail{
			{SaleItem: domain.SaleItem{ProductID: 1, Quantity: 2, UnitPrice: 500, TotalPrice: 1000}, ProductName: "Coffee"},
			{SaleItem: domain.SaleItem{ProductID: 2, Quantity: 1, UnitPrice: 1200, TotalPrice: 1200}, ProductName: "Cake"},
		},
	}
}

func summaryTexts(doc Document) []string {
	var out []string
	for _, l := range doc.Summary {
		out = append(out, l.Text)
	}
	return out
}

func TestLayoutCashSale(t *testing.T) {
	doc, err := Layout(cashSale())
	require.NoError(t, err)

	assert.Equal(t, "COMPROVANTE DE VENDA", doc.Title)
	assert.Equal(t, "Venda #42", doc.SaleLine)
	assert.Equal(t, "Data: 19/10/2026", doc.DateLine)
	assert.Equal(t, []string{
		"Nome: Joana Conceição",
		"CPF: 12345678901",
		"Email: joana@example.com",
		"Telefone: 11999990000",
	}, doc.Customer)
	assert.Equal(t, []Row{
		{Product: "Coffee", Quantity: "2", UnitPrice: "R$ 5.00", Total: "R$ 10.00"},
		{Product: "Cake", Quantity: "1", UnitPrice: "R$ 12.00", Total: "R$ 12.00"},
	}, doc.Rows)
	assert.Equal(t, SummaryLine{Text: "Total da Venda:", Value: "R$ 22.00"}, doc.Summary[0])
	assert.Equal(t, []string{
		"Total da Venda:",
		"Forma de Pagamento: Dinheiro",
		"Valor Recebido: R$ 25.00",
		"Troco: R$ 3.00",
	}, summaryTexts(doc))
	assert.Equal(t, "Obrigado pela compra! Volte sempre.", doc.Footer)
}

func TestLayoutCardInstallments(t *testing.T) {
	sale := cashSale()
	sale.PaymentMethod = domain.PaymentCard
	sale.Installments = 3
	sale.AmountReceived, sale.Change = nil, nil

	doc, err := Layout(sale)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"Total da Venda:",
		"Forma de Pagamento: Cartao de Credito",
		"Parcelas: 3x de R$ 7.33",
	}, summaryTexts(doc))
}

func TestLayoutPixSingleInstallment(t *testing.T) {
	sale := cashSale()
	sale.PaymentMethod = domain.PaymentPix
	sale.AmountReceived, sale.Change = nil, nil

	doc, err := Layout(sale)
	require.NoError(t, err)
	assert.Equal(t, []string{"Total da Venda:", "Forma de Pagamento: PIX"}, summaryTexts(doc))
}

func TestLayoutMissingCustomerAndProduct(t *testing.T) {
	sale := cashSale()
	sale.CustomerSnapshot = domain.CustomerSnapshot{}
	sale.Items[1].ProductName = ""

	doc, err := Layout(sale)
	require.NoError(t, err)
	assert.Equal(t, "Nome: Cliente", doc.Customer[0])
	assert.Equal(t, "CPF: ", doc.Customer[1])
	assert.Equal(t, "Produto #2", doc.Rows[1].Product)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Coffee", Truncate("Coffee"))
	exact := strings.Repeat("a", 30)
	assert.Equal(t, exact, Truncate(exact))
	long := "Bolo de chocolate com cobertura de brigadeiro"
	got := Truncate(long)
	assert.Equal(t, "Bolo de chocolate com cober...", got)
	assert.Len(t, []rune(got), 30)
	assert.Equal(t, strings.Repeat("ç", 27)+"...", Truncate(strings.Repeat("ç", 31)))
}

func TestLayoutValidation(t *testing.T) {
	cases := map[string]func(*domain.SaleDetail){
		"id":             func(s *domain.SaleDetail) { s.ID = 0 },
		"createdAt":      func(s *domain.SaleDetail) { s.CreatedAt = time.Time{} },
		"paymentMethod":  func(s *domain.SaleDetail) { s.PaymentMethod = "cheque" },
		"installments":   func(s *domain.SaleDetail) { s.Installments = 0 },
		"items":          func(s *domain.SaleDetail) { s.Items = nil },
		"amountReceived": func(s *domain.SaleDetail) { s.Change = nil },
	}
	for field, mutate := range cases {
		sale := cashSale()
		mutate(&sale)
		_, err := Layout(sale)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr, field)
		assert.Equal(t, field, verr.Field)

		_, err = Render(sale)
		assert.True(t, apperr.IsValidation(err))
	}
}

func TestRender(t *testing.T) {
	out, err := Render(cashSale())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.True(t, bytes.Contains(out, []byte("%%EOF")))
}

func TestRenderIsDeterministic(t *testing.T) {
	first, err := Render(cashSale())
	require.NoError(t, err)
	second, err := Render(cashSale())
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "venda-42.pdf", FileName(42))
}
