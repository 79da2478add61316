package api

import (
	"fmt"
	"net/http"

	"pdv/m/domain"
	"pdv/m/internal/apperr"
	"pdv/m/internal/cart"
	"pdv/m/internal/money"
	"pdv/m/internal/receipt"
	"pdv/m/internal/sales"
)

type saleItemRequest struct {
	ProductID  int64  `json:"productId" validate:"required,gt=0"`
	Quantity   int64  `json:"quantity" validate:"gte=1"`
	UnitPrice  int64  `json:"unitPrice" validate:"gte=0"`
	TotalPrice *int64 `json:"totalPrice"`
}

type saleRequest struct {
	CustomerID     int64             `json:"customerId" validate:"required,gt=0"`
	TotalAmount    *int64            `json:"totalAmount"`
	PaymentMethod  string            `json:"paymentMethod" validate:"required,oneof=pix cartao dinheiro"`
	Installments   int               `json:"installments" validate:"gte=0,lte=10"`
	AmountReceived *int64            `json:"amountReceived"`
	Change         *int64            `json:"change"`
	Items          []saleItemRequest `json:"items" validate:"required,min=1,max=1000,dive"`
}

type createSaleResponse struct {
	SaleID int64 `json:"saleId"`
	domain.Sale
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	in := sales.SaleInput{
		CustomerID:     req.CustomerID,
		TotalAmount:    req.TotalAmount,
		PaymentMethod:  domain.PaymentMethod(req.PaymentMethod),
		Installments:   req.Installments,
		AmountReceived: req.AmountReceived,
		Change:         req.Change,
		Items:          make([]sales.ItemInput, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, sales.ItemInput{
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		})
	}

	sale, err := h.recorder.RecordSale(r.Context(), accountID(r), in)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, createSaleResponse{SaleID: sale.ID, Sale: sale})
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	list, err := h.history.ListSales(r.Context(), accountID(r))
	respondList(w, r, "list sales", list, err)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	detail, err := h.history.GetSaleDetail(r.Context(), accountID(r), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, detail)
}

func (h *Handler) saleReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	detail, err := h.history.GetSaleDetail(r.Context(), accountID(r), id)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	pdf, err := receipt.Render(detail)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, receipt.FileName(id)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

// Checkout preview

type quoteItemRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
	Quantity  int64 `json:"quantity" validate:"gte=1"`
}

type quoteRequest struct {
	Items          []quoteItemRequest `json:"items" validate:"required,min=1,max=1000,dive"`
	PaymentMethod  string             `json:"paymentMethod" validate:"omitempty,oneof=pix cartao dinheiro"`
	Installments   int                `json:"installments" validate:"gte=0,lte=10"`
	AmountReceived *int64             `json:"amountReceived" validate:"omitempty,gte=0"`
}

type quoteLine struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int64  `json:"quantity"`
	Total     int64  `json:"total"`
}

type quoteResponse struct {
	Lines            []quoteLine `json:"lines"`
	Total            int64       `json:"total"`
	Installments     int         `json:"installments"`
	InstallmentValue *int64      `json:"installmentValue,omitempty"`
	Change           *int64      `json:"change,omitempty"`
}

// quoteSale prices a basket at current catalog prices without recording
// anything. Repeated products are merged into one line.
func (h *Handler) quoteSale(w http.ResponseWriter, r *http.Request) {
	var req quoteRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}

	ids := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := h.catalog.ProductsByIDs(r.Context(), accountID(r), ids)
	if err != nil {
		respondErr(w, r, err)
		return
	}

	c := cart.New()
	quantities := make(map[int64]int64, len(req.Items))
	for i, it := range req.Items {
		p, ok := products[it.ProductID]
		if !ok {
			respondErr(w, r, apperr.Validation(fmt.Sprintf("items[%d].productId", i), "product not found"))
			return
		}
		if _, seen := quantities[p.ID]; !seen {
			c.AddItem(p)
		}
		quantities[p.ID] += it.Quantity
		if p.Price > 0 && quantities[p.ID] > money.MaxLineAmount/p.Price {
			respondErr(w, r, apperr.Validation(fmt.Sprintf("items[%d]", i), "line amount is too large"))
			return
		}
		c.SetQuantity(p.ID, quantities[p.ID])
	}

	resp := quoteResponse{Total: c.Total(), Installments: 1}
	for _, l := range c.Lines() {
		resp.Lines = append(resp.Lines, quoteLine{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
			Total:     l.Total(),
		})
	}

	method := domain.PaymentMethod(req.PaymentMethod)
	if method == domain.PaymentCard && req.Installments > 1 {
		resp.Installments = req.Installments
		split := money.Split(resp.Total, req.Installments)
		resp.InstallmentValue = &split
	}
	if method == domain.PaymentCash && req.AmountReceived != nil {
		if *req.AmountReceived < resp.Total {
			respondErr(w, r, apperr.Validationf("amountReceived", "%s is less than the total %s",
				money.ToMajor(*req.AmountReceived), money.ToMajor(resp.Total)))
			return
		}
		change := *req.AmountReceived - resp.Total
		resp.Change = &change
	}
	respondJSON(w, http.StatusOK, resp)
}
