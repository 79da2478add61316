package api

import (
	"net/http"

	"pdv/m/domain"
)

type customerRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required"`
	CPF   string `json:"cpf" validate:"required,len=11,numeric"`
}

type customerPatchRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
	CPF   *string `json:"cpf" validate:"omitempty,len=11,numeric"`
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.catalog.ListCustomers(r.Context(), accountID(r))
	respondList(w, r, "list customers", customers, err)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	customer, err := h.catalog.CreateCustomer(r.Context(), accountID(r), domain.Customer{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		CPF:   req.CPF,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	var req customerPatchRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	customer, err := h.catalog.UpdateCustomer(r.Context(), accountID(r), id, domain.CustomerPatch{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
		CPF:   req.CPF,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.catalog.DeleteCustomer(r.Context(), accountID(r), id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Products

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"required,gte=0"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

type productPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Price       *int64  `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context(), accountID(r))
	respondList(w, r, "list products", products, err)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	product, err := h.catalog.CreateProduct(r.Context(), accountID(r), domain.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	var req productPatchRequest
	if err := h.decodeRequest(r, &req); err != nil {
		respondErr(w, r, err)
		return
	}
	product, err := h.catalog.UpdateProduct(r.Context(), accountID(r), id, domain.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondErr(w, r, err)
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), accountID(r), id); err != nil {
		respondErr(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}
