package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/coop-inventory/internal/http/middleware"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/service"
)

type saleRequest struct {
	ProductID model.ID   `json:"productId"`
	Quantity  int        `json:"quantity"`
	SaleDate  model.Date `json:"saleDate"`
}

type saleHandler struct {
	saleSvc service.SaleService
}

func newSaleHandler(saleSvc service.SaleService) *saleHandler {
	return &saleHandler{
		saleSvc: saleSvc,
	}
}

func (h *saleHandler) ListSales(w http.ResponseWriter, r *http.Request) error {
	sales, err := h.saleSvc.ListSales(r.Context())
	if err != nil {
		return fmt.Errorf("sale service list sales: %w", err)
	}
	if sales == nil {
		sales = []model.Sale{}
	}

	return writeData(w, sales)
}

func (h *saleHandler) RecordSale(w http.ResponseWriter, r *http.Request) error {
	var body saleRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	sale, err := h.saleSvc.RecordSale(r.Context(), service.RecordSaleParams{
		ProductID:      body.ProductID,
		Quantity:       body.Quantity,
		SaleDate:       body.SaleDate,
		IdempotencyKey: r.Header.Get(middleware.IdempotencyKeyHeader),
	})
	if err != nil {
		return fmt.Errorf("sale service record sale: %w", err)
	}

	return writeMessage(w, http.StatusCreated, sale)
}
