package http

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/service"
)

type productRequest struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
	ImageURL string          `json:"imageUrl"`
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}

type productHandler struct {
	productSvc service.ProductService
}

func newProductHandler(productSvc service.ProductService) *productHandler {
	return &productHandler{
		productSvc: productSvc,
	}
}

func (h *productHandler) ListProducts(w http.ResponseWriter, r *http.Request) error {
	products, err := h.productSvc.ListProducts(r.Context())
	if err != nil {
		return fmt.Errorf("product service list products: %w", err)
	}
	if products == nil {
		products = []model.Product{}
	}

	return writeData(w, products)
}

func (h *productHandler) CreateProduct(w http.ResponseWriter, r *http.Request) error {
	var body productRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	product, err := h.productSvc.CreateProduct(r.Context(), service.CreateProductParams{
		Name:     body.Name,
		Category: body.Category,
		Price:    body.Price,
		Stock:    body.Stock,
		ImageURL: body.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("product service create product: %w", err)
	}

	return writeMessage(w, http.StatusCreated, product)
}

func (h *productHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var body productRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	product, err := h.productSvc.UpdateProduct(r.Context(), id, service.UpdateProductParams{
		Name:     body.Name,
		Category: body.Category,
		Price:    body.Price,
		Stock:    body.Stock,
		ImageURL: body.ImageURL,
	})
	if err != nil {
		return fmt.Errorf("product service update product: %w", err)
	}

	return writeMessage(w, http.StatusOK, product)
}

func (h *productHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	if err := h.productSvc.DeleteProduct(r.Context(), id); err != nil {
		return fmt.Errorf("product service delete product: %w", err)
	}

	return writeJSON(w, http.StatusOK, messageResponse{Message: "deleted"})
}

func (h *productHandler) AddStock(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}

	var body stockRequest
	if err := decodeBody(r, &body); err != nil {
		return err
	}

	product, err := h.productSvc.AddStock(r.Context(), id, body.Quantity)
	if err != nil {
		return fmt.Errorf("product service add stock: %w", err)
	}

	return writeMessage(w, http.StatusOK, product)
}
