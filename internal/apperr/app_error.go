package apperr

import (
	"fmt"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/zerror"
)

const (
	ValidationErrorCode        = "VALIDATION_FAILED"
	ProductNotFoundErrorCode   = "PRODUCT_NOT_FOUND"
	InsufficientStockErrorCode = "INSUFFICIENT_STOCK"
	DuplicateRequestErrorCode  = "DUPLICATE_REQUEST"
	StockOutOfRangeErrorCode   = "STOCK_OUT_OF_RANGE"
	StorageErrorCode           = "STORAGE_FAILURE"
	InconsistentStateErrorCode = "INCONSISTENT_STATE"
)

var (
	ValidationErr        = zerror.NewValidationFailed(ValidationErrorCode, "validation error")
	ProductNotFoundErr   = zerror.NewNotFound(ProductNotFoundErrorCode, "product not found")
	InsufficientStockErr = zerror.NewUnprocessableEntity(InsufficientStockErrorCode, "insufficient stock")
	DuplicateRequestErr  = zerror.NewConflict(DuplicateRequestErrorCode, "a request with this idempotency key is already in progress")
	StockOutOfRangeErr   = zerror.NewUnprocessableEntity(StockOutOfRangeErrorCode, "stock out of range")
	StorageErr           = zerror.NewInternalServerError(StorageErrorCode, "storage failure")
	InconsistentStateErr = zerror.NewInternalServerError(InconsistentStateErrorCode, "operation partially applied and could not be rolled back")
)

// NewProductNotFound reports that no product exists with the given id.
func NewProductNotFound(id model.ID) zerror.ZError {
	return ProductNotFoundErr.WithMeta("id", id.String())
}

// NewInsufficientStock reports that a product has fewer units than required.
func NewInsufficientStock(id model.ID, required, available int) zerror.ZError {
	return InsufficientStockErr.
		WithMsg(fmt.Sprintf("insufficient stock: required %d, available %d", required, available)).
		WithMeta("id", id.String()).
		WithMeta("required", required).
		WithMeta("available", available)
}

// NewStockOutOfRange reports that adding quantity units would take the stock
// of the product outside [0, model.MaxStock].
func NewStockOutOfRange(id model.ID, quantity int) zerror.ZError {
	return StockOutOfRangeErr.
		WithMsg(fmt.Sprintf("adding %d units would exceed the maximum stock of %d", quantity, model.MaxStock)).
		WithMeta("id", id.String()).
		WithMeta("quantity", quantity).
		WithMeta("max", model.MaxStock)
}
