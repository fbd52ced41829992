package apierr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/oapi-codegen/runtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/coop-inventory/internal/apperr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/http/apierr"
	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/pkg/validator"
)

func TestNew(t *testing.T) {
	t.Run("unknown errors are internal", func(t *testing.T) {
		res := apierr.New(errors.New("boom"))

		assert.Equal(t, apierr.InternalServerErr, res)
	})

	t.Run("insufficient stock carries its figures", func(t *testing.T) {
		err := fmt.Errorf("sale service record sale: %w", apperr.NewInsufficientStock(model.ID("7"), 3, 2))

		res := apierr.New(err)

		assert.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)
		assert.Equal(t, apperr.InsufficientStockErrorCode, res.Code)
		assert.Equal(t, "insufficient stock: required 3, available 2", res.Error)
		assert.Equal(t, map[string]any{"id": "7", "required": 3, "available": 2}, res.Meta)
	})

	t.Run("not found", func(t *testing.T) {
		res := apierr.New(apperr.NewProductNotFound(model.ID("42")))

		assert.Equal(t, http.StatusNotFound, res.StatusCode)
		assert.Equal(t, "42", res.Meta["id"])
	})

	t.Run("storage failures hide their cause", func(t *testing.T) {
		res := apierr.New(apperr.StorageErr.WrapParent(errors.New("connection refused")))

		assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
		assert.Equal(t, apperr.StorageErrorCode, res.Code)
		assert.NotContains(t, res.Error, "connection refused")
	})

	t.Run("field errors become details", func(t *testing.T) {
		v := validator.MustNewDefaultValidator()
		verr := v.Validate(struct {
			Quantity int `validate:"gt=0"`
		}{})
		require.Error(t, verr)

		res := apierr.New(apperr.ValidationErr.WrapParent(verr))

		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
		assert.Equal(t, []apierr.FieldError{{Field: "Quantity", Message: "must be greater than 0"}}, res.Details)
	})

	t.Run("parameter binding errors name the parameter", func(t *testing.T) {
		err := apperr.ValidationErr.WrapParent(&runtime.InvalidParamFormatError{ParamName: "asOf", Err: errors.New("bad value")})

		res := apierr.New(err)

		assert.Equal(t, []apierr.FieldError{{Field: "asOf", Message: "bad value"}}, res.Details)
	})
}
