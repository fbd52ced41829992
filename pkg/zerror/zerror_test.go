package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/coop-inventory/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	t.Run("Should match by code through wrapping", func(t *testing.T) {
		err := fmt.Errorf("get product: %w", notFound.WithMeta("id", "42"))

		assert.ErrorIs(t, err, notFound)
		assert.NotErrorIs(t, err, zerror.NewNotFound("SALE_NOT_FOUND", "sale not found"))
	})

	t.Run("Should expose parent to errors.As", func(t *testing.T) {
		parent := errors.New("connection reset")
		err := notFound.WrapParent(parent)

		assert.ErrorIs(t, err, parent)
		assert.Contains(t, err.Error(), "connection reset")

		var zErr zerror.ZError
		require.ErrorAs(t, fmt.Errorf("outer: %w", err), &zErr)
		assert.Equal(t, zerror.StatusNotFound, zErr.Status())
		assert.Equal(t, "PRODUCT_NOT_FOUND", zErr.Code())
	})

	t.Run("Should not mutate the predefined error when adding meta", func(t *testing.T) {
		withMeta := notFound.WithMeta("id", "1")
		withMoreMeta := withMeta.WithMeta("other", 2)

		assert.Nil(t, notFound.Meta())
		assert.Equal(t, map[string]any{"id": "1"}, withMeta.Meta())
		assert.Equal(t, map[string]any{"id": "1", "other": 2}, withMoreMeta.Meta())
	})

	t.Run("Should ignore nil parent", func(t *testing.T) {
		assert.Nil(t, notFound.WrapParent(nil).Parent())
	})
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", zerror.StatusNotFound.String())
	assert.Equal(t, "UNKNOWN", zerror.Status(200).String())
}
