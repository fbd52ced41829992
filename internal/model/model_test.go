package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
)

func TestIDUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    model.ID
		wantErr bool
	}{
		{name: "number", in: `{"id": 12}`, want: "12"},
		{name: "string", in: `{"id": "66f1c2"}`, want: "66f1c2"},
		{name: "null", in: `{"id": null}`, want: ""},
		{name: "object", in: `{"id": {}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v struct {
				ID model.ID `json:"id"`
			}
			err := json.Unmarshal([]byte(tt.in), &v)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.ID)
		})
	}
}

func TestProductJSON(t *testing.T) {
	p := model.Product{
		ID:       "1",
		Name:     "PE T-Shirt",
		Category: "PE Uniform",
		Price:    decimal.RequireFromString("350.50"),
		Stock:    150,
		ImageURL: model.PlaceholderImageURL("1"),
	}

	b, err := json.Marshal(p)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "1",
		"name": "PE T-Shirt",
		"category": "PE Uniform",
		"price": 350.5,
		"stock": 150,
		"imageUrl": "https://picsum.photos/seed/1/200"
	}`, string(b))
}

func TestDate(t *testing.T) {
	d, err := model.ParseDate("2024-06-02")
	require.NoError(t, err)

	wd, err := d.Weekday()
	require.NoError(t, err)
	assert.Equal(t, time.Sunday, wd)

	prev, err := d.AddDays(-3)
	require.NoError(t, err)
	assert.Equal(t, model.Date("2024-05-30"), prev)

	_, err = model.ParseDate("2024-13-01")
	assert.Error(t, err)

	assert.Equal(t, model.Date("2024-01-05"), model.DateOf(time.Date(2024, 1, 5, 23, 59, 0, 0, time.UTC)))
}

func TestProductIsLowStock(t *testing.T) {
	assert.True(t, model.Product{Stock: 9}.IsLowStock())
	assert.False(t, model.Product{Stock: 10}.IsLowStock())
}
