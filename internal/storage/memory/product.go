package memory

import (
	"cmp"
	"context"
	"slices"
	"strconv"
	"time"

	"github.com/tuanvumaihuynh/coop-inventory/internal/model"
	"github.com/tuanvumaihuynh/coop-inventory/internal/repository"
)

type productRepository struct {
	view view
}

func (r *productRepository) CreateProduct(_ context.Context, params repository.CreateProductParams) (model.Product, error) {
	var product model.Product
	r.view.write(func(st *state) {
		st.productID++
		id := model.ID(strconv.FormatUint(st.productID, 10))

		imageURL := params.ImageURL
		if imageURL == "" {
			imageURL = model.PlaceholderImageURL(id)
		}

		now := time.Now()
		product = model.Product{
			ID:        id,
			Name:      params.Name,
			Category:  params.Category,
			Price:     params.Price,
			Stock:     params.Stock,
			ImageURL:  imageURL,
			CreatedAt: now,
			UpdatedAt: now,
		}
		st.products[id] = productRecord{product: product, seq: st.productID}
	})

	return product, nil
}

func (r *productRepository) ListAllProducts(context.Context) ([]model.Product, error) {
	var records []productRecord
	r.view.read(func(st *state) {
		records = make([]productRecord, 0, len(st.products))
		for _, rec := range st.products {
			records = append(records, rec)
		}
	})

	slices.SortFunc(records, func(a, b productRecord) int {
		return cmp.Compare(b.seq, a.seq)
	})

	products := make([]model.Product, 0, len(records))
	for _, rec := range records {
		products = append(products, rec.product)
	}

	return products, nil
}

func (r *productRepository) GetProduct(_ context.Context, id model.ID) (model.Product, error) {
	var (
		rec productRecord
		ok  bool
	)
	r.view.read(func(st *state) {
		rec, ok = st.products[id]
	})
	if !ok {
		return model.Product{}, repository.ErrNotFound
	}

	return rec.product, nil
}

// GetProductForUpdate is GetProduct: a transaction already owns the whole store.
func (r *productRepository) GetProductForUpdate(ctx context.Context, id model.ID) (model.Product, error) {
	return r.GetProduct(ctx, id)
}

func (r *productRepository) UpdateProduct(_ context.Context, id model.ID, params repository.UpdateProductParams) (model.Product, error) {
	var (
		product model.Product
		found   bool
	)
	r.view.write(func(st *state) {
		rec, ok := st.products[id]
		if !ok {
			return
		}
		found = true

		imageURL := params.ImageURL
		if imageURL == "" {
			imageURL = model.PlaceholderImageURL(id)
		}

		rec.product.Name = params.Name
		rec.product.Category = params.Category
		rec.product.Price = params.Price
		rec.product.Stock = params.Stock
		rec.product.ImageURL = imageURL
		rec.product.UpdatedAt = time.Now()
		st.products[id] = rec
		product = rec.product
	})
	if !found {
		return model.Product{}, repository.ErrNotFound
	}

	return product, nil
}

func (r *productRepository) DeleteProduct(_ context.Context, id model.ID) error {
	var found bool
	r.view.write(func(st *state) {
		if _, found = st.products[id]; found {
			delete(st.products, id)
		}
	})
	if !found {
		return repository.ErrNotFound
	}

	return nil
}

func (r *productRepository) AdjustStock(_ context.Context, id model.ID, delta int) (model.Product, error) {
	var (
		product model.Product
		err     error
	)
	r.view.write(func(st *state) {
		rec, ok := st.products[id]
		if !ok {
			err = repository.ErrNotFound
			return
		}
		if delta > model.MaxStock || delta < model.MinStock {
			err = repository.ErrStockOutOfRange
			return
		}
		stock := rec.product.Stock + delta
		if stock < 0 {
			err = repository.ErrNegativeStock
			return
		}
		if stock > model.MaxStock {
			err = repository.ErrStockOutOfRange
			return
		}

		rec.product.Stock = stock
		rec.product.UpdatedAt = time.Now()
		st.products[id] = rec
		product = rec.product
	})
	if err != nil {
		return model.Product{}, err
	}

	return product, nil
}
