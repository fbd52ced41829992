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

type saleRepository struct {
	view view
}

func (r *saleRepository) AppendSale(_ context.Context, params repository.AppendSaleParams) (model.Sale, error) {
	var sale model.Sale
	r.view.write(func(st *state) {
		st.saleID++
		sale = model.Sale{
			ID:        model.ID(strconv.FormatUint(st.saleID, 10)),
			ProductID: params.ProductID,
			Quantity:  params.Quantity,
			SaleDate:  params.SaleDate,
			CreatedAt: time.Now(),
		}
		st.sales = append(st.sales, saleRecord{sale: sale, seq: st.saleID})
	})

	return sale, nil
}

func (r *saleRepository) ListAllSales(context.Context) ([]model.Sale, error) {
	var records []saleRecord
	r.view.read(func(st *state) {
		records = slices.Clone(st.sales)
	})

	// ISO dates compare correctly as strings
	slices.SortFunc(records, func(a, b saleRecord) int {
		if c := cmp.Compare(b.sale.SaleDate, a.sale.SaleDate); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	sales := make([]model.Sale, 0, len(records))
	for _, rec := range records {
		sales = append(sales, rec.sale)
	}

	return sales, nil
}
