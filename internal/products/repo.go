package products

import "context"

// Repo persists catalog products.
type Repo interface {
	List(ctx context.Context, filter Filter) ([]Product, error)
	GetByID(ctx context.Context, id string) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	Upsert(ctx context.Context, product Product) (Product, error)
}
