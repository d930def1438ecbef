package products

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const productColumns = `id, barcode, name, brand, category, description, price, currency, image_url,
	ingredients, tags, hair_types, cruelty_free, vegan, sulfate_free, silicone_free, eco_packaging,
	rating, review_count, source, created_at, updated_at`

func (r *PGRepo) List(ctx context.Context, filter Filter) ([]Product, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		p := arg("%" + q + "%")
		where = append(where, fmt.Sprintf("(name ILIKE %s OR brand ILIKE %s)", p, p))
	}
	if filter.Category != "" {
		where = append(where, "category = "+arg(filter.Category))
	}
	if filter.Brand != "" {
		where = append(where, "lower(brand) = lower("+arg(filter.Brand)+")")
	}
	if filter.HairType != "" {
		where = append(where, "hair_types @> jsonb_build_array("+arg(strings.ToLower(filter.HairType))+"::text)")
	}
	if filter.Tag != "" {
		where = append(where, "tags @> jsonb_build_array("+arg(strings.ToLower(filter.Tag))+"::text)")
	}
	if filter.MinPrice > 0 {
		where = append(where, "price >= "+arg(filter.MinPrice))
	}
	if filter.MaxPrice > 0 {
		where = append(where, "price <= "+arg(filter.MaxPrice))
	}

	query := "SELECT " + productColumns + " FROM products"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	switch filter.Sort {
	case SortPrice:
		query += " ORDER BY price ASC, name ASC, id ASC"
	case SortRating:
		query += " ORDER BY rating DESC, name ASC, id ASC"
	default:
		query += " ORDER BY name ASC, id ASC"
	}
	query += " LIMIT " + arg(filter.Limit) + " OFFSET " + arg(filter.Offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Product, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	return scanOne(row)
}

func (r *PGRepo) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	row := r.DB.QueryRowContext(ctx, "SELECT "+productColumns+" FROM products WHERE barcode = $1 LIMIT 1", barcode)
	return scanOne(row)
}

func (r *PGRepo) Upsert(ctx context.Context, p Product) (Product, error) {
	const query = `
INSERT INTO products (
	id, barcode, name, brand, category, description, price, currency, image_url,
	ingredients, tags, hair_types, cruelty_free, vegan, sulfate_free, silicone_free, eco_packaging,
	rating, review_count, source, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, now(), now())
ON CONFLICT (id) DO UPDATE SET
	barcode = EXCLUDED.barcode,
	name = EXCLUDED.name,
	brand = EXCLUDED.brand,
	category = EXCLUDED.category,
	description = EXCLUDED.description,
	price = EXCLUDED.price,
	currency = EXCLUDED.currency,
	image_url = EXCLUDED.image_url,
	ingredients = EXCLUDED.ingredients,
	tags = EXCLUDED.tags,
	hair_types = EXCLUDED.hair_types,
	cruelty_free = EXCLUDED.cruelty_free,
	vegan = EXCLUDED.vegan,
	sulfate_free = EXCLUDED.sulfate_free,
	silicone_free = EXCLUDED.silicone_free,
	eco_packaging = EXCLUDED.eco_packaging,
	rating = EXCLUDED.rating,
	review_count = EXCLUDED.review_count,
	source = EXCLUDED.source,
	updated_at = now()
RETURNING created_at, updated_at`

	ingredients, err := marshalList(p.Ingredients)
	if err != nil {
		return Product{}, err
	}
	tags, err := marshalList(p.Tags)
	if err != nil {
		return Product{}, err
	}
	hairTypes, err := marshalList(p.HairTypes)
	if err != nil {
		return Product{}, err
	}

	err = r.DB.QueryRowContext(ctx, query,
		p.ID,
		nullableString(p.Barcode),
		p.Name,
		nullableString(p.Brand),
		p.Category,
		nullableString(p.Description),
		p.Price,
		p.Currency,
		nullableString(p.ImageURL),
		ingredients,
		tags,
		hairTypes,
		p.CrueltyFree,
		p.Vegan,
		p.SulfateFree,
		p.SiliconeFree,
		p.EcoPackaging,
		p.Rating,
		p.ReviewCount,
		p.Source,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Product{}, err
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOne(row scanner) (Product, error) {
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func scanProduct(row scanner) (Product, error) {
	var (
		p                            Product
		barcode, brand, desc, image  sql.NullString
		ingredients, tags, hairTypes []byte
	)
	if err := row.Scan(
		&p.ID,
		&barcode,
		&p.Name,
		&brand,
		&p.Category,
		&desc,
		&p.Price,
		&p.Currency,
		&image,
		&ingredients,
		&tags,
		&hairTypes,
		&p.CrueltyFree,
		&p.Vegan,
		&p.SulfateFree,
		&p.SiliconeFree,
		&p.EcoPackaging,
		&p.Rating,
		&p.ReviewCount,
		&p.Source,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return Product{}, err
	}
	p.Barcode = barcode.String
	p.Brand = brand.String
	p.Description = desc.String
	p.ImageURL = image.String
	var err error
	if p.Ingredients, err = unmarshalList(ingredients); err != nil {
		return Product{}, err
	}
	if p.Tags, err = unmarshalList(tags); err != nil {
		return Product{}, err
	}
	if p.HairTypes, err = unmarshalList(hairTypes); err != nil {
		return Product{}, err
	}
	return p, nil
}

func marshalList(values []string) ([]byte, error) {
	if values == nil {
		values = []string{}
	}
	return json.Marshal(values)
}

func unmarshalList(raw []byte) ([]string, error) {
	out := []string{}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode jsonb list: %w", err)
	}
	return out, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
