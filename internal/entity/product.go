package entity

import "time"

type Brand struct {
	ID        int       `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

type Category struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type Product struct {
	ID         int       `db:"id"`
	BrandID    int       `db:"brand_id"`
	CategoryID int       `db:"category_id"`
	Title      string    `db:"title"`
	CreatedAt  time.Time `db:"created_at"`
}

// Image src is either an absolute URL or a storage-relative key.
type Image struct {
	ID  int    `db:"id"`
	Src string `db:"src"`
}

// ProductImage orders a product's images; the lowest position is the cover.
type ProductImage struct {
	ProductID int `db:"product_id"`
	ImageID   int `db:"image_id"`
	Position  int `db:"position"`
}
