package store

import (
	"testing"

	"github.com/kramnica/marketplace-manager/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthScore(t *testing.T) {
	assert.Nil(t, healthScore(0, 0), "no active orders means no signal")
	assert.Nil(t, healthScore(0, 5))

	h := healthScore(10, 3)
	require.NotNil(t, h)
	assert.InDelta(t, 70.0, *h, 1e-9)

	h = healthScore(10, 0)
	require.NotNil(t, h)
	assert.Equal(t, 100.0, *h)

	// Overdue unpaid orders can be counted in several buckets, so the raw
	// score can go negative. It must clamp to zero.
	h = healthScore(3, 7)
	require.NotNil(t, h)
	assert.Equal(t, 0.0, *h)
}

func TestClampPage(t *testing.T) {
	type tc struct {
		name                           string
		page, perPage, total           int
		wantPage, wantLast, wantOffset int
	}
	for _, c := range []tc{
		{"first page", 1, 20, 45, 1, 3, 0},
		{"middle page", 2, 20, 45, 2, 3, 20},
		{"exact multiple", 3, 20, 60, 3, 3, 40},
		{"past the end clamps to last", 9, 20, 45, 3, 3, 40},
		{"zero page clamps to first", 0, 20, 45, 1, 3, 0},
		{"negative page clamps to first", -4, 20, 45, 1, 3, 0},
		{"empty result still has one page", 1, 20, 0, 1, 1, 0},
		{"past the end of empty result", 5, 20, 0, 1, 1, 0},
	} {
		t.Run(c.name, func(t *testing.T) {
			page, last, offset := clampPage(c.page, c.perPage, c.total)
			assert.Equal(t, c.wantPage, page)
			assert.Equal(t, c.wantLast, last)
			assert.Equal(t, c.wantOffset, offset)
		})
	}
}

func TestConversionSortColumn(t *testing.T) {
	assert.Equal(t, "view_to_cart", conversionSortColumn(entity.ConversionSortViewToCart))
	assert.Equal(t, "view_to_order", conversionSortColumn(entity.ConversionSortViewToOrder))
	assert.Equal(t, "cart_to_order", conversionSortColumn(entity.ConversionSortCartToOrder))
	// Unknown values never reach the SQL string.
	assert.Equal(t, "view_to_order", conversionSortColumn(entity.ConversionSort("revenue; DROP TABLE product")))
}

func TestSortDirectionSQL(t *testing.T) {
	assert.Equal(t, "ASC", sortDirectionSQL(entity.SortDirectionAsc))
	assert.Equal(t, "DESC", sortDirectionSQL(entity.SortDirectionDesc))
	assert.Equal(t, "DESC", sortDirectionSQL(entity.SortDirection("sideways")))
}
