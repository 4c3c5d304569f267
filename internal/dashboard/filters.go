package dashboard

import (
	"net/url"
	"strconv"
	"time"

	"github.com/kramnica/marketplace-manager/internal/entity"
)

const defaultRangeDays = 30

// Filters are the resolved dashboard query parameters. Resolution never
// fails: anything unrecognized falls back to its default.
type Filters struct {
	RangeDays int
	TableMode entity.TableMode
	ConvSort  entity.ConversionSort
	ConvDir   entity.SortDirection
	ConvPage  int
}

// Window is the half-open [From, To) time span the aggregations read.
type Window struct {
	From time.Time
	To   time.Time
}

// ResolveFilters maps raw query params onto Filters, silently defaulting
// every invalid or absent value.
func ResolveFilters(q url.Values) Filters {
	f := Filters{
		RangeDays: defaultRangeDays,
		TableMode: entity.TableModeTop,
		ConvSort:  entity.ConversionSortViewToOrder,
		ConvDir:   entity.SortDirectionDesc,
		ConvPage:  1,
	}

	switch q.Get("range") {
	case "7":
		f.RangeDays = 7
	case "30":
		f.RangeDays = 30
	case "90":
		f.RangeDays = 90
	}

	if entity.TableMode(q.Get("table")) == entity.TableModeGap {
		f.TableMode = entity.TableModeGap
	}

	switch entity.ConversionSort(q.Get("conv_sort")) {
	case entity.ConversionSortViewToCart:
		f.ConvSort = entity.ConversionSortViewToCart
	case entity.ConversionSortCartToOrder:
		f.ConvSort = entity.ConversionSortCartToOrder
	}

	if entity.SortDirection(q.Get("conv_dir")) == entity.SortDirectionAsc {
		f.ConvDir = entity.SortDirectionAsc
	}

	if page, err := strconv.Atoi(q.Get("conv_page")); err == nil && page >= 1 {
		f.ConvPage = page
	}

	return f
}

// Window resolves the filter range against now: from the start of the day
// range−1 days back up to, exclusively, the start of tomorrow. Today is
// always the last day of the window.
func (f Filters) Window(now time.Time) Window {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return Window{
		From: today.AddDate(0, 0, -(f.RangeDays - 1)),
		To:   today.AddDate(0, 0, 1),
	}
}

// Dates is the dense calendar backbone of the window: one YYYY-MM-DD string
// per day, ascending, ending today.
func (f Filters) Dates(now time.Time) []string {
	w := f.Window(now)
	dates := make([]string, 0, f.RangeDays)
	for d := w.From; d.Before(w.To); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates
}
