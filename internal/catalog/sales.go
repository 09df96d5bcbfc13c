package catalog

import "time"

// SalesFilter bounds a sales total by calendar day. Both bounds are optional;
// Start is inclusive and End covers its whole day.
type SalesFilter struct {
	Start *time.Time
	End   *time.Time
}

const totalSalesSQL = `
	SELECT COALESCE(SUM(total_amount), 0)
	  FROM orders
	 WHERE ($1::timestamp IS NULL OR order_date >= $1)
	   AND ($2::timestamp IS NULL OR order_date < $2)`

// Bounds returns the half-open [from, to) range for the query. A nil bound
// leaves that side open.
func (f SalesFilter) Bounds() (from, to *time.Time) {
	if f.Start != nil {
		d := startOfDay(*f.Start)
		from = &d
	}
	if f.End != nil {
		d := startOfDay(*f.End).AddDate(0, 0, 1)
		to = &d
	}
	return from, to
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
