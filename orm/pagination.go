package orm

// Pagination is a skip/take window applied after ordering.
// Zero values mean "no skip" and "no limit" respectively.
type Pagination struct {
	Skip int
	Take int
}

// Window returns the bounds [lo, hi) of the page within n ordered rows,
// so that rows[lo:hi] holds min(Take, max(0, n-Skip)) rows.
func (p Pagination) Window(n int) (lo, hi int) {
	lo = min(max(p.Skip, 0), n)
	hi = n
	if p.Take > 0 {
		hi = min(lo+p.Take, n)
	}
	return lo, hi
}
