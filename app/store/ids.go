package store

import "time"

// idGen hands out strictly increasing ids. Ids look like unix milliseconds
// but never repeat, even if the clock stalls or goes back.
type idGen struct {
	last int64
}

// observe moves the generator past an existing id
func (g *idGen) observe(id int64) {
	if id > g.last {
		g.last = id
	}
}

func (g *idGen) next(now time.Time) int64 {
	id := now.UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
