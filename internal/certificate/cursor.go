package certificate

// Mark records the position a block was placed at
type Mark struct {
	Block string  `json:"block"`
	Y     float64 `json:"y"`
}

// Cursor is the vertical drawing position. It only ever moves down.
type Cursor struct {
	y     float64
	trace []Mark
}

func NewCursor(start float64) *Cursor {
	return &Cursor{y: start}
}

func (c *Cursor) Y() float64 {
	return c.y
}

// Advance moves the cursor down by d. Negative distances are ignored.
func (c *Cursor) Advance(d float64) {
	if d > 0 {
		c.y -= d
	}
}

// Fits reports whether a block of height h can be placed above floor.
func (c *Cursor) Fits(h, floor float64) bool {
	return c.y-h >= floor
}

// Place records block at the current position and returns it.
func (c *Cursor) Place(block string) float64 {
	c.trace = append(c.trace, Mark{Block: block, Y: c.y})
	return c.y
}

// Trace returns the recorded placements in order
func (c *Cursor) Trace() []Mark {
	return append([]Mark(nil), c.trace...)
}
