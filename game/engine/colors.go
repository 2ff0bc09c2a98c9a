package engine

// ColorAssigner hands out seat colors as players join and takes them back as
// they leave. Implementations must never hold the same color twice.
type ColorAssigner interface {
	Take() (Color, bool)
	Return(color Color)
	Available() []Color
}

// ColorPool is a FIFO ColorAssigner. Colors are handed out in insertion order,
// which keeps joins reproducible.
type ColorPool struct {
	colors []Color
}

// NewColorPool creates a pool with the given order, or SeatOrder when none is given
func NewColorPool(order ...Color) *ColorPool {
	if len(order) == 0 {
		order = SeatOrder
	}
	p := &ColorPool{colors: make([]Color, 0, len(order))}
	for _, c := range order {
		p.Return(c)
	}
	return p
}

// Take removes and returns the next color. It returns false once the pool is empty.
func (p *ColorPool) Take() (Color, bool) {
	if len(p.colors) == 0 {
		return "", false
	}
	c := p.colors[0]
	p.colors = p.colors[1:]
	return c, true
}

// Return puts a color back at the end of the pool. Colors already pooled and
// colors outside SeatOrder are ignored.
func (p *ColorPool) Return(color Color) {
	if SeatIndex(color) < 0 || p.Contains(color) {
		return
	}
	p.colors = append(p.colors, color)
}

// Contains reports whether the color is still available
func (p *ColorPool) Contains(color Color) bool {
	for _, c := range p.colors {
		if c == color {
			return true
		}
	}
	return false
}

// Available returns a copy of the pooled colors in hand-out order
func (p *ColorPool) Available() []Color {
	out := make([]Color, len(p.colors))
	copy(out, p.colors)
	return out
}
