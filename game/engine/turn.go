package engine

// Turn tracks whose move it is. The order is fixed when the game starts.
type Turn struct {
	order   []string
	current int
}

// NewTurn creates a turn starting at the first name in order
func NewTurn(order []string) *Turn {
	o := make([]string, len(order))
	copy(o, order)
	return &Turn{order: o}
}

// Current returns the name of the player on move, or "" for an empty table
func (t *Turn) Current() string {
	if len(t.order) == 0 {
		return ""
	}
	return t.order[t.current]
}

// Advance passes the turn to the next seat, wrapping after the last one
func (t *Turn) Advance() string {
	if len(t.order) == 0 {
		return ""
	}
	t.current = (t.current + 1) % len(t.order)
	return t.order[t.current]
}

// Order returns a copy of the seating order
func (t *Turn) Order() []string {
	o := make([]string, len(t.order))
	copy(o, t.order)
	return o
}

// Remove drops a seat. If the removed player was on move the turn passes to
// whoever sat after them.
func (t *Turn) Remove(name string) {
	idx := -1
	for i, n := range t.order {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	t.order = append(t.order[:idx], t.order[idx+1:]...)
	switch {
	case len(t.order) == 0:
		t.current = 0
	case idx < t.current:
		t.current--
	case t.current >= len(t.order):
		t.current = 0
	}
}
