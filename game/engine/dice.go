package engine

import "math/rand/v2"

// Dice is the injected source of rolls
type Dice interface {
	Roll() int
}

// RandomDice rolls a fair six-sided die
type RandomDice struct {
	rng *rand.Rand
}

// NewRandomDice creates a fair die. A zero seed draws from the runtime's
// random source; any other seed gives a reproducible sequence.
func NewRandomDice(seed uint64) *RandomDice {
	if seed == 0 {
		return &RandomDice{}
	}
	return &RandomDice{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Roll returns a value in 1..6
func (d *RandomDice) Roll() int {
	if d.rng == nil {
		return rand.IntN(DiceMax) + DiceMin
	}
	return d.rng.IntN(DiceMax) + DiceMin
}

// FixedDice always rolls the same value
type FixedDice int

// Roll returns the fixed value
func (d FixedDice) Roll() int {
	return int(d)
}

// SequenceDice replays a list of rolls and then repeats the last one
type SequenceDice struct {
	rolls []int
	next  int
}

// NewSequenceDice creates a die that returns rolls in order
func NewSequenceDice(rolls ...int) *SequenceDice {
	return &SequenceDice{rolls: rolls}
}

// Roll returns the next scripted value
func (d *SequenceDice) Roll() int {
	if len(d.rolls) == 0 {
		return DiceMin
	}
	if d.next >= len(d.rolls) {
		return d.rolls[len(d.rolls)-1]
	}
	v := d.rolls[d.next]
	d.next++
	return v
}

// dieFaces are the Unicode die glyphs used in log entries
var dieFaces = [...]string{"⚀", "⚁", "⚂", "⚃", "⚄", "⚅"}

func dieFace(roll int) string {
	if roll < DiceMin || roll > DiceMax {
		return "?"
	}
	return dieFaces[roll-1]
}
