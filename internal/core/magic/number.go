package magic

import "strconv"

// Number is a magic number: wins still needed to guarantee an outcome.
// Zero means clinched. Eliminated means no number of wins is enough on
// their own.
type Number int

// Eliminated is the sentinel for an outcome the team cannot guarantee.
const Eliminated Number = -1

func (n Number) IsEliminated() bool { return n == Eliminated }
func (n Number) IsClinched() bool   { return n == 0 }

// Harder reports whether n demands more than m. Eliminated is harder than
// any finite number.
func (n Number) Harder(m Number) bool {
	switch {
	case n.IsEliminated():
		return !m.IsEliminated()
	case m.IsEliminated():
		return false
	}
	return n > m
}

func (n Number) String() string {
	switch {
	case n.IsEliminated():
		return "X"
	case n.IsClinched():
		return "clinched"
	}
	return strconv.Itoa(int(n))
}

// Versus is the number of further wins pursuer needs to finish strictly
// ahead of target even if target wins every remaining game.
func Versus(pursuer, target Contender) Number {
	needed := target.Ceiling() + 1
	if needed > pursuer.Ceiling() {
		return Eliminated
	}
	if m := needed - pursuer.Wins; m > 0 {
		return Number(m)
	}
	return 0
}
