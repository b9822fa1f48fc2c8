// Package witness re-creates the compile-time character of the
// less-than relation with Go generics. Naturals are phantom types
// (Zero and Succ[N] carry no runtime data), the NonZero classification
// is the Positive constraint, and a proof of A < B is a value of type
// Lt[A, B] obtainable only through the two rule constructors:
//
//	Base[P Positive]() Lt[Zero, P]            // Z < P for positive P
//	Step(Lt[A, B]) Lt[Succ[A], Succ[B]]       // lift a proof one layer
//
// A claim that does not hold has no constructor chain: Base[Zero]
// does not type-check, and no sequence of Step applications can
// change that, so ill-formed proofs are rejected by the compiler.
//
// One caveat is inherent to Go: every type has a zero value, so
// Lt[A, B]{} can be named without either constructor. Valid reports
// whether a witness actually came from Base/Step. The order package
// remains the normative decision procedure; this package exists to
// teach the encoding.
package witness

// Number constrains type parameters to the Peano universe. Zero and
// Succ are the only variants with a meaningful depth; the method is
// unexported so outside packages cannot add their own numbers.
type Number interface {
	depth() int
}

// Positive is the NonZero classification at the type level: it is
// satisfied by every Succ instantiation and never by Zero.
type Positive interface {
	Number
	positive()
}

// Zero is the type-level zero.
type Zero struct{}

func (Zero) depth() int { return 0 }

// Succ is the type-level successor of N. The predecessor lives
// entirely in the type parameter; values are empty.
type Succ[N Number] struct{}

func (Succ[N]) depth() int {
	var pred N
	return pred.depth() + 1
}

func (Succ[N]) positive() {}

// Shorthand for the first few naturals.
type (
	N0 = Zero
	N1 = Succ[N0]
	N2 = Succ[N1]
	N3 = Succ[N2]
)

// Lt witnesses A < B. Obtain values through Base and Step only; a
// zero-value Lt is not a proof and reports Valid() == false.
type Lt[A, B Number] struct {
	ok bool
}

// Base proves Zero < P for any positive P. There is deliberately no
// way to state Base[Zero]: Zero does not satisfy Positive, so the
// claim Z < Z is rejected at compile time.
func Base[P Positive]() Lt[Zero, P] {
	return Lt[Zero, P]{ok: true}
}

// Step lifts a proof of A < B to a proof of Succ(A) < Succ(B). The
// premise must already exist, which is what makes the recursion
// well-founded: each Step strictly grows both sides from a base
// anchor that only Base can place.
func Step[A, B Number](premise Lt[A, B]) Lt[Succ[A], Succ[B]] {
	return Lt[Succ[A], Succ[B]]{ok: premise.ok}
}

// Valid reports whether the witness was produced by Base/Step rather
// than named as a zero value.
func (w Lt[A, B]) Valid() bool { return w.ok }

// Lesser reifies the witness's lesser side to its integer depth.
func (Lt[A, B]) Lesser() int {
	var a A
	return a.depth()
}

// Greater reifies the witness's greater side to its integer depth.
func (Lt[A, B]) Greater() int {
	var b B
	return b.depth()
}

// Depth reifies any type-level natural to its integer value.
func Depth[N Number]() int {
	var n N
	return n.depth()
}
