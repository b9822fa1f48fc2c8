package witness

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDepthReification(t *testing.T) {
	assert.Equal(t, 0, Depth[N0]())
	assert.Equal(t, 1, Depth[N1]())
	assert.Equal(t, 2, Depth[N2]())
	assert.Equal(t, 3, Depth[N3]())
	assert.Equal(t, 4, Depth[Succ[N3]]())
}

func TestBase(t *testing.T) {
	w := Base[N1]()
	assert.True(t, w.Valid())
	assert.Equal(t, 0, w.Lesser())
	assert.Equal(t, 1, w.Greater())
}

func TestStepComposition(t *testing.T) {
	// Z < 2, lifted once: 1 < 3.
	oneLtThree := Step(Base[N2]())
	assert.True(t, oneLtThree.Valid())
	assert.Equal(t, 1, oneLtThree.Lesser())
	assert.Equal(t, 3, oneLtThree.Greater())

	// Lift again: 2 < 4.
	twoLtFour := Step(oneLtThree)
	assert.True(t, twoLtFour.Valid())
	assert.Equal(t, 2, twoLtFour.Lesser())
	assert.Equal(t, 4, twoLtFour.Greater())
}

func TestStepPreservesGap(t *testing.T) {
	w0 := Base[N1]()
	w1 := Step(w0)
	w2 := Step(w1)
	for i, gap := range []int{w0.Greater() - w0.Lesser(), w1.Greater() - w1.Lesser(), w2.Greater() - w2.Lesser()} {
		assert.Equal(t, 1, gap, "step %d", i)
	}
}

func TestZeroValueIsNotAProof(t *testing.T) {
	// Go lets any struct be named as a zero value; such a witness
	// must be detectable.
	var forged Lt[N2, N1]
	assert.False(t, forged.Valid())
	assert.Equal(t, 2, forged.Lesser())
	assert.Equal(t, 1, forged.Greater())

	alsoForged := Lt[N0, N1]{}
	assert.False(t, alsoForged.Valid())
}

func TestStepOnForgedWitnessStaysInvalid(t *testing.T) {
	var forged Lt[N0, N0]
	lifted := Step(forged)
	assert.False(t, lifted.Valid())
}

func ExampleStep() {
	oneLtThree := Step(Base[N2]())
	fmt.Println(oneLtThree.Lesser(), "<", oneLtThree.Greater(), "valid:", oneLtThree.Valid())
	// Output: 1 < 3 valid: true
}
