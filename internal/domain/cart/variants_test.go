package cart

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
)

func TestEqualVariants(t *testing.T) {
	tests := []struct {
		name string
		a, b Variants
		want bool
	}{
		{name: "both empty", a: Variants{}, b: Variants{}, want: true},
		{name: "nil and empty", a: nil, b: Variants{}, want: true},
		{name: "same single axis", a: Variants{"color": "Black"}, b: Variants{"color": "Black"}, want: true},
		{name: "different value", a: Variants{"color": "Black"}, b: Variants{"color": "White"}, want: false},
		{name: "value is case sensitive", a: Variants{"color": "Black"}, b: Variants{"color": "black"}, want: false},
		{name: "value is not trimmed", a: Variants{"color": "Black"}, b: Variants{"color": "Black "}, want: false},
		{name: "key order irrelevant", a: Variants{"color": "Black", "size": "M"}, b: Variants{"size": "M", "color": "Black"}, want: true},
		{name: "empty vs variants", a: Variants{}, b: Variants{"size": "M"}, want: false},
		{name: "missing key vs empty value", a: Variants{"color": "Black"}, b: Variants{"color": "Black", "size": ""}, want: false},
		{name: "same size, different keys", a: Variants{"color": ""}, b: Variants{"size": ""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EqualVariants(tt.a, tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestEqualVariants_EquivalenceRelation(t *testing.T) {
	for i := 0; i < 200; i++ {
		a := randomVariants()
		b := randomVariants()
		c := randomVariants()

		// reflexive
		assert.True(t, EqualVariants(a, a))
		assert.True(t, EqualVariants(a, a.Clone()))

		// symmetric
		assert.Equal(t, EqualVariants(a, b), EqualVariants(b, a))

		// transitive, using clones so the premise holds
		b2 := a.Clone()
		c2 := b2.Clone()
		if EqualVariants(a, b2) && EqualVariants(b2, c2) {
			assert.True(t, EqualVariants(a, c2))
		}
		if EqualVariants(a, b) && EqualVariants(b, c) {
			assert.True(t, EqualVariants(a, c))
		}
	}
}

func TestVariants_CloneIsIndependent(t *testing.T) {
	v := Variants{"color": "Black"}
	cp := v.Clone()
	cp["color"] = "White"

	assert.Equal(t, "Black", v["color"])
	assert.NotNil(t, Variants(nil).Clone())
}

func randomVariants() Variants {
	axes := []string{"color", "size", "fabric"}
	options := []string{"Black", "White", "M", "L", "Linen", ""}

	v := Variants{}
	for _, axis := range axes {
		if gofakeit.Bool() {
			v[axis] = options[gofakeit.IntRange(0, len(options)-1)]
		}
	}
	return v
}
