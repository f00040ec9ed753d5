// internal/domain/cart/variants.go
package cart

// Variants maps a variant axis ("color") to the chosen option ("Black").
// Option names are compared exactly as stored on the product; no case or
// whitespace folding happens here.
type Variants map[string]string

// EqualVariants reports whether a and b select the same configuration:
// identical key sets and identical values per key. A missing key differs
// from a key holding "". nil and an empty map are both the empty selection.
func EqualVariants(a, b Variants) bool {
	if len(a) != len(b) {
		return false
	}
	for k, av := range a {
		bv, ok := b[k]
		if !ok || av != bv {
			return false
		}
	}
	return true
}

// Equal is EqualVariants with v as the left operand.
func (v Variants) Equal(o Variants) bool {
	return EqualVariants(v, o)
}

// Clone returns an independent copy. The result is never nil.
func (v Variants) Clone() Variants {
	out := make(Variants, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
