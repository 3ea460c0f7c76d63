package fixedpoint

// ISqrt computes the integer square root of n using Newton's method, the
// implementation this module picked for the fairness-correlation square
// root that spec.md's Open Questions leaves to the implementer. It is
// branch-light and needs no floating point, matching the "no floating
// point anywhere downstream" invariant.
func ISqrt(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	x := n
	y := (x + 1) / 2
	for y < x {
		x = y
		y = (x + n/x) / 2
	}
	return x
}
