package fermion

// SingleExcitation returns a+_a a_i - h.c.
func SingleExcitation(modes, i, a int) *Operator {
	t := New(modes)
	t.Add(1, Create(a), Annihilate(i))
	return t.Sub(t.Adjoint())
}

// DoubleExcitation returns a+_a a+_b a_j a_i - h.c.
func DoubleExcitation(modes, i, j, a, b int) *Operator {
	t := New(modes)
	t.Add(1, Create(a), Create(b), Annihilate(j), Annihilate(i))
	return t.Sub(t.Adjoint())
}

// Number returns the total number operator sum_p a+_p a_p
func Number(modes int) *Operator {
	return NumberIn(modes, 0, modes)
}

// NumberIn counts occupations of modes lo..hi-1 only
func NumberIn(modes, lo, hi int) *Operator {
	n := New(modes)
	for p := lo; p < hi; p++ {
		n.Add(1, Create(p), Annihilate(p))
	}
	return n
}
