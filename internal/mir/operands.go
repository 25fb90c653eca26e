package mir

// ConstString returns the pretty form of a constant, as used in the
// emitted constant pool
func ConstString(c *Const) string {
	return constString(c)
}

// RvalueOperands returns every operand an rvalue reads
func RvalueOperands(r Rvalue) []Operand {
	switch rv := r.(type) {
	case *BinaryOpRv:
		return []Operand{rv.LHS, rv.RHS}
	case *UnaryOpRv:
		return []Operand{rv.Inner}
	case *UseRv:
		return []Operand{rv.Operand}
	case *CastRv:
		return []Operand{rv.Operand}
	}
	return nil
}
