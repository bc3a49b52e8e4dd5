package hart

// branchTaken evaluates a BRANCH (opcode 0x63) condition. ok is false for
// the reserved funct3 encodings 0x2/0x3, which the caller must trap as an
// illegal instruction rather than treat as "not taken".
func branchTaken(f3 uint32, a, b uint32) (taken, ok bool) {
	switch f3 {
	case 0x0: // BEQ
		return a == b, true
	case 0x1: // BNE
		return a != b, true
	case 0x4: // BLT
		return int32(a) < int32(b), true
	case 0x5: // BGE
		return int32(a) >= int32(b), true
	case 0x6: // BLTU
		return a < b, true
	case 0x7: // BGEU
		return a >= b, true
	}
	return false, false
}
