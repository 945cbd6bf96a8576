package mips

// executeR runs an R-format instruction: funct (the low 6 bits) selects the
// operation, operands come from rs/rt/rd/shamt. ADD/SUB and their unsigned
// counterparts never trap on overflow here: wrapping 32-bit arithmetic is
// the only behaviour this simulator exposes for them.
func (c *CPU) executeR(instr uint32) {
	rs := fieldRS(instr)
	rt := fieldRT(instr)
	rd := fieldRD(instr)
	shamt := fieldShamt(instr)

	switch fieldFunct(instr) {
	case fnSLL:
		c.SetReg(rd, c.Reg(rt)<<shamt)
	case fnSRL:
		c.SetReg(rd, c.Reg(rt)>>shamt)
	case fnSRA:
		c.SetReg(rd, uint32(int32(c.Reg(rt))>>shamt))
	case fnSLLV:
		c.SetReg(rd, c.Reg(rt)<<(c.Reg(rs)&0x1F))
	case fnSRLV:
		c.SetReg(rd, c.Reg(rt)>>(c.Reg(rs)&0x1F))
	case fnSRAV:
		c.SetReg(rd, uint32(int32(c.Reg(rt))>>(c.Reg(rs)&0x1F)))
	case fnJR:
		c.PC = c.Reg(rs)
	case fnJALR:
		link := c.PC
		c.PC = c.Reg(rs)
		c.SetReg(rd, link)
	case fnMFHI:
		c.SetReg(rd, c.HI)
	case fnMTHI:
		c.HI = c.Reg(rs)
	case fnMFLO:
		c.SetReg(rd, c.LO)
	case fnMTLO:
		c.LO = c.Reg(rs)
	case fnMULT:
		product := int64(int32(c.Reg(rs))) * int64(int32(c.Reg(rt)))
		c.HI = uint32(uint64(product) >> 32)
		c.LO = uint32(uint64(product))
	case fnMULTU:
		product := uint64(c.Reg(rs)) * uint64(c.Reg(rt))
		c.HI = uint32(product >> 32)
		c.LO = uint32(product)
	case fnDIV:
		c.divSigned(rs, rt)
	case fnDIVU:
		c.divUnsigned(rs, rt)
	case fnADD:
		c.SetReg(rd, c.Reg(rs)+c.Reg(rt))
	case fnADDU:
		c.SetReg(rd, c.Reg(rs)+c.Reg(rt))
	case fnSUB:
		c.SetReg(rd, c.Reg(rs)-c.Reg(rt))
	case fnSUBU:
		c.SetReg(rd, c.Reg(rs)-c.Reg(rt))
	case fnAND:
		c.SetReg(rd, c.Reg(rs)&c.Reg(rt))
	case fnOR:
		c.SetReg(rd, c.Reg(rs)|c.Reg(rt))
	case fnXOR:
		c.SetReg(rd, c.Reg(rs)^c.Reg(rt))
	case fnNOR:
		c.SetReg(rd, ^(c.Reg(rs) | c.Reg(rt)))
	case fnSLT:
		c.SetReg(rd, boolToWord(int32(c.Reg(rs)) < int32(c.Reg(rt))))
	case fnSLTU:
		c.SetReg(rd, boolToWord(c.Reg(rs) < c.Reg(rt)))
	default:
		c.Handler.InvalidOpcode(c, instr)
	}
}

func (c *CPU) divSigned(rs, rt uint8) {
	divisor := int32(c.Reg(rt))
	if divisor == 0 {
		c.Handler.ArithmeticFault(c, "division by zero")
		return
	}
	dividend := int32(c.Reg(rs))
	c.LO = uint32(dividend / divisor)
	c.HI = uint32(dividend % divisor)
}

func (c *CPU) divUnsigned(rs, rt uint8) {
	divisor := c.Reg(rt)
	if divisor == 0 {
		c.Handler.ArithmeticFault(c, "division by zero")
		return
	}
	dividend := c.Reg(rs)
	c.LO = dividend / divisor
	c.HI = dividend % divisor
}

func boolToWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
