package mips

// executeI runs an I-format instruction: opcode selects the operation,
// operands come from rs/rt and a 16-bit immediate. pc is the address the
// instruction itself was fetched from (before the +4 advance already
// applied to c.PC); it is not used here, since the branch instructions
// compute their target from c.PC, the post-increment PC, per the dispatch
// loop's contract.
func (c *CPU) executeI(instr uint32, op uint32, pc uint32) {
	rs := fieldRS(instr)
	rt := fieldRT(instr)
	imm := fieldImm(instr)
	simm := signExtend16(imm)

	switch op {
	case opBEQ:
		if c.Reg(rs) == c.Reg(rt) {
			c.branch(simm)
		}
	case opBNE:
		if c.Reg(rs) != c.Reg(rt) {
			c.branch(simm)
		}
	case opBLEZ:
		if int32(c.Reg(rs)) <= 0 {
			c.branch(simm)
		}
	case opBGTZ:
		if int32(c.Reg(rs)) > 0 {
			c.branch(simm)
		}
	case opADDI:
		c.SetReg(rt, c.Reg(rs)+simm)
	case opADDIU:
		c.SetReg(rt, c.Reg(rs)+simm)
	case opSLTI:
		c.SetReg(rt, boolToWord(int32(c.Reg(rs)) < int32(simm)))
	case opSLTIU:
		c.SetReg(rt, boolToWord(c.Reg(rs) < simm))
	case opANDI:
		c.SetReg(rt, c.Reg(rs)&uint32(imm))
	case opORI:
		c.SetReg(rt, c.Reg(rs)|uint32(imm))
	case opXORI:
		c.SetReg(rt, c.Reg(rs)^uint32(imm))
	case opLUI:
		c.SetReg(rt, (uint32(imm)<<16)|(c.Reg(rt)&0xFFFF))
	case opLB:
		c.load(rt, c.Reg(rs)+simm, loadByteSigned)
	case opLBU:
		c.load(rt, c.Reg(rs)+simm, loadByteUnsigned)
	case opLH:
		c.load(rt, c.Reg(rs)+simm, loadHalfSigned)
	case opLHU:
		c.load(rt, c.Reg(rs)+simm, loadHalfUnsigned)
	case opLW:
		c.load(rt, c.Reg(rs)+simm, loadWord)
	case opSB:
		if err := c.Mem.Store8(c.Reg(rs)+simm, byte(c.Reg(rt))); err != nil {
			c.Handler.MemoryFault(c, c.Reg(rs)+simm, err)
		}
	case opSH:
		if err := c.Mem.Store16(c.Reg(rs)+simm, uint16(c.Reg(rt))); err != nil {
			c.Handler.MemoryFault(c, c.Reg(rs)+simm, err)
		}
	case opSW:
		if err := c.Mem.Store32(c.Reg(rs)+simm, c.Reg(rt)); err != nil {
			c.Handler.MemoryFault(c, c.Reg(rs)+simm, err)
		}
	default:
		c.Handler.InvalidOpcode(c, instr)
	}
}

// branch adds a word-aligned, sign-extended, left-shifted-by-2 offset to
// the current (post-increment) program counter.
func (c *CPU) branch(simm uint32) {
	c.PC = c.PC + (simm << 2)
}

type loadKind int

const (
	loadByteSigned loadKind = iota
	loadByteUnsigned
	loadHalfSigned
	loadHalfUnsigned
	loadWord
)

func (c *CPU) load(rt uint8, addr uint32, kind loadKind) {
	switch kind {
	case loadByteSigned:
		v, err := c.Mem.Load8Signed(addr)
		if err != nil {
			c.Handler.MemoryFault(c, addr, err)
			return
		}
		c.SetReg(rt, uint32(int32(v)))
	case loadByteUnsigned:
		v, err := c.Mem.Load8(addr)
		if err != nil {
			c.Handler.MemoryFault(c, addr, err)
			return
		}
		c.SetReg(rt, uint32(v))
	case loadHalfSigned:
		v, err := c.Mem.Load16Signed(addr)
		if err != nil {
			c.Handler.MemoryFault(c, addr, err)
			return
		}
		c.SetReg(rt, uint32(int32(v)))
	case loadHalfUnsigned:
		v, err := c.Mem.Load16(addr)
		if err != nil {
			c.Handler.MemoryFault(c, addr, err)
			return
		}
		c.SetReg(rt, uint32(v))
	case loadWord:
		v, err := c.Mem.Load32(addr)
		if err != nil {
			c.Handler.MemoryFault(c, addr, err)
			return
		}
		c.SetReg(rt, v)
	}
}
