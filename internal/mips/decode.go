package mips

import "mipsvm/internal/utils"

// Opcode, the top 6 bits of every instruction word, selects the instruction
// format: 0x00 is R-format (funct selects the operation), 0x02/0x03 are
// J-format, everything else is I-format. Opcode 0x1A is reserved for the
// syscall trap: its low 26 bits (the J-format immediate field) carry the
// call number, while arguments and results live in the general registers.
const (
	opR       = 0x00
	opJ       = 0x02
	opJAL     = 0x03
	opBEQ     = 0x04
	opBNE     = 0x05
	opBLEZ    = 0x06
	opBGTZ    = 0x07
	opADDI    = 0x08
	opADDIU   = 0x09
	opSLTI    = 0x0A
	opSLTIU   = 0x0B
	opANDI    = 0x0C
	opORI     = 0x0D
	opXORI    = 0x0E
	opLUI     = 0x0F
	opSYSCALL = 0x1A
	opLB      = 0x20
	opLH      = 0x21
	opLW      = 0x23
	opLBU     = 0x24
	opLHU     = 0x25
	opSB      = 0x28
	opSH      = 0x29
	opSW      = 0x2B
)

// R-format funct codes (opcode == opR).
const (
	fnSLL  = 0x00
	fnSRL  = 0x02
	fnSRA  = 0x03
	fnSLLV = 0x04
	fnSRLV = 0x06
	fnSRAV = 0x07
	fnJR   = 0x08
	fnJALR = 0x09
	fnMFHI = 0x10
	fnMTHI = 0x11
	fnMFLO = 0x12
	fnMTLO = 0x13
	fnMULT = 0x18
	fnMULTU = 0x19
	fnDIV  = 0x1A
	fnDIVU = 0x1B
	fnADD  = 0x20
	fnADDU = 0x21
	fnSUB  = 0x22
	fnSUBU = 0x23
	fnAND  = 0x24
	fnOR   = 0x25
	fnXOR  = 0x26
	fnNOR  = 0x27
	fnSLT  = 0x2A
	fnSLTU = 0x2B
)

func opcode(instr uint32) uint32 { return (instr >> 26) & 0x3F }
func fieldRS(instr uint32) uint8 { return uint8((instr >> 21) & 0x1F) }
func fieldRT(instr uint32) uint8 { return uint8((instr >> 16) & 0x1F) }
func fieldRD(instr uint32) uint8 { return uint8((instr >> 11) & 0x1F) }
func fieldShamt(instr uint32) uint8 { return uint8((instr >> 6) & 0x1F) }
func fieldFunct(instr uint32) uint32 { return instr & 0x3F }
func fieldImm(instr uint32) uint16 { return uint16(instr & 0xFFFF) }
func fieldJumpTarget(instr uint32) uint32 { return instr & 0x3FFFFFF }

// fieldSyscallCode extracts the 26-bit call ID SYSCALL encodes in its
// J-format immediate field; numerically the same bits as fieldJumpTarget,
// named separately since the two opcodes give those bits unrelated meaning.
func fieldSyscallCode(instr uint32) uint32 { return instr & 0x3FFFFFF }

// signExtend16 widens a 16-bit two's-complement immediate to 32 bits.
func signExtend16(imm uint16) uint32 {
	return utils.SignExtend(uint32(imm), 16)
}

// execute decodes instr (already fetched from address pc, with c.PC already
// advanced past it) and runs it against the CPU.
func (c *CPU) execute(instr uint32, pc uint32) {
	op := opcode(instr)
	switch op {
	case opR:
		c.executeR(instr)
	case opJ, opJAL:
		c.executeJ(instr, op, pc)
	case opSYSCALL:
		c.doSyscall(fieldSyscallCode(instr))
	default:
		c.executeI(instr, op, pc)
	}
}
