// Package disasm turns a raw MIPS-I instruction word into its textual
// mnemonic form, covering exactly the instruction subset the interpreter in
// internal/mips executes. It has no dependency on the CPU itself: it is a
// pure function of (instruction word, address), used by cmd/mipsdisasm.
package disasm

import "fmt"

// Instruction decodes inst (fetched from address pc) into its assembly
// text. pc is used only to compute absolute branch/jump targets.
func Instruction(inst uint32, pc uint32) string {
	op := inst >> 26

	switch op {
	case 0x00:
		return rType(inst)
	case 0x02:
		return fmt.Sprintf("j 0x%08x", jumpTarget(inst, pc))
	case 0x03:
		return fmt.Sprintf("jal 0x%08x", jumpTarget(inst, pc))
	case 0x1A:
		return "syscall"
	default:
		return iType(op, inst, pc)
	}
}

func jumpTarget(inst uint32, pc uint32) uint32 {
	addr := inst & 0x3FFFFFF
	return ((pc + 4) & 0xF0000000) | (addr << 2)
}

func rType(inst uint32) string {
	rs := (inst >> 21) & 0x1F
	rt := (inst >> 16) & 0x1F
	rd := (inst >> 11) & 0x1F
	shamt := (inst >> 6) & 0x1F
	funct := inst & 0x3F

	switch funct {
	case 0x00:
		return fmt.Sprintf("sll $%d, $%d, %d", rd, rt, shamt)
	case 0x02:
		return fmt.Sprintf("srl $%d, $%d, %d", rd, rt, shamt)
	case 0x03:
		return fmt.Sprintf("sra $%d, $%d, %d", rd, rt, shamt)
	case 0x04:
		return fmt.Sprintf("sllv $%d, $%d, $%d", rd, rt, rs)
	case 0x06:
		return fmt.Sprintf("srlv $%d, $%d, $%d", rd, rt, rs)
	case 0x07:
		return fmt.Sprintf("srav $%d, $%d, $%d", rd, rt, rs)
	case 0x08:
		return fmt.Sprintf("jr $%d", rs)
	case 0x09:
		return fmt.Sprintf("jalr $%d, $%d", rd, rs)
	case 0x10:
		return fmt.Sprintf("mfhi $%d", rd)
	case 0x11:
		return fmt.Sprintf("mthi $%d", rs)
	case 0x12:
		return fmt.Sprintf("mflo $%d", rd)
	case 0x13:
		return fmt.Sprintf("mtlo $%d", rs)
	case 0x18:
		return fmt.Sprintf("mult $%d, $%d", rs, rt)
	case 0x19:
		return fmt.Sprintf("multu $%d, $%d", rs, rt)
	case 0x1A:
		return fmt.Sprintf("div $%d, $%d", rs, rt)
	case 0x1B:
		return fmt.Sprintf("divu $%d, $%d", rs, rt)
	case 0x20:
		return fmt.Sprintf("add $%d, $%d, $%d", rd, rs, rt)
	case 0x21:
		return fmt.Sprintf("addu $%d, $%d, $%d", rd, rs, rt)
	case 0x22:
		return fmt.Sprintf("sub $%d, $%d, $%d", rd, rs, rt)
	case 0x23:
		return fmt.Sprintf("subu $%d, $%d, $%d", rd, rs, rt)
	case 0x24:
		return fmt.Sprintf("and $%d, $%d, $%d", rd, rs, rt)
	case 0x25:
		return fmt.Sprintf("or $%d, $%d, $%d", rd, rs, rt)
	case 0x26:
		return fmt.Sprintf("xor $%d, $%d, $%d", rd, rs, rt)
	case 0x27:
		return fmt.Sprintf("nor $%d, $%d, $%d", rd, rs, rt)
	case 0x2A:
		return fmt.Sprintf("slt $%d, $%d, $%d", rd, rs, rt)
	case 0x2B:
		return fmt.Sprintf("sltu $%d, $%d, $%d", rd, rs, rt)
	default:
		return fmt.Sprintf("unknown r-funct 0x%02x", funct)
	}
}

func iType(op uint32, inst uint32, pc uint32) string {
	rs := (inst >> 21) & 0x1F
	rt := (inst >> 16) & 0x1F
	imm := inst & 0xFFFF
	simm := int32(int16(imm))

	branchTarget := func() uint32 {
		return pc + 4 + uint32(simm<<2)
	}

	switch op {
	case 0x04:
		return fmt.Sprintf("beq $%d, $%d, 0x%08x", rs, rt, branchTarget())
	case 0x05:
		return fmt.Sprintf("bne $%d, $%d, 0x%08x", rs, rt, branchTarget())
	case 0x06:
		return fmt.Sprintf("blez $%d, 0x%08x", rs, branchTarget())
	case 0x07:
		return fmt.Sprintf("bgtz $%d, 0x%08x", rs, branchTarget())
	case 0x08:
		return fmt.Sprintf("addi $%d, $%d, %d", rt, rs, simm)
	case 0x09:
		return fmt.Sprintf("addiu $%d, $%d, %d", rt, rs, simm)
	case 0x0A:
		return fmt.Sprintf("slti $%d, $%d, %d", rt, rs, simm)
	case 0x0B:
		return fmt.Sprintf("sltiu $%d, $%d, %d", rt, rs, simm)
	case 0x0C:
		return fmt.Sprintf("andi $%d, $%d, 0x%x", rt, rs, imm)
	case 0x0D:
		return fmt.Sprintf("ori $%d, $%d, 0x%x", rt, rs, imm)
	case 0x0E:
		return fmt.Sprintf("xori $%d, $%d, 0x%x", rt, rs, imm)
	case 0x0F:
		return fmt.Sprintf("lui $%d, 0x%x", rt, imm)
	case 0x20:
		return fmt.Sprintf("lb $%d, %d($%d)", rt, simm, rs)
	case 0x21:
		return fmt.Sprintf("lh $%d, %d($%d)", rt, simm, rs)
	case 0x23:
		return fmt.Sprintf("lw $%d, %d($%d)", rt, simm, rs)
	case 0x24:
		return fmt.Sprintf("lbu $%d, %d($%d)", rt, simm, rs)
	case 0x25:
		return fmt.Sprintf("lhu $%d, %d($%d)", rt, simm, rs)
	case 0x28:
		return fmt.Sprintf("sb $%d, %d($%d)", rt, simm, rs)
	case 0x29:
		return fmt.Sprintf("sh $%d, %d($%d)", rt, simm, rs)
	case 0x2B:
		return fmt.Sprintf("sw $%d, %d($%d)", rt, simm, rs)
	default:
		return fmt.Sprintf("unknown i-op 0x%02x", op)
	}
}
