package disasm

import "testing"

func TestInstructionDecodesCounterLoopProgram(t *testing.T) {
	cases := []struct {
		inst uint32
		pc   uint32
		want string
	}{
		{0x3C027FFF, 0x00, "lui $2, 0x7fff"},
		{0x00000820, 0x04, "add $1, $0, $0"},
		{0x20210001, 0x08, "addi $1, $1, 1"},
		{0x10220001, 0x0C, "beq $1, $2, 0x00000014"},
		{0x08000002, 0x10, "j 0x00000008"},
	}
	for _, c := range cases {
		got := Instruction(c.inst, c.pc)
		if got != c.want {
			t.Errorf("Instruction(0x%08x, 0x%x) = %q, want %q", c.inst, c.pc, got, c.want)
		}
	}
}

func TestUnknownOpcodeIsReported(t *testing.T) {
	got := Instruction(0x7C000000, 0)
	if got[:7] != "unknown" {
		t.Errorf("expected unknown-opcode text, got %q", got)
	}
}
