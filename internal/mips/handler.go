package mips

import "log"

// DefaultHandler implements ExternalHandler with the simulator's baseline
// behaviour: log the condition and stop the CPU. The exception is Syscall,
// which receives syscall numbers the interpreter does not implement itself
// (plus the frame publish/present calls) and only logs. It is installed
// automatically by NewCPU when no handler is supplied.
type DefaultHandler struct{}

func (DefaultHandler) ArithmeticFault(cpu *CPU, cause string) {
	log.Printf("fault: arithmetic fault at pc=0x%08x: %s", cpu.PC, cause)
	cpu.RequestStop()
}

func (DefaultHandler) MemoryFault(cpu *CPU, addr uint32, err error) {
	log.Printf("fault: memory fault at pc=0x%08x accessing 0x%08x: %v", cpu.PC, addr, err)
	cpu.RequestStop()
}

func (DefaultHandler) InvalidOpcode(cpu *CPU, instr uint32) {
	log.Printf("fault: invalid opcode 0x%08x at pc=0x%08x", instr, cpu.PC)
	cpu.RequestStop()
}

func (DefaultHandler) Syscall(cpu *CPU, number uint32) {
	log.Printf("warn: unhandled syscall %d at pc=0x%08x", number, cpu.PC)
}

func (DefaultHandler) SyscallError(cpu *CPU, number uint32, msg string) {
	log.Printf("warn: syscall %d error at pc=0x%08x: %s", number, cpu.PC, msg)
	cpu.RequestStop()
}
