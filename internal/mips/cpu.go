// Package mips implements a MIPS-I, 32-bit, big-endian user-mode CPU
// interpreter running against a memview.View.
package mips

import (
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"mipsvm/internal/memview"
)

// RunState is the coarse state of a CPU's dispatch loop.
type RunState uint32

const (
	Stopped RunState = iota
	Running
	Paused
	Stepping
	Dropping
)

func (s RunState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stepping:
		return "stepping"
	case Dropping:
		return "dropping"
	default:
		return "unknown"
	}
}

// ExternalHandler is the capability set a CPU defers to for faults and
// system calls. NewCPU installs DefaultHandler{} when handler is nil, so
// every method is always safe to invoke through CPU.Handler.
type ExternalHandler interface {
	ArithmeticFault(cpu *CPU, cause string)
	MemoryFault(cpu *CPU, addr uint32, err error)
	InvalidOpcode(cpu *CPU, instr uint32)
	Syscall(cpu *CPU, number uint32)
	SyscallError(cpu *CPU, number uint32, msg string)
}

// CPU is one MIPS-I hart: 32 general registers (r0 hardwired to zero), the
// HI/LO multiply-divide registers, the program counter, and a run-state
// machine checked with atomics between instructions rather than under a
// lock, so a debug session can pause/stop the dispatch loop without
// contending with it on every fetch.
type CPU struct {
	regs [32]uint32
	HI   uint32
	LO   uint32
	PC   uint32

	Mem     *memview.View
	Handler ExternalHandler

	consoleIO     Console
	lastSleepCall time.Time
	rng           *rand.Rand
	display       *Display

	state       atomic.Uint32
	paused      atomic.Bool
	pauseWanted atomic.Bool
}

// SetConsole overrides the console used by the built-in syscall catalogue.
// cmd/mipsvm uses this to install a raw-mode terminal console when run
// interactively instead of the line-buffered stdio default.
func (c *CPU) SetConsole(console Console) {
	c.consoleIO = console
}

// NewCPU creates a CPU reading and writing through mem. If handler is nil,
// DefaultHandler{} is installed (log-and-stop behaviour).
func NewCPU(mem *memview.View, handler ExternalHandler) *CPU {
	c := &CPU{Mem: mem, Handler: handler}
	if c.Handler == nil {
		c.Handler = DefaultHandler{}
	}
	c.state.Store(uint32(Stopped))
	return c
}

// State returns the CPU's current run state.
func (c *CPU) State() RunState {
	return RunState(c.state.Load())
}

// Reg reads general register n. Register 0 always reads as zero regardless
// of what was last written to it.
func (c *CPU) Reg(n uint8) uint32 {
	if n == 0 {
		return 0
	}
	return c.regs[n]
}

// SetReg writes general register n. Writes to register 0 are silently
// discarded.
func (c *CPU) SetReg(n uint8, v uint32) {
	if n == 0 {
		return
	}
	c.regs[n] = v
}

// Reset zeroes every register, HI/LO and the program counter, and moves the
// CPU to the Stopped state.
func (c *CPU) Reset() {
	c.regs = [32]uint32{}
	c.HI = 0
	c.LO = 0
	c.PC = 0
	c.state.Store(uint32(Stopped))
}

// Pause requests that the dispatch loop suspend after completing its
// current instruction. It is edge-triggered: Resume clears the request.
func (c *CPU) Pause() {
	c.pauseWanted.Store(true)
}

// Resume clears a pending or active pause.
func (c *CPU) Resume() {
	c.pauseWanted.Store(false)
}

// RequestStop asks the dispatch loop to exit after its current instruction
// and land in Stopped, the ordinary halt/interrupt outcome: syscalls 0 and
// 111 reach here, and so does a debugger interrupt. It never puts the CPU
// into Dropping; that state is reserved for actual process teardown (see
// Drop), so a blocking syscall like presentFrame can tell "halted, can be
// resumed or restarted" apart from "being dismantled, stop waiting now".
func (c *CPU) RequestStop() {
	c.state.Store(uint32(Stopped))
}

// Drop moves the CPU into Dropping, the terminal teardown-only latch: once
// in Dropping the CPU is being dismantled and is not coming back. Handlers
// parked in a blocking syscall (presentFrame) should poll for this state
// specifically, not Stopped, to distinguish an ordinary halt from teardown.
func (c *CPU) Drop() {
	c.state.Store(uint32(Dropping))
}

// waitWhilePaused busy-spins with a 1ms sleep while a pause is active,
// matching the original interpreter's pause mechanic: no condition
// variables on the hot path, since the pause/resume flag is set from
// another goroutine.
func (c *CPU) waitWhilePaused() {
	if !c.pauseWanted.Load() {
		return
	}
	resumeState := c.State()
	c.state.Store(uint32(Paused))
	c.paused.Store(true)
	for c.pauseWanted.Load() {
		time.Sleep(time.Millisecond)
	}
	c.paused.Store(false)
	if c.State() == Paused {
		c.state.Store(uint32(resumeState))
	}
}

// IsPaused reports whether the dispatch loop is currently parked in a pause.
func (c *CPU) IsPaused() bool {
	return c.paused.Load()
}

// Step fetches, decodes and executes exactly one instruction, then returns.
// The program counter is advanced past the fetched instruction before the
// instruction body runs, so a branch/jump computes its target against the
// post-increment PC.
func (c *CPU) Step() error {
	c.waitWhilePaused()

	instr, err := c.Mem.Load32(c.PC)
	if err != nil {
		c.Handler.MemoryFault(c, c.PC, err)
		return fmt.Errorf("mips: fetch at 0x%08x: %w", c.PC, err)
	}

	pc := c.PC
	c.PC = c.PC + 4
	c.execute(instr, pc)
	return nil
}

// Run drives the dispatch loop until RequestStop is called or a fetch
// fails. It is the free-running entry point for non-debugged execution;
// a debug session instead drives Step directly so it can inspect state
// and check breakpoints between instructions.
func (c *CPU) Run() error {
	if c.State() == Running {
		return fmt.Errorf("mips: CPU already running")
	}
	c.state.Store(uint32(Running))
	for c.State() != Dropping && c.State() != Stopped {
		if err := c.Step(); err != nil {
			c.state.Store(uint32(Stopped))
			return err
		}
	}
	c.state.Store(uint32(Stopped))
	return nil
}
