package debugtarget

import (
	"testing"
	"time"

	"mipsvm/internal/memview"
	"mipsvm/internal/mips"
	"mipsvm/internal/pagepool"
)

func newTestTarget(t *testing.T) (*Target, *mips.CPU) {
	t.Helper()
	pool := pagepool.New()
	view := memview.New(pool, true)
	cpu := mips.NewCPU(view, nil)
	return New(cpu, view), cpu
}

func TestReadWriteRegistersRoundTrip(t *testing.T) {
	target, _ := newTestTarget(t)
	var regs [RegisterCount]uint32
	for i := range regs {
		regs[i] = uint32(i * 7)
	}
	regs[32] = 0 // status must stay 0
	regs[35] = 0 // badvaddr must stay 0
	regs[36] = 0 // cause must stay 0

	target.WriteRegisters(regs)
	got := target.ReadRegisters()

	if got[0] != 0 {
		t.Errorf("r0 must read back as 0 regardless of write, got %d", got[0])
	}
	for i := 1; i < 32; i++ {
		if got[i] != regs[i] {
			t.Errorf("register %d = %d, want %d", i, got[i], regs[i])
		}
	}
	if got[33] != regs[33] { // lo
		t.Errorf("lo = %d, want %d", got[33], regs[33])
	}
	if got[34] != regs[34] { // hi
		t.Errorf("hi = %d, want %d", got[34], regs[34])
	}
	if got[37] != regs[37] { // pc
		t.Errorf("pc = %d, want %d", got[37], regs[37])
	}
}

func TestReadMemoryFailsOnUnmappedByte(t *testing.T) {
	target, _ := newTestTarget(t)
	if _, err := target.ReadMemory(0x9000, 4); err == nil {
		t.Error("expected error reading unmapped memory")
	}
}

func TestWriteThenReadMemory(t *testing.T) {
	target, cpu := newTestTarget(t)
	if err := cpu.Mem.Store32(0x1000, 0); err != nil {
		t.Fatalf("failed to seed page: %v", err)
	}
	if err := target.WriteMemory(0x1000, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("WriteMemory returned error: %v", err)
	}
	got, err := target.ReadMemory(0x1000, 4)
	if err != nil {
		t.Fatalf("ReadMemory returned error: %v", err)
	}
	want := []byte{1, 2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestBreakpointHaltsContinueAt(t *testing.T) {
	target, cpu := newTestTarget(t)
	// J 0 repeated forever (infinite loop at address 0); a breakpoint at
	// address 0 should halt ContinueAt on its very first evaluation.
	if err := cpu.Mem.Store32(0, 0x08000000); err != nil {
		t.Fatalf("failed to load program: %v", err)
	}
	target.InsertBreakpoint(SoftwareExecute, 0)

	target.ContinueAt(nil)

	select {
	case reason := <-target.StopEvents():
		if reason.Kind != StopBreakpoint {
			t.Errorf("expected StopBreakpoint, got %v", reason.Kind)
		}
		if reason.Addr != 0 {
			t.Errorf("expected breakpoint addr 0, got 0x%x", reason.Addr)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for breakpoint stop event")
	}
}

func TestInterruptStopsContinueAt(t *testing.T) {
	target, cpu := newTestTarget(t)
	// tight loop with no breakpoint: J 0.
	if err := cpu.Mem.Store32(0, 0x08000000); err != nil {
		t.Fatalf("failed to load program: %v", err)
	}

	target.ContinueAt(nil)
	time.Sleep(5 * time.Millisecond)
	target.Interrupt()

	select {
	case reason := <-target.StopEvents():
		if reason.Kind != StopSignal {
			t.Errorf("expected StopSignal, got %v", reason.Kind)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for interrupt stop event")
	}
}
