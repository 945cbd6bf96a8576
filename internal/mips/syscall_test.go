package mips

import "testing"

func TestSyscallDispatchesOnInstructionImmediateNotV0(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(2, scPrintInt) // $v0 deliberately holds an unrelated value
	cpu.SetReg(4, 7)          // $a0

	// SYSCALL with call ID scHalt packed into the J-format immediate field.
	instr := uint32(opSYSCALL)<<26 | scHalt
	loadProgram(t, cpu, []uint32{instr})
	// A fresh CPU is already Stopped; start from Running so only the halt
	// syscall can produce Stopped below.
	cpu.state.Store(uint32(Running))

	if err := cpu.Step(); err != nil {
		t.Fatalf("Step returned error: %v", err)
	}
	if cpu.State() != Stopped {
		t.Errorf("expected halt syscall (via immediate) to stop the CPU, state = %v", cpu.State())
	}
}

func TestRequestStopLandsInStoppedNotDropping(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.RequestStop()
	if cpu.State() != Stopped {
		t.Errorf("RequestStop: state = %v, want Stopped", cpu.State())
	}
}

func TestDropLandsInDropping(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.Drop()
	if cpu.State() != Dropping {
		t.Errorf("Drop: state = %v, want Dropping", cpu.State())
	}
}

func TestKeyPressedFalseWithoutKeyProber(t *testing.T) {
	cpu := newTestCPU(t)
	if cpu.keyPressed('a') {
		t.Error("expected keyPressed to be false against a console without KeyProber")
	}
}

type fakeKeyConsole struct {
	stdConsole
	key byte
}

func (f *fakeKeyConsole) KeyPressed(key byte) bool { return key == f.key }

func TestKeyPressedConsultsKeyProber(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetConsole(&fakeKeyConsole{key: 'x'})
	if !cpu.keyPressed('x') {
		t.Error("expected keyPressed('x') to be true")
	}
	if cpu.keyPressed('y') {
		t.Error("expected keyPressed('y') to be false")
	}
}

func TestDisplayCreateSetPixelAndFill(t *testing.T) {
	cpu := newTestCPU(t)
	cpu.SetReg(4, 4) // width
	cpu.SetReg(5, 3) // height
	cpu.doSyscall(scDisplayCreate)
	if cpu.display == nil || cpu.display.Width != 4 || cpu.display.Height != 3 {
		t.Fatalf("expected a 4x3 display, got %+v", cpu.display)
	}

	cpu.SetReg(4, 1) // x
	cpu.SetReg(5, 2) // y
	cpu.SetReg(6, 0x00FF00) // green
	cpu.doSyscall(scSetPixel)
	if got := cpu.display.Pixels[2*4+1]; got != 0x00FF00 {
		t.Errorf("setPixel: pixel(1,2) = 0x%06x, want 0x00ff00", got)
	}

	cpu.SetReg(4, 0xFF0000)
	cpu.doSyscall(scFillDisplay)
	for i, p := range cpu.display.Pixels {
		if p != 0xFF0000 {
			t.Fatalf("fillDisplay: pixel %d = 0x%06x, want 0xff0000", i, p)
		}
	}
}

func TestHSVToRGBPrimaryColors(t *testing.T) {
	cases := []struct {
		name string
		hsv  uint32
		want uint32
	}{
		{"red", packHSV(0, 255, 255), 0xFF0000},
		{"green", packHSV(85, 255, 255), 0x00FF00},
		{"blue", packHSV(170, 255, 255), 0x0000FF},
		{"black (zero value)", packHSV(0, 255, 0), 0x000000},
		{"white (zero saturation)", packHSV(0, 0, 255), 0xFFFFFF},
	}
	for _, tc := range cases {
		if got := hsvToRGB(tc.hsv); !closeRGB(got, tc.want) {
			t.Errorf("%s: hsvToRGB(0x%06x) = 0x%06x, want ~0x%06x", tc.name, tc.hsv, got, tc.want)
		}
	}
}

func packHSV(h, s, v byte) uint32 {
	return uint32(h)<<16 | uint32(s)<<8 | uint32(v)
}

// closeRGB tolerates +-2 per channel for the byte-scaled hue's rounding.
func closeRGB(got, want uint32) bool {
	for shift := uint(0); shift < 24; shift += 8 {
		g := int((got >> shift) & 0xFF)
		w := int((want >> shift) & 0xFF)
		d := g - w
		if d < -2 || d > 2 {
			return false
		}
	}
	return true
}
