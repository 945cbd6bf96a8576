package mips

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"
)

// Console is the byte-oriented I/O surface the built-in syscall catalogue
// reads from and writes to for the console-facing calls (print, read
// integer, read/print character). It is a separate seam from
// ExternalHandler because console I/O is a concrete facility every syscall
// catalogue needs, not a per-deployment fault policy; the default, created
// on the first console syscall, talks to os.Stdin/os.Stdout, and cmd/mipsvm
// substitutes a raw-mode terminal console when run interactively.
type Console interface {
	io.Writer
	ReadByte() (byte, error)
}

// KeyProber is an optional Console capability for syscall 104 (key-pressed):
// consoles that can observe current key state without blocking implement it.
// Consoles that can't (the line-buffered stdio default) simply don't
// implement it, and scKeyPressed always reports false against them.
type KeyProber interface {
	KeyPressed(key byte) bool
}

type stdConsole struct {
	in *bufio.Reader
}

func newStdConsole() *stdConsole {
	return &stdConsole{in: bufio.NewReader(os.Stdin)}
}

func (s *stdConsole) Write(p []byte) (int, error) { return os.Stdout.Write(p) }
func (s *stdConsole) ReadByte() (byte, error)      { return s.in.ReadByte() }

// Syscall numbers implemented directly by the interpreter. Any number not
// in this table falls through to Handler.Syscall as an escape hatch for
// host-specific extensions.
const (
	scExit             = 0
	scPrintInt         = 1
	scPrintAddr        = 4
	scReadInt          = 5
	scRandom           = 99
	scPrintChar        = 101
	scReadChar         = 102
	scKeyPressed       = 104
	scSleepMillis      = 105
	scSleepSinceLast   = 106
	scMillisSinceEpoch = 107
	scMicrosSinceEpoch = 108
	scHalt             = 111
	scDisplayCreate    = 150
	scSetPixel         = 151
	scSetPixelLinear   = 152
	scPublishFrame     = 153
	scPresentFrame     = 154
	scHSVToRGB         = 155
	scFillDisplay      = 156
)

// doSyscall dispatches on number, the 26-bit call ID SYSCALL carries in its
// own instruction word, using $a0-$a3 (registers 4-7) as arguments and
// placing results in $v0/$v1, matching the calling convention spec.md
// documents for trap handling. $v0 itself is never the call ID: it only
// ever holds an argument or a return value.
func (c *CPU) doSyscall(number uint32) {
	a0 := c.Reg(4)
	a1 := c.Reg(5)
	a2 := c.Reg(6)

	switch number {
	case scExit, scHalt:
		c.RequestStop()
	case scPrintInt:
		fmt.Fprintf(c.console(), "%d", int32(a0))
	case scPrintAddr:
		fmt.Fprintf(c.console(), "0x%08x", a0)
	case scReadInt:
		c.SetReg(2, c.readIntFromConsole())
	case scRandom:
		c.SetReg(2, c.randomInRange(a0, a1))
	case scPrintChar:
		fmt.Fprintf(c.console(), "%c", rune(a0))
	case scReadChar:
		b, err := c.console().ReadByte()
		if err != nil {
			c.Handler.SyscallError(c, number, err.Error())
			return
		}
		c.SetReg(2, uint32(b))
	case scKeyPressed:
		c.SetReg(2, boolToWord(c.keyPressed(byte(a0))))
	case scSleepMillis:
		time.Sleep(time.Duration(a0) * time.Millisecond)
	case scSleepSinceLast:
		c.sleepSinceLastCall(a0)
	case scMillisSinceEpoch:
		c.SetReg(2, uint32(time.Now().UnixMilli()))
	case scMicrosSinceEpoch:
		micros := uint64(time.Now().UnixMicro())
		c.SetReg(2, uint32(micros>>32))
		c.SetReg(3, uint32(micros))
	case scDisplayCreate:
		c.display = newDisplay(a0, a1)
	case scSetPixel:
		c.setPixel(number, a0, a1, a2)
	case scSetPixelLinear:
		c.setPixelLinear(number, a0, a1)
	case scPublishFrame:
		c.Handler.Syscall(c, number)
	case scPresentFrame:
		c.presentFrame()
	case scHSVToRGB:
		c.SetReg(2, hsvToRGB(a0))
	case scFillDisplay:
		c.fillDisplay(number, a0)
	default:
		c.Handler.Syscall(c, number)
	}
}

// keyPressed reports whether key is currently held, if the installed
// console can answer that (see KeyProber); consoles that cannot observe key
// state outside of a blocking read (the stdio default) always report false.
func (c *CPU) keyPressed(key byte) bool {
	prober, ok := c.console().(KeyProber)
	if !ok {
		return false
	}
	return prober.KeyPressed(key)
}

func (c *CPU) console() Console {
	if c.consoleIO == nil {
		c.consoleIO = newStdConsole()
	}
	return c.consoleIO
}

func (c *CPU) readIntFromConsole() uint32 {
	var n int64
	if _, err := fmt.Fscan(readerFrom(c.console()), &n); err != nil {
		c.Handler.SyscallError(c, scReadInt, err.Error())
		return 0
	}
	return uint32(n)
}

// readerFrom adapts Console to io.Reader one byte at a time for fmt.Fscan,
// which only needs Read.
type byteReader struct{ c Console }

func (b byteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	v, err := b.c.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = v
	return 1, nil
}

func readerFrom(c Console) io.Reader { return byteReader{c} }

// randomInRange returns a value in [lo, hi). The generator is seeded once
// per CPU from the wall clock at first use, unless SeedRandom has pinned it
// to a fixed value for reproducible tests.
func (c *CPU) randomInRange(lo, hi uint32) uint32 {
	if hi <= lo {
		return lo
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return lo + uint32(c.rng.Int63n(int64(hi-lo)))
}

// SeedRandom pins the syscall-99 random generator to a deterministic
// sequence, for tests and reproducible debugging sessions.
func (c *CPU) SeedRandom(seed int64) {
	c.rng = rand.New(rand.NewSource(seed))
}

func (c *CPU) sleepSinceLastCall(minMillis uint32) {
	now := time.Now()
	if !c.lastSleepCall.IsZero() {
		elapsed := now.Sub(c.lastSleepCall)
		want := time.Duration(minMillis) * time.Millisecond
		if elapsed < want {
			time.Sleep(want - elapsed)
		}
	}
	c.lastSleepCall = time.Now()
}

// presentFrame implements the "present frame, block until the consumer
// acknowledges" call. The interpreter itself has no display consumer, so
// blocking and ack semantics belong to whatever Handler.Syscall
// implementation a host installs; it is handed the CPU and is expected to
// poll cpu.State() == Dropping to abandon the block cleanly on session
// teardown. The default handler's Syscall is a log-only no-op, so under
// DefaultHandler this call returns immediately.
func (c *CPU) presentFrame() {
	c.Handler.Syscall(c, scPresentFrame)
}
