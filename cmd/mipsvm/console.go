package main

import (
	"os"
	"sync"
	"time"

	"github.com/eiannone/keyboard"
	"golang.org/x/term"
)

// keyPressedWindow is how long a key event keeps "KeyPressed" answering
// true for that key. Raw terminal input gives no key-release event, so
// "currently pressed" is approximated as "seen recently".
const keyPressedWindow = 120 * time.Millisecond

// interactiveConsole implements mips.Console (and mips.KeyProber) against
// the real terminal in raw mode: character syscalls read directly from the
// keyboard instead of a line-buffered stdin, so a guest program doing
// single-key input (read char / read int / key-pressed) doesn't wait on an
// Enter press. A single background goroutine drains the keyboard event
// stream so ReadByte and KeyPressed don't fight over one input source.
type interactiveConsole struct {
	oldState *term.State
	events   <-chan keyboard.KeyEvent
	bytes    chan byte

	mu       sync.Mutex
	lastKey  byte
	lastSeen time.Time
}

func newInteractiveConsole() (*interactiveConsole, error) {
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	events, err := keyboard.GetKeys(32)
	if err != nil {
		_ = term.Restore(int(os.Stdin.Fd()), oldState)
		return nil, err
	}
	c := &interactiveConsole{
		oldState: oldState,
		events:   events,
		bytes:    make(chan byte, 32),
	}
	go c.pump()
	return c, nil
}

func (c *interactiveConsole) pump() {
	for ev := range c.events {
		if ev.Err != nil {
			close(c.bytes)
			return
		}
		b := byte(ev.Rune)
		if ev.Key == keyboard.KeySpace {
			b = ' '
		}

		c.mu.Lock()
		c.lastKey = b
		c.lastSeen = time.Now()
		c.mu.Unlock()

		if ev.Key == keyboard.KeyCtrlC {
			close(c.bytes)
			return
		}
		select {
		case c.bytes <- b:
		default:
		}
	}
}

func (c *interactiveConsole) Close() {
	_ = keyboard.Close()
	_ = term.Restore(int(os.Stdin.Fd()), c.oldState)
}

func (c *interactiveConsole) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (c *interactiveConsole) ReadByte() (byte, error) {
	b, ok := <-c.bytes
	if !ok {
		return 0, os.ErrClosed
	}
	return b, nil
}

// KeyPressed implements mips.KeyProber: true if key was the most recent key
// event and it arrived within keyPressedWindow.
func (c *interactiveConsole) KeyPressed(key byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastKey == key && time.Since(c.lastSeen) < keyPressedWindow
}
