package gdbstub

import (
	"sync"
	"testing"
	"time"

	"mipsvm/internal/debugtarget"
	"mipsvm/internal/memview"
	"mipsvm/internal/mips"
	"mipsvm/internal/pagepool"
)

// fakeConn is an in-memory Connection for driving a Session from a test
// without a real socket: inbound holds bytes the "client" has sent that the
// session has not yet consumed, outbound accumulates what the session
// wrote back.
type fakeConn struct {
	mu       sync.Mutex
	inbound  []byte
	outbound []byte
}

func (f *fakeConn) Peek() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inbound) > 0, nil
}

func (f *fakeConn) ReadByte() (byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for len(f.inbound) == 0 {
		f.mu.Unlock()
		time.Sleep(time.Millisecond)
		f.mu.Lock()
	}
	b := f.inbound[0]
	f.inbound = f.inbound[1:]
	return b, nil
}

func (f *fakeConn) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outbound = append(f.outbound, p...)
	return len(p), nil
}

func (f *fakeConn) send(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inbound = append(f.inbound, b...)
}

func (f *fakeConn) takeOutbound() []byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.outbound
	f.outbound = nil
	return out
}

func newTestSession(t *testing.T) (*Session, *fakeConn, *mips.CPU) {
	t.Helper()
	pool := pagepool.New()
	view := memview.New(pool, true)
	cpu := mips.NewCPU(view, nil)
	target := debugtarget.New(cpu, view)
	conn := &fakeConn{}
	return NewSession(conn, target), conn, cpu
}

func TestDispatchReadRegisters(t *testing.T) {
	s, _, _ := newTestSession(t)
	reply, hasReply := s.dispatch("g")
	if !hasReply {
		t.Fatal("expected a reply for 'g'")
	}
	if len(reply) != debugtarget.RegisterCount*8 {
		t.Errorf("reply length = %d, want %d hex chars", len(reply), debugtarget.RegisterCount*8)
	}
}

func TestDispatchQSupportedOffersNoAckMode(t *testing.T) {
	s, _, _ := newTestSession(t)
	reply, hasReply := s.dispatch("qSupported:multiprocess+")
	if !hasReply || reply != "QStartNoAckMode+" {
		t.Errorf("got (%q, %v), want (\"QStartNoAckMode+\", true)", reply, hasReply)
	}
}

func TestDispatchUnknownPacketRepliesEmpty(t *testing.T) {
	s, _, _ := newTestSession(t)
	reply, hasReply := s.dispatch("vSomethingUnsupported")
	if !hasReply || reply != "" {
		t.Errorf("got (%q, %v), want (\"\", true)", reply, hasReply)
	}
}

func TestDispatchMemoryReadWrite(t *testing.T) {
	s, _, cpu := newTestSession(t)
	if err := cpu.Mem.Store32(0x2000, 0); err != nil {
		t.Fatalf("failed to seed page: %v", err)
	}
	reply, _ := s.dispatch("M2000,4:01020304")
	if reply != "OK" {
		t.Fatalf("write reply = %q, want OK", reply)
	}
	reply, _ = s.dispatch("m2000,4")
	if reply != "01020304" {
		t.Errorf("read reply = %q, want 01020304", reply)
	}
}

func TestDispatchBreakpointLifecycle(t *testing.T) {
	s, _, _ := newTestSession(t)
	reply, _ := s.dispatch("Z0,1000,4")
	if reply != "OK" {
		t.Fatalf("insert reply = %q, want OK", reply)
	}
	reply, _ = s.dispatch("z0,1000,4")
	if reply != "OK" {
		t.Fatalf("remove reply = %q, want OK", reply)
	}
}

func TestServeHandshakeWithAck(t *testing.T) {
	s, conn, _ := newTestSession(t)
	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	conn.send(formatPacket("qSupported:multiprocess+"))
	// expect "+" ack then the $...# reply.
	deadline := time.After(time.Second)
	var out []byte
	for {
		out = conn.takeOutbound()
		if len(out) > 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for session reply")
		case <-time.After(time.Millisecond):
		}
	}
	if out[0] != '+' {
		t.Errorf("expected leading ack '+', got %q", out)
	}

	conn.send(formatPacket("k"))

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Serve to exit after kill")
	}
}
