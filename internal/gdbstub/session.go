// Package gdbstub implements a GDB Remote Serial Protocol debug server
// against a debugtarget.Target: packet framing, the command dispatch table,
// and the asynchronous delivery of stop events while still polling for
// incoming client bytes.
package gdbstub

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"mipsvm/internal/debugtarget"
)

// sigTrap is the signal number GDB expects in "S<nn>"/"T<nn>" stop replies
// for a normal breakpoint/step/interrupt stop; this simulator never raises
// real POSIX signals, it only ever reports SIGTRAP-equivalent stops.
const sigTrap = 5

// Session serves one GDB client connection against a single debug target.
// Only one session is ever active per CPU; a second connection attempt is
// the listener's responsibility to refuse or queue.
type Session struct {
	conn      Connection
	target    *debugtarget.Target
	parser    *parser
	noAckMode bool
	done      bool
}

// NewSession creates a session over conn against target.
func NewSession(conn Connection, target *debugtarget.Target) *Session {
	return &Session{conn: conn, target: target, parser: newParser()}
}

// Serve runs the session until the client disconnects, sends Nack, sends
// 'k' (kill), or the connection errors. It returns nil on a clean
// disconnect and a non-nil error on a transport failure.
func (s *Session) Serve() error {
	for !s.done {
		select {
		case reason := <-s.target.StopEvents():
			if err := s.reportStop(reason); err != nil {
				return err
			}
		default:
		}

		available, err := s.conn.Peek()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("gdbstub: connection error: %w", err)
		}
		if !available {
			continue
		}

		b, err := s.conn.ReadByte()
		if err != nil {
			return fmt.Errorf("gdbstub: read error: %w", err)
		}

		pkt, perr := s.parser.feed(b)
		if perr != nil {
			log.Printf("warn: gdbstub protocol error: %v", perr)
			continue
		}
		if pkt == nil {
			continue
		}
		if err := s.handlePacket(pkt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) handlePacket(pkt *Packet) error {
	switch pkt.Kind {
	case PacketAck:
		return nil
	case PacketNack:
		return fmt.Errorf("gdbstub: client sent nack, terminating session")
	case PacketInterrupt:
		s.target.Interrupt()
		return nil
	case PacketCommand:
		if !s.noAckMode {
			if _, err := s.conn.Write([]byte("+")); err != nil {
				return fmt.Errorf("gdbstub: write ack: %w", err)
			}
		}
		reply, hasReply := s.dispatch(pkt.Payload)
		if s.done {
			return nil
		}
		if hasReply {
			if _, err := s.conn.Write(formatPacket(reply)); err != nil {
				return fmt.Errorf("gdbstub: write reply: %w", err)
			}
		}
		return nil
	default:
		return nil
	}
}

func (s *Session) reportStop(reason debugtarget.StopReason) error {
	var payload string
	switch reason.Kind {
	case debugtarget.StopExited:
		payload = fmt.Sprintf("W%02x", reason.Code)
	default:
		payload = fmt.Sprintf("S%02x", sigTrap)
	}
	_, err := s.conn.Write(formatPacket(payload))
	return err
}

// dispatch runs one command payload (the packet body with its leading '$'
// and trailing '#cc' already stripped) and returns the reply text and
// whether a reply packet should be sent at all (continue/step send no
// immediate reply; their outcome arrives later via reportStop).
func (s *Session) dispatch(payload string) (string, bool) {
	switch {
	case payload == "?":
		return fmt.Sprintf("S%02x", sigTrap), true
	case payload == "g":
		return s.readAllRegisters(), true
	case strings.HasPrefix(payload, "G"):
		return s.writeAllRegisters(payload[1:]), true
	case strings.HasPrefix(payload, "p"):
		return s.readRegister(payload[1:]), true
	case strings.HasPrefix(payload, "P"):
		return s.writeRegister(payload[1:]), true
	case strings.HasPrefix(payload, "m"):
		return s.readMemory(payload[1:]), true
	case strings.HasPrefix(payload, "M"):
		return s.writeMemory(payload[1:]), true
	case strings.HasPrefix(payload, "c"):
		s.continueAt(payload[1:])
		return "", false
	case strings.HasPrefix(payload, "s"):
		s.stepAt(payload[1:])
		return "", false
	case strings.HasPrefix(payload, "Z0,"):
		return s.insertBreakpoint(payload[len("Z0,"):]), true
	case strings.HasPrefix(payload, "z0,"):
		return s.removeBreakpoint(payload[len("z0,"):]), true
	case strings.HasPrefix(payload, "qSupported"):
		return "QStartNoAckMode+", true
	case payload == "QStartNoAckMode":
		s.noAckMode = true
		return "OK", true
	case payload == "qHostInfo":
		return "triple:mips-unknown-linux-gnu;endian:big;ptrsize:4;", true
	case payload == "qProcessInfo":
		return "pid:1;endian:big;", true
	case strings.HasPrefix(payload, "qMemoryRegionInfo"):
		return "start:0;size:FFFFFFFF;permissions:rwx;", true
	case strings.HasPrefix(payload, "qRegisterInfo"):
		return s.registerInfo(payload[len("qRegisterInfo"):]), true
	case payload == "qfThreadInfo":
		return "m1", true
	case payload == "qsThreadInfo":
		return "l", true
	case payload == "qC":
		return "QC1", true
	case payload == "qAttached":
		return "1", true
	case strings.HasPrefix(payload, "H"):
		return "OK", true
	case payload == "k":
		s.done = true
		return "", false
	case payload == "vMustReplyEmpty":
		return "", true
	default:
		return "", true
	}
}

func (s *Session) readAllRegisters() string {
	regs := s.target.ReadRegisters()
	var sb strings.Builder
	for _, r := range regs {
		fmt.Fprintf(&sb, "%08x", r)
	}
	return sb.String()
}

func (s *Session) writeAllRegisters(hexData string) string {
	raw, err := hex.DecodeString(hexData)
	if err != nil || len(raw) != debugtarget.RegisterCount*4 {
		return "E01"
	}
	var regs [debugtarget.RegisterCount]uint32
	for i := range regs {
		regs[i] = be32(raw[i*4 : i*4+4])
	}
	s.target.WriteRegisters(regs)
	return "OK"
}

func (s *Session) readRegister(hexIdx string) string {
	idx, err := strconv.ParseUint(hexIdx, 16, 32)
	if err != nil {
		return "E01"
	}
	v, ok := s.target.ReadRegister(int(idx))
	if !ok {
		return "E01"
	}
	return fmt.Sprintf("%08x", v)
}

func (s *Session) writeRegister(args string) string {
	parts := strings.SplitN(args, "=", 2)
	if len(parts) != 2 {
		return "E01"
	}
	idx, err := strconv.ParseUint(parts[0], 16, 32)
	if err != nil {
		return "E01"
	}
	raw, err := hex.DecodeString(parts[1])
	if err != nil || len(raw) != 4 {
		return "E01"
	}
	if !s.target.WriteRegister(int(idx), be32(raw)) {
		return "E01"
	}
	return "OK"
}

func (s *Session) readMemory(args string) string {
	addr, length, ok := splitAddrLen(args, ",")
	if !ok {
		return "E01"
	}
	data, err := s.target.ReadMemory(addr, length)
	if err != nil {
		return "E01"
	}
	return hex.EncodeToString(data)
}

func (s *Session) writeMemory(args string) string {
	head, dataHex, found := strings.Cut(args, ":")
	if !found {
		return "E01"
	}
	addr, length, ok := splitAddrLen(head, ",")
	if !ok {
		return "E01"
	}
	raw, err := hex.DecodeString(dataHex)
	if err != nil || len(raw) != length {
		return "E01"
	}
	if err := s.target.WriteMemory(addr, raw); err != nil {
		return "E01"
	}
	return "OK"
}

func (s *Session) continueAt(arg string) {
	addr := parseOptionalAddr(arg)
	s.target.ContinueAt(addr)
}

func (s *Session) stepAt(arg string) {
	addr := parseOptionalAddr(arg)
	s.target.StepAt(addr)
}

func (s *Session) insertBreakpoint(args string) string {
	addr, _, ok := splitAddrLen(args, ",")
	if !ok {
		return "E01"
	}
	s.target.InsertBreakpoint(debugtarget.SoftwareExecute, addr)
	return "OK"
}

func (s *Session) removeBreakpoint(args string) string {
	addr, _, ok := splitAddrLen(args, ",")
	if !ok {
		return "E01"
	}
	s.target.RemoveBreakpoint(debugtarget.SoftwareExecute, addr)
	return "OK"
}

func (s *Session) registerInfo(hexIdx string) string {
	idx, err := strconv.ParseUint(hexIdx, 16, 32)
	if err != nil {
		return "E45"
	}
	reply := qRegisterInfoReply(int(idx))
	if reply == "" {
		return "E45"
	}
	return reply
}

func splitAddrLen(s string, sep string) (addr uint32, length int, ok bool) {
	head, tail, found := strings.Cut(s, sep)
	if !found {
		return 0, 0, false
	}
	a, err := strconv.ParseUint(head, 16, 32)
	if err != nil {
		return 0, 0, false
	}
	l, err := strconv.ParseUint(tail, 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return uint32(a), int(l), true
}

func parseOptionalAddr(s string) *uint32 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return nil
	}
	addr := uint32(v)
	return &addr
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
