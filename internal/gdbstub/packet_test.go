package gdbstub

import "testing"

func TestParserRoundTripsCommandPacket(t *testing.T) {
	p := newParser()
	wire := formatPacket("g")

	var got *Packet
	for _, b := range wire {
		pkt, err := p.feed(b)
		if err != nil {
			t.Fatalf("feed(0x%02x) returned error: %v", b, err)
		}
		if pkt != nil {
			got = pkt
		}
	}
	if got == nil {
		t.Fatal("expected a completed packet")
	}
	if got.Kind != PacketCommand || got.Payload != "g" {
		t.Errorf("got %+v, want Command{g}", got)
	}
}

func TestParserRejectsBadChecksum(t *testing.T) {
	p := newParser()
	wire := []byte("$g#00") // wrong checksum; correct for "g" is 0x67

	var lastErr error
	for _, b := range wire {
		_, err := p.feed(b)
		if err != nil {
			lastErr = err
		}
	}
	if lastErr == nil {
		t.Fatal("expected a checksum error")
	}
}

func TestParserRecognizesAckNackInterrupt(t *testing.T) {
	p := newParser()
	pkt, err := p.feed('+')
	if err != nil || pkt == nil || pkt.Kind != PacketAck {
		t.Fatalf("expected Ack packet, got %+v, err %v", pkt, err)
	}

	pkt, err = p.feed('-')
	if err != nil || pkt == nil || pkt.Kind != PacketNack {
		t.Fatalf("expected Nack packet, got %+v, err %v", pkt, err)
	}

	pkt, err = p.feed(0x03)
	if err != nil || pkt == nil || pkt.Kind != PacketInterrupt {
		t.Fatalf("expected Interrupt packet, got %+v, err %v", pkt, err)
	}
}

func TestChecksumMatchesModulo256Sum(t *testing.T) {
	got := checksum([]byte("g"))
	if got != 0x67 {
		t.Errorf("checksum(%q) = 0x%02x, want 0x67", "g", got)
	}
}
