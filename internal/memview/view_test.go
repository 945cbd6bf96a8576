package memview

import (
	"testing"

	"mipsvm/internal/pagepool"
)

func TestStoreLoad32BigEndian(t *testing.T) {
	pool := pagepool.New()
	v := New(pool, true)

	if err := v.Store32(0x1000, 0xdeadbeef); err != nil {
		t.Fatalf("Store32 returned error: %v", err)
	}

	// confirm byte order is big-endian: most significant byte first.
	b0, err := v.Load8(0x1000)
	if err != nil {
		t.Fatalf("Load8 returned error: %v", err)
	}
	if b0 != 0xde {
		t.Errorf("expected big-endian first byte 0xde, got 0x%x", b0)
	}

	got, err := v.Load32(0x1000)
	if err != nil {
		t.Fatalf("Load32 returned error: %v", err)
	}
	if got != 0xdeadbeef {
		t.Errorf("Load32 = 0x%x, want 0xdeadbeef", got)
	}
}

func TestMisalignedAccessErrors(t *testing.T) {
	pool := pagepool.New()
	v := New(pool, true)
	if _, err := v.Load32(0x1001); err != ErrAlignment {
		t.Errorf("expected ErrAlignment for misaligned Load32, got %v", err)
	}
	if err := v.Store16(0x1001, 1); err != ErrAlignment {
		t.Errorf("expected ErrAlignment for misaligned Store16, got %v", err)
	}
}

func TestUnmappedWithoutAutoGrowErrors(t *testing.T) {
	pool := pagepool.New()
	v := New(pool, false)
	if _, err := v.Load32(0x2000); err != ErrUnmapped {
		t.Errorf("expected ErrUnmapped, got %v", err)
	}
}

func TestAutoGrowMaterializesPage(t *testing.T) {
	pool := pagepool.New()
	v := New(pool, true)
	if err := v.Store8(0x30000, 7); err != nil {
		t.Fatalf("Store8 returned error: %v", err)
	}
	if pool.Lookup(3) == nil {
		t.Error("expected auto-grow Store8 to create backing page in the pool")
	}
}

func TestOptVariantsNeverAllocate(t *testing.T) {
	pool := pagepool.New()
	v := New(pool, true)
	if _, err := v.Load32Opt(0x40000); err != ErrUnmapped {
		t.Errorf("expected ErrUnmapped from Load32Opt on unmapped page, got %v", err)
	}
	if pool.Lookup(4) != nil {
		t.Error("Load32Opt must not create a backing page as a side effect")
	}
}

func TestViewSeesOtherViewsPages(t *testing.T) {
	pool := pagepool.New()
	writer := New(pool, true)
	reader := New(pool, false)

	if err := writer.Store32(0x5000, 0xcafef00d); err != nil {
		t.Fatalf("Store32 returned error: %v", err)
	}
	got, err := reader.Load32(0x5000)
	if err != nil {
		t.Fatalf("reader Load32 returned error: %v", err)
	}
	if got != 0xcafef00d {
		t.Errorf("reader Load32 = 0x%x, want 0xcafef00d", got)
	}
}

func Test64BitRoundTrip(t *testing.T) {
	pool := pagepool.New()
	v := New(pool, true)
	if err := v.Store64(0x6000, 0x0102030405060708); err != nil {
		t.Fatalf("Store64 returned error: %v", err)
	}
	got, err := v.Load64(0x6000)
	if err != nil {
		t.Fatalf("Load64 returned error: %v", err)
	}
	if got != 0x0102030405060708 {
		t.Errorf("Load64 = 0x%x, want 0x0102030405060708", got)
	}
}
