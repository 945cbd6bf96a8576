package memview

import "fmt"

// ErrAlignment is returned by the aligned Load/Store variants when addr is
// not a multiple of the access width.
var ErrAlignment = fmt.Errorf("memview: misaligned access")

func checkAlign(addr uint32, width uint32) error {
	if addr%width != 0 {
		return ErrAlignment
	}
	return nil
}

// offsetInPage splits addr into (page index already resolved by caller, byte
// offset within the page).
func offsetInPage(addr uint32) uint32 {
	return addr & 0xFFFF
}

// --- 8-bit ---

// Load8 reads one unsigned byte, allocating a backing page if the view is
// configured to auto-grow.
func (v *View) Load8(addr uint32) (uint8, error) {
	p, err := v.page(addr)
	if err != nil {
		return 0, err
	}
	return p.Data[offsetInPage(addr)], nil
}

// Load8Signed reads one byte sign-extended to int8's native width.
func (v *View) Load8Signed(addr uint32) (int8, error) {
	b, err := v.Load8(addr)
	return int8(b), err
}

// Store8 writes one byte.
func (v *View) Store8(addr uint32, val uint8) error {
	p, err := v.page(addr)
	if err != nil {
		return err
	}
	p.Data[offsetInPage(addr)] = val
	return nil
}

// --- 16-bit, big-endian ---

// Load16 reads a big-endian halfword. addr must be 2-byte aligned.
func (v *View) Load16(addr uint32) (uint16, error) {
	if err := checkAlign(addr, 2); err != nil {
		return 0, err
	}
	p, err := v.page(addr)
	if err != nil {
		return 0, err
	}
	o := offsetInPage(addr)
	return uint16(p.Data[o])<<8 | uint16(p.Data[o+1]), nil
}

// Load16Signed reads a big-endian halfword, sign-extended.
func (v *View) Load16Signed(addr uint32) (int16, error) {
	h, err := v.Load16(addr)
	return int16(h), err
}

// Store16 writes a big-endian halfword. addr must be 2-byte aligned.
func (v *View) Store16(addr uint32, val uint16) error {
	if err := checkAlign(addr, 2); err != nil {
		return err
	}
	p, err := v.page(addr)
	if err != nil {
		return err
	}
	o := offsetInPage(addr)
	p.Data[o] = byte(val >> 8)
	p.Data[o+1] = byte(val)
	return nil
}

// --- 32-bit, big-endian ---

// Load32 reads a big-endian word. addr must be 4-byte aligned.
func (v *View) Load32(addr uint32) (uint32, error) {
	if err := checkAlign(addr, 4); err != nil {
		return 0, err
	}
	p, err := v.page(addr)
	if err != nil {
		return 0, err
	}
	o := offsetInPage(addr)
	return uint32(p.Data[o])<<24 | uint32(p.Data[o+1])<<16 |
		uint32(p.Data[o+2])<<8 | uint32(p.Data[o+3]), nil
}

// Load32Signed reads a big-endian word as a signed value.
func (v *View) Load32Signed(addr uint32) (int32, error) {
	w, err := v.Load32(addr)
	return int32(w), err
}

// Store32 writes a big-endian word. addr must be 4-byte aligned.
func (v *View) Store32(addr uint32, val uint32) error {
	if err := checkAlign(addr, 4); err != nil {
		return err
	}
	p, err := v.page(addr)
	if err != nil {
		return err
	}
	o := offsetInPage(addr)
	p.Data[o] = byte(val >> 24)
	p.Data[o+1] = byte(val >> 16)
	p.Data[o+2] = byte(val >> 8)
	p.Data[o+3] = byte(val)
	return nil
}

// --- 64-bit, big-endian ---

// Load64 reads a big-endian doubleword. addr must be 8-byte aligned; since
// the page size is a multiple of 8, both halves always lie in the same page.
func (v *View) Load64(addr uint32) (uint64, error) {
	if err := checkAlign(addr, 8); err != nil {
		return 0, err
	}
	hi, err := v.Load32(addr)
	if err != nil {
		return 0, err
	}
	lo, err := v.Load32(addr + 4)
	if err != nil {
		return 0, err
	}
	return uint64(hi)<<32 | uint64(lo), nil
}

// Store64 writes a big-endian doubleword. addr must be 8-byte aligned.
func (v *View) Store64(addr uint32, val uint64) error {
	if err := checkAlign(addr, 8); err != nil {
		return err
	}
	if err := v.Store32(addr, uint32(val>>32)); err != nil {
		return err
	}
	return v.Store32(addr+4, uint32(val))
}

// --- fallible, non-allocating variants ---

// Load32Opt behaves like Load32 but never allocates a backing page: it
// reports ErrUnmapped for any address whose page is not mapped in the pool
// (by any holder), regardless of the view's autoGrow setting. Used by the debug target so an
// inspector reading arbitrary memory cannot have the side effect of
// materializing pages.
func (v *View) Load32Opt(addr uint32) (uint32, error) {
	if err := checkAlign(addr, 4); err != nil {
		return 0, err
	}
	idx := uint16(addr >> 16)
	p := v.cache[idx]
	if p == nil {
		return 0, ErrUnmapped
	}
	o := offsetInPage(addr)
	return uint32(p.Data[o])<<24 | uint32(p.Data[o+1])<<16 |
		uint32(p.Data[o+2])<<8 | uint32(p.Data[o+3]), nil
}

// Load8Opt is the byte-width analogue of Load32Opt.
func (v *View) Load8Opt(addr uint32) (uint8, error) {
	idx := uint16(addr >> 16)
	p := v.cache[idx]
	if p == nil {
		return 0, ErrUnmapped
	}
	return p.Data[offsetInPage(addr)], nil
}

// Store8Opt writes a byte only if the target page already exists.
func (v *View) Store8Opt(addr uint32, val uint8) error {
	idx := uint16(addr >> 16)
	p := v.cache[idx]
	if p == nil {
		return ErrUnmapped
	}
	p.Data[offsetInPage(addr)] = val
	return nil
}
