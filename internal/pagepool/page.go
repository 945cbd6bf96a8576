// Package pagepool implements the paged backing store shared by every
// memory view attached to an emulator instance.
package pagepool

// PageSize is the size in bytes of a single page. The address space is
// divided into 65536 such pages, each addressed by the upper 16 bits of a
// 32-bit address.
const PageSize = 0x10000

// sentinel fills freshly allocated pages so that reads of never-written
// memory are visibly distinguishable from zeroed memory during debugging.
const sentinel = 0xdf

// Page is one fixed-size, page-pool-owned block of bytes.
type Page struct {
	Data [PageSize]byte
}

func newPage() *Page {
	p := &Page{}
	for i := range p.Data {
		p.Data[i] = sentinel
	}
	return p
}
