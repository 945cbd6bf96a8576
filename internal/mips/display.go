package mips

import "math"

// Display is the pixel buffer backing syscalls 150-156: a create-once,
// fixed-size grid of packed 0x00RRGGBB pixels. It has no presentation
// logic of its own; syscalls scPublishFrame/scPresentFrame are passed to
// Handler.Syscall. The CPU holds the Display in an unexported field, so a
// handler outside this package cannot read the pixels.
type Display struct {
	Width, Height uint32
	Pixels        []uint32
}

func newDisplay(width, height uint32) *Display {
	return &Display{
		Width:  width,
		Height: height,
		Pixels: make([]uint32, width*height),
	}
}

func (d *Display) set(x, y, rgb uint32) {
	if d == nil || x >= d.Width || y >= d.Height {
		return
	}
	d.Pixels[y*d.Width+x] = rgb & 0xFFFFFF
}

func (d *Display) setLinear(index, rgb uint32) {
	if d == nil || index >= uint32(len(d.Pixels)) {
		return
	}
	d.Pixels[index] = rgb & 0xFFFFFF
}

func (d *Display) fill(rgb uint32) {
	if d == nil {
		return
	}
	rgb &= 0xFFFFFF
	for i := range d.Pixels {
		d.Pixels[i] = rgb
	}
}

// setPixel handles syscall 151: (x, y) in a0/a1, RGB in a2.
func (c *CPU) setPixel(number, x, y, rgb uint32) {
	if c.display == nil {
		c.Handler.SyscallError(c, number, "no display created")
		return
	}
	c.display.set(x, y, rgb)
}

// setPixelLinear handles syscall 152: a flat pixel index in a0, RGB in a1 -
// unlike scSetPixel there is no third argument.
func (c *CPU) setPixelLinear(number, index, rgb uint32) {
	if c.display == nil {
		c.Handler.SyscallError(c, number, "no display created")
		return
	}
	c.display.setLinear(index, rgb)
}

// fillDisplay handles syscall 156: RGB fill color in a0.
func (c *CPU) fillDisplay(number, rgb uint32) {
	if c.display == nil {
		c.Handler.SyscallError(c, number, "no display created")
		return
	}
	c.display.fill(rgb)
}

// hsvToRGB implements syscall 155: packed HSV in, packed RGB out. Hue
// occupies bits 16-23 as degrees/360*255 (i.e. a byte-scaled hue, 0-255
// mapping to 0-360 degrees), saturation and value the low two bytes, each
// 0-255 mapping to the 0-1 range; output is 0x00RRGGBB.
func hsvToRGB(packed uint32) uint32 {
	h := float64((packed>>16)&0xFF) / 255 * 360
	s := float64((packed>>8)&0xFF) / 255
	v := float64(packed&0xFF) / 255

	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	toByte := func(f float64) uint32 {
		return uint32(math.Round((f + m) * 255))
	}
	return toByte(r)<<16 | toByte(g)<<8 | toByte(b)
}
