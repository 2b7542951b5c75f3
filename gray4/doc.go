// Package gray4 provides a 4-bit grayscale image laid out the way grayscale
// OLED controllers such as the SSD1327 store their display RAM.
//
// Each byte holds two horizontally adjacent pixels: the high nibble is the
// left (even) pixel and the low nibble the right (odd) pixel.
//
//	Pixels: 0  1  2  3
//	Values: 5  10 3  12
//	Bytes:  0x5A  0x3C
//
// Since a byte is the smallest unit a controller can address, rectangles
// sent to a display are widened to even pixel columns with Align. Region
// streams the bytes of such a rectangle without copying, and Changed finds
// the smallest rectangle that differs between two frames:
//
//	r := gray4.Changed(last, next)
//	if !r.Empty() {
//		di.SendData(displayi2c.U8Iter(next.Region(r)))
//	}
package gray4
