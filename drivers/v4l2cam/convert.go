//go:build linux

package v4l2cam

// yuyvToRGB converts a packed YUYV (YUV 4:2:2) buffer into tightly packed
// RGB24. Each 4-byte YUYV group carries two pixels sharing one chroma pair.
// Uses the BT.601 integer approximation.
func yuyvToRGB(src []byte, width, height int) []byte {
	dst := make([]byte, width*height*3)

	groups := width * height / 2
	for i := 0; i < groups; i++ {
		y0 := int(src[i*4])
		u := int(src[i*4+1]) - 128
		y1 := int(src[i*4+2])
		v := int(src[i*4+3]) - 128

		r := (351 * v) >> 8
		g := (-86*u - 179*v) >> 8
		b := (444 * u) >> 8

		dst[i*6+0] = clamp(y0 + r)
		dst[i*6+1] = clamp(y0 + g)
		dst[i*6+2] = clamp(y0 + b)
		dst[i*6+3] = clamp(y1 + r)
		dst[i*6+4] = clamp(y1 + g)
		dst[i*6+5] = clamp(y1 + b)
	}

	return dst
}

func clamp(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
