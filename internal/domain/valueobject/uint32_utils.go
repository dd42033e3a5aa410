package valueobject

// MaxUint32 is the largest value representable by a uint32.
const MaxUint32 = ^uint32(0)

// ClampToUint32 converts an int to uint32, clamping negatives to 0 and
// values above MaxUint32 to MaxUint32.
func ClampToUint32(i int) uint32 {
	if i <= 0 {
		return 0
	}
	if i > int(MaxUint32) {
		return MaxUint32
	}
	return uint32(i)
}
