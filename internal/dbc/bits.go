package dbc

// Bit-level field codec shared by the decoder and encoder. Positions are in
// DBC notation: for Intel signals StartBit is a flat LSB-first index over
// the payload; for Motorola signals the bit number is reversed within its
// byte (DBC bit 7 is the MSB of byte 0). Beyond that one transform both
// orders walk forward through increasing byte indices, consuming low-to-high
// bits of each byte. That forward walk is the documented behavior for
// multi-byte Motorola fields and is locked in by the tests here; it is not
// the traditional cross-byte Motorola walk some tools use.

// ExtractBits reads bitLength bits starting at the DBC position startBit
// from data, least-significant extracted bit at result bit 0. The second
// return is false when the payload is empty, the length is 0 or above 64,
// or the computed start byte lies outside the payload.
func ExtractBits(data []byte, startBit, bitLength uint8, order ByteOrder) (uint64, bool) {
	if len(data) == 0 || bitLength == 0 || bitLength > 64 {
		return 0, false
	}

	byteIdx, bitIdx := bitPosition(int(startBit), order)
	if byteIdx >= len(data) {
		return 0, false
	}

	var result uint64
	remaining := int(bitLength)
	total := int(bitLength)
	for remaining > 0 && byteIdx < len(data) {
		n := remaining
		if avail := 8 - bitIdx; n > avail {
			n = avail
		}
		mask := byte(((1 << n) - 1) << bitIdx)
		bits := uint64((data[byteIdx] & mask) >> bitIdx)
		result |= bits << (total - remaining)

		remaining -= n
		bitIdx += n
		if bitIdx >= 8 {
			bitIdx = 0
			byteIdx++
		}
	}
	return result, true
}

// InsertBits writes the low bitLength bits of value into data at the DBC
// position startBit. Bits outside the target range are preserved. Returns
// false, without touching data, under the same conditions that make
// ExtractBits fail.
func InsertBits(data []byte, value uint64, startBit, bitLength uint8, order ByteOrder) bool {
	if len(data) == 0 || bitLength == 0 || bitLength > 64 {
		return false
	}

	byteIdx, bitIdx := bitPosition(int(startBit), order)
	if byteIdx >= len(data) {
		return false
	}

	remaining := int(bitLength)
	shift := 0
	for remaining > 0 && byteIdx < len(data) {
		n := remaining
		if avail := 8 - bitIdx; n > avail {
			n = avail
		}
		chunk := byte((value >> shift) & ((1 << n) - 1))
		clear := ^byte(((1 << n) - 1) << bitIdx)
		data[byteIdx] = (data[byteIdx] & clear) | (chunk << bitIdx)

		remaining -= n
		shift += n
		bitIdx += n
		if bitIdx >= 8 {
			bitIdx = 0
			byteIdx++
		}
	}
	return true
}

// SignExtend fills all bits above bitLength with the field's sign bit.
// Widths of 64 and above return value unchanged.
func SignExtend(value uint64, bitLength uint8) uint64 {
	if bitLength >= 64 {
		return value
	}
	signBit := uint64(1) << (bitLength - 1)
	if value&signBit != 0 {
		return value | ^((uint64(1) << bitLength) - 1)
	}
	return value
}

// bitPosition resolves a DBC start bit to a (byte, bit-within-byte) cursor.
func bitPosition(startBit int, order ByteOrder) (int, int) {
	if order == Motorola {
		return startBit / 8, 7 - (startBit % 8)
	}
	return startBit / 8, startBit % 8
}
