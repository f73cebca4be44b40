// internal/rtu/crc.go
package rtu

// CRC-16/MODBUS parameters.
// Polynomial 0xA001 is the bit-reflected form of 0x8005.
const (
	crcPoly uint16 = 0xA001
	crcInit uint16 = 0xFFFF
)

// Checksum computes the CRC-16/MODBUS value of data.
// One byte at a time, least-significant bit first, no final XOR.
func Checksum(data []byte) uint16 {
	crc := crcInit
	for _, b := range data {
		crc ^= uint16(b)
		for i := 0; i < 8; i++ {
			if crc&1 != 0 {
				crc = (crc >> 1) ^ crcPoly
			} else {
				crc >>= 1
			}
		}
	}
	return crc
}

// AppendChecksum appends the CRC of frame to frame, low byte first.
func AppendChecksum(frame []byte) []byte {
	crc := Checksum(frame)
	return append(frame, byte(crc), byte(crc>>8))
}

// ValidChecksum reports whether the trailing two bytes of frame hold the
// correct CRC of everything before them. Frames shorter than the CRC field
// itself are never valid.
func ValidChecksum(frame []byte) bool {
	if len(frame) < 3 {
		return false
	}
	body := frame[:len(frame)-2]
	got := uint16(frame[len(frame)-2]) | uint16(frame[len(frame)-1])<<8
	return Checksum(body) == got
}
