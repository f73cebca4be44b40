// internal/rtu/frame.go
package rtu

// Wire geometry for the two supported function codes.
// Request and write-echo frames are always 8 bytes:
//
//	[slave][fc][addr_hi][addr_lo][data_hi][data_lo][crc_lo][crc_hi]
const (
	FrameLen     = 8
	ExceptionLen = 5
)

// Function codes.
const (
	FuncReadHolding uint8 = 0x03
	FuncWriteSingle uint8 = 0x06
)

// Exception codes.
const (
	ExcIllegalFunction uint8 = 0x01
	ExcDeviceFailure   uint8 = 0x04
)

// Broadcast is the slave address every device processes but never answers.
const Broadcast uint8 = 0x00

// Frame is one validated 8-byte request, decoded.
// Built by the Assembler, consumed exactly once by the Dispatcher.
type Frame struct {
	Slave    uint8
	Function uint8
	Address  uint16
	Value    uint16 // data for FC06, quantity for FC03
}

// DecodeFrame decodes raw into a Frame. It checks length only; address and
// CRC validation belong to the dispatcher so the error taxonomy stays in one
// place.
func DecodeFrame(raw []byte) (Frame, bool) {
	if len(raw) != FrameLen {
		return Frame{}, false
	}
	return Frame{
		Slave:    raw[0],
		Function: raw[1],
		Address:  uint16(raw[2])<<8 | uint16(raw[3]),
		Value:    uint16(raw[4])<<8 | uint16(raw[5]),
	}, true
}

// ReadResponse builds the FC03 response carrying a single register value,
// CRC appended.
func ReadResponse(slave uint8, value uint16) []byte {
	resp := []byte{slave, FuncReadHolding, 2, byte(value >> 8), byte(value)}
	return AppendChecksum(resp)
}

// EchoResponse rebuilds the FC06 request bytes as the response, CRC appended.
func EchoResponse(f Frame) []byte {
	resp := []byte{
		f.Slave, f.Function,
		byte(f.Address >> 8), byte(f.Address),
		byte(f.Value >> 8), byte(f.Value),
	}
	return AppendChecksum(resp)
}

// ExceptionResponse builds an exception frame: function code with the high
// bit set plus the exception code, CRC appended.
func ExceptionResponse(slave, function, code uint8) []byte {
	resp := []byte{slave, function | 0x80, code}
	return AppendChecksum(resp)
}
