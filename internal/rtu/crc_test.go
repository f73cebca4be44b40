// internal/rtu/crc_test.go
package rtu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChecksumGoldenVectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"read item 1 price request", []byte{0x01, 0x03, 0x00, 0x01, 0x00, 0x01}, 0xCAD5},
		{"select item 0", []byte{0x01, 0x06, 0xFF, 0x11, 0x00, 0x00}, 0xDBE9},
		{"write price 50", []byte{0x01, 0x06, 0x01, 0x00, 0x00, 0x32}, 0xE309},
		{"read response value 50", []byte{0x01, 0x03, 0x02, 0x00, 0x32}, 0x9139},
		{"illegal function exception", []byte{0x01, 0x83, 0x01}, 0xF080},
		{"device failure exception", []byte{0x01, 0x83, 0x04}, 0xF340},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Checksum(tt.data))
		})
	}
}

func TestAppendChecksumWireOrder(t *testing.T) {
	frame := AppendChecksum([]byte{0x01, 0x03, 0x00, 0x01, 0x00, 0x01})

	// Low byte first, high byte second.
	assert.Equal(t, byte(0xD5), frame[6])
	assert.Equal(t, byte(0xCA), frame[7])
}

func TestValidChecksumRoundTrip(t *testing.T) {
	frame := AppendChecksum([]byte{0x01, 0x06, 0x00, 0x05, 0x12, 0x34})
	assert.True(t, ValidChecksum(frame))

	frame[3] ^= 0x01
	assert.False(t, ValidChecksum(frame))
}

func TestValidChecksumShortFrames(t *testing.T) {
	assert.False(t, ValidChecksum(nil))
	assert.False(t, ValidChecksum([]byte{0x01}))
	assert.False(t, ValidChecksum([]byte{0x01, 0x02}))
}
