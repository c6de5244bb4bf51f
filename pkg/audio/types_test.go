// ABOUTME: Tests for audio types
// ABOUTME: Tests format sizing and sample conversion functions
package audio

import "testing"

func TestDefaultFormatSizes(t *testing.T) {
	f := DefaultFormat

	if f.BlockAlign() != 4 {
		t.Errorf("expected block align 4, got %d", f.BlockAlign())
	}
	if f.AvgBytesPerSec() != 48000*4 {
		t.Errorf("expected avg bytes/sec %d, got %d", 48000*4, f.AvgBytesPerSec())
	}
	if f.BufferBytes(512) != 2048 {
		t.Errorf("expected 2048 bytes for 512 frames, got %d", f.BufferBytes(512))
	}
}

func TestFormatValidate(t *testing.T) {
	tests := []struct {
		name    string
		format  Format
		wantErr bool
	}{
		{"default", DefaultFormat, false},
		{"zero rate", Format{SampleRate: 0, Channels: 2, BitDepth: 16}, true},
		{"zero channels", Format{SampleRate: 48000, Channels: 0, BitDepth: 16}, true},
		{"odd bit depth", Format{SampleRate: 48000, Channels: 2, BitDepth: 12}, true},
		{"24bit", Format{SampleRate: 96000, Channels: 2, BitDepth: 24}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.format.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPutInt16LE(t *testing.T) {
	tests := []struct {
		name     string
		input    []int16
		expected []byte
	}{
		{"zero", []int16{0}, []byte{0x00, 0x00}},
		{"positive", []int16{0x1234}, []byte{0x34, 0x12}},
		{"negative one", []int16{-1}, []byte{0xFF, 0xFF}},
		{"max", []int16{MaxInt16}, []byte{0xFF, 0x7F}},
		{"min", []int16{MinInt16}, []byte{0x00, 0x80}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]byte, len(tt.expected))
			n := PutInt16LE(dst, tt.input)
			if n != len(tt.expected) {
				t.Fatalf("expected %d bytes written, got %d", len(tt.expected), n)
			}
			for i := range tt.expected {
				if dst[i] != tt.expected[i] {
					t.Errorf("byte %d: expected 0x%02X, got 0x%02X", i, tt.expected[i], dst[i])
				}
			}
			if got := Int16LE(dst, 0); got != tt.input[0] {
				t.Errorf("Int16LE: expected %d, got %d", tt.input[0], got)
			}
		})
	}
}

func TestPutInt16LEShortDestination(t *testing.T) {
	dst := make([]byte, 3)
	n := PutInt16LE(dst, []int16{1, 2, 3})
	if n != 2 {
		t.Errorf("expected 2 bytes written into a 3-byte buffer, got %d", n)
	}
}

func TestSampleToFloat(t *testing.T) {
	if SampleToFloat(0) != 0 {
		t.Error("expected 0 for silence")
	}
	if SampleToFloat(MinInt16) != -1 {
		t.Errorf("expected -1 for min sample, got %f", SampleToFloat(MinInt16))
	}
	if v := SampleToFloat(MaxInt16); v >= 1 || v < 0.999 {
		t.Errorf("expected just under 1 for max sample, got %f", v)
	}
}
