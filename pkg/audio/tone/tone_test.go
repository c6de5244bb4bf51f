// ABOUTME: Tests for the sine tone generator
// ABOUTME: Verifies sample formula, channel duplication, and phase continuity
package tone

import (
	"math"
	"testing"

	"github.com/Sendspin/waveout/pkg/audio"
)

func expected(n uint64) int16 {
	return int16(math.Round(0.1 * math.Sin(2*math.Pi*440*float64(n)/48000) * 32767))
}

func TestFirstSampleIsSilent(t *testing.T) {
	gen := NewDefault(audio.DefaultFormat)
	dst := make([]int16, 512*2)

	n := gen.Synthesize(dst, 512)
	if n != 512 {
		t.Fatalf("expected 512 frames, got %d", n)
	}
	if dst[0] != 0 || dst[1] != 0 {
		t.Errorf("expected first frame to be 0, got %d/%d", dst[0], dst[1])
	}
	if gen.Index() != 512 {
		t.Errorf("expected index 512, got %d", gen.Index())
	}
}

func TestSamplesMatchFormula(t *testing.T) {
	gen := NewDefault(audio.DefaultFormat)
	dst := make([]int16, 2048*2)
	gen.Synthesize(dst, 2048)

	for i := 0; i < 2048; i++ {
		want := expected(uint64(i))
		if dst[i*2] != want {
			t.Fatalf("frame %d left: expected %d, got %d", i, want, dst[i*2])
		}
		if dst[i*2+1] != dst[i*2] {
			t.Fatalf("frame %d: channels differ (%d vs %d)", i, dst[i*2], dst[i*2+1])
		}
	}
}

func TestAmplitudeIsAttenuated(t *testing.T) {
	gen := NewDefault(audio.DefaultFormat)
	dst := make([]int16, 48000*2)
	gen.Synthesize(dst, 48000)

	var peak int16
	for _, s := range dst {
		if s > peak {
			peak = s
		}
	}
	if peak != 3277 {
		t.Errorf("expected peak 3277 (10%% of full scale), got %d", peak)
	}
}

func TestIndexAdvancesByRequestedFrames(t *testing.T) {
	gen := NewDefault(audio.DefaultFormat)
	dst := make([]int16, 1024)

	counts := []int{1, 7, 100, 512}
	var total uint64
	for _, c := range counts {
		before := gen.Index()
		gen.Synthesize(dst, c)
		total += uint64(c)
		if gen.Index() != before+uint64(c) {
			t.Errorf("expected index %d after %d frames, got %d", before+uint64(c), c, gen.Index())
		}
	}
	if gen.Index() != total {
		t.Errorf("expected total index %d, got %d", total, gen.Index())
	}
}

func TestPhaseContinuityAcrossChunks(t *testing.T) {
	gen := NewDefault(audio.DefaultFormat)
	first := make([]byte, audio.DefaultFormat.BufferBytes(512))
	second := make([]byte, audio.DefaultFormat.BufferBytes(512))

	gen.SynthesizeBytes(first, 512)
	gen.SynthesizeBytes(second, 512)

	lastOfFirst := audio.Int16LE(first, 511*2)
	if lastOfFirst != expected(511) {
		t.Errorf("last sample of first chunk: expected %d, got %d", expected(511), lastOfFirst)
	}
	firstOfSecond := audio.Int16LE(second, 0)
	if firstOfSecond != expected(512) {
		t.Errorf("first sample of second chunk: expected %d, got %d", expected(512), firstOfSecond)
	}
}

func TestSynthesizeBytesMatchesSynthesize(t *testing.T) {
	a := NewDefault(audio.DefaultFormat)
	b := NewDefault(audio.DefaultFormat)

	samples := make([]int16, 300*2)
	raw := make([]byte, 300*4)
	a.Synthesize(samples, 300)
	b.SynthesizeBytes(raw, 300)

	for i, s := range samples {
		if got := audio.Int16LE(raw, i); got != s {
			t.Fatalf("sample %d: expected %d, got %d", i, s, got)
		}
	}
}

func TestSynthesizeShortDestination(t *testing.T) {
	gen := NewDefault(audio.DefaultFormat)
	dst := make([]int16, 5) // room for two stereo frames

	n := gen.Synthesize(dst, 10)
	if n != 2 {
		t.Errorf("expected 2 frames written, got %d", n)
	}
	if gen.Index() != 2 {
		t.Errorf("expected index 2, got %d", gen.Index())
	}
}

func TestSynthesizeBytesShortDestination(t *testing.T) {
	gen := NewDefault(audio.DefaultFormat)
	raw := make([]byte, 13) // room for three stereo frames

	if n := gen.SynthesizeBytes(raw, 10); n != 3 {
		t.Errorf("expected 3 frames written, got %d", n)
	}
	if gen.Index() != 3 {
		t.Errorf("expected index 3, got %d", gen.Index())
	}
	if raw[12] != 0 {
		t.Errorf("expected trailing byte untouched, got %d", raw[12])
	}
	if got := audio.Int16LE(raw, 4); got != gen.SampleAt(2) {
		t.Errorf("expected third frame %d, got %d", gen.SampleAt(2), got)
	}
}

func TestMonoGenerator(t *testing.T) {
	gen := NewGenerator(1000, 8000, 1.0, 1)
	dst := make([]int16, 4)
	gen.Synthesize(dst, 4)

	// 1 kHz at 8 kHz: quarter period every 2 samples
	want := []int16{0, 23170, 32767, 23170}
	for i, w := range want {
		if dst[i] != w {
			t.Errorf("sample %d: expected %d, got %d", i, w, dst[i])
		}
	}
}
