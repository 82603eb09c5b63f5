// ABOUTME: Tests for audio type helpers
// ABOUTME: Covers sample byte packing and integer conversion
package audio

import "testing"

func TestPutReadSampleRoundTrip(t *testing.T) {
	values := []float32{0, 1, -1, 0.5, -0.25, 1e-7}

	buf := make([]byte, SampleSize)
	for _, v := range values {
		PutSample(buf, v)
		got := ReadSample(buf)
		if got != v {
			t.Errorf("round trip of %v gave %v", v, got)
		}
	}
}

func TestSampleToInt16Clamps(t *testing.T) {
	if got := SampleToInt16(2.0); got != 32767 {
		t.Errorf("expected positive clamp to 32767, got %d", got)
	}
	if got := SampleToInt16(-2.0); got != -32768 {
		t.Errorf("expected negative clamp to -32768, got %d", got)
	}
	if got := SampleToInt16(0); got != 0 {
		t.Errorf("expected zero to stay zero, got %d", got)
	}
}

func TestSampleFromInt(t *testing.T) {
	if got := SampleFromInt(-32768, 16); got != -1.0 {
		t.Errorf("expected 16-bit min to map to -1, got %v", got)
	}
	if got := SampleFromInt(0, 16); got != 0 {
		t.Errorf("expected zero to map to zero, got %v", got)
	}
	if got := SampleFromInt(1<<22, 24); got != 0.5 {
		t.Errorf("expected 24-bit half scale to map to 0.5, got %v", got)
	}
}
