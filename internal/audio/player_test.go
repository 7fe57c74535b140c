package audio

import "testing"

func TestPCMToSamples(t *testing.T) {
	raw := []byte{0x01, 0x00, 0xfe, 0xff} // 1, -2 little-endian
	out := make([]int16, 4)
	for i := range out {
		out[i] = 7 // stale data from the previous buffer
	}

	pcmToSamples(raw, out)

	want := []int16{1, -2, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("out[%d] = %d, want %d", i, out[i], want[i])
		}
	}
}
