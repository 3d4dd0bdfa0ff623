package audiofeed

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"
)

type bufferSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *bufferSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *bufferSink) Close() error { return nil }

func (s *bufferSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

func TestPCMBudget(t *testing.T) {
	if got := PCMBudget(time.Second, 48000, 2); got != 48000*2*2 {
		t.Fatalf("one second = %d bytes, want %d", got, 48000*2*2)
	}
	if got := PCMBudget(0, 48000, 2); got != 0 {
		t.Fatalf("zero duration = %d bytes", got)
	}
	// Budgets are whole frames: byte count divisible by channels*2.
	if got := PCMBudget(333*time.Millisecond, 44100, 2); got%4 != 0 {
		t.Fatalf("budget %d not frame aligned", got)
	}
}

func TestSilentCuesFillExactBudget(t *testing.T) {
	sink := &bufferSink{}
	feeder := NewFeeder(sink, "ffmpeg", 48000, 2, 4, nil)
	go feeder.Run(context.Background())

	total := time.Duration(0)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		d := 33 * time.Millisecond
		total += d
		if err := feeder.Enqueue(ctx, Cue{Duration: d}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}
	if err := feeder.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Drift correction: the sum of per-cue writes equals the budget of the
	// cumulative duration, not the sum of individually rounded budgets.
	want := PCMBudget(total, 48000, 2)
	if int64(sink.Len()) != want {
		t.Fatalf("wrote %d bytes, want %d", sink.Len(), want)
	}
}

func TestApplyFadeRampsIn(t *testing.T) {
	const budget = 400
	const fadeBytes = 200
	chunk := make([]byte, budget)
	for i := 0; i+1 < len(chunk); i += 2 {
		binary.LittleEndian.PutUint16(chunk[i:i+2], uint16(int16(10000)))
	}
	ApplyFade(chunk, 0, budget, fadeBytes, true, false)

	first := int16(binary.LittleEndian.Uint16(chunk[0:2]))
	if first != 0 {
		t.Fatalf("fade-in must start silent, got %d", first)
	}
	mid := int16(binary.LittleEndian.Uint16(chunk[100:102]))
	if mid < 4500 || mid > 5500 {
		t.Fatalf("mid-ramp sample = %d, want about 5000", mid)
	}
	after := int16(binary.LittleEndian.Uint16(chunk[300:302]))
	if after != 10000 {
		t.Fatalf("sample past the ramp = %d, want untouched 10000", after)
	}
}

func TestApplyFadeRampsOut(t *testing.T) {
	const budget = 400
	const fadeBytes = 200
	chunk := make([]byte, budget)
	for i := 0; i+1 < len(chunk); i += 2 {
		binary.LittleEndian.PutUint16(chunk[i:i+2], uint16(int16(10000)))
	}
	ApplyFade(chunk, 0, budget, fadeBytes, false, true)

	head := int16(binary.LittleEndian.Uint16(chunk[0:2]))
	if head != 10000 {
		t.Fatalf("sample before the ramp = %d, want untouched 10000", head)
	}
	tail := int16(binary.LittleEndian.Uint16(chunk[398:400]))
	if tail < 0 || tail > 150 {
		t.Fatalf("final sample = %d, want near silence", tail)
	}
}

func TestApplyFadeNoFlagsIsNoop(t *testing.T) {
	chunk := make([]byte, 8)
	for i := range chunk {
		chunk[i] = 0x7F
	}
	ApplyFade(chunk, 0, 8, 4, false, false)
	for i, b := range chunk {
		if b != 0x7F {
			t.Fatalf("byte %d modified without fade flags", i)
		}
	}
}
