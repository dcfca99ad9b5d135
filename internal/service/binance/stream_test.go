package binance

import (
	"sync"
	"testing"
	"time"

	"BitSight/pkg/logger"
)

func testStream(t *testing.T) *Stream {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewStream(StreamConfig{URL: "wss://example.invalid/ws", Symbol: "BTCUSDT"},
		func(string, float64, time.Time) {}, log)
}

func TestStreamCloseWithoutConnect(t *testing.T) {
	s := testStream(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close on a never-connected stream: %v", err)
	}
	if s.IsConnected() {
		t.Fatal("stream must not report connected")
	}
}

func TestStreamStateConcurrentAccess(t *testing.T) {
	s := testStream(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.Close()
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = s.IsConnected()
				_ = s.current()
			}
		}()
	}
	wg.Wait()

	if s.IsConnected() || s.current() != nil {
		t.Fatal("closed stream must have no live connection")
	}
}
