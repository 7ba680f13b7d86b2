package workerpool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// WorkerPool Creation Tests
// =============================================================================

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
}

func TestWorkerPool_CreateZeroWorkers(t *testing.T) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

func TestWorkerPool_CreateNegativeWorkers(t *testing.T) {
	pool := NewWorkerPool(-5)
	defer pool.Close()

	expected := runtime.GOMAXPROCS(0)
	if pool.Workers() != expected {
		t.Errorf("Workers() = %d, want %d (GOMAXPROCS)", pool.Workers(), expected)
	}
}

// =============================================================================
// ExecuteAll Tests — the pool's one work-submission path, exercised the
// way internal/postprocess and internal/encoder actually call it: one
// batch of row-chunk closures per pass.
// =============================================================================

func TestWorkerPool_ExecuteAll(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numChunks := 100

	chunks := make([]func(), numChunks)
	for i := range chunks {
		chunks[i] = func() {
			counter.Add(1)
		}
	}

	pool.ExecuteAll(chunks)

	if counter.Load() != int64(numChunks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numChunks)
	}
}

func TestWorkerPool_ExecuteAll_EveryChunkRuns(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var mu sync.Mutex
	results := make([]int, 0, 10)

	chunks := make([]func(), 10)
	for i := range chunks {
		idx := i
		chunks[i] = func() {
			mu.Lock()
			results = append(results, idx)
			mu.Unlock()
		}
	}

	pool.ExecuteAll(chunks)

	// All chunks should be executed (order may vary due to parallelism).
	if len(results) != 10 {
		t.Errorf("results length = %d, want 10", len(results))
	}

	seen := make(map[int]bool)
	for _, v := range results {
		seen[v] = true
	}
	for i := 0; i < 10; i++ {
		if !seen[i] {
			t.Errorf("missing chunk index %d in results", i)
		}
	}
}

func TestWorkerPool_ExecuteAll_Empty(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	// Should not panic or block — internal/postprocess's no-RGB branch
	// and a zero-height frame both end up calling ExecuteAll with no
	// chunks.
	pool.ExecuteAll(nil)
	pool.ExecuteAll([]func(){})
}

func TestWorkerPool_ExecuteAll_SingleChunk(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var executed atomic.Bool

	pool.ExecuteAll([]func(){
		func() { executed.Store(true) },
	})

	if !executed.Load() {
		t.Error("single chunk was not executed")
	}
}

func TestWorkerPool_ExecuteAll_SingleWorker(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()

	var counter atomic.Int64

	chunks := make([]func(), 50)
	for i := range chunks {
		chunks[i] = func() {
			counter.Add(1)
		}
	}

	pool.ExecuteAll(chunks)

	if counter.Load() != 50 {
		t.Errorf("counter = %d, want 50", counter.Load())
	}
}

func TestWorkerPool_ExecuteAll_ManyWorkers(t *testing.T) {
	pool := NewWorkerPool(32)
	defer pool.Close()

	var counter atomic.Int64

	chunks := make([]func(), 100)
	for i := range chunks {
		chunks[i] = func() {
			counter.Add(1)
		}
	}

	pool.ExecuteAll(chunks)

	if counter.Load() != 100 {
		t.Errorf("counter = %d, want 100", counter.Load())
	}
}

func TestWorkerPool_ExecuteAll_ManySmallChunks(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numChunks := 10000

	chunks := make([]func(), numChunks)
	for i := range chunks {
		chunks[i] = func() {
			counter.Add(1)
		}
	}

	pool.ExecuteAll(chunks)

	if counter.Load() != int64(numChunks) {
		t.Errorf("counter = %d, want %d", counter.Load(), numChunks)
	}
}

// =============================================================================
// Close Tests
// =============================================================================

func TestWorkerPool_CloseIdempotent(t *testing.T) {
	pool := NewWorkerPool(4)

	// Multiple closes should not panic.
	pool.Close()
	pool.Close()
	pool.Close()
}

func TestWorkerPool_ExecuteAllAfterCloseIsNoop(t *testing.T) {
	pool := NewWorkerPool(4)
	pool.Close()

	var executed atomic.Bool

	// Should be a no-op, not panic or block.
	pool.ExecuteAll([]func(){
		func() { executed.Store(true) },
	})

	time.Sleep(50 * time.Millisecond)

	if executed.Load() {
		t.Error("chunk was executed on a closed pool")
	}
}

func TestWorkerPool_NoGoroutineLeak(t *testing.T) {
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	baseline := runtime.NumGoroutine()

	for i := 0; i < 5; i++ {
		pool := NewWorkerPool(4)

		chunks := make([]func(), 100)
		for j := range chunks {
			chunks[j] = func() {}
		}
		pool.ExecuteAll(chunks)

		pool.Close()
	}

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	final := runtime.NumGoroutine()

	// Allow for some variance (test framework goroutines, etc).
	if final > baseline+2 {
		t.Errorf("goroutine count: baseline=%d, final=%d (leak detected)", baseline, final)
	}
}

// =============================================================================
// Concurrency Tests — mirrors internal/postprocess and internal/encoder
// both constructing and using their own pool within the same Close call.
// =============================================================================

func TestWorkerPool_ConcurrentExecuteAllCallers(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	var counter atomic.Int64
	numCallers := 10
	chunksPerCaller := 50

	var wg sync.WaitGroup
	wg.Add(numCallers)

	for g := 0; g < numCallers; g++ {
		go func() {
			defer wg.Done()

			chunks := make([]func(), chunksPerCaller)
			for i := range chunks {
				chunks[i] = func() {
					counter.Add(1)
				}
			}

			pool.ExecuteAll(chunks)
		}()
	}

	wg.Wait()

	expected := int64(numCallers * chunksPerCaller)
	if counter.Load() != expected {
		t.Errorf("counter = %d, want %d", counter.Load(), expected)
	}
}

// =============================================================================
// Benchmarks — mirror the row-chunk batch sizes internal/postprocess and
// internal/encoder submit per pass.
// =============================================================================

func BenchmarkWorkerPool_ExecuteAll_Small(b *testing.B) {
	pool := NewWorkerPool(runtime.GOMAXPROCS(0))
	defer pool.Close()

	chunks := make([]func(), 10)
	for i := range chunks {
		chunks[i] = func() {}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(chunks)
	}
}

func BenchmarkWorkerPool_ExecuteAll_Medium(b *testing.B) {
	pool := NewWorkerPool(runtime.GOMAXPROCS(0))
	defer pool.Close()

	chunks := make([]func(), 100)
	for i := range chunks {
		chunks[i] = func() {}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(chunks)
	}
}

func BenchmarkWorkerPool_ExecuteAll_Large(b *testing.B) {
	pool := NewWorkerPool(runtime.GOMAXPROCS(0))
	defer pool.Close()

	chunks := make([]func(), 1000)
	for i := range chunks {
		chunks[i] = func() {}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(chunks)
	}
}

func BenchmarkWorkerPool_vs_Goroutines(b *testing.B) {
	numChunks := 100

	b.Run("WorkerPool", func(b *testing.B) {
		pool := NewWorkerPool(runtime.GOMAXPROCS(0))
		defer pool.Close()

		chunks := make([]func(), numChunks)
		for i := range chunks {
			chunks[i] = func() {}
		}

		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			pool.ExecuteAll(chunks)
		}
	})

	b.Run("RawGoroutines", func(b *testing.B) {
		b.ResetTimer()
		b.ReportAllocs()

		for i := 0; i < b.N; i++ {
			var wg sync.WaitGroup
			wg.Add(numChunks)
			for j := 0; j < numChunks; j++ {
				go func() {
					defer wg.Done()
				}()
			}
			wg.Wait()
		}
	})
}

func BenchmarkWorkerPool_WithWork(b *testing.B) {
	// Simulate a realistic row-chunk: a small per-pixel computation, the
	// shape of internal/postprocess's scalePixels closures.
	pool := NewWorkerPool(runtime.GOMAXPROCS(0))
	defer pool.Close()

	chunks := make([]func(), 100)
	for i := range chunks {
		chunks[i] = func() {
			sum := 0
			for j := 0; j < 1000; j++ {
				sum += j
			}
			_ = sum
		}
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(chunks)
	}
}
