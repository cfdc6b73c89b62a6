package patience

import (
	"context"
	"errors"
	"testing"
)

func BenchmarkCircuit_Do_Success(b *testing.B) {
	ctx := context.Background()
	circuit := New("bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		circuit.Do(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

func BenchmarkCircuit_Do_Failure(b *testing.B) {
	ctx := context.Background()
	errBench := errors.New("bench error")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		circuit := New("bench", WithFailureThreshold(b.N+1))
		circuit.Do(ctx, func(ctx context.Context) error {
			return errBench
		})
	}
}

func BenchmarkCircuit_Do_Open(b *testing.B) {
	ctx := context.Background()
	circuit := New("bench", WithFailureThreshold(1))

	circuit.Do(ctx, func(ctx context.Context) error {
		return errors.New("trip")
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		circuit.Do(ctx, func(ctx context.Context) error {
			return nil
		})
	}
}

func BenchmarkCircuit_Do_Parallel(b *testing.B) {
	ctx := context.Background()
	circuit := New("bench")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			circuit.Do(ctx, func(ctx context.Context) error {
				return nil
			})
		}
	})
}

func BenchmarkCircuit_State(b *testing.B) {
	circuit := New("bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		circuit.State()
	}
}

func BenchmarkRetry_FirstTrySuccess(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Retry(ctx, func(ctx context.Context) (int, error) {
			return 1, nil
		}, nil)
	}
}

func BenchmarkPoll_FirstTrySuccess(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Poll(ctx, func(ctx context.Context) (int, error) {
			return 1, nil
		}, func(n int) bool { return true })
	}
}
