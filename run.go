package patience

import "context"

// Run executes op and returns its result with circuit breaker protection.
// This is a convenience wrapper for operations that return a value.
func Run[T any](ctx context.Context, c *Circuit, op Op[T]) (T, error) {
	var result T
	err := c.Do(ctx, func(ctx context.Context) error {
		var opErr error
		result, opErr = op(ctx)
		return opErr
	})
	return result, err
}

// Protect binds op to c, returning an operation that consults the circuit
// on every call. The circuit persists across calls; keep one per protected
// call site and share it among the callers it should protect together.
func Protect[T any](c *Circuit, op Op[T]) Op[T] {
	return func(ctx context.Context) (T, error) {
		return Run(ctx, c, op)
	}
}
