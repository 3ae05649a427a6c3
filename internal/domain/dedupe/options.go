package dedupe

type options struct {
	capacity int
}

// Option applies a configuration option to the in-memory index.
type Option func(*options)

// WithCapacity pre-sizes the index for the expected number of keys.
func WithCapacity(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.capacity = n
		}
	}
}
