package memstore

// DefaultBucketsSize is the default number of buckets per store.
var DefaultBucketsSize = 16

// Option is the interface for the options of the in-memory registry.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithBucketsSize sets the number of buckets per store.
// The number of buckets must be a natural number.
func WithBucketsSize(bucketsSize int) Option {
	if bucketsSize <= 0 {
		panic("bucketsSize must be natural number")
	}
	return optionFunc(func(o *options) {
		o.bucketsSize = bucketsSize
	})
}

type options struct {
	bucketsSize int
}

func defaultOptions() options {
	return options{
		bucketsSize: DefaultBucketsSize,
	}
}
