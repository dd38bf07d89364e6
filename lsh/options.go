package lsh

// DefaultHashBits is the code width used when none is configured.
const DefaultHashBits = 256

// DefaultSeed seeds the hyperplane generator when none is configured.
const DefaultSeed uint64 = 1234

// Options configures the index.
type Options struct {
	// HashBits is the number of hyperplanes, i.e. the code width in bits.
	HashBits int
	// Seed seeds the hyperplane generator.
	Seed uint64
}

// DefaultOptions contains the default configuration.
var DefaultOptions = Options{
	HashBits: DefaultHashBits,
	Seed:     DefaultSeed,
}

// Option configures an Index.
type Option func(*Options)

// WithHashBits sets the code width in bits.
func WithHashBits(bits int) Option {
	return func(o *Options) {
		o.HashBits = bits
	}
}

// WithSeed sets the hyperplane seed.
func WithSeed(seed uint64) Option {
	return func(o *Options) {
		o.Seed = seed
	}
}

func applyOptions(optFns []Option) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		if fn != nil {
			fn(&opts)
		}
	}
	return opts
}
