package batch

// Option overrides part of a batch definition while it is compiled.
type Option func(*options)

type options struct {
	constants string
	bindings  map[string]float64
	maxLength int
}

// WithConstants replaces the constants preset named by the definition.
// An empty name keeps the definition's preset.
func WithConstants(name string) Option {
	return func(o *options) {
		o.constants = name
	}
}

// WithBindings layers bindings over the definition's shared bindings.
// Per-entry bindings still take precedence.
func WithBindings(bindings map[string]float64) Option {
	return func(o *options) {
		o.bindings = bindings
	}
}

// WithMaxLength rejects entries whose expression is longer than max
// characters. Zero disables the check.
func WithMaxLength(max int) Option {
	return func(o *options) {
		o.maxLength = max
	}
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
