package repository

// Option configures a Collection.
type Option func(*options)

type options struct {
	kind string
}

// WithKind names the collection in metrics, e.g. "contests".
func WithKind(kind string) Option {
	return func(o *options) {
		if kind != "" {
			o.kind = kind
		}
	}
}
