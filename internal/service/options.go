package service

// DefaultMaxInFlight bounds concurrent predictions when Options leaves it unset.
const DefaultMaxInFlight = 64

// Options controls admission in front of the pipeline. Zero values mean
// "use the package default".
type Options struct {
	// MaxInFlight is the number of predictions admitted at once. Requests
	// beyond it are refused immediately rather than queued.
	MaxInFlight int
}

func (o Options) withDefaults() Options {
	if o.MaxInFlight <= 0 {
		o.MaxInFlight = DefaultMaxInFlight
	}
	return o
}
