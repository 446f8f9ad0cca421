package pipeline

import "strings"

// Defaults applied when corresponding Config fields are unset.
const (
	DefaultImageSize                 = 128
	DefaultMaxFileSize         int64 = 10 << 20
	DefaultConfidenceThreshold       = 0.60

	// LowConfidenceLabel replaces the predicted label when the top score is
	// below the confidence threshold.
	LowConfidenceLabel = "Low Confidence Prediction"
)

// DefaultAllowedExtensions lists the accepted upload extensions.
var DefaultAllowedExtensions = []string{"jpg", "jpeg", "png"}

// Config holds the tunables of the pipeline. Zero values mean "unspecified"
// and are replaced by the package defaults.
type Config struct {
	ImageSize           int
	MaxFileSize         int64
	AllowedExtensions   []string
	ConfidenceThreshold float64
}

// WithDefaults returns a copy of c with unset fields filled in and the
// extension list normalized to lowercase without leading dots.
func (c Config) WithDefaults() Config {
	out := c
	if out.ImageSize <= 0 {
		out.ImageSize = DefaultImageSize
	}
	if out.MaxFileSize <= 0 {
		out.MaxFileSize = DefaultMaxFileSize
	}
	if out.ConfidenceThreshold <= 0 {
		out.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	exts := out.AllowedExtensions
	if len(exts) == 0 {
		exts = DefaultAllowedExtensions
	}
	out.AllowedExtensions = make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" {
			out.AllowedExtensions = append(out.AllowedExtensions, e)
		}
	}
	return out
}
