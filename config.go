package sidetoc

import "time"

// Default configuration values.
const (
	DefaultMaxTopics         = 25
	DefaultPreviewLength     = 60
	DefaultHeadingMinLength  = 3
	DefaultHeadingMaxLength  = 100
	DefaultBootstrapDelay    = 500 * time.Millisecond
	DefaultHighlightDuration = 2 * time.Second
)

// Config holds the tunable limits of a scan.
type Config struct {
	// MaxTopics caps the result list; earliest topics are kept.
	MaxTopics int `json:"maxTopics" yaml:"max_topics"`

	// PreviewLength is the maximum message preview length in characters
	// before the ellipsis marker is appended.
	PreviewLength int `json:"previewLength" yaml:"preview_length"`

	// HeadingMinLength and HeadingMaxLength bound accepted heading text:
	// min is inclusive, max is exclusive.
	HeadingMinLength int `json:"headingMinLength" yaml:"heading_min_length"`
	HeadingMaxLength int `json:"headingMaxLength" yaml:"heading_max_length"`

	// BootstrapDelay is the wait between subscribing to mutations and the
	// first forced scan.
	BootstrapDelay time.Duration `json:"bootstrapDelay" yaml:"bootstrap_delay"`

	// HighlightDuration is how long a revealed element keeps its highlight.
	HighlightDuration time.Duration `json:"highlightDuration" yaml:"highlight_duration"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		MaxTopics:         DefaultMaxTopics,
		PreviewLength:     DefaultPreviewLength,
		HeadingMinLength:  DefaultHeadingMinLength,
		HeadingMaxLength:  DefaultHeadingMaxLength,
		BootstrapDelay:    DefaultBootstrapDelay,
		HighlightDuration: DefaultHighlightDuration,
	}
}

// Validate returns an error if the configuration is unusable.
func (c Config) Validate() error {
	if c.MaxTopics < 1 {
		return Errorf(EINVALID, "max topics must be at least 1")
	}
	if c.PreviewLength < 1 {
		return Errorf(EINVALID, "preview length must be at least 1")
	}
	if c.HeadingMinLength < 0 {
		return Errorf(EINVALID, "heading min length must not be negative")
	}
	if c.HeadingMaxLength <= c.HeadingMinLength {
		return Errorf(EINVALID, "heading max length must be greater than min length")
	}
	if c.BootstrapDelay < 0 || c.HighlightDuration < 0 {
		return Errorf(EINVALID, "delays must not be negative")
	}
	return nil
}
