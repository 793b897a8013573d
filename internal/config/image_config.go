package config

// Image source modes
const (
	ImageModeRemote   = "remote"
	ImageModeEmbedded = "embedded"
)

// ImageConfig selects where page images come from.
type ImageConfig struct {
	// Mode is "remote" (HTTP, may forward auth headers) or "embedded" (local files, never credentialed)
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty" validate:"omitempty,imagemode"`
	// LocalDir is the root for relative and file:// image URLs in embedded mode
	LocalDir string `json:"local_dir,omitempty" yaml:"local_dir,omitempty"`
	// ForwardAuth sends the API auth token along with remote image requests
	ForwardAuth bool `json:"forward_auth" yaml:"forward_auth"`
	// MaxImageBytes rejects larger image payloads
	MaxImageBytes int `json:"max_image_bytes,omitempty" yaml:"max_image_bytes,omitempty" validate:"omitempty,min=1024"`
}

// NewDefaultImageConfig creates default image configuration
func NewDefaultImageConfig() ImageConfig {
	return ImageConfig{
		Mode:          ImageModeRemote,
		LocalDir:      ".",
		ForwardAuth:   true,
		MaxImageBytes: 64 * 1024 * 1024,
	}
}
