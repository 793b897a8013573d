package config

// Reporter defaults
const (
	DefaultReporterOutputDir   = "reports/compare"
	DefaultReporterMaxSnapshot = 50
)

// ReporterConfig defines configuration for generating comparison reports
type ReporterConfig struct {
	OutputDir   string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	ReportTitle string `json:"report_title,omitempty" yaml:"report_title,omitempty"`
	// EmbedSnapshots inlines one viewport snapshot per difference as a data URI
	EmbedSnapshots bool `json:"embed_snapshots" yaml:"embed_snapshots"`
	// MaxSnapshots bounds how many differences get a snapshot
	MaxSnapshots int `json:"max_snapshots,omitempty" yaml:"max_snapshots,omitempty" validate:"omitempty,min=0"`
	// MaxTextLength truncates old/new text before diffing
	MaxTextLength int `json:"max_text_length,omitempty" yaml:"max_text_length,omitempty" validate:"omitempty,min=1"`
}

// NewDefaultReporterConfig creates default reporter configuration
func NewDefaultReporterConfig() ReporterConfig {
	return ReporterConfig{
		OutputDir:      DefaultReporterOutputDir,
		ReportTitle:    "OCR Comparison Report",
		EmbedSnapshots: true,
		MaxSnapshots:   DefaultReporterMaxSnapshot,
		MaxTextLength:  4000,
	}
}
