// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Extensions selects which input files the scanner hands to each transform.
// Matching is a case-sensitive suffix comparison (".PNG" is not ".png").
type Extensions struct {
	// ImageExts lists the suffixes routed to the image transform (default .jpg, .png).
	ImageExts []string `json:"image_extensions" yaml:"image_extensions" mapstructure:"image_extensions" validate:"required,min=1,dive,startswith=."`

	// SignalExt is the suffix routed to the signal transform (default .csv).
	SignalExt string `json:"signal_extension" yaml:"signal_extension" mapstructure:"signal_extension" validate:"required,startswith=."`
}

// SignalConfig holds settings for the signal transform.
type SignalConfig struct {
	// Column is the header name of the numeric column to smooth (default "signal").
	Column string `json:"column" yaml:"column" mapstructure:"column" validate:"required"`

	// OutputColumn is the header name appended for the smoothed values
	// (default "filtered_signal").
	OutputColumn string `json:"output_column" yaml:"output_column" mapstructure:"output_column" validate:"required,nefield=Column"`

	// Window is the moving-average window size in samples (default 5).
	Window int `json:"window" yaml:"window" mapstructure:"window" validate:"gte=1"`
}

// LedgerConfig controls the SQLite run history.
type LedgerConfig struct {
	// Enabled turns run recording on (default true).
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the database file. Empty means <output_dir>/.media-batch/ledger.db.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// LogConfig selects the structured logger's level and handler.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `json:"format" yaml:"format" mapstructure:"format" validate:"oneof=text json"`
}

// PipelineConfig is the explicit configuration passed into a batch run.
type PipelineConfig struct {
	// InputDir is the directory scanned for image and signal files.
	InputDir string `json:"input_dir" yaml:"input_dir" mapstructure:"input_dir" validate:"required"`

	// OutputDir receives one output file per processed input. It is created,
	// including parents, before any file is processed.
	OutputDir string `json:"output_dir" yaml:"output_dir" mapstructure:"output_dir" validate:"required"`

	Extensions `yaml:",inline" mapstructure:",squash"`

	Signal SignalConfig `json:"signal" yaml:"signal" mapstructure:"signal"`

	// KeepGoing isolates per-file failures instead of aborting the batch on
	// the first error.
	KeepGoing bool `json:"keep_going" yaml:"keep_going" mapstructure:"keep_going"`

	Ledger LedgerConfig `json:"ledger" yaml:"ledger" mapstructure:"ledger"`

	Log LogConfig `json:"log" yaml:"log" mapstructure:"log"`
}

// Default values for PipelineConfig.
const (
	DefaultInputDir        = "data/input"
	DefaultOutputDir       = "data/output"
	DefaultSignalExtension = ".csv"
	DefaultSignalColumn    = "signal"
	DefaultFilteredColumn  = "filtered_signal"
	DefaultWindow          = 5
)

// DefaultImageExtensions returns the image suffix allow-list.
func DefaultImageExtensions() []string {
	return []string{".jpg", ".png"}
}

// DefaultPipelineConfig returns a configuration with every default applied.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		InputDir:  DefaultInputDir,
		OutputDir: DefaultOutputDir,
		Extensions: Extensions{
			ImageExts: DefaultImageExtensions(),
			SignalExt: DefaultSignalExtension,
		},
		Signal: SignalConfig{
			Column:       DefaultSignalColumn,
			OutputColumn: DefaultFilteredColumn,
			Window:       DefaultWindow,
		},
		Ledger: LedgerConfig{Enabled: true},
		Log:    LogConfig{Level: "info", Format: "text"},
	}
}
