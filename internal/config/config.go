// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config resolves the pipeline configuration from defaults, a YAML
// config file, MEDIA_BATCH_* environment variables, and command-line flags,
// then validates it.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/pdiddy/media-batch/pkg/types"
)

const (
	// EnvPrefix prefixes every environment override, e.g. MEDIA_BATCH_INPUT_DIR.
	EnvPrefix = "MEDIA_BATCH"

	// FileName is the config file base name searched for without --config.
	FileName = "media-batch"

	ledgerDir  = ".media-batch"
	ledgerFile = "ledger.db"
)

// Keys used with viper. Nested keys use dots; their environment names use
// underscores (signal.window -> MEDIA_BATCH_SIGNAL_WINDOW).
const (
	KeyInputDir        = "input_dir"
	KeyOutputDir       = "output_dir"
	KeyImageExtensions = "image_extensions"
	KeySignalExtension = "signal_extension"
	KeySignalColumn    = "signal.column"
	KeyOutputColumn    = "signal.output_column"
	KeyWindow          = "signal.window"
	KeyKeepGoing       = "keep_going"
	KeyLedgerEnabled   = "ledger.enabled"
	KeyLedgerPath      = "ledger.path"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
)

// Setup registers defaults and environment handling on v. Every key gets a
// default so AutomaticEnv can resolve it during Unmarshal.
func Setup(v *viper.Viper) {
	d := types.DefaultPipelineConfig()
	v.SetDefault(KeyInputDir, d.InputDir)
	v.SetDefault(KeyOutputDir, d.OutputDir)
	v.SetDefault(KeyImageExtensions, d.ImageExts)
	v.SetDefault(KeySignalExtension, d.SignalExt)
	v.SetDefault(KeySignalColumn, d.Signal.Column)
	v.SetDefault(KeyOutputColumn, d.Signal.OutputColumn)
	v.SetDefault(KeyWindow, d.Signal.Window)
	v.SetDefault(KeyKeepGoing, d.KeepGoing)
	v.SetDefault(KeyLedgerEnabled, d.Ledger.Enabled)
	v.SetDefault(KeyLedgerPath, d.Ledger.Path)
	v.SetDefault(KeyLogLevel, d.Log.Level)
	v.SetDefault(KeyLogFormat, d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals v into a PipelineConfig and validates it.
func Load(v *viper.Viper) (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.PipelineConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return types.PipelineConfig{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report yaml key names so messages match the config file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks cfg against its struct tags and returns one error listing
// every violation.
func Validate(cfg types.PipelineConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating configuration: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "PipelineConfig.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "startswith":
		return fmt.Sprintf("%s must start with %q (got %q)", field, fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s (got %v)", field, fe.Param(), fe.Value())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", field, fe.Param(), fe.Value())
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %q", field, fe.Tag())
	}
}

// LedgerPath returns the configured ledger database path, defaulting to
// <output_dir>/.media-batch/ledger.db.
func LedgerPath(cfg types.PipelineConfig) string {
	if cfg.Ledger.Path != "" {
		return cfg.Ledger.Path
	}
	return filepath.Join(cfg.OutputDir, ledgerDir, ledgerFile)
}
