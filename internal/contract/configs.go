package contract

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/gridthreat/schema"
)

// Default values for configuration.
const (
	DefaultPrecision = 2
	MaxPrecision     = 4
	DefaultProfile   = schema.StandardProfile
)

// ProfileConfig holds pprof settings for one invocation.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// CategoryWeightRaw holds the custom parameters of one category.
// Use pointers so that omitted fields keep the profile default.
type CategoryWeightRaw struct {
	Base       *float64 `mapstructure:"base"`
	Modded     *float64 `mapstructure:"modded"`
	FillScaled *bool    `mapstructure:"fill_scaled"`
}

// TuningRaw holds the custom combination constants from the YAML config file.
type TuningRaw struct {
	LargeFactor   *float64 `mapstructure:"large_factor"`
	SmallFactor   *float64 `mapstructure:"small_factor"`
	StaticFactor  *float64 `mapstructure:"static_factor"`
	GlobalFactor  *float64 `mapstructure:"global_factor"`
	CellDivisor   *float64 `mapstructure:"cell_divisor"`
	SizeDivisor   *float64 `mapstructure:"size_divisor"`
	OutputDivisor *float64 `mapstructure:"output_divisor"`
}

// ThresholdsRawInput holds label threshold definitions from the YAML config file.
type ThresholdsRawInput struct {
	Critical *float64 `mapstructure:"critical"`
	High     *float64 `mapstructure:"high"`
	Moderate *float64 `mapstructure:"moderate"`
}

// Config holds the runtime configuration of one invocation.
// This struct is the "final, validated" config and is never mutated after validation.
type Config struct {
	SnapshotRef string // File path, or snapshot name when a store backend is active

	MultiGrid    bool
	CellOverride int // Occupied-cell count to use instead of walking; 0 walks
	Budget       int // Instruction budget; 0 is unlimited

	Profile schema.WeightProfile

	// Weights is the final table, computed from the profile defaults + custom overrides
	Weights schema.WeightTable

	// ModdedBlocks is the set of normalized TypeID/SubtypeID keys scored with modded weights
	ModdedBlocks map[string]struct{}

	// LabelThresholds maps scores to display labels
	LabelThresholds schema.LabelThresholds

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
	Verbose    bool

	SnapshotBackend   schema.DatabaseBackend
	SnapshotDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	SnapshotRef string

	// --- Fields from rootCmd.PersistentFlags() ---
	Output            string `mapstructure:"output"`
	OutputFile        string `mapstructure:"output-file"`
	Precision         int    `mapstructure:"precision"`
	Width             int    `mapstructure:"width"`
	Color             string `mapstructure:"color"`
	Verbose           bool   `mapstructure:"verbose"`
	SnapshotBackend   string `mapstructure:"snapshot-backend"`
	SnapshotDBConnect string `mapstructure:"snapshot-db-connect"`

	// --- Fields from scoreCmd.Flags() ---
	MultiGrid     bool   `mapstructure:"multi-grid"`
	CellOverride  int    `mapstructure:"cell-override"`
	Profile       string `mapstructure:"profile"`
	Budget        int    `mapstructure:"budget"`
	ThresholdsStr string `mapstructure:"thresholds-override"`

	// --- Fields from config file ---
	ModdedBlocks []string                      `mapstructure:"modded-blocks"`
	Weights      map[string]*CategoryWeightRaw `mapstructure:"weights"`
	Tuning       TuningRaw                     `mapstructure:"tuning"`
	Thresholds   ThresholdsRawInput            `mapstructure:"thresholds"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Weights = c.Weights.Clone()
	if c.ModdedBlocks != nil {
		clone.ModdedBlocks = make(map[string]struct{}, len(c.ModdedBlocks))
		maps.Copy(clone.ModdedBlocks, c.ModdedBlocks)
	}
	return &clone
}

// IsModded reports whether a definition is in the modded-blocks list.
func (c *Config) IsModded(def schema.DefinitionID) bool {
	_, ok := c.ModdedBlocks[def.Normalize().Key()]
	return ok
}

// SortedModdedBlocks returns the modded-block keys in ascending order.
func (c *Config) SortedModdedBlocks() []string {
	return slices.Sorted(maps.Keys(c.ModdedBlocks))
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processWeights(cfg, input); err != nil {
		return err
	}
	if err := processModdedBlocks(cfg, input); err != nil {
		return err
	}
	if err := processLabelThresholds(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("snapshot-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("snapshot-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ValidateBackend parses and validates the snapshot backend settings.
// The snapshot subcommands call it directly since they skip scoring validation.
func ValidateBackend(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(input.SnapshotBackend)
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.SnapshotBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.SnapshotBackend]; !ok {
		return fmt.Errorf("invalid snapshot backend '%s'. must be sqlite, mysql, postgresql, none", input.SnapshotBackend)
	}
	cfg.SnapshotDBConnect = input.SnapshotDBConnect
	return ValidateDatabaseConnectionString(cfg.SnapshotBackend, cfg.SnapshotDBConnect)
}

// RevalidateRun applies per-request overrides to a cloned config. An empty
// profile keeps the configured one; a different profile resets the weights
// to that profile's defaults.
func RevalidateRun(cfg *Config, profile string, cellOverride int) error {
	if cellOverride < 0 {
		return fmt.Errorf("cell-override cannot be negative (received %d)", cellOverride)
	}
	cfg.CellOverride = cellOverride

	p := schema.WeightProfile(strings.ToLower(strings.TrimSpace(profile)))
	if p == "" || p == cfg.Profile {
		return nil
	}
	if _, ok := schema.ValidWeightProfiles[p]; !ok {
		return fmt.Errorf("invalid profile '%s'. must be standard, compact", profile)
	}
	cfg.Profile = p
	cfg.Weights = schema.GetDefaultWeights(p)
	return nil
}

// validateSimpleInputs processes and validates all scalar fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.SnapshotRef = strings.TrimSpace(input.SnapshotRef)
	cfg.MultiGrid = input.MultiGrid
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Override and budget ---
	if input.CellOverride < 0 {
		return fmt.Errorf("cell-override cannot be negative (received %d)", input.CellOverride)
	}
	cfg.CellOverride = input.CellOverride

	if input.Budget < 0 {
		return fmt.Errorf("budget cannot be negative (received %d)", input.Budget)
	}
	cfg.Budget = input.Budget

	// --- 2. Profile ---
	profile := strings.ToLower(input.Profile)
	if profile == "" {
		profile = string(DefaultProfile)
	}
	cfg.Profile = schema.WeightProfile(profile)
	if _, ok := schema.ValidWeightProfiles[cfg.Profile]; !ok {
		return fmt.Errorf("invalid profile '%s'. must be standard, compact", input.Profile)
	}

	// --- 3. Precision and Output ---
	if err := ValidateOutput(cfg, input); err != nil {
		return err
	}

	// --- 4. Backend ---
	return ValidateBackend(cfg, input)
}

// ValidateOutput parses and validates the output settings.
// The snapshot subcommands call it directly since they skip scoring validation.
func ValidateOutput(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, table, json, csv, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}
	return nil
}

// ProcessWeights applies the raw overrides on top of a profile's default table.
func ProcessWeights(profile schema.WeightProfile, weights map[string]*CategoryWeightRaw, tuning TuningRaw) (schema.WeightTable, error) {
	table := schema.GetDefaultWeights(profile)

	// Sorted so the first reported error is stable
	names := slices.Sorted(maps.Keys(weights))
	for _, name := range names {
		raw := weights[name]
		category := schema.Category(strings.ToLower(name))
		if _, ok := schema.ValidCategories[category]; !ok {
			return schema.WeightTable{}, fmt.Errorf("unknown weight category '%s'", name)
		}
		if raw == nil {
			continue
		}
		w := table.Categories[category]
		if raw.Base != nil {
			w.Base = *raw.Base
		}
		if raw.Modded != nil {
			w.Modded = *raw.Modded
		}
		if raw.FillScaled != nil {
			w.FillScaled = *raw.FillScaled
		}
		if w.Base < 0 || w.Modded < 0 {
			return schema.WeightTable{}, fmt.Errorf("weights for category %s cannot be negative", category)
		}
		table.Categories[category] = w
	}

	t := &table.Tuning
	for _, f := range []struct {
		name string
		raw  *float64
		dst  *float64
	}{
		{"large_factor", tuning.LargeFactor, &t.LargeFactor},
		{"small_factor", tuning.SmallFactor, &t.SmallFactor},
		{"static_factor", tuning.StaticFactor, &t.StaticFactor},
		{"global_factor", tuning.GlobalFactor, &t.GlobalFactor},
		{"cell_divisor", tuning.CellDivisor, &t.CellDivisor},
		{"size_divisor", tuning.SizeDivisor, &t.SizeDivisor},
		{"output_divisor", tuning.OutputDivisor, &t.OutputDivisor},
	} {
		if f.raw == nil {
			continue
		}
		if *f.raw < 0 {
			return schema.WeightTable{}, fmt.Errorf("tuning %s cannot be negative (received %.3f)", f.name, *f.raw)
		}
		*f.dst = *f.raw
	}

	return table, nil
}

// processWeights computes the final weight table for the selected profile.
func processWeights(cfg *Config, input *ConfigRawInput) error {
	table, err := ProcessWeights(cfg.Profile, input.Weights, input.Tuning)
	if err != nil {
		return err
	}
	cfg.Weights = table
	return nil
}

// processModdedBlocks validates the modded-blocks list, falling back to the built-in list.
func processModdedBlocks(cfg *Config, input *ConfigRawInput) error {
	keys := input.ModdedBlocks
	if keys == nil {
		keys = schema.DefaultModdedBlocks
	}
	cfg.ModdedBlocks = make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if strings.TrimSpace(key) == "" {
			continue
		}
		def, err := schema.ParseDefinitionID(key)
		if err != nil {
			return fmt.Errorf("invalid modded-blocks entry: %w", err)
		}
		cfg.ModdedBlocks[def.Normalize().Key()] = struct{}{}
	}
	return nil
}

// processLabelThresholds resolves the display label thresholds.
// Command-line --thresholds-override flag takes precedence over config file settings.
func processLabelThresholds(cfg *Config, input *ConfigRawInput) error {
	thresholds := schema.DefaultLabelThresholds()

	if input.Thresholds.Critical != nil {
		thresholds.Critical = *input.Thresholds.Critical
	}
	if input.Thresholds.High != nil {
		thresholds.High = *input.Thresholds.High
	}
	if input.Thresholds.Moderate != nil {
		thresholds.Moderate = *input.Thresholds.Moderate
	}

	if input.ThresholdsStr != "" {
		if err := parseThresholdsString(input.ThresholdsStr, &thresholds); err != nil {
			return fmt.Errorf("invalid --thresholds-override format: %w", err)
		}
	}

	if thresholds.Moderate < 0 || thresholds.Moderate > thresholds.High || thresholds.High > thresholds.Critical {
		return fmt.Errorf("label thresholds must satisfy 0 <= moderate <= high <= critical (received %.1f, %.1f, %.1f)",
			thresholds.Moderate, thresholds.High, thresholds.Critical)
	}

	cfg.LabelThresholds = thresholds
	return nil
}

// parseThresholdsString parses a string like "critical:500,high:200,moderate:50"
// into the given thresholds.
func parseThresholdsString(s string, thresholds *schema.LabelThresholds) error {
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		name, valueStr, ok := strings.Cut(part, ":")
		if !ok {
			return fmt.Errorf("invalid threshold format '%s', expected 'label:value'", part)
		}

		value, err := strconv.ParseFloat(strings.TrimSpace(valueStr), 64)
		if err != nil {
			return fmt.Errorf("invalid threshold value '%s' for %s: %w", valueStr, name, err)
		}

		switch strings.ToLower(strings.TrimSpace(name)) {
		case "critical":
			thresholds.Critical = value
		case "high":
			thresholds.High = value
		case "moderate":
			thresholds.Moderate = value
		default:
			return fmt.Errorf("invalid label '%s', must be critical, high, or moderate", name)
		}
	}
	return nil
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	profilePrefix = strings.TrimSpace(profilePrefix)
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
}

// GetSnapshotDBFilePath returns the path to the SQLite DB file for snapshot storage.
func GetSnapshotDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".gridthreat_snapshots.db"
	}
	return filepath.Join(homeDir, ".gridthreat_snapshots.db")
}
