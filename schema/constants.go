package schema

// Custom string types for type safety.
type (
	// BreakdownKey represents keys used in scoring breakdowns.
	BreakdownKey string

	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for the snapshot store.
	DatabaseBackend string

	// WeightProfile names a default weight table.
	WeightProfile string

	// SizeClass is the grid size of a structure.
	SizeClass string

	// Category is the threat classification of a block.
	Category string
)

// Breakdown keys used in the scoring logic, in report order.
const (
	BreakdownAntenna     BreakdownKey = "antenna"
	BreakdownBeacon      BreakdownKey = "beacon"
	BreakdownCargo       BreakdownKey = "cargo"
	BreakdownControllers BreakdownKey = "controllers"
	BreakdownGravity     BreakdownKey = "gravity"
	BreakdownWeapons     BreakdownKey = "weapons"
	BreakdownJumpDrives  BreakdownKey = "jumpdrives"
	BreakdownMechanical  BreakdownKey = "mechanical"
	BreakdownMedical     BreakdownKey = "medical"
	BreakdownProduction  BreakdownKey = "production"
	BreakdownThrusters   BreakdownKey = "thrusters"
	BreakdownTools       BreakdownKey = "tools"
	BreakdownPowerBlocks BreakdownKey = "powerblocks" // installed capacity, every power producer
	BreakdownPowerGen    BreakdownKey = "powergen"    // working power producers only
	BreakdownBlocks      BreakdownKey = "blocks"      // occupied cells / 100
	BreakdownSize        BreakdownKey = "size"        // bounding box diagonal / 4
)

// BreakdownOrder lists every breakdown key in the order reports print them.
var BreakdownOrder = []BreakdownKey{
	BreakdownAntenna,
	BreakdownBeacon,
	BreakdownCargo,
	BreakdownControllers,
	BreakdownGravity,
	BreakdownWeapons,
	BreakdownJumpDrives,
	BreakdownMechanical,
	BreakdownMedical,
	BreakdownProduction,
	BreakdownThrusters,
	BreakdownTools,
	BreakdownPowerBlocks,
	BreakdownPowerGen,
	BreakdownBlocks,
	BreakdownSize,
}

// All output modes supported.
const (
	TextOut    OutputMode = "text" // default
	TableOut   OutputMode = "table"
	JSONOut    OutputMode = "json"
	CSVOut     OutputMode = "csv"
	ParquetOut OutputMode = "parquet"
)

// All snapshot backends supported.
const (
	NoneBackend       DatabaseBackend = "none" // default, snapshots are read from files
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All weight profiles supported.
const (
	StandardProfile WeightProfile = "standard" // default
	CompactProfile  WeightProfile = "compact"
)

// All size classes supported.
const (
	LargeGrid SizeClass = "large"
	SmallGrid SizeClass = "small"
)

// Block categories. CategoryNone marks terminal devices that carry no threat.
const (
	CategoryNone          Category = ""
	CategoryAntenna       Category = "antenna"
	CategoryBeacon        Category = "beacon"
	CategoryCargo         Category = "cargo"
	CategoryController    Category = "controller"
	CategoryGravity       Category = "gravity"
	CategoryWeapon        Category = "weapon"
	CategoryWeaponFixed   Category = "weapon_fixed"  // static launcher recognized by the weapon mod
	CategoryWeaponTurret  Category = "weapon_turret" // turret recognized by the weapon mod
	CategoryJumpDrive     Category = "jump_drive"
	CategoryMechanical    Category = "mechanical"
	CategoryMedical       Category = "medical"
	CategoryProduction    Category = "production"
	CategoryThruster      Category = "thruster"
	CategoryTool          Category = "tool"
	CategoryPowerProducer Category = "power"
)

// AllCategories lists every scoring category.
var AllCategories = []Category{
	CategoryAntenna,
	CategoryBeacon,
	CategoryCargo,
	CategoryController,
	CategoryGravity,
	CategoryWeapon,
	CategoryWeaponFixed,
	CategoryWeaponTurret,
	CategoryJumpDrive,
	CategoryMechanical,
	CategoryMedical,
	CategoryProduction,
	CategoryThruster,
	CategoryTool,
	CategoryPowerProducer,
}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	TableOut:   {},
	JSONOut:    {},
	CSVOut:     {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid snapshot backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	NoneBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidWeightProfiles lists all valid weight profiles.
var ValidWeightProfiles = map[WeightProfile]struct{}{
	StandardProfile: {},
	CompactProfile:  {},
}

// ValidSizeClasses lists all valid size classes.
var ValidSizeClasses = map[SizeClass]struct{}{
	LargeGrid: {},
	SmallGrid: {},
}

// ValidCategories indexes AllCategories.
var ValidCategories = func() map[Category]struct{} {
	m := make(map[Category]struct{}, len(AllCategories))
	for _, c := range AllCategories {
		m[c] = struct{}{}
	}
	return m
}()
