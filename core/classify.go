package core

import (
	"strings"

	"github.com/huangsam/gridthreat/internal/weaponmod"
	"github.com/huangsam/gridthreat/schema"
)

// survivalKitPrefix marks medical blocks by subtype, whatever their type id.
const survivalKitPrefix = "survivalkit"

// typeCategories maps normalized block type ids to their category.
var typeCategories = map[string]schema.Category{
	"RadioAntenna": schema.CategoryAntenna,

	"Beacon": schema.CategoryBeacon,

	"CargoContainer": schema.CategoryCargo,

	"Cockpit":       schema.CategoryController,
	"RemoteControl": schema.CategoryController,
	"CryoChamber":   schema.CategoryController,

	"GravityGenerator":       schema.CategoryGravity,
	"GravityGeneratorSphere": schema.CategoryGravity,
	"VirtualMass":            schema.CategoryGravity,
	"SpaceBall":              schema.CategoryGravity,

	"SmallGatlingGun":            schema.CategoryWeapon,
	"SmallMissileLauncher":       schema.CategoryWeapon,
	"SmallMissileLauncherReload": schema.CategoryWeapon,
	"LargeGatlingTurret":         schema.CategoryWeapon,
	"LargeMissileTurret":         schema.CategoryWeapon,
	"InteriorTurret":             schema.CategoryWeapon,

	"JumpDrive": schema.CategoryJumpDrive,

	"MotorStator":         schema.CategoryMechanical,
	"MotorAdvancedStator": schema.CategoryMechanical,
	"MotorSuspension":     schema.CategoryMechanical,
	"PistonBase":          schema.CategoryMechanical,
	"ExtendedPistonBase":  schema.CategoryMechanical,

	"MedicalRoom": schema.CategoryMedical,
	"SurvivalKit": schema.CategoryMedical,

	"Assembler": schema.CategoryProduction,
	"Refinery":  schema.CategoryProduction,

	"Thrust": schema.CategoryThruster,

	"ShipWelder":  schema.CategoryTool,
	"ShipGrinder": schema.CategoryTool,

	"Reactor":        schema.CategoryPowerProducer,
	"BatteryBlock":   schema.CategoryPowerProducer,
	"SolarPanel":     schema.CategoryPowerProducer,
	"HydrogenEngine": schema.CategoryPowerProducer,
	"WindTurbine":    schema.CategoryPowerProducer,
}

// Classify assigns a block definition to exactly one category.
//
// Definitions the weapon mod manages are mod weapons, whatever their type.
// Otherwise survival kits are medical by subtype, and everything else is
// looked up by type id. Unknown types are CategoryNone.
func Classify(def schema.DefinitionID, weapons *weaponmod.Catalog) schema.Category {
	switch weapons.Classify(def) {
	case weaponmod.StaticLauncher:
		return schema.CategoryWeaponFixed
	case weaponmod.Turret:
		return schema.CategoryWeaponTurret
	}

	if strings.HasPrefix(strings.ToLower(def.SubtypeID), survivalKitPrefix) {
		return schema.CategoryMedical
	}

	return typeCategories[def.Normalize().TypeID]
}

// categoryTerm returns the report term a category feeds.
// Power producers also feed BreakdownPowerGen while working.
func categoryTerm(c schema.Category) (schema.BreakdownKey, bool) {
	switch c {
	case schema.CategoryAntenna:
		return schema.BreakdownAntenna, true
	case schema.CategoryBeacon:
		return schema.BreakdownBeacon, true
	case schema.CategoryCargo:
		return schema.BreakdownCargo, true
	case schema.CategoryController:
		return schema.BreakdownControllers, true
	case schema.CategoryGravity:
		return schema.BreakdownGravity, true
	case schema.CategoryWeapon, schema.CategoryWeaponFixed, schema.CategoryWeaponTurret:
		return schema.BreakdownWeapons, true
	case schema.CategoryJumpDrive:
		return schema.BreakdownJumpDrives, true
	case schema.CategoryMechanical:
		return schema.BreakdownMechanical, true
	case schema.CategoryMedical:
		return schema.BreakdownMedical, true
	case schema.CategoryProduction:
		return schema.BreakdownProduction, true
	case schema.CategoryThruster:
		return schema.BreakdownThrusters, true
	case schema.CategoryTool:
		return schema.BreakdownTools, true
	case schema.CategoryPowerProducer:
		return schema.BreakdownPowerBlocks, true
	case schema.CategoryNone:
		return "", false
	}
	return "", false
}
