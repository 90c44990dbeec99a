// Package weaponmod binds the optional external weapon mod. The mod is resolved
// once per run; when it is missing the catalog is unavailable and weapons fall
// back to flat weighting.
package weaponmod

import (
	"errors"

	"github.com/huangsam/gridthreat/internal/contract"
	"github.com/huangsam/gridthreat/schema"
	"github.com/sirupsen/logrus"
	"github.com/zyedidia/generic/mapset"
)

// ErrNotInstalled is reported when the host does not expose the weapon mod.
var ErrNotInstalled = errors.New("weapon mod not installed")

// Kind is how the weapon mod manages a block definition.
type Kind int

// Weapon kinds reported by Classify.
const (
	Unmanaged      Kind = iota // not a mod weapon
	StaticLauncher             // fixed launcher
	Turret                     // turret
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case StaticLauncher:
		return "static_launcher"
	case Turret:
		return "turret"
	default:
		return "unmanaged"
	}
}

// Catalog holds the definition sets reported by the weapon mod.
// The zero value and the nil pointer are both an unavailable catalog.
type Catalog struct {
	available bool
	launchers mapset.Set[string]
	turrets   mapset.Set[string]
}

// Unavailable returns a catalog for runs without the weapon mod.
func Unavailable() *Catalog {
	return &Catalog{}
}

// NewCatalog snapshots the definition sets of a weapon mod.
func NewCatalog(mod contract.WeaponMod) *Catalog {
	c := &Catalog{
		available: true,
		launchers: mapset.New[string](),
		turrets:   mapset.New[string](),
	}
	for _, def := range mod.StaticLaunchers() {
		c.launchers.Put(def.Normalize().Key())
	}
	for _, def := range mod.Turrets() {
		c.turrets.Put(def.Normalize().Key())
	}
	return c
}

// Activate resolves the weapon mod from the host. Any failure is logged as a
// warning and yields an unavailable catalog; it never fails the run.
func Activate(host contract.Host) *Catalog {
	provider, ok := host.(contract.WeaponModProvider)
	if !ok {
		contract.LogDebug("weapon mod not exposed by host", logrus.Fields{"fallback": "flat weapon weights"})
		return Unavailable()
	}
	mod, err := provider.WeaponMod()
	if err == nil && mod == nil {
		err = ErrNotInstalled
	}
	if err != nil {
		contract.LogWarn("Weapon mod unavailable, using flat weapon weights", err)
		return Unavailable()
	}
	c := NewCatalog(mod)
	contract.LogDebug("weapon mod activated", logrus.Fields{
		"static_launchers": c.launchers.Size(),
		"turrets":          c.turrets.Size(),
	})
	return c
}

// Available reports whether the weapon mod was activated.
func (c *Catalog) Available() bool {
	return c != nil && c.available
}

// Classify reports how the weapon mod manages a definition.
// A definition listed as both launcher and turret is a launcher.
func (c *Catalog) Classify(def schema.DefinitionID) Kind {
	if !c.Available() {
		return Unmanaged
	}
	key := def.Normalize().Key()
	switch {
	case c.launchers.Has(key):
		return StaticLauncher
	case c.turrets.Has(key):
		return Turret
	default:
		return Unmanaged
	}
}
