package core

import "github.com/huangsam/gridthreat/schema"

// Multiplier returns the size-class and mobility factor applied to a raw score.
func Multiplier(t schema.Tuning, size schema.SizeClass, static bool) float64 {
	m := t.SmallFactor
	if size == schema.LargeGrid {
		m = t.LargeFactor
	}
	if static {
		m *= t.StaticFactor
	}
	return m * t.GlobalFactor
}

// blockValue scores one block with a category weight. Fill-scaled weights
// return base + base*fill, and zero when the block has no usable capacity.
func blockValue(w schema.CategoryWeight, base float64, b schema.Block) float64 {
	if !w.FillScaled {
		return base
	}
	fill, ok := b.Inventory.FillRatio()
	if !ok {
		return 0
	}
	return base + base*fill
}
