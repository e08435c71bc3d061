package units

import (
	"errors"
	"strings"
)

// ErrUnsupportedConversion is returned when the source and target units
// belong to different classes and no item-specific override bridges them.
// Callers treat this as a soft failure and skip the item.
var ErrUnsupportedConversion = errors.New("unsupported unit conversion")

// Class represents a unit measurement class
type Class string

const (
	// Unit classes
	ClassMass   Class = "mass"
	ClassVolume Class = "volume"
	ClassCount  Class = "count"
)

// Base units per class
const (
	BaseMass   = "g"
	BaseVolume = "ml"
	BaseCount  = "pc"
)

type unitDef struct {
	class  Class
	factor float64 // multiplier to the class base unit
}

var unitTable = map[string]unitDef{
	// Mass
	"mg": {ClassMass, 0.001},
	"g":  {ClassMass, 1},
	"kg": {ClassMass, 1000},
	"oz": {ClassMass, 28.35},
	"lb": {ClassMass, 453.59},

	// Volume
	"ml":    {ClassVolume, 1},
	"l":     {ClassVolume, 1000},
	"tsp":   {ClassVolume, 4.93},
	"tbsp":  {ClassVolume, 14.79},
	"cup":   {ClassVolume, 240},
	"fl_oz": {ClassVolume, 29.57},

	// Count
	"pc":    {ClassCount, 1},
	"piece": {ClassCount, 1},
	"unit":  {ClassCount, 1},
	"dozen": {ClassCount, 12},
}

// Item-specific overrides keyed on a substring of the item name. They let
// count-like kitchen units resolve for the items they actually apply to,
// e.g. "clove" is only meaningful for garlic.
var itemOverrides = map[string]map[string]unitDef{
	"garlic": {
		"clove": {ClassMass, 5},
		"head":  {ClassMass, 50},
	},
	"onion": {
		"slice": {ClassMass, 15},
	},
	"egg": {
		"tray": {ClassCount, 30},
	},
	"rice": {
		"cup": {ClassMass, 200}, // uncooked rice by weight, not volume
	},
}

func lookup(unit, itemName string) (unitDef, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	name := strings.ToLower(itemName)
	for key, overrides := range itemOverrides {
		if strings.Contains(name, key) {
			if def, ok := overrides[u]; ok {
				return def, true
			}
		}
	}
	def, ok := unitTable[u]
	return def, ok
}

// ToBase converts a quantity to its class base unit (g, ml or pc).
func ToBase(quantity float64, unit, itemName string) (float64, string, error) {
	def, ok := lookup(unit, itemName)
	if !ok {
		return 0, "", ErrUnsupportedConversion
	}
	return quantity * def.factor, baseFor(def.class), nil
}

// FromBase converts a base-unit quantity back to the target unit. The base
// unit must match the target unit's class unless an override bridges them.
func FromBase(quantity float64, baseUnit, targetUnit, itemName string) (float64, string, error) {
	def, ok := lookup(targetUnit, itemName)
	if !ok {
		return 0, "", ErrUnsupportedConversion
	}
	if baseFor(def.class) != strings.ToLower(strings.TrimSpace(baseUnit)) {
		return 0, "", ErrUnsupportedConversion
	}
	return quantity / def.factor, targetUnit, nil
}

// Convert converts a quantity between two units of the same class,
// respecting item overrides.
func Convert(quantity float64, fromUnit, toUnit, itemName string) (float64, error) {
	base, baseUnit, err := ToBase(quantity, fromUnit, itemName)
	if err != nil {
		return 0, err
	}
	converted, _, err := FromBase(base, baseUnit, toUnit, itemName)
	if err != nil {
		return 0, err
	}
	return converted, nil
}

func baseFor(c Class) string {
	switch c {
	case ClassMass:
		return BaseMass
	case ClassVolume:
		return BaseVolume
	default:
		return BaseCount
	}
}
