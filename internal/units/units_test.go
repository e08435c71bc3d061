package units

import (
	"errors"
	"math"
	"testing"
)

func TestToBase_Mass(t *testing.T) {
	quantity, baseUnit, err := ToBase(2, "kg", "rice flour")
	if err != nil {
		t.Fatalf("ToBase() returned error: %v", err)
	}
	if baseUnit != "g" {
		t.Errorf("ToBase() baseUnit = %q, want %q", baseUnit, "g")
	}
	if quantity != 2000 {
		t.Errorf("ToBase() quantity = %v, want 2000", quantity)
	}
}

func TestToBase_Volume(t *testing.T) {
	quantity, baseUnit, err := ToBase(1.5, "l", "milk")
	if err != nil {
		t.Fatalf("ToBase() returned error: %v", err)
	}
	if baseUnit != "ml" {
		t.Errorf("ToBase() baseUnit = %q, want %q", baseUnit, "ml")
	}
	if quantity != 1500 {
		t.Errorf("ToBase() quantity = %v, want 1500", quantity)
	}
}

func TestToBase_ItemOverride(t *testing.T) {
	// "clove" only resolves for garlic-like items
	quantity, baseUnit, err := ToBase(2, "clove", "garlic")
	if err != nil {
		t.Fatalf("ToBase() with garlic override returned error: %v", err)
	}
	if baseUnit != "g" {
		t.Errorf("ToBase() baseUnit = %q, want %q", baseUnit, "g")
	}
	if quantity != 10 {
		t.Errorf("ToBase() quantity = %v, want 10", quantity)
	}

	_, _, err = ToBase(2, "clove", "milk")
	if !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("ToBase(clove, milk) error = %v, want ErrUnsupportedConversion", err)
	}
}

func TestFromBase_RoundTrip(t *testing.T) {
	base, baseUnit, err := ToBase(3, "cup", "water")
	if err != nil {
		t.Fatalf("ToBase() returned error: %v", err)
	}
	back, unit, err := FromBase(base, baseUnit, "cup", "water")
	if err != nil {
		t.Fatalf("FromBase() returned error: %v", err)
	}
	if unit != "cup" {
		t.Errorf("FromBase() unit = %q, want %q", unit, "cup")
	}
	if math.Abs(back-3) > 1e-9 {
		t.Errorf("FromBase() quantity = %v, want 3", back)
	}
}

func TestFromBase_ClassMismatch(t *testing.T) {
	// Grams cannot come back as a volume unit
	_, _, err := FromBase(500, "g", "ml", "soup")
	if !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("FromBase(g -> ml) error = %v, want ErrUnsupportedConversion", err)
	}
}

func TestConvert_CrossClassFails(t *testing.T) {
	_, err := Convert(2, "pc", "l", "soda")
	if !errors.Is(err, ErrUnsupportedConversion) {
		t.Errorf("Convert(pc -> l) error = %v, want ErrUnsupportedConversion", err)
	}
}

func TestConvert_SameClass(t *testing.T) {
	got, err := Convert(1000, "g", "kg", "sugar")
	if err != nil {
		t.Fatalf("Convert() returned error: %v", err)
	}
	if got != 1 {
		t.Errorf("Convert(1000g -> kg) = %v, want 1", got)
	}
}
