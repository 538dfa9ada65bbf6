package detector

import "testing"

func TestDetect_Empty(t *testing.T) {
	d := New()

	_, ok := d.Detect("")
	if ok {
		t.Error("expected ok=false for empty text")
	}
}

func TestDetectISO_English(t *testing.T) {
	d := New()

	code, ok := d.DetectISO("The quick brown fox jumps over the lazy dog near the river bank.")
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if code != "EN" {
		t.Errorf("expected EN, got %q", code)
	}
}

func TestDetectISO_Spanish(t *testing.T) {
	d := New()

	code, ok := d.DetectISO("El rápido zorro marrón salta sobre el perro perezoso junto al río.")
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if code != "ES" {
		t.Errorf("expected ES, got %q", code)
	}
}

func TestNewForCodes_Narrowed(t *testing.T) {
	d := NewForCodes("en", "es")

	code, ok := d.DetectISO("El rápido zorro marrón salta sobre el perro perezoso junto al río.")
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if code != "ES" {
		t.Errorf("expected ES, got %q", code)
	}
}

func TestNewForCodes_RegionSuffix(t *testing.T) {
	d := NewForCodes("pt_BR", "en")

	code, ok := d.DetectISO("O rápido cachorro castanho corre pela margem do rio todas as manhãs.")
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if code != "PT" {
		t.Errorf("expected PT, got %q", code)
	}
}

func TestNewForCodes_TooFewKnownCodes(t *testing.T) {
	// lingua cannot build a single-language detector; unknown codes are
	// dropped and the full language set takes over.
	d := NewForCodes("en", "zz")

	code, ok := d.DetectISO("The quick brown fox jumps over the lazy dog near the river bank.")
	if !ok {
		t.Fatal("expected detection to succeed")
	}
	if code != "EN" {
		t.Errorf("expected EN, got %q", code)
	}
}
