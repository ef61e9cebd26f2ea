package instrument

import (
	"testing"

	"github.com/yoans/micro-tonal-interface/internal/layout"
	"github.com/yoans/micro-tonal-interface/internal/tuning"
)

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseHz = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected error for zero base frequency")
	}

	cfg = DefaultConfig()
	cfg.BaseHz = -440
	if _, err := New(cfg); err == nil {
		t.Error("expected error for negative base frequency")
	}

	cfg = DefaultConfig()
	cfg.Rows = 0
	if _, err := New(cfg); err == nil {
		t.Error("expected error for empty grid")
	}
}

func TestNewClampsVolume(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Volume = 2.5
	ins, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer ins.Close()

	if got := ins.Config().Volume; got != 1 {
		t.Errorf("volume %v, want clamp to 1", got)
	}
}

func TestKeysMatchGenerator(t *testing.T) {
	ins, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer ins.Close()

	want := layout.Generate(layout.Chromatic, tuning.EDO12, DefaultBaseHz, 4, 12)
	keys := ins.Keys()
	if len(keys) != len(want) {
		t.Fatalf("got %d keys, want %d", len(keys), len(want))
	}
	for i := range keys {
		if keys[i].Step != want[i].Step || keys[i].Frequency != want[i].Frequency || keys[i].Label != want[i].Label {
			t.Errorf("key %d: %+v, want %+v", i, keys[i], want[i])
		}
	}
}

func TestMutatorsRegenerate(t *testing.T) {
	ins, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer ins.Close()

	ins.SetLayout(layout.WickiHayden)
	if got := ins.Keys()[0].Step; got != -12 {
		t.Errorf("wicki-hayden origin step %d, want -12", got)
	}
	if got := ins.Keys()[13].Step; got != -3 {
		t.Errorf("wicki-hayden (1,1) step %d, want -3", got)
	}

	ins.SetTuning(tuning.Just)
	if got := ins.Config().Tuning; got != tuning.Just {
		t.Errorf("tuning %v, want just", got)
	}

	if err := ins.SetBaseFrequency(440); err != nil {
		t.Fatal(err)
	}
	// The reference key (step 0) now sits at the new base.
	for _, k := range ins.Keys() {
		if k.Step == 0 && k.Frequency != 440 {
			t.Errorf("reference key at %v Hz, want 440", k.Frequency)
		}
	}

	if err := ins.SetGridSize(2, 6); err != nil {
		t.Fatal(err)
	}
	if got := len(ins.Keys()); got != 12 {
		t.Errorf("got %d keys after resize, want 12", got)
	}
}

func TestSetBaseFrequencyRejectsNonPositive(t *testing.T) {
	ins, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer ins.Close()

	before := ins.Config().BaseHz
	if err := ins.SetBaseFrequency(0); err == nil {
		t.Error("expected error for zero base frequency")
	}
	if err := ins.SetBaseFrequency(-1); err == nil {
		t.Error("expected error for negative base frequency")
	}
	if got := ins.Config().BaseHz; got != before {
		t.Errorf("base frequency changed to %v on rejected set", got)
	}
}

func TestSetGridSizeRejectsEmpty(t *testing.T) {
	ins, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer ins.Close()

	if err := ins.SetGridSize(0, 12); err == nil {
		t.Error("expected error for zero rows")
	}
}
