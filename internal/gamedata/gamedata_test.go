package gamedata

import (
	"errors"
	"math/rand"
	"testing"
	"testing/fstest"
)

func TestLoadCreatures(t *testing.T) {
	creatures, err := LoadCreatures()
	if err != nil {
		t.Fatalf("Failed to load creatures: %v", err)
	}

	expectedIDs := map[string]bool{"emberling": false, "husk": false, "wisp": false}
	for _, c := range creatures {
		if _, ok := expectedIDs[c.ID]; ok {
			expectedIDs[c.ID] = true
		}
		if c.Speed <= 0 || c.Sight <= 0 || c.Reach <= 0 {
			t.Errorf("creature %q has non-positive movement tuning", c.ID)
		}
	}
	for id, found := range expectedIDs {
		if !found {
			t.Errorf("Expected creature %q not found", id)
		}
	}
}

func TestCreatureRegistry(t *testing.T) {
	registry, err := LoadCreatureRegistry()
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}

	if registry.Count() != 3 {
		t.Errorf("Count() = %d, want 3", registry.Count())
	}
	if husk := registry.GetByID("husk"); husk == nil || husk.Name != "Husk" {
		t.Errorf("GetByID(husk) = %v, want Husk", husk)
	}
	if registry.GetByID("dragon") != nil {
		t.Error("GetByID(dragon) should be nil")
	}

	rng1 := rand.New(rand.NewSource(12345))
	rng2 := rand.New(rand.NewSource(12345))
	for i := 0; i < 10; i++ {
		a, b := registry.SpawnRandom(rng1).ID, registry.SpawnRandom(rng2).ID
		if a != b {
			t.Errorf("Spawn %d mismatch: %s != %s", i, a, b)
		}
	}
}

func TestSpawnRandomHonoursWeights(t *testing.T) {
	registry := NewCreatureRegistry([]CreatureDef{
		{ID: "never", SpawnWeight: 0},
		{ID: "always", SpawnWeight: 10},
	})
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 50; i++ {
		if got := registry.SpawnRandom(rng).ID; got != "always" {
			t.Fatalf("SpawnRandom() = %q, want always", got)
		}
	}
	if NewCreatureRegistry(nil).SpawnRandom(rng) != nil {
		t.Error("SpawnRandom() on empty registry should be nil")
	}
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if c.Player.GlyphRune() != '@' {
		t.Errorf("player glyph = %c, want @", c.Player.GlyphRune())
	}
	bite := c.Attacks.GetByID("ember_bite")
	if bite == nil || !bite.HasStatus() || bite.StatusEffect != StatusBurn {
		t.Errorf("ember_bite = %+v, want a burn attack", bite)
	}
	hurt := c.Cues.GetByID("hurt")
	if hurt == nil {
		t.Fatal("cue hurt not found")
	}
	if got := hurt.Length(); got < 0.199 || got > 0.201 {
		t.Errorf("hurt.Length() = %v, want 0.2", got)
	}
}

func TestCatalogValidateReportsMissingRefs(t *testing.T) {
	c := &Catalog{
		Player:    PlayerDef{Attack: "missing"},
		Creatures: NewCreatureRegistry([]CreatureDef{{ID: "x", Attack: "strike"}}),
		Attacks:   NewIndex([]AttackDef{{ID: "strike", Cue: "nope"}}, func(a *AttackDef) string { return a.ID }),
		Cues:      NewIndex([]CueDef{}, func(c *CueDef) string { return c.ID }),
	}
	err := c.validate()
	if !errors.Is(err, ErrUnknownRef) {
		t.Fatalf("validate() = %v, want ErrUnknownRef", err)
	}
	var ref *RefError
	if !errors.As(err, &ref) || ref.Owner != "player" {
		t.Errorf("first RefError = %+v, want owner player", ref)
	}
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"ok.json":  {Data: []byte(`{"id":"a","volume":1}`)},
		"bad.json": {Data: []byte(`{`)},
	}
	cue, err := LoadFS[CueDef](fsys, "ok.json")
	if err != nil || cue.ID != "a" {
		t.Errorf("LoadFS(ok) = %+v, %v", cue, err)
	}
	if _, err := LoadFS[CueDef](fsys, "bad.json"); err == nil {
		t.Error("LoadFS(bad) error = nil, want parse error")
	}
	if _, err := LoadFS[CueDef](fsys, "missing.json"); err == nil {
		t.Error("LoadFS(missing) error = nil, want read error")
	}
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"#FF0000", true},
		{"FF0000", true},
		{"#00ff00", true},
		{"#FFFFFF", true},
		{"#000000", true},
		{"invalid", false},
		{"#FFF", false},
		{"#GG0000", false},
	}

	for _, tt := range tests {
		_, err := ParseHexColor(tt.input)
		if tt.valid && err != nil {
			t.Errorf("ParseHexColor(%q) should be valid, got error: %v", tt.input, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ParseHexColor(%q) should be invalid, got no error", tt.input)
		}
	}
}

func TestCreatureDefMethods(t *testing.T) {
	def := CreatureDef{ID: "test", Glyph: "T", Color: "#FF0000"}
	if def.GlyphRune() != 'T' {
		t.Errorf("GlyphRune() = %c, want T", def.GlyphRune())
	}
	if def.TCellColor() == 0 {
		t.Error("TCellColor returned zero color")
	}
	empty := CreatureDef{Color: "bogus"}
	if empty.GlyphRune() != '?' {
		t.Errorf("empty GlyphRune() = %c, want ?", empty.GlyphRune())
	}
}
