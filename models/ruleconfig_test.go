package models

import (
	"encoding/json"
	"testing"
)

func TestRuleConfig_UnmarshalAppliesDefaults(t *testing.T) {
	var cfg RuleConfig
	if err := json.Unmarshal([]byte(`{}`), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg != DefaultRuleConfig() {
		t.Errorf("empty object must decode to defaults, got %+v", cfg)
	}
}

func TestRuleConfig_UnmarshalPartialOverride(t *testing.T) {
	var cfg RuleConfig
	raw := `{"winning_sets": 2, "use_deuce": false, "count_points_by_sets": true}`
	if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
		t.Fatal(err)
	}

	if cfg.WinningSets != 2 || cfg.UseDeuce || !cfg.CountPointsBySets {
		t.Errorf("explicit keys not applied: %+v", cfg)
	}
	if cfg.SetWinningPoints != DefaultSetWinningPoints || cfg.TeamWinningPoints != DefaultTeamWinningPoints {
		t.Errorf("absent keys must keep defaults: %+v", cfg)
	}
	if cfg.PlayAllSets || cfg.PlayAllMatches {
		t.Errorf("absent booleans must stay false: %+v", cfg)
	}
}

func TestRuleConfig_UnmarshalIgnoresUnknownKeys(t *testing.T) {
	var cfg RuleConfig
	if err := json.Unmarshal([]byte(`{"winning_sets": 4, "bracket_size": 16}`), &cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.WinningSets != 4 {
		t.Errorf("winning_sets = %d, want 4", cfg.WinningSets)
	}
}

func TestRuleConfig_TotalSets(t *testing.T) {
	tests := []struct {
		winningSets int
		want        int
	}{
		{1, 1},
		{2, 3},
		{3, 5},
	}
	for _, tt := range tests {
		cfg := RuleConfig{WinningSets: tt.winningSets}
		if got := cfg.TotalSets(); got != tt.want {
			t.Errorf("TotalSets() with winning_sets=%d = %d, want %d", tt.winningSets, got, tt.want)
		}
	}
}
