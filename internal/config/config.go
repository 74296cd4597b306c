package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/julianstephens/hotset/internal/constants"
	"github.com/julianstephens/hotset/internal/models"
)

// Default returns the built-in policy.
func Default() models.Policy {
	return models.Policy{
		OnScheduleToleranceMin: constants.DefaultOnScheduleToleranceMin,
		SignificantlyBehindMin: constants.DefaultSignificantlyBehindMin,
		MinMealMinutes:         constants.DefaultMinMealMinutes,
		MealIntervalMin:        constants.DefaultMealIntervalMin,
		MaxWorkdayMinutes:      constants.DefaultMaxWorkdayMinutes,
		SetupOverlapMin:        constants.DefaultSetupOverlapMin,
		Swap: models.SwapWeights{
			Duration:       constants.DefaultSwapDurationWeight,
			SameSet:        constants.DefaultSwapSetWeight,
			Adjacency:      constants.DefaultSwapAdjacencyWeight,
			IntExt:         constants.DefaultSwapIntExtWeight,
			TimeOfDay:      constants.DefaultSwapTimeOfDayWeight,
			DurationFull:   constants.DefaultSwapDurationFullMin,
			DurationZero:   constants.DefaultSwapDurationZeroMin,
			MaxDayDistance: constants.DefaultSwapMaxDayDistance,
			Limit:          constants.DefaultSwapSuggestionSize,
		},
	}
}

// Load reads a policy file on top of the defaults and applies HOTSET_*
// environment overrides. A missing file is not an error; the defaults are
// used. The format is chosen by extension (.yaml, .yml or .toml).
func Load(path string) (models.Policy, error) {
	policy := Default()

	if path != "" {
		if err := decodeFile(path, &policy); err != nil {
			if !os.IsNotExist(err) {
				return models.Policy{}, fmt.Errorf("failed to load policy %s: %w", path, err)
			}
		}
	}

	applyEnv(&policy)

	if err := Validate(policy); err != nil {
		return models.Policy{}, fmt.Errorf("config validation: %w", err)
	}
	return policy, nil
}

// LoadTemplate reads a session template from a YAML or TOML file.
func LoadTemplate(path string) (models.SessionTemplate, error) {
	var tmpl models.SessionTemplate
	if err := decodeFile(path, &tmpl); err != nil {
		return models.SessionTemplate{}, fmt.Errorf("failed to load template %s: %w", path, err)
	}
	return tmpl, nil
}

func decodeFile(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, out)
	case ".toml":
		_, err := toml.Decode(string(data), out)
		return err
	default:
		return fmt.Errorf("unsupported file extension %q (want .yaml, .yml or .toml)", filepath.Ext(path))
	}
}

func applyEnv(p *models.Policy) {
	p.OnScheduleToleranceMin = envInt("HOTSET_ON_SCHEDULE_TOLERANCE_MIN", p.OnScheduleToleranceMin)
	p.SignificantlyBehindMin = envInt("HOTSET_SIGNIFICANTLY_BEHIND_MIN", p.SignificantlyBehindMin)
	p.MinMealMinutes = envInt("HOTSET_MIN_MEAL_MINUTES", p.MinMealMinutes)
	p.MealIntervalMin = envInt("HOTSET_MEAL_INTERVAL_MIN", p.MealIntervalMin)
	p.MaxWorkdayMinutes = envInt("HOTSET_MAX_WORKDAY_MINUTES", p.MaxWorkdayMinutes)
	p.SetupOverlapMin = envInt("HOTSET_SETUP_OVERLAP_MIN", p.SetupOverlapMin)
	p.Swap.Limit = envInt("HOTSET_SWAP_LIMIT", p.Swap.Limit)
}

// Validate checks a policy for internally inconsistent values.
func Validate(p models.Policy) error {
	if p.OnScheduleToleranceMin < 0 {
		return fmt.Errorf("on_schedule_tolerance_min must not be negative, got %d", p.OnScheduleToleranceMin)
	}
	if p.SignificantlyBehindMin <= p.OnScheduleToleranceMin {
		return fmt.Errorf("significantly_behind_min (%d) must exceed on_schedule_tolerance_min (%d)",
			p.SignificantlyBehindMin, p.OnScheduleToleranceMin)
	}
	if p.MinMealMinutes < 0 {
		return fmt.Errorf("min_meal_minutes must not be negative, got %d", p.MinMealMinutes)
	}
	if p.MealIntervalMin <= 0 {
		return fmt.Errorf("meal_interval_min must be positive, got %d", p.MealIntervalMin)
	}
	if p.MaxWorkdayMinutes <= 0 {
		return fmt.Errorf("max_workday_minutes must be positive, got %d", p.MaxWorkdayMinutes)
	}
	if p.SetupOverlapMin < 0 {
		return fmt.Errorf("setup_overlap_min must not be negative, got %d", p.SetupOverlapMin)
	}

	w := p.Swap
	for name, v := range map[string]float64{
		"duration": w.Duration, "same_set": w.SameSet, "adjacency": w.Adjacency,
		"int_ext": w.IntExt, "time_of_day": w.TimeOfDay,
	} {
		if v < 0 {
			return fmt.Errorf("swap weight %s must not be negative, got %g", name, v)
		}
	}
	if w.DurationFull < 0 || w.DurationZero <= w.DurationFull {
		return fmt.Errorf("swap duration bounds must satisfy 0 <= full (%d) < zero (%d)", w.DurationFull, w.DurationZero)
	}
	if w.MaxDayDistance < 1 {
		return fmt.Errorf("swap max_day_distance must be at least 1, got %d", w.MaxDayDistance)
	}
	if w.Limit < 1 {
		return fmt.Errorf("swap limit must be at least 1, got %d", w.Limit)
	}
	return nil
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
