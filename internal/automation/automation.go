package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/san-kum/airway/internal/airway"
	"github.com/san-kum/airway/internal/config"
	"github.com/san-kum/airway/internal/logging"
	"github.com/san-kum/airway/internal/sim"
	"github.com/san-kum/airway/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of simulations
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single simulation in a scenario. Config is layered over
// Preset.
type ScenarioStep struct {
	Name     string         `yaml:"name"`
	Preset   string         `yaml:"preset"`
	Config   config.Options `yaml:"config"`
	Duration time.Duration  `yaml:"duration"`
	Seed     int64          `yaml:"seed"`
	Resizes  []Resize       `yaml:"resizes"`
	SaveAs   string         `yaml:"save_as"`
}

type Resize struct {
	After  time.Duration `yaml:"after"`
	Height config.Height `yaml:"height"`
}

// StepResult pairs a step with its outcome. RunID is set when the step was
// saved.
type StepResult struct {
	Step   ScenarioStep
	Result *sim.Result
	RunID  string
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// RunScenario executes all steps in order. st may be nil, in which case
// save_as is ignored.
func RunScenario(ctx context.Context, scenario *Scenario, logger *slog.Logger, st *storage.Store) ([]StepResult, error) {
	if logger == nil {
		logger = logging.Discard()
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		logger.Info("running step", "scenario", scenario.Name, "step", i+1, "of", len(scenario.Steps), "name", step.Name)

		cfg, err := step.simConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := sim.New(logger).Run(ctx, cfg)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: step, Result: result}
		if step.SaveAs != "" && st != nil {
			sr.RunID, err = st.Save(storage.RunMetadata{
				ID:       step.SaveAs,
				Seed:     result.Seed,
				Duration: cfg.Duration.Seconds(),
				Config:   result.Config,
				Metrics:  result.Metrics,
			}, result.Ticks)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, sr)
	}

	return results, nil
}

func (s ScenarioStep) simConfig() (sim.Config, error) {
	var opts config.Options
	if s.Preset != "" {
		p, ok := config.GetPreset(s.Preset)
		if !ok {
			return sim.Config{}, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		opts = p
	}

	cfg := sim.Config{
		Options:  opts.Override(s.Config),
		Duration: s.Duration,
		Seed:     s.Seed,
		Resizes:  make([]sim.ResizeEvent, 0, len(s.Resizes)),
	}
	for _, r := range s.Resizes {
		cfg.Resizes = append(cfg.Resizes, sim.ResizeEvent{After: r.After, Height: int(r.Height)})
	}
	return cfg, nil
}

// HeightSweep runs one simulation per surface height in [MinHeight,
// MaxHeight].
type HeightSweep struct {
	Options   config.Options
	MinHeight int
	MaxHeight int
	NumSteps  int
	Duration  time.Duration
	Seed      int64
}

// SweepResult holds results from a height sweep
type SweepResult struct {
	Height      int
	Capacity    int
	Ticks       int
	Saturations int
	Occupancy   float64
	Final       airway.State
}

// RunSweep executes a height sweep
func RunSweep(ctx context.Context, sweep *HeightSweep, logger *slog.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if sweep.MinHeight > sweep.MaxHeight {
		return nil, fmt.Errorf("min height %d is above max height %d", sweep.MinHeight, sweep.MaxHeight)
	}
	if logger == nil {
		logger = logging.Discard()
	}

	heightStep := 0.0
	if sweep.NumSteps > 1 {
		heightStep = float64(sweep.MaxHeight-sweep.MinHeight) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		h := sweep.MinHeight + int(float64(i)*heightStep+0.5)
		opts := sweep.Options
		opts.Height = config.Ptr(config.Height(h))

		result, err := sim.New(logger).Run(ctx, sim.Config{Options: opts, Duration: sweep.Duration, Seed: sweep.Seed})
		if err != nil {
			return nil, fmt.Errorf("height %d: %w", h, err)
		}

		summary := result.Stats.Summary()
		results = append(results, SweepResult{
			Height:      h,
			Capacity:    airway.Capacity(h),
			Ticks:       summary.Ticks,
			Saturations: summary.Saturations,
			Occupancy:   result.Occupancy,
			Final:       result.Final,
		})

		logger.Debug("sweep step complete", "step", i+1, "of", sweep.NumSteps, "height", h)
	}

	return results, nil
}
