package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/san-kum/airway/internal/airway"
	"github.com/san-kum/airway/internal/clock"
	"github.com/san-kum/airway/internal/config"
	"github.com/san-kum/airway/internal/logging"
	"github.com/san-kum/airway/internal/metrics"
	"github.com/san-kum/airway/internal/storage"
	"github.com/san-kum/airway/internal/surface"
)

// Epoch is the simulated wall-clock time every run starts at.
var Epoch = time.Unix(0, 0).UTC()

// ResizeEvent sets the surface height once After has elapsed.
type ResizeEvent struct {
	After  time.Duration
	Height int
}

type Config struct {
	Options  config.Options
	Duration time.Duration
	Seed     int64
	Resizes  []ResizeEvent
}

type Result struct {
	Seed      int64
	Config    config.Config
	Final     airway.State
	Ticks     []storage.TickRecord
	Stats     *metrics.Population
	Occupancy float64
	Metrics   map[string]float64
}

// Simulator runs an airway headless on a manual clock.
type Simulator struct {
	logger    *slog.Logger
	metrics   []metrics.Metric
	observers []airway.Observer
}

// New returns a simulator logging to logger; nil discards.
func New(logger *slog.Logger) *Simulator {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Simulator{logger: logger}
}

func (s *Simulator) AddMetric(m metrics.Metric)    { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o airway.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	c := clock.NewManual(Epoch)
	pane := surface.NewPane(0)
	stats := metrics.NewPopulation(0)
	occupancy := metrics.NewOccupancy()
	recorder := storage.NewRecorder(Epoch)

	options := []airway.Option{
		airway.WithClock(c),
		airway.WithRand(rand.New(rand.NewSource(cfg.Seed))),
		airway.WithLogger(s.logger),
		airway.WithObserver(stats),
		airway.WithObserver(occupancy),
		airway.WithObserver(recorder),
	}
	for _, m := range s.metrics {
		options = append(options, airway.WithObserver(m))
	}
	for _, o := range s.observers {
		options = append(options, airway.WithObserver(o))
	}

	a, err := airway.New(pane, cfg.Options, options...)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	events := make([]ResizeEvent, len(cfg.Resizes))
	copy(events, cfg.Resizes)
	sort.SliceStable(events, func(i, j int) bool { return events[i].After < events[j].After })

	a.Execute()
	var elapsed time.Duration
	for _, ev := range events {
		if ev.After > cfg.Duration {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		c.Advance(ev.After - elapsed)
		elapsed = ev.After
		pane.Resize(ev.Height)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.Advance(cfg.Duration - elapsed)

	summary := stats.Summary()
	result := &Result{
		Seed:      cfg.Seed,
		Config:    a.Config(),
		Final:     a.State(),
		Ticks:     recorder.Ticks(),
		Stats:     stats,
		Occupancy: occupancy.Value(),
		Metrics: map[string]float64{
			"ticks":          float64(summary.Ticks),
			"added":          float64(summary.Added),
			"removed":        float64(summary.Removed),
			"saturations":    float64(summary.Saturations),
			occupancy.Name(): occupancy.Value(),
			stats.Name():     stats.Value(),
		},
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func validateConfig(cfg Config) error {
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %s", cfg.Duration)
	}
	for _, ev := range cfg.Resizes {
		if ev.After < 0 {
			return fmt.Errorf("resize at %s is before the start", ev.After)
		}
		if ev.Height < 0 {
			return fmt.Errorf("resize at %s has negative height %d", ev.After, ev.Height)
		}
	}
	return nil
}
