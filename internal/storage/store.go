package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/san-kum/airway/internal/airway"
	"github.com/san-kum/airway/internal/config"
)

const (
	metadataFile = "metadata.json"
	ticksFile    = "ticks.csv"
)

var header = []string{"elapsed", "state", "height", "count", "capacity", "added", "removed", "delay"}

// Store keeps simulation runs under baseDir, one directory per run.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Seed      int64              `json:"seed"`
	Duration  float64            `json:"duration"`
	Resizes   []string           `json:"resizes,omitempty"`
	Config    config.Config      `json:"config"`
	Ticks     int                `json:"ticks"`
	Metrics   map[string]float64 `json:"metrics"`
}

// TickRecord is one scheduler tick relative to the start of the run.
type TickRecord struct {
	Elapsed  time.Duration
	State    string
	Height   int
	Count    int
	Capacity int
	Added    bool
	Removed  int
	Delay    time.Duration
}

// Recorder collects ticks as an airway observer.
type Recorder struct {
	mu    sync.Mutex
	start time.Time
	ticks []TickRecord
}

func NewRecorder(start time.Time) *Recorder {
	return &Recorder{start: start}
}

func (r *Recorder) OnTick(t airway.Tick) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, TickRecord{
		Elapsed:  t.At.Sub(r.start),
		State:    t.State.String(),
		Height:   t.Height,
		Count:    t.Count,
		Capacity: t.Capacity,
		Added:    t.Added,
		Removed:  t.Removed,
		Delay:    t.Delay,
	})
}

func (r *Recorder) Ticks() []TickRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TickRecord, len(r.ticks))
	copy(out, r.ticks)
	return out
}

// Save writes the metadata and the recorded ticks. meta.ID and
// meta.Timestamp are filled in when empty.
func (s *Store) Save(meta RunMetadata, ticks []TickRecord) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("sim_%d_%d", meta.Seed, meta.Timestamp.UnixNano())
	}
	meta.Ticks = len(ticks)
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeTicks(filepath.Join(runDir, ticksFile), ticks); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// createFile opens run files for writing.
var createFile = func(path string) (io.WriteCloser, error) {
	return os.Create(path)
}

func writeMetadata(path string, meta RunMetadata) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTicks(path string, ticks []TickRecord) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, t := range ticks {
		row := []string{
			strconv.FormatFloat(t.Elapsed.Seconds(), 'f', 3, 64),
			t.State,
			strconv.Itoa(t.Height),
			strconv.Itoa(t.Count),
			strconv.Itoa(t.Capacity),
			strconv.FormatBool(t.Added),
			strconv.Itoa(t.Removed),
			strconv.FormatFloat(t.Delay.Seconds(), 'f', 3, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func (s *Store) LoadTicks(runID string) ([]TickRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(header)

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return []TickRecord{}, nil
	}

	ticks := make([]TickRecord, 0, len(records)-1)
	for i, record := range records[1:] {
		t, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", ticksFile, i+2, err)
		}
		ticks = append(ticks, t)
	}
	return ticks, nil
}

func parseRecord(record []string) (TickRecord, error) {
	var (
		t   TickRecord
		err error
	)
	seconds := func(s string) time.Duration {
		var f float64
		if err == nil {
			f, err = strconv.ParseFloat(s, 64)
		}
		return time.Duration(f * float64(time.Second)).Round(time.Millisecond)
	}
	atoi := func(s string) int {
		var n int
		if err == nil {
			n, err = strconv.Atoi(s)
		}
		return n
	}

	t.Elapsed = seconds(record[0])
	t.State = record[1]
	t.Height = atoi(record[2])
	t.Count = atoi(record[3])
	t.Capacity = atoi(record[4])
	if err == nil {
		t.Added, err = strconv.ParseBool(record[5])
	}
	t.Removed = atoi(record[6])
	t.Delay = seconds(record[7])
	return t, err
}
