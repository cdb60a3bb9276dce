package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/artsim/internal/view"
)

// Store persists articulation runs under a base directory, one
// subdirectory per run holding metadata.json and trajectory.csv (the
// instance-0 joint trace).
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
	Scenario  string             `json:"scenario"`
	Timestamp time.Time          `json:"timestamp"`
	Instances int                `json:"instances"`
	Joints    int                `json:"joints"`
	Dt        float64            `json:"dt"`
	Duration  float64            `json:"duration"`
	Metrics   map[string]float64 `json:"metrics"`
}

func (s *Store) Save(scenario string, instances, joints int, dt, duration float64, result *view.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", scenario, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Scenario:  scenario,
		Timestamp: time.Now(),
		Instances: instances,
		Joints:    joints,
		Dt:        dt,
		Duration:  duration,
		Metrics:   result.Metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectory.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	header := []string{"time"}
	for j := 0; j < joints; j++ {
		header = append(header, fmt.Sprintf("q%d", j))
	}
	for j := 0; j < joints; j++ {
		header = append(header, fmt.Sprintf("target%d", j))
	}
	for j := 0; j < joints; j++ {
		header = append(header, fmt.Sprintf("tau%d", j))
	}
	if err := w.Write(header); err != nil {
		return "", err
	}

	for i := range result.Times {
		row := []string{strconv.FormatFloat(result.Times[i], 'f', 6, 64)}
		for _, val := range result.Positions[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		for _, val := range result.Targets[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		for _, val := range result.Efforts[i] {
			row = append(row, strconv.FormatFloat(val, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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
		metaPath := filepath.Join(s.baseDir, entry.Name(), "metadata.json")
		data, err := os.ReadFile(metaPath)
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, "metadata.json")
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// Trajectory holds a loaded instance-0 trace.
type Trajectory struct {
	Times     []float64
	Positions [][]float64
	Targets   [][]float64
	Efforts   [][]float64
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	f, err := os.Open(filepath.Join(s.baseDir, runID, "trajectory.csv"))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("empty trajectory for run %s", runID)
	}

	joints := (len(records[0]) - 1) / 3
	traj := &Trajectory{}
	for _, rec := range records[1:] {
		t, err := strconv.ParseFloat(rec[0], 64)
		if err != nil {
			return nil, err
		}
		parse := func(lo int) ([]float64, error) {
			vals := make([]float64, joints)
			for j := 0; j < joints; j++ {
				v, err := strconv.ParseFloat(rec[lo+j], 64)
				if err != nil {
					return nil, err
				}
				vals[j] = v
			}
			return vals, nil
		}
		pos, err := parse(1)
		if err != nil {
			return nil, err
		}
		tgt, err := parse(1 + joints)
		if err != nil {
			return nil, err
		}
		eff, err := parse(1 + 2*joints)
		if err != nil {
			return nil, err
		}
		traj.Times = append(traj.Times, t)
		traj.Positions = append(traj.Positions, pos)
		traj.Targets = append(traj.Targets, tgt)
		traj.Efforts = append(traj.Efforts, eff)
	}

	return traj, nil
}
