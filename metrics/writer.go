package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type NodeRecord struct {
	ID       int
	Parent   int // -1 for the root
	Depth    int
	Visits   int
	ValueSum float64
	Step     string // Latest step, empty for the root
}

type SearchRecord struct {
	RunID     string
	Question  string
	StartTime time.Time
	TreeSize  int
	SearchMetric
}

type Writer struct {
	baseDir string
}

// NewWriter creates <dir>/<runID> for the records of one search run.
func NewWriter(dir, runID string) (*Writer, error) {
	baseDir := filepath.Join(dir, runID)
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) WriteNodeRecords(records []NodeRecord) error {
	path := filepath.Join(w.baseDir, "nodes.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create node records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"id", "parent", "depth", "visits", "value_sum", "mean", "step"}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write node records header: %w", err)
	}

	for _, record := range records {
		mean := 0.0
		if record.Visits > 0 {
			mean = record.ValueSum / float64(record.Visits)
		}
		row := []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.Parent),
			strconv.Itoa(record.Depth),
			strconv.Itoa(record.Visits),
			formatFloat(record.ValueSum),
			formatFloat(mean),
			record.Step,
		}
		err = writer.Write(row)
		if err != nil {
			return fmt.Errorf("failed to write node record row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush node records: %w", err)
	}
	return nil
}

func (w *Writer) WriteSearchRecord(record SearchRecord) error {
	path := filepath.Join(w.baseDir, "search.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create search record file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{
		"run_id", "question", "start_time", "duration", "iterations", "max_depth", "max_children",
		"completed", "expansions", "evaluations", "failures", "mean_score", "best_score", "tree_size",
	}
	err = writer.Write(header)
	if err != nil {
		return fmt.Errorf("failed to write search record header: %w", err)
	}

	row := []string{
		record.RunID,
		record.Question,
		record.StartTime.Format(time.RFC3339),
		record.Duration.String(),
		strconv.Itoa(record.Iterations),
		strconv.Itoa(record.MaxDepth),
		strconv.Itoa(record.MaxChildren),
		strconv.Itoa(record.Completed),
		strconv.Itoa(record.Expansions),
		strconv.Itoa(record.Evaluations),
		strconv.Itoa(record.Failures),
		formatFloat(record.MeanScore()),
		formatFloat(record.BestScore),
		strconv.Itoa(record.TreeSize),
	}
	err = writer.Write(row)
	if err != nil {
		return fmt.Errorf("failed to write search record row: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush search record: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
