// Package export writes a recorded seeding run to disk as JSON, YAML or CSV.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Lumos-Labs-HQ/farmseed/internal/ledger"
	"gopkg.in/yaml.v3"
)

const Version = "1.0"

// Source reads runs back from the ledger. *ledger.Ledger satisfies it.
type Source interface {
	GetRun(ctx context.Context, id string) (*ledger.Run, error)
	ListFarms(ctx context.Context, runID string) ([]ledger.Farm, error)
	ListCalls(ctx context.Context, runID string) ([]ledger.Call, error)
}

type Document struct {
	Version    string `json:"version" yaml:"version"`
	ExportedAt string `json:"exported_at" yaml:"exported_at"`
	Run        Run    `json:"run" yaml:"run"`
	Farms      []Farm `json:"farms" yaml:"farms"`
	Calls      []Call `json:"calls" yaml:"calls"`
}

type Run struct {
	ID           string `json:"id" yaml:"id"`
	Command      string `json:"command" yaml:"command"`
	Endpoint     string `json:"endpoint" yaml:"endpoint"`
	DryRun       bool   `json:"dry_run" yaml:"dry_run"`
	StartedAt    string `json:"started_at" yaml:"started_at"`
	FinishedAt   string `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	FarmsCreated int    `json:"farms_created" yaml:"farms_created"`
	CallsOK      int    `json:"calls_ok" yaml:"calls_ok"`
	CallsFailed  int    `json:"calls_failed" yaml:"calls_failed"`
}

type Farm struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	SharePrice uint64 `json:"share_price" yaml:"share_price"`
}

type Call struct {
	Seq     int    `json:"seq" yaml:"seq"`
	Method  string `json:"method" yaml:"method"`
	Target  string `json:"target" yaml:"target"`
	Amount  uint64 `json:"amount,omitempty" yaml:"amount,omitempty"`
	Outcome string `json:"outcome" yaml:"outcome"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Build collects one run into a Document. runID may be "latest".
func Build(ctx context.Context, src Source, runID string) (*Document, error) {
	run, err := src.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	farms, err := src.ListFarms(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read farms: %w", err)
	}
	calls, err := src.ListCalls(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read calls: %w", err)
	}

	doc := &Document{
		Version:    Version,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Run: Run{
			ID:           run.ID,
			Command:      run.Command,
			Endpoint:     run.Endpoint,
			DryRun:       run.DryRun,
			StartedAt:    run.StartedAt.UTC().Format(time.RFC3339),
			FarmsCreated: run.FarmsCreated,
			CallsOK:      run.CallsOK,
			CallsFailed:  run.CallsFailed,
		},
		Farms: make([]Farm, 0, len(farms)),
		Calls: make([]Call, 0, len(calls)),
	}
	if run.FinishedAt != nil {
		doc.Run.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	for _, f := range farms {
		doc.Farms = append(doc.Farms, Farm{ID: f.FarmID, Name: f.Name, SharePrice: f.SharePrice})
	}
	for _, c := range calls {
		doc.Calls = append(doc.Calls, Call{Seq: c.Seq, Method: c.Method, Target: c.Target, Amount: c.Amount, Outcome: c.Outcome, Error: c.Error})
	}
	return doc, nil
}

// PerformExport writes run runID under exportPath and returns the file or directory written.
func PerformExport(ctx context.Context, src Source, runID, exportPath, format string) (string, error) {
	doc, err := Build(ctx, src, runID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(exportPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	base := filepath.Join(exportPath, "run_"+shortID(doc.Run.ID)+"_"+time.Now().Format("2006-01-02_15-04-05"))

	switch format {
	case "csv":
		return exportToCSV(doc, base+"_csv")
	case "yaml", "yml":
		return exportToYAML(doc, base+".yaml")
	case "json", "":
		return exportToJSON(doc, base+".json")
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

func exportToJSON(doc *Document, filePath string) (string, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}

func exportToYAML(doc *Document, filePath string) (string, error) {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal data: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return filePath, nil
}

// exportToCSV writes farms.csv and calls.csv into dirPath.
func exportToCSV(doc *Document, dirPath string) (string, error) {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create CSV directory: %w", err)
	}

	farms := [][]string{{"id", "name", "share_price"}}
	for _, f := range doc.Farms {
		farms = append(farms, []string{f.ID, f.Name, strconv.FormatUint(f.SharePrice, 10)})
	}
	if err := writeCSV(filepath.Join(dirPath, "farms.csv"), farms); err != nil {
		return "", err
	}

	calls := [][]string{{"seq", "method", "target", "amount", "outcome", "error"}}
	for _, c := range doc.Calls {
		calls = append(calls, []string{
			strconv.Itoa(c.Seq), c.Method, c.Target, strconv.FormatUint(c.Amount, 10), c.Outcome, c.Error,
		})
	}
	if err := writeCSV(filepath.Join(dirPath, "calls.csv"), calls); err != nil {
		return "", err
	}

	return dirPath, nil
}

func writeCSV(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file %s: %w", filepath.Base(path), err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
