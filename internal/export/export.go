// Package export writes run artifacts to the data directory: the JSON
// research report plus the CSV files the dashboard serves as downloads.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mfuentes/insider-scout/internal/model"
)

// File names under the data directory. The dashboard download routes serve
// these paths directly.
const (
	opportunitiesFile = "insider_opportunities.csv"
	researchJSONFile  = "weekly_research_report.json"
	researchCSVFile   = "weekly_research_report.csv"
)

// Writer persists run artifacts under a data directory.
type Writer struct {
	dataDir string
}

// NewWriter creates a Writer rooted at dataDir, creating it if needed.
func NewWriter(dataDir string) (*Writer, error) {
	if dataDir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Writer{dataDir: dataDir}, nil
}

// OpportunitiesPath is where the opportunities CSV lives.
func (w *Writer) OpportunitiesPath() string {
	return filepath.Join(w.dataDir, opportunitiesFile)
}

// ResearchJSONPath is where the JSON research report lives.
func (w *Writer) ResearchJSONPath() string {
	return filepath.Join(w.dataDir, researchJSONFile)
}

// ResearchCSVPath is where the research CSV lives.
func (w *Writer) ResearchCSVPath() string {
	return filepath.Join(w.dataDir, researchCSVFile)
}

// WriteOpportunities writes the detected opportunity set as CSV.
func (w *Writer) WriteOpportunities(opportunities []model.Opportunity) error {
	header := []string{
		"ticker", "type", "score", "insider_count", "insider_name",
		"total_value", "reference_price", "days_since", "freshness",
	}

	rows := make([][]string, 0, len(opportunities))
	for _, opp := range opportunities {
		rows = append(rows, opportunityRow(opp))
	}
	return w.writeCSV(w.OpportunitiesPath(), header, rows)
}

func opportunityRow(opp model.Opportunity) []string {
	if opp.Type == model.TypeWhale {
		whale := opp.Whale
		return []string{
			whale.Ticker, string(model.TypeWhale), strconv.Itoa(whale.WhaleScore),
			"1", whale.InsiderName,
			formatFloat(whale.PurchaseValue), formatFloat(whale.PurchasePrice),
			strconv.Itoa(whale.DaysSinceTrade), string(whale.Freshness),
		}
	}
	cluster := opp.Cluster
	return []string{
		cluster.Ticker, string(model.TypeCluster), strconv.Itoa(cluster.Score),
		strconv.Itoa(cluster.InsiderCount), "",
		formatFloat(cluster.TotalValue), formatFloat(cluster.WeightedAvgPrice),
		strconv.Itoa(cluster.DaysSinceLatest), string(cluster.Freshness),
	}
}

// WriteResearchReport writes the full report as indented JSON.
func (w *Writer) WriteResearchReport(report *model.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := os.WriteFile(w.ResearchJSONPath(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write research report: %w", err)
	}
	return nil
}

// WriteResearchCSV flattens the combined ranking into a research CSV.
func (w *Writer) WriteResearchCSV(report *model.Report) error {
	header := []string{
		"ticker", "type", "stage", "risk", "momentum_pct", "current_price",
		"insider_price", "pct_from_52w_high", "action", "position_size",
		"stop_loss_pct", "target_pct", "signals",
	}

	rows := make([][]string, 0, len(report.CombinedTop))
	for _, opp := range report.CombinedTop {
		rows = append(rows, []string{
			opp.Ticker(), string(opp.Type), string(opp.Stage), string(opp.Risk),
			formatFloat(opp.MomentumPct), formatFloat(opp.CurrentPrice),
			formatFloat(opp.InsiderReferencePrice), formatFloat(opp.PctFrom52WeekHigh),
			opp.Strategy.Action, opp.Strategy.PositionSize,
			formatFloat(opp.Strategy.StopLossPct), formatFloat(opp.Strategy.TargetPct),
			strings.Join(opp.ResearchSignals, "; "),
		})
	}
	return w.writeCSV(w.ResearchCSVPath(), header, rows)
}

func (w *Writer) writeCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
