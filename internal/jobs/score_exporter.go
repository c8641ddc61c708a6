package jobs

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"crisp/interview/internal/audit"

	"github.com/robfig/cron/v3"
)

// ScoreExporterJob periodically exports unexported score audit records
// to timestamped JSONL files for offline review of scoring quality.
type ScoreExporterJob struct {
	auditManager *audit.Manager
	config       *ExporterConfig
	cron         *cron.Cron
}

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule      string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir     string // Directory to store exported files
	ExportEnabled bool   // Whether to run exports
}

// NewScoreExporterJob creates a new exporter job
func NewScoreExporterJob(auditManager *audit.Manager, config *ExporterConfig) *ScoreExporterJob {
	return &ScoreExporterJob{
		auditManager: auditManager,
		config:       config,
		cron:         cron.New(),
	}
}

// Start begins the scheduled export job
func (sej *ScoreExporterJob) Start() error {
	if !sej.config.ExportEnabled {
		log.Println("Score export is disabled, skipping scheduler")
		return nil
	}

	log.Printf("Starting score exporter with schedule: %s", sej.config.Schedule)

	_, err := sej.cron.AddFunc(sej.config.Schedule, func() {
		if err := sej.RunExport(); err != nil {
			log.Printf("Export job failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	sej.cron.Start()
	log.Println("Score exporter started successfully")

	return nil
}

// Stop stops the scheduled export job
func (sej *ScoreExporterJob) Stop() {
	if sej.cron != nil {
		sej.cron.Stop()
		log.Println("Score exporter stopped")
	}
}

// RunExport performs a single export run
func (sej *ScoreExporterJob) RunExport() error {
	log.Println("Starting score export job...")

	records, err := sej.auditManager.GetUnexported(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to get unexported records: %w", err)
	}

	if len(records) == 0 {
		log.Println("No unexported score records found")
		return nil
	}

	log.Printf("Found %d unexported score records", len(records))

	jsonlData, err := sej.auditManager.ExportToJSONL(records)
	if err != nil {
		return fmt.Errorf("failed to export to JSONL: %w", err)
	}

	if err := os.MkdirAll(sej.config.ExportDir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("score_export_%s.jsonl", timestamp)
	path := filepath.Join(sej.config.ExportDir, filename)

	if err := os.WriteFile(path, jsonlData, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	log.Printf("Exported %d score records to %s", len(records), path)

	recordIDs := make([]uint, len(records))
	for i, r := range records {
		recordIDs[i] = r.ID
	}

	if err := sej.auditManager.MarkAsExported(recordIDs); err != nil {
		return fmt.Errorf("failed to mark as exported: %w", err)
	}

	return nil
}

// RunManual runs an export manually (for testing or on-demand exports)
func (sej *ScoreExporterJob) RunManual() error {
	return sej.RunExport()
}
