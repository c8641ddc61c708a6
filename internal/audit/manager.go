package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"crisp/interview/internal/models"

	"gorm.io/gorm"
)

// Manager handles scoring audit storage and export
type Manager struct {
	db           *gorm.DB
	contextCache *ContextCache
}

// NewManager creates a new audit manager
func NewManager(db *gorm.DB, cacheTTL time.Duration) *Manager {
	return &Manager{
		db:           db,
		contextCache: NewContextCache(cacheTTL),
	}
}

// StorePendingContext caches an in-flight scoring run
func (m *Manager) StorePendingContext(ctx *models.ScoreContext) {
	m.contextCache.Set(ctx.RequestID, ctx)
}

// PendingContext retrieves an in-flight scoring run, if still cached
func (m *Manager) PendingContext(requestID string) (*models.ScoreContext, bool) {
	return m.contextCache.Get(requestID)
}

// DiscardPendingContext drops an in-flight scoring run without
// recording it; used when the session moved on before scoring finished
func (m *Manager) DiscardPendingContext(requestID string) {
	m.contextCache.Delete(requestID)
	log.Printf("Discarded stale scoring context: %s", requestID)
}

// RecordScore writes the audit row for a completed scoring run and
// clears its pending context
func (m *Manager) RecordScore(record *models.ScoreRecord) error {
	if record.ScoredAt.IsZero() {
		record.ScoredAt = time.Now()
	}

	if err := m.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to store score record: %w", err)
	}

	m.contextCache.Delete(record.RequestID)

	log.Printf("Recorded score: request=%s, session=%s, score=%d, source=%s",
		record.RequestID, record.SessionID, record.Score, record.Source)

	return nil
}

// GetUnexported retrieves score records that haven't been exported yet
func (m *Manager) GetUnexported(limit int) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord

	query := m.db.Where("exported = ?", false).Order("scored_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get unexported score records: %w", err)
	}

	return records, nil
}

// GetSince retrieves score records since a specific time
func (m *Manager) GetSince(since time.Time, limit int) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord

	query := m.db.Where("scored_at >= ?", since).Order("scored_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get score records since %v: %w", since, err)
	}

	return records, nil
}

// GetBySession retrieves a session's score records in scoring order
func (m *Manager) GetBySession(sessionID string) ([]models.ScoreRecord, error) {
	var records []models.ScoreRecord
	if err := m.db.Where("session_id = ?", sessionID).Order("scored_at ASC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to get score records for session %s: %w", sessionID, err)
	}
	return records, nil
}

// MarkAsExported marks score records as exported
func (m *Manager) MarkAsExported(recordIDs []uint) error {
	now := time.Now()
	result := m.db.Model(&models.ScoreRecord{}).
		Where("id IN ?", recordIDs).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to mark score records as exported: %w", result.Error)
	}

	log.Printf("Marked %d score records as exported", result.RowsAffected)
	return nil
}

// ExportToJSONL renders score records as JSONL, one record per line
func (m *Manager) ExportToJSONL(records []models.ScoreRecord) ([]byte, error) {
	var out []byte
	for i, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal score record: %w", err)
		}
		out = append(out, line...)
		if i < len(records)-1 {
			out = append(out, '\n')
		}
	}

	log.Printf("Exported %d score records to JSONL", len(records))
	return out, nil
}

// Stats returns statistics about stored score records
func (m *Manager) Stats() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	var totalCount int64
	if err := m.db.Model(&models.ScoreRecord{}).Count(&totalCount).Error; err != nil {
		return nil, err
	}
	stats["total_count"] = totalCount

	var aiCount int64
	if err := m.db.Model(&models.ScoreRecord{}).Where("source = ?", "ai").Count(&aiCount).Error; err != nil {
		return nil, err
	}
	stats["ai_count"] = aiCount
	stats["fallback_count"] = totalCount - aiCount

	var unexportedCount int64
	if err := m.db.Model(&models.ScoreRecord{}).Where("exported = ?", false).Count(&unexportedCount).Error; err != nil {
		return nil, err
	}
	stats["unexported_count"] = unexportedCount

	stats["pending_contexts"] = m.contextCache.Size()

	return stats, nil
}
