package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the listing and report queries rely
// on. Single-column indexes come from the model tags.
func AddIndexes(db *gorm.DB, log *zap.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task history is paged newest first with id as the tie breaker
		{"ground_check_tasks", "idx_ground_check_tasks_created_at_id", "created_at, id"},

		// Attachments are loaded in capture order
		{"attachments", "idx_attachments_task_position", "task_id, position"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("Index already exists, skipping", zap.String("index", idx.name))
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("Created index", zap.String("index", idx.name), zap.String("table", idx.table))
	}

	return nil
}
