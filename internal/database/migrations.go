package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds the indexes the cascade queries rely on. Every cascade that
// touches more than one task filters by assigned_user.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		{"tasks", "idx_tasks_assigned_user", "assigned_user"},
		{"tasks", "idx_tasks_assigned_user_completed", "assigned_user, completed"},
		{"tasks", "idx_tasks_date_created", "date_created"},
		{"users", "idx_users_date_created", "date_created"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
