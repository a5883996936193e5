package database

import (
	"log"

	"gorm.io/gorm"
)

// cleanupOrphanedEntries removes entries whose series no longer exists.
// Databases written before foreign keys were enforced can contain them, and
// AutoMigrate cannot add the constraint while they are present.
// This runs BEFORE AutoMigrate.
func cleanupOrphanedEntries(db *gorm.DB) error {
	if !db.Migrator().HasTable("entries") || !db.Migrator().HasTable("series") {
		return nil
	}

	result := db.Exec(`
		DELETE FROM entries
		WHERE series_id NOT IN (SELECT id FROM series)
	`)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		log.Printf("Cleaned up %d orphaned entries", result.RowsAffected)
	}

	if db.Migrator().HasTable("charts") && db.Migrator().HasColumn("charts", "source1_series_id") {
		result = db.Exec(`
			DELETE FROM charts
			WHERE (source1_series_id IS NOT NULL AND source1_series_id NOT IN (SELECT id FROM series))
			   OR (source2_series_id IS NOT NULL AND source2_series_id NOT IN (SELECT id FROM series))
		`)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			log.Printf("Cleaned up %d charts bound to deleted series", result.RowsAffected)
		}
	}

	return nil
}

// RunMigrations runs any custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateChartSortOrder(db); err != nil {
		return err
	}
	return nil
}

// migrateChartSortOrder renumbers charts so sort_no is contiguous from 0.
// Gaps appear after charts are cascade-deleted with their series.
// This is safe to run multiple times.
func migrateChartSortOrder(db *gorm.DB) error {
	type row struct {
		ID     uint
		SortNo int
	}

	var rows []row
	if err := db.Table("charts").Select("id, sort_no").Order("sort_no ASC").Scan(&rows).Error; err != nil {
		return err
	}

	contiguous := true
	for i, r := range rows {
		if r.SortNo != i {
			contiguous = false
			break
		}
	}
	if contiguous {
		return nil
	}

	log.Printf("Renumbering %d charts", len(rows))
	return db.Transaction(func(tx *gorm.DB) error {
		// Move out of the way first so the unique index never sees a duplicate
		if err := tx.Exec("UPDATE charts SET sort_no = -sort_no - 1").Error; err != nil {
			return err
		}
		for i, r := range rows {
			if err := tx.Exec("UPDATE charts SET sort_no = ? WHERE id = ?", i, r.ID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
