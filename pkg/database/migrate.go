package database

import (
	"escape_room_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table of the service.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Story{},
		&model.Stage{},
		&model.Hint{},
		&model.StoryAccess{},
		&model.Attempt{},
		&model.PasswordSubmission{},
		&model.HintUnlock{},
	)
}

type foreignKey struct {
	table     string
	name      string
	column    string
	refTable  string
	refColumn string
}

// Records reference each other by id only, so the constraints are declared
// here instead of through association fields.
var foreignKeys = []foreignKey{
	{"stages", "fk_stages_story", "story_id", "stories", "id"},
	{"hints", "fk_hints_stage", "stage_id", "stages", "id"},
	{"story_accesses", "fk_story_accesses_user", "user_id", "users", "id"},
	{"story_accesses", "fk_story_accesses_story", "story_id", "stories", "id"},
	{"attempts", "fk_attempts_story_access", "story_access_id", "story_accesses", "id"},
	{"attempts", "fk_attempts_stage", "stage_id", "stages", "id"},
	{"password_submissions", "fk_password_submissions_attempt", "attempt_id", "attempts", "id"},
	{"hint_unlocks", "fk_hint_unlocks_attempt", "attempt_id", "attempts", "id"},
	{"hint_unlocks", "fk_hint_unlocks_hint", "hint_id", "hints", "id"},
}

// Migrate runs AutoMigrate and, on MySQL, adds the missing foreign keys.
func Migrate(db *gorm.DB) error {
	if err := AutoMigrate(db); err != nil {
		return err
	}
	if db.Dialector.Name() != "mysql" {
		return nil
	}

	for _, fk := range foreignKeys {
		if db.Migrator().HasConstraint(fk.table, fk.name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE `%s` ADD CONSTRAINT `%s` FOREIGN KEY (`%s`) REFERENCES `%s` (`%s`)",
			fk.table, fk.name, fk.column, fk.refTable, fk.refColumn)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add constraint %s: %w", fk.name, err)
		}
	}

	log.Println("Database migration completed")
	return nil
}
