package database

import (
	"fmt"

	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/gorm"
)

const appendOnlyMessage = "event_logs is append-only"

// appendOnlyTriggers returns the statements that make event_logs reject UPDATE and
// DELETE at the database level for the given dialect.
func appendOnlyTriggers(dialect string) ([]string, error) {
	switch dialect {
	case "sqlite":
		return []string{
			`CREATE TRIGGER IF NOT EXISTS event_logs_no_update BEFORE UPDATE ON event_logs
BEGIN SELECT RAISE(ABORT, '` + appendOnlyMessage + `'); END`,
			`CREATE TRIGGER IF NOT EXISTS event_logs_no_delete BEFORE DELETE ON event_logs
BEGIN SELECT RAISE(ABORT, '` + appendOnlyMessage + `'); END`,
		}, nil
	case "mysql":
		return []string{
			`DROP TRIGGER IF EXISTS event_logs_no_update`,
			`CREATE TRIGGER event_logs_no_update BEFORE UPDATE ON event_logs FOR EACH ROW
SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = '` + appendOnlyMessage + `'`,
			`DROP TRIGGER IF EXISTS event_logs_no_delete`,
			`CREATE TRIGGER event_logs_no_delete BEFORE DELETE ON event_logs FOR EACH ROW
SIGNAL SQLSTATE '45000' SET MESSAGE_TEXT = '` + appendOnlyMessage + `'`,
		}, nil
	case "postgres":
		return []string{
			`CREATE OR REPLACE FUNCTION event_logs_append_only() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION '` + appendOnlyMessage + `';
END;
$$ LANGUAGE plpgsql`,
			`DROP TRIGGER IF EXISTS event_logs_append_only ON event_logs`,
			`CREATE TRIGGER event_logs_append_only BEFORE UPDATE OR DELETE ON event_logs
FOR EACH ROW EXECUTE FUNCTION event_logs_append_only()`,
		}, nil
	}
	return nil, fmt.Errorf("no trigger set for dialect %q", dialect)
}

// ExecuteTriggers installs the append-only triggers for the connected dialect.
func ExecuteTriggers(db *gorm.DB) error {
	dialect := db.Dialector.Name()
	statements, err := appendOnlyTriggers(dialect)
	if err != nil {
		return err
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing trigger: %v\nStatement: %s", err, stmt)
			return err
		}
	}

	utils.InfoLogger.Printf("Append-only triggers installed on event_logs (%s)", dialect)
	return nil
}
