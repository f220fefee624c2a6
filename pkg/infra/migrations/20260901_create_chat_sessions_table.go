package migrations

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20260901_create_chat_sessions_table",
		Name: "Create chat_sessions table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS chat_sessions (
					id                    UUID PRIMARY KEY,
					owner_id              TEXT NOT NULL,
					status                VARCHAR(16) NOT NULL DEFAULT 'active',
					user_type             TEXT,
					department            TEXT,
					location              TEXT,
					message_count         INTEGER NOT NULL DEFAULT 0,
					started_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					last_activity         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					ended_at              TIMESTAMPTZ,
					feedback_rating       SMALLINT CHECK (feedback_rating BETWEEN 1 AND 5),
					feedback_comment      TEXT,
					feedback_submitted_at TIMESTAMPTZ
				);
			`).Error; err != nil {
				return err
			}

			if err := db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_chat_sessions_owner_status
				ON chat_sessions (owner_id, status);
			`).Error; err != nil {
				return err
			}

			// Sweeper scans by activity.
			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_chat_sessions_last_activity
				ON chat_sessions (status, last_activity);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS chat_sessions;`).Error
		},
	})
}
