package migrations

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/database"
	"gorm.io/gorm"
)

func init() {
	database.RegisterMigration(database.Migration{
		ID:   "20260902_create_chat_messages_table",
		Name: "Create chat_messages table",

		Up: func(db *gorm.DB) error {
			if err := db.Exec(`
				CREATE TABLE IF NOT EXISTS chat_messages (
					id         UUID PRIMARY KEY,
					session_id UUID NOT NULL REFERENCES chat_sessions(id) ON DELETE CASCADE,
					seq        INTEGER NOT NULL,
					content    TEXT NOT NULL,
					sender     VARCHAR(16) NOT NULL,
					metadata   JSONB,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
					UNIQUE(session_id, seq)
				);
			`).Error; err != nil {
				return err
			}

			return db.Exec(`
				CREATE INDEX IF NOT EXISTS idx_chat_messages_session_seq
				ON chat_messages (session_id, seq);
			`).Error
		},

		Down: func(db *gorm.DB) error {
			return db.Exec(`DROP TABLE IF EXISTS chat_messages;`).Error
		},
	})
}
