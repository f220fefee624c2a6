package migrations

import (
	"testing"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/infra/database"
	"github.com/stretchr/testify/assert"
)

func TestMigrations_RegisteredInApplyOrder(t *testing.T) {
	assert.Equal(t, []string{
		"20260901_create_chat_sessions_table",
		"20260902_create_chat_messages_table",
	}, database.Registered())
}

func TestRegisterMigration_PanicsOnDuplicateID(t *testing.T) {
	assert.Panics(t, func() {
		database.RegisterMigration(database.Migration{ID: "20260901_create_chat_sessions_table"})
	})
}
