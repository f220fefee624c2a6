package assistant_test

import (
	"strings"
	"testing"
	"time"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/assistant"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
	"github.com/stretchr/testify/assert"
)

func TestBuildPrompt(t *testing.T) {
	now := time.Now()
	history := []session.Message{
		session.NewMessage("Hola", session.SenderUser, nil, now),
		session.NewMessage("¡Hola! ¿En qué te ayudo?", session.SenderAssistant, nil, now),
	}

	prompt := assistant.BuildPrompt(
		session.Context{UserType: "ganadero", Location: "San Isidro"},
		history,
		"¿Cuándo es la campaña de vacunación?",
	)

	assert.Contains(t, prompt, "Dirección de Desarrollo Agropecuario")
	assert.Contains(t, prompt, "- Tipo de usuario: ganadero")
	assert.Contains(t, prompt, "- Departamento: no especificado")
	assert.Contains(t, prompt, "- Ubicación: San Isidro")
	assert.Contains(t, prompt, "Usuario: Hola\nAsistente: ¡Hola! ¿En qué te ayudo?\n")
	assert.True(t, strings.HasSuffix(prompt, "Usuario: ¿Cuándo es la campaña de vacunación?\nAsistente:"))
	assert.Less(t, strings.Index(prompt, "Conversación reciente"), strings.Index(prompt, "¿Cuándo es"))
}

func TestBuildPrompt_NoHistory(t *testing.T) {
	prompt := assistant.BuildPrompt(session.Context{}, nil, "hola")
	assert.NotContains(t, prompt, "Conversación reciente")
}
