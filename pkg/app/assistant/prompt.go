package assistant

import (
	"strings"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain/session"
)

const systemInstructions = `Eres el asistente virtual de la Dirección de Desarrollo Agropecuario del municipio.
Atiendes a productores, ganaderos y ciudadanos del medio rural.
Responde siempre en español, de forma breve, clara y amable.
Habla solo de programas de apoyo, capacitaciones, trámites, horarios, cultivos, ganadería, riego, eventos y reportes.
Si no conoces un dato concreto (fechas, montos, nombres), indica que lo consulten en el portal o en la oficina.
No inventes programas ni requisitos.`

const (
	userLabel      = "Usuario"
	assistantLabel = "Asistente"
	systemLabel    = "Sistema"
	unknownValue   = "no especificado"
)

// BuildPrompt assembles the fixed instructions, the session context, the
// recent history and the current turn into a single prompt.
func BuildPrompt(sessionContext session.Context, history []session.Message, text string) string {
	var b strings.Builder
	b.WriteString(systemInstructions)
	b.WriteString("\n\nContexto del usuario:\n")
	writeField(&b, "Tipo de usuario", sessionContext.UserType)
	writeField(&b, "Departamento", sessionContext.Department)
	writeField(&b, "Ubicación", sessionContext.Location)

	if len(history) > 0 {
		b.WriteString("\nConversación reciente:\n")
		for _, m := range history {
			b.WriteString(senderLabel(m.Sender))
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(m.Content))
			b.WriteByte('\n')
		}
	}

	b.WriteString("\n")
	b.WriteString(userLabel)
	b.WriteString(": ")
	b.WriteString(text)
	b.WriteString("\n")
	b.WriteString(assistantLabel)
	b.WriteString(":")
	return b.String()
}

func writeField(b *strings.Builder, name, value string) {
	if strings.TrimSpace(value) == "" {
		value = unknownValue
	}
	b.WriteString("- ")
	b.WriteString(name)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteByte('\n')
}

func senderLabel(sender session.Sender) string {
	switch sender {
	case session.SenderAssistant:
		return assistantLabel
	case session.SenderSystem:
		return systemLabel
	default:
		return userLabel
	}
}
