package conversation

import (
	"fmt"
	"strings"
)

var welcomeTopics = map[string]string{
	"productor":   "programas de apoyo para tu cultivo, capacitaciones y visitas técnicas",
	"ganadero":    "campañas de vacunación, registro de fierro y apoyos pecuarios",
	"funcionario": "convocatorias vigentes, padrón de productores y eventos",
}

const defaultWelcomeTopics = "programas de apoyo, capacitaciones, trámites y horarios de atención"

// WelcomeMessage is the first assistant message of every session.
func WelcomeMessage(firstName, userType string) string {
	greeting := "¡Hola!"
	if name := strings.TrimSpace(firstName); name != "" {
		greeting = fmt.Sprintf("¡Hola, %s!", name)
	}
	topics, ok := welcomeTopics[strings.ToLower(userType)]
	if !ok {
		topics = defaultWelcomeTopics
	}
	return fmt.Sprintf("%s Bienvenido al asistente de la Dirección de Desarrollo Agropecuario. "+
		"Puedo ayudarte con %s. ¿En qué te puedo ayudar hoy?", greeting, topics)
}
