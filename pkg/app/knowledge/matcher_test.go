package knowledge_test

import (
	"testing"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/knowledge"
	"github.com/stretchr/testify/assert"
)

func TestMatcher(t *testing.T) {
	m := knowledge.NewMatcher("capacit*", "programa", "hola", "buenas tardes", "informacion")

	tests := []struct {
		in   string
		want bool
	}{
		{"capacitaciones", true},
		{"CAPACITACIÓN", true},
		{"capacidad", false},
		{"capasitacion", false},
		{"programas", true},
		{"PROGRAMACIÓN", false},
		{"hola", true},
		{"holas", true},
		{"holanda", false},
		{"muy buenas tardes", true},
		{"buenas noches tardes", false},
		{"Información", true},
		{"imformacion", true},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(knowledge.Prepare(tt.in)))
		})
	}
}

func TestMatcher_First(t *testing.T) {
	m := knowledge.NewMatcher("riego", "agua")
	kw, ok := m.First(knowledge.Prepare("agua para riego"))
	assert.True(t, ok)
	assert.Equal(t, "riego", kw)
}

func TestBasicInteraction(t *testing.T) {
	assert.True(t, knowledge.BasicInteraction(knowledge.Prepare("¿me puedes ayudar?")))
	assert.True(t, knowledge.BasicInteraction(knowledge.Prepare("¿Qué puedes hacer?")))
	assert.False(t, knowledge.BasicInteraction(knowledge.Prepare("¿cuál es la capital de Francia?")))
}
