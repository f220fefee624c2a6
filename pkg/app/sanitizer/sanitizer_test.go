package sanitizer_test

import (
	"strings"
	"testing"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/sanitizer"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertRule(t *testing.T, err error, rule domain.ValidationRule) {
	t.Helper()
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, rule, validationErr.Rule)
}

func TestSanitize_StripsMarkup(t *testing.T) {
	s := sanitizer.NewSanitizer(sanitizer.DefaultConfig())

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "¿Qué apoyos hay para riego?", "¿Qué apoyos hay para riego?"},
		{"script block", "hola<script>alert('x')</script> mundo", "hola mundo"},
		{"style block", "<style>body{color:red}</style>horarios", "horarios"},
		{"tags", "<b>programa</b> <a href='#'>ganadero</a>", "programa ganadero"},
		{"javascript scheme", "javascript:alert(1) trámites", "alert(1) trámites"},
		{"event handler", `<img src=x onerror="x()">ayuda`, "ayuda"},
		{"inline handler text", `onclick=robar() semillas`, "robar() semillas"},
		{"whitespace", "  necesito \n\n  ayuda\t con   mi  parcela ", "necesito ayuda con mi parcela"},
		{"less than is kept", "rendimiento < 3 toneladas", "rendimiento < 3 toneladas"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSanitize_Rules(t *testing.T) {
	s := sanitizer.NewSanitizer(sanitizer.DefaultConfig())

	_, err := s.Sanitize("   ")
	assertRule(t, err, domain.RuleEmpty)

	_, err = s.Sanitize("<p></p>")
	assertRule(t, err, domain.RuleEmpty)

	_, err = s.Sanitize("a")
	assertRule(t, err, domain.RuleTooShort)

	_, err = s.Sanitize(strings.Repeat("a", 1001))
	assertRule(t, err, domain.RuleTooLong)

	_, err = s.Sanitize("eres un IDIOTA")
	assertRule(t, err, domain.RuleInappropriateContent)

	_, err = s.Sanitize("qué estúpido sistema")
	assertRule(t, err, domain.RuleInappropriateContent)
}

func TestSanitize_LengthCountsCharacters(t *testing.T) {
	s := sanitizer.NewSanitizer(sanitizer.Config{MinLength: 2, MaxLength: 5})

	got, err := s.Sanitize("ñandú")
	require.NoError(t, err)
	assert.Equal(t, "ñandú", got)

	_, err = s.Sanitize("ñandús")
	assertRule(t, err, domain.RuleTooLong)
}

func TestSanitize_DenylistMatchesWholeWords(t *testing.T) {
	s := sanitizer.NewSanitizer(sanitizer.Config{MinLength: 1, MaxLength: 100, Denylist: []string{"mal", "muy feo"}})

	_, err := s.Sanitize("tengo un animal enfermo")
	assert.NoError(t, err)

	_, err = s.Sanitize("esto está MUY   feo")
	assertRule(t, err, domain.RuleInappropriateContent)
}

func TestClean(t *testing.T) {
	s := sanitizer.NewSanitizer(sanitizer.DefaultConfig())
	assert.Equal(t, "", s.Clean("<script>x</script>"))
	assert.Equal(t, "muy buena atención", s.Clean("<i>muy</i>  buena\natención"))
}
