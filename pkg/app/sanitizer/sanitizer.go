package sanitizer

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/AgroMunicipal/CitizenAssistant/pkg/domain"
	"github.com/AgroMunicipal/CitizenAssistant/pkg/utils"
)

var (
	scriptBlock  = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	styleBlock   = regexp.MustCompile(`(?is)<style\b[^>]*>.*?</style\s*>`)
	markupTag    = regexp.MustCompile(`(?s)</?[a-zA-Z!][^>]*>`)
	jsScheme     = regexp.MustCompile(`(?i)(java|vb)script\s*:`)
	eventHandler = regexp.MustCompile(`(?i)\bon[a-z]+\s*=`)
	whitespace   = regexp.MustCompile(`\s+`)
)

type Config struct {
	MinLength int
	MaxLength int
	Denylist  []string
}

func DefaultConfig() Config {
	return Config{
		MinLength: 2,
		MaxLength: 1000,
		Denylist: []string{
			"idiota", "estupido", "imbecil", "pendejo", "mierda", "puta", "cabron", "maldito",
		},
	}
}

//go:generate mockery --name=Sanitizer --dir=. --output=./mocks --filename=sanitizer_mock.go --case=underscore
type Sanitizer interface {
	// Sanitize cleans a chat message and enforces the length and content rules.
	Sanitize(raw string) (string, error)
	// Clean strips markup and collapses whitespace without enforcing any rule.
	Clean(raw string) string
}

type sanitizer struct {
	cfg      Config
	denylist []string
}

func NewSanitizer(cfg Config) Sanitizer {
	terms := make([]string, 0, len(cfg.Denylist))
	for _, term := range cfg.Denylist {
		words := utils.Words(utils.Fold(term))
		if len(words) > 0 {
			terms = append(terms, " "+strings.Join(words, " ")+" ")
		}
	}
	return &sanitizer{cfg: cfg, denylist: terms}
}

func (s *sanitizer) Clean(raw string) string {
	out := scriptBlock.ReplaceAllString(raw, " ")
	out = styleBlock.ReplaceAllString(out, " ")
	out = markupTag.ReplaceAllString(out, " ")
	out = jsScheme.ReplaceAllString(out, "")
	out = eventHandler.ReplaceAllString(out, "")
	out = whitespace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func (s *sanitizer) Sanitize(raw string) (string, error) {
	cleaned := s.Clean(raw)
	length := utf8.RuneCountInString(cleaned)
	switch {
	case length == 0:
		return "", domain.NewValidationError("message", domain.RuleEmpty, "El mensaje no puede estar vacío")
	case length < s.cfg.MinLength:
		return "", domain.NewValidationError("message", domain.RuleTooShort,
			fmt.Sprintf("El mensaje debe tener al menos %d caracteres", s.cfg.MinLength))
	case s.cfg.MaxLength > 0 && length > s.cfg.MaxLength:
		return "", domain.NewValidationError("message", domain.RuleTooLong,
			fmt.Sprintf("El mensaje no puede superar %d caracteres", s.cfg.MaxLength))
	}
	if s.inappropriate(cleaned) {
		return "", domain.NewValidationError("message", domain.RuleInappropriateContent,
			"El mensaje contiene lenguaje inapropiado")
	}
	return cleaned, nil
}

func (s *sanitizer) inappropriate(text string) bool {
	if len(s.denylist) == 0 {
		return false
	}
	padded := " " + strings.Join(utils.Words(utils.Fold(text)), " ") + " "
	for _, term := range s.denylist {
		if strings.Contains(padded, term) {
			return true
		}
	}
	return false
}
