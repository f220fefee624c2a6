package scope

import (
	"github.com/AgroMunicipal/CitizenAssistant/pkg/app/knowledge"
)

type Reason string

const (
	ReasonDomain     Reason = "domain"
	ReasonBasic      Reason = "basic_interaction"
	ReasonOutOfScope Reason = "out_of_scope"
)

type Verdict struct {
	InScope  bool
	Reason   Reason
	Keyword  string
	Redirect string
}

// DefaultKeywords covers municipal services, agriculture, programs, procedures
// and contact information. "programa" is a plain term so programming questions
// stay out of scope.
var DefaultKeywords = []string{
	"municip*", "ayuntamiento", "alcaldia", "gobierno", "servicio*", "direccion de desarrollo",
	"programa", "apoyo*", "subsidio*", "beneficiari*", "convocatoria*", "incentivo*",
	"capacit*", "taller*", "curso*", "asesor*", "asistencia tecnica",
	"tramit*", "requisito*", "document*", "solicitud*", "registr*", "inscrip*", "padron", "folio*",
	"horario*", "oficina*", "telefono*", "contacto*", "correo*", "direccion", "ubicacion*",
	"agricult*", "agricol*", "agropecuari*", "agro", "campo", "campesino*", "productor*", "ejid*", "rural*",
	"cultivo*", "siembra*", "sembrar", "cosecha*", "semilla*", "fertiliz*", "abono*", "plaga*", "suelo*",
	"parcela*", "hectarea*", "maiz", "frijol", "cafe", "hortaliza*", "fruta*", "invernadero*",
	"riego", "agua", "pozo*", "sequia*", "bordo*",
	"ganad*", "bovino*", "porcino*", "avicola*", "apicult*", "abeja*", "pesca*", "acuicult*", "forestal*",
	"veterinari*", "vacuna*", "sanidad", "maquinaria", "tractor*", "credito*", "financiamiento", "seguro*",
	"noticia*", "evento*", "feria*", "exposicion*", "reporte*", "queja*", "denuncia*",
}

var DefaultRedirects = []string{
	"Lo siento, solo puedo ayudarte con temas relacionados con los servicios agropecuarios del municipio, " +
		"como programas de apoyo, capacitaciones, trámites y horarios de atención.",
	"Esa consulta está fuera de mi área. Puedo orientarte sobre programas para productores, " +
		"capacitaciones, trámites, eventos y reportes de la Dirección de Desarrollo Agropecuario.",
	"Mi especialidad son los servicios agropecuarios municipales. ¿Te gustaría saber sobre programas de apoyo, " +
		"capacitaciones o requisitos para algún trámite?",
}

//go:generate mockery --name=Validator --dir=. --output=./mocks --filename=validator_mock.go --case=underscore
type Validator interface {
	// Check classifies sanitized text. It never performs I/O.
	Check(text string) Verdict
}

type validator struct {
	domain    *knowledge.Matcher
	redirects []string
	selector  Selector
}

func NewValidator(keywords []string, redirects []string, selector Selector) Validator {
	if len(redirects) == 0 {
		redirects = DefaultRedirects
	}
	if selector == nil {
		selector = FixedSelector(0)
	}
	return &validator{
		domain:    knowledge.NewMatcher(keywords...),
		redirects: redirects,
		selector:  selector,
	}
}

func NewDefaultValidator(selector Selector) Validator {
	return NewValidator(DefaultKeywords, DefaultRedirects, selector)
}

func (v *validator) Check(text string) Verdict {
	in := knowledge.Prepare(text)
	if kw, ok := v.domain.First(in); ok {
		return Verdict{InScope: true, Reason: ReasonDomain, Keyword: kw}
	}
	if knowledge.BasicInteraction(in) {
		return Verdict{InScope: true, Reason: ReasonBasic}
	}
	return Verdict{
		InScope:  false,
		Reason:   ReasonOutOfScope,
		Redirect: v.redirects[v.selector.Select(len(v.redirects))],
	}
}
