package knowledge

type Kind string

const (
	KindKnowledge     Kind = "knowledge"
	KindGreeting      Kind = "greeting"
	KindFarewell      Kind = "farewell"
	KindClarification Kind = "clarification"
)

type Entry struct {
	Topic    string
	Keywords []string
	Response string
}

type Reply struct {
	Text  string
	Kind  Kind
	Topic string
}

const (
	greetingReply = "¡Hola! Soy el asistente de la Dirección de Desarrollo Agropecuario. " +
		"Puedo orientarte sobre programas de apoyo, capacitaciones, trámites, horarios y servicios para productores. " +
		"¿En qué te puedo ayudar?"
	farewellReply = "¡Gracias por comunicarte con la Dirección de Desarrollo Agropecuario! " +
		"Si tienes otra duda, aquí estaré para ayudarte."
	clarificationReply = "No estoy seguro de haber entendido tu consulta. " +
		"¿Podrías darme más detalles? Puedo ayudarte con programas de apoyo, capacitaciones, trámites y requisitos, " +
		"horarios y contacto, cultivos, ganadería, riego, eventos o reportes."
)

var (
	greetingKeywords = []string{"hola", "buenos dias", "buenas tardes", "buenas noches", "buen dia", "saludos", "que tal", "hey"}
	farewellKeywords = []string{"adios", "hasta luego", "hasta pronto", "nos vemos", "gracias", "chao", "bye"}
)

// DefaultEntries is the knowledge base in match order.
func DefaultEntries() []Entry {
	return []Entry{
		{
			Topic:    "capacitaciones",
			Keywords: []string{"capacit*", "curso*", "taller*", "asesoria*", "asistencia tecnica"},
			Response: "La Dirección ofrece capacitaciones gratuitas para productores en temas como manejo de cultivos, " +
				"control de plagas, uso eficiente del agua, sanidad animal y comercialización. " +
				"Los talleres se publican cada mes en la sección de Eventos del portal y puedes inscribirte " +
				"en línea o en la oficina de Desarrollo Agropecuario presentando tu identificación oficial.",
		},
		{
			Topic:    "programas",
			// "programa" is a plain term so "programacion" (software) stays out of scope.
			Keywords: []string{"programa", "apoyo*", "subsidio*", "beneficio*", "convocatoria*", "incentivo*"},
			Response: "Contamos con programas de apoyo para la adquisición de insumos, semillas mejoradas, " +
				"equipamiento e infraestructura productiva. Las convocatorias vigentes, sus requisitos y fechas " +
				"de registro están disponibles en la sección de Programas del portal.",
		},
		{
			Topic:    "tramites",
			Keywords: []string{"tramit*", "requisito*", "document*", "solicitud*", "registr*", "inscrip*", "padron"},
			Response: "Para la mayoría de los trámites necesitas identificación oficial, CURP, comprobante de domicilio " +
				"y, si aplica, el documento que acredite la posesión de la tierra o el registro de tu unidad de producción. " +
				"Puedes iniciar la solicitud en el portal y darle seguimiento con tu número de folio.",
		},
		{
			Topic:    "contacto",
			Keywords: []string{"horario*", "contacto*", "telefono*", "correo*", "oficina*", "direccion", "ubicacion*", "donde estan"},
			Response: "La oficina de Desarrollo Agropecuario atiende de lunes a viernes de 8:00 a 15:00 horas " +
				"en el Palacio Municipal. También puedes escribirnos a través del formulario de contacto del portal.",
		},
		{
			Topic:    "cultivos",
			Keywords: []string{"cultivo*", "siembra*", "sembrar", "cosecha*", "semilla*", "fertiliz*", "abono*", "plaga*", "suelo*"},
			Response: "Nuestros técnicos brindan asesoría sobre calendarios de siembra, análisis de suelo, " +
				"fertilización y manejo integrado de plagas. Solicita una visita técnica desde la sección de Servicios " +
				"indicando tu cultivo y la ubicación de tu parcela.",
		},
		{
			Topic:    "ganaderia",
			Keywords: []string{"ganad*", "bovino*", "porcino*", "avicola*", "apicult*", "abeja*", "vacuna*", "veterinari*"},
			Response: "Para productores pecuarios ofrecemos campañas de vacunación, asistencia veterinaria " +
				"y orientación sobre el registro de fierro y el padrón ganadero. Consulta las fechas de las campañas en Eventos.",
		},
		{
			Topic:    "riego",
			Keywords: []string{"riego", "agua", "pozo*", "sequia*", "bordo*"},
			Response: "Apoyamos proyectos de tecnificación del riego, rehabilitación de bordos y uso eficiente del agua. " +
				"Revisa los requisitos en la sección de Programas o acude a la oficina para una evaluación de tu proyecto.",
		},
		{
			Topic:    "eventos",
			Keywords: []string{"noticia*", "evento*", "feria*", "exposicion*"},
			Response: "Las noticias, ferias y eventos de la Dirección se publican en la sección de Noticias y Eventos del portal, " +
				"donde también puedes registrarte a las actividades con cupo limitado.",
		},
		{
			Topic:    "reportes",
			Keywords: []string{"reporte*", "queja*", "denuncia*", "problema*"},
			Response: "Puedes levantar un reporte desde la sección de Reportes del portal describiendo la situación " +
				"y, si es posible, adjuntando fotografías. Recibirás un número de folio para dar seguimiento.",
		},
	}
}

// DefaultQuickReplies is keyed by user type; the empty key is the fallback.
func DefaultQuickReplies() map[string][]string {
	return map[string][]string{
		"productor": {
			"¿Qué programas de apoyo hay para mi cultivo?",
			"¿Cuándo son las próximas capacitaciones?",
			"¿Qué requisitos necesito para registrarme?",
			"Quiero solicitar una visita técnica",
		},
		"ganadero": {
			"¿Cuándo es la próxima campaña de vacunación?",
			"¿Cómo registro mi fierro?",
			"¿Qué apoyos hay para ganadería?",
			"¿Cuándo son las próximas capacitaciones?",
		},
		"funcionario": {
			"¿Qué convocatorias están vigentes?",
			"¿Cómo consulto el padrón de productores?",
			"¿Cuáles son los próximos eventos?",
		},
		"": {
			"¿Qué programas de apoyo existen?",
			"¿Cuál es el horario de atención?",
			"¿Cómo levanto un reporte?",
			"¿Qué capacitaciones hay?",
		},
	}
}
