package knowledge

import "strings"

//go:generate mockery --name=Responder --dir=. --output=./mocks --filename=responder_mock.go --case=underscore
type Responder interface {
	// Respond never fails and performs no I/O.
	Respond(text string) Reply
	QuickReplies(userType string) []string
}

type compiledEntry struct {
	entry   Entry
	matcher *Matcher
}

type responder struct {
	entries      []compiledEntry
	greetings    *Matcher
	farewells    *Matcher
	quickReplies map[string][]string
}

func NewResponder(entries []Entry, quickReplies map[string][]string) Responder {
	r := &responder{
		entries:      make([]compiledEntry, 0, len(entries)),
		greetings:    NewMatcher(greetingKeywords...),
		farewells:    NewMatcher(farewellKeywords...),
		quickReplies: make(map[string][]string, len(quickReplies)),
	}
	for _, e := range entries {
		r.entries = append(r.entries, compiledEntry{entry: e, matcher: NewMatcher(e.Keywords...)})
	}
	for userType, replies := range quickReplies {
		r.quickReplies[strings.ToLower(userType)] = replies
	}
	return r
}

func NewDefaultResponder() Responder {
	return NewResponder(DefaultEntries(), DefaultQuickReplies())
}

func (r *responder) Respond(text string) Reply {
	in := Prepare(text)
	for _, ce := range r.entries {
		if ce.matcher.Match(in) {
			return Reply{Text: ce.entry.Response, Kind: KindKnowledge, Topic: ce.entry.Topic}
		}
	}
	if r.greetings.Match(in) {
		return Reply{Text: greetingReply, Kind: KindGreeting}
	}
	if r.farewells.Match(in) {
		return Reply{Text: farewellReply, Kind: KindFarewell}
	}
	return Reply{Text: clarificationReply, Kind: KindClarification}
}

func (r *responder) QuickReplies(userType string) []string {
	if replies, ok := r.quickReplies[strings.ToLower(strings.TrimSpace(userType))]; ok {
		return append([]string(nil), replies...)
	}
	return append([]string(nil), r.quickReplies[""]...)
}

// BasicInteraction reports whether text is a greeting, farewell or generic
// request for help.
func BasicInteraction(in Input) bool {
	return basicMatcher.Match(in)
}

var basicMatcher = NewMatcher(append(append(append([]string(nil), greetingKeywords...), farewellKeywords...),
	"ayuda", "ayudame", "ayudar", "necesito", "informacion", "menu", "opciones", "que puedes hacer", "como funciona",
)...)
