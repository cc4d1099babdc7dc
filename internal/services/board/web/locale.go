package web

import (
	"net/http"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// LangParam selects the page language from the query string.
const LangParam = "lang"

var supportedTags = []language.Tag{
	language.AmericanEnglish,
	language.BrazilianPortuguese,
}

var matcher = language.NewMatcher(supportedTags)

func init() {
	pt := language.BrazilianPortuguese
	_ = message.SetString(pt, "Bean machine", "Máquina de Galton")
	_ = message.SetString(pt, "Paths: %d", "Caminhos: %d")
	_ = message.SetString(pt, "Speed: %.2f updates/s", "Velocidade: %.2f atualizações/s")
	_ = message.SetString(pt, "Batch: %d paths", "Lote: %d caminhos")
	_ = message.SetString(pt, "Mean bin: %.2f", "Caixa média: %.2f")
	_ = message.SetString(pt, "Reset", "Reiniciar")
	_ = message.SetString(pt, "Set speed", "Definir velocidade")
}

// ResolveTag picks the page language from ?lang= or Accept-Language.
func ResolveTag(r *http.Request) language.Tag {
	if r == nil {
		return supportedTags[0]
	}
	var candidates []language.Tag
	if value := strings.TrimSpace(r.URL.Query().Get(LangParam)); value != "" {
		if tag, err := language.Parse(value); err == nil {
			candidates = append(candidates, tag)
		}
	}
	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil {
			candidates = append(candidates, tags...)
		}
	}
	if len(candidates) == 0 {
		return supportedTags[0]
	}
	_, index, confidence := matcher.Match(candidates...)
	if confidence == language.No {
		return supportedTags[0]
	}
	return supportedTags[index]
}

// Printer returns a message printer for tag.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag)
}
