package translate

// categoryTranslations maps known category slugs to their localized slugs.
// Entries here override whatever the model returns for the category field.
var categoryTranslations = map[string]map[string]string{
	"personal-assistant":    {"es": "asistente-personal", "pt": "assistente-pessoal", "en": "personal-assistant", "fr": "assistant-personnel", "de": "personlicher-assistent"},
	"research-assistant":    {"es": "asistente-investigacion", "pt": "assistente-pesquisa", "en": "research-assistant", "fr": "assistant-recherche", "de": "forschungsassistent"},
	"spreadsheet-assistant": {"es": "asistente-hojas-calculo", "pt": "assistente-planilhas", "en": "spreadsheet-assistant", "fr": "assistant-feuilles-calcul", "de": "tabellenkalkulation-assistent"},
	"translators":           {"es": "traductores", "pt": "tradutores", "en": "translators", "fr": "traducteurs", "de": "ubersetzer"},
	"presentations":         {"es": "presentaciones", "pt": "apresentacoes", "en": "presentations", "fr": "presentations", "de": "prasentationen"},
	"email-assistant":       {"es": "asistente-email", "pt": "assistente-email", "en": "email-assistant", "fr": "assistant-email", "de": "email-assistent"},
	"search-engine":         {"es": "motor-busqueda", "pt": "motor-busca", "en": "search-engine", "fr": "moteur-recherche", "de": "suchmaschine"},
	"prompt-generators":     {"es": "generadores-prompts", "pt": "geradores-prompts", "en": "prompt-generators", "fr": "generateurs-prompts", "de": "prompt-generatoren"},
	"writing-generators":    {"es": "generadores-escritura", "pt": "geradores-escrita", "en": "writing-generators", "fr": "generateurs-ecriture", "de": "schreib-generatoren"},
	"storyteller":           {"es": "narrador", "pt": "contador-historias", "en": "storyteller", "fr": "conteur", "de": "geschichtenerzahler"},
	"summarizer":            {"es": "resumidor", "pt": "sumarizador", "en": "summarizer", "fr": "resumeur", "de": "zusammenfasser"},
	"code-assistant":        {"es": "asistente-codigo", "pt": "assistente-codigo", "en": "code-assistant", "fr": "assistant-code", "de": "code-assistent"},
	"no-code":               {"es": "sin-codigo", "pt": "sem-codigo", "en": "no-code", "fr": "sans-code", "de": "kein-code"},
	"sql-assistant":         {"es": "asistente-sql", "pt": "assistente-sql", "en": "sql-assistant", "fr": "assistant-sql", "de": "sql-assistent"},
}

// CategoryTranslation looks up the localized slug for a known category.
func CategoryTranslation(category, locale string) (string, bool) {
	byLocale, ok := categoryTranslations[category]
	if !ok {
		return "", false
	}
	translated, ok := byLocale[locale]
	return translated, ok
}
