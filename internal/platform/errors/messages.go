package errors

import "github.com/louisbranch/beanmachine/internal/platform/errors/i18n"

// DefaultLocale is the locale used when the caller has none.
const DefaultLocale = i18n.BaseLocale

// UserMessage renders the en-US user-facing message for code with metadata.
// Falls back to the code itself if no template is found.
func UserMessage(code Code, metadata map[string]string) string {
	return LocalizedMessage(DefaultLocale, code, metadata)
}

// LocalizedMessage renders the user-facing message for code in locale,
// falling back to en-US.
func LocalizedMessage(locale string, code Code, metadata map[string]string) string {
	return i18n.GetCatalog(locale).Format(string(code), metadata)
}
