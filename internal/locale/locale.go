// Package locale resolves the display language for formatted values.
package locale

import "strings"

const (
	LanguageEnglish = "en"
	LanguageChinese = "zh"
)

type Preference struct {
	Language string
	Locale   string
	Tag      string
}

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "tw" || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage returns the first supported language in header order.
// Quality values are not re-sorted; clients already list them by preference.
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := part
		if idx := strings.Index(tag, ";"); idx >= 0 {
			tag = tag[:idx]
		}
		if lang := NormalizeLanguage(tag); lang != "" {
			return lang
		}
	}
	return ""
}

func PreferenceForLanguage(language string) Preference {
	if NormalizeLanguage(language) == LanguageChinese {
		return Preference{Language: LanguageChinese, Locale: "zh_TW", Tag: "zh-TW"}
	}
	return Preference{Language: LanguageEnglish, Locale: "en_US", Tag: "en-US"}
}
