package weather

import (
	"log"
	"strings"
	"unicode/utf8"
)

const maxLogSnippetRunes = 512

// logWeatherExchange 输出天气接口请求与响应摘要，响应体过长时截断
func logWeatherExchange(city, phase, content string) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		log.Printf("[weather %s] %s: <empty>", city, phase)
		return
	}

	runeCount := utf8.RuneCountInString(trimmed)
	snippet := trimmed
	if runeCount > maxLogSnippetRunes {
		snippet = string([]rune(trimmed)[:maxLogSnippetRunes]) + "…(truncated)"
	}
	log.Printf("[weather %s] %s (runes=%d): %s", city, phase, runeCount, snippet)
}
