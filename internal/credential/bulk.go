package credential

import (
	"regexp"
	"strings"
)

var bulkSeparator = regexp.MustCompile(`[:|;\s]+`)

// Login пара email и пароль из пакетной загрузки.
type Login struct {
	Email    string
	Password string
}

// ParseBulk разбирает текст пакетной загрузки: по одной паре в строке,
// разделители ":", "|", ";" или пробелы. Строки без пары пропускаются.
func ParseBulk(text string) []Login {
	var logins []Login
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := make([]string, 0, 2)
		for _, p := range bulkSeparator.Split(line, -1) {
			if strings.TrimSpace(p) != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) < 2 {
			continue
		}
		logins = append(logins, Login{Email: parts[0], Password: parts[1]})
	}
	return logins
}
