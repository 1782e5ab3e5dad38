// Package phone приводит номера телефонов клиентов к единому виду.
//
// Номер телефона является ключом идентичности клиента: все сравнения
// выполняются только по нормализованной форме (одни цифры), никогда по
// отображаемой строке.
package phone

import "strings"

// CountryCode код страны, который может присутствовать или отсутствовать в сохранённых номерах.
const CountryCode = "55"

// Normalize удаляет из номера все символы, кроме цифр.
// Пустой или мусорный ввод превращается в пустую строку.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Same сообщает, принадлежат ли два номера одному клиенту.
// Пустой номер никогда ни с чем не совпадает.
func Same(a, b string) bool {
	na := Normalize(a)
	if na == "" {
		return false
	}
	return na == Normalize(b)
}

// Variants возвращает набор форм номера для поиска в хранилище:
// сами цифры и вариант с кодом страны или без него.
func Variants(raw string) []string {
	clean := Normalize(raw)
	if clean == "" {
		return nil
	}
	variants := []string{clean}
	switch {
	case strings.HasPrefix(clean, CountryCode) && len(clean) > 10:
		variants = append(variants, clean[len(CountryCode):])
	case len(clean) <= 11:
		variants = append(variants, CountryCode+clean)
	}
	return variants
}

// Probes возвращает Variants и, если он отличается, сам номер в исходной записи:
// старые строки хранилища могли сохранить номер с форматированием.
func Probes(raw string) []string {
	probes := Variants(raw)
	if raw = strings.TrimSpace(raw); raw != "" && raw != Normalize(raw) {
		probes = append(probes, raw)
	}
	return probes
}

// Last возвращает последние n цифр номера.
func Last(raw string, n int) string {
	clean := Normalize(raw)
	if len(clean) <= n {
		return clean
	}
	return clean[len(clean)-n:]
}

// Mask скрывает номер, оставляя видимыми последние четыре цифры.
func Mask(raw string) string {
	return "•••••-" + Last(raw, 4)
}
