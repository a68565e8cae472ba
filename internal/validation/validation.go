// Package validation содержит функции проверки и нормализации входных данных.
package validation

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode"
)

// CountryCode добавляется к локальным номерам телефона.
const CountryCode = "58"

// NormalizePhone приводит номер к виду 58XXXXXXXXXX: удаляет всё, кроме цифр,
// отбрасывает один ведущий ноль и добавляет код страны, если его нет.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, ch := range phone {
		if ch >= '0' && ch <= '9' {
			b.WriteRune(ch)
		}
	}

	digits := b.String()
	if digits == "" {
		return ""
	}

	digits = strings.TrimPrefix(digits, "0")
	if !strings.HasPrefix(digits, CountryCode) {
		digits = CountryCode + digits
	}
	return digits
}

// WhatsAppLink возвращает ссылку на чат с номером телефона.
func WhatsAppLink(phone string) string {
	normalized := NormalizePhone(phone)
	if normalized == "" {
		return ""
	}
	return "https://wa.me/" + normalized
}

// MapsLink возвращает ссылку на поиск адреса в Google Maps.
// Пробелы кодируются как %20, литеральный плюс как %2B.
func MapsLink(address string) string {
	return "https://www.google.com/maps/search/?api=1&query=" + strings.ReplaceAll(url.QueryEscape(address), "+", "%20")
}

// IsValidEmail выполняет поверхностную проверку формата e-mail.
func IsValidEmail(email string) bool {
	if email == "" || strings.IndexFunc(email, unicode.IsSpace) >= 0 {
		return false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	return addr.Address == email && strings.Contains(email[strings.LastIndex(email, "@"):], ".")
}
