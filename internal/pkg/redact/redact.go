// redact маскирует чувствительные данные перед записью в лог: e-mail адреса
// (для verify/reset-запросов) и токены доступа.
package redact

import "strings"

// Email маскирует e-mail для логирования.
//
// Правила:
//   - строка должна содержать ровно один '@', иначе возвращается "***";
//   - локальная часть заменяется на первые два символа (по рунам) + "***";
//   - если локальная часть короче трёх рун — "***@<domain>".
func Email(s string) string {
	if strings.Count(s, "@") != 1 {
		return "***"
	}

	i := strings.IndexByte(s, '@')
	local, domain := s[:i], s[i+1:]

	lr := []rune(local)
	if len(lr) > 2 {
		local = string(lr[:2]) + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token оставляет от токена только последние 4 символа, чтобы записи
// в логах можно было сопоставить без раскрытия секрета.
// Пустой токен — "<none>", короткий (≤ 8) — полностью скрыт.
func Token(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "Bearer "))
	switch {
	case s == "":
		return "<none>"
	case len(s) <= 8:
		return "[REDACTED_TOKEN]"
	default:
		return "***" + s[len(s)-4:]
	}
}
