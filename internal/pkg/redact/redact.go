// redact предоставляет утилиты безопасного редактирования чувствительных
// данных для логов. Цель — не допустить утечки секретов из строк подключения
// (mongodb://, postgres://, redis://), сохранив полезный для отладки контекст:
// схему, хост и имя базы.
package redact

import (
	"net/url"
	"strings"
)

// Заглушка для пароля в логах.
const passwordMask = "[REDACTED_PASSWORD]"

// URL маскирует пароль в строке подключения.
//
// Правила:
//   - пароль из userinfo заменяется на [REDACTED_PASSWORD], имя пользователя сохраняется;
//   - строка без userinfo возвращается без изменений;
//   - строка, которую не удалось разобрать как URL, возвращается как "***"
//     (в ней может быть что угодно, включая пароль).
//
// Примеры:
//
//	"mongodb://user:secret@db:27017/users" -> "mongodb://user:[REDACTED_PASSWORD]@db:27017/users"
//	"mongodb://db:27017/users"             -> "mongodb://db:27017/users"
//	"redis://:secret@cache:6379/0"         -> "redis://:[REDACTED_PASSWORD]@cache:6379/0"
func URL(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return "***"
	}

	if u.User == nil {
		return raw
	}

	if _, ok := u.User.Password(); !ok {
		return raw
	}

	// Собираем вручную: url.UserPassword экранировал бы скобки маски.
	user := u.User.Username()
	u.User = nil
	rest := strings.TrimPrefix(u.String(), u.Scheme+"://")

	return u.Scheme + "://" + user + ":" + passwordMask + "@" + rest
}
