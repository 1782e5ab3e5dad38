// Package storage объявляет ошибки хранилища, общие для всех реализаций.
package storage

import "errors"

// ErrNotFound запись не найдена или запрос на изменение не затронул ни одной строки.
var ErrNotFound = errors.New("not found")
