package services

import "errors"

var (
	// ErrNotFound возвращается и когда записи нет, и когда у пользователя
	// нет доступа к документу — существование чужих документов не раскрывается.
	ErrNotFound = errors.New("запись не найдена")

	ErrCodeTaken = errors.New("код уже занят")
)
