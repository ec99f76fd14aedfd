package locker

import (
	"context"
	"time"
)

// noopLocker - деградированная реализация для развёртываний без Redis.
// Взаимного исключения не даёт; вызывающий код проверяет Available()
// и идёт по пути exists-then-create с известным окном гонки.
type noopLocker struct{}

// Unavailable возвращает Locker, сообщающий об отсутствии механизма блокировок.
func Unavailable() Locker {
	return noopLocker{}
}

func (noopLocker) Available() bool { return false }

func (noopLocker) Acquire(_ context.Context, _ string, _, _ time.Duration) (Lock, error) {
	return nil, ErrUnavailable
}
