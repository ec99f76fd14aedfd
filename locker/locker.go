// Package locker предоставляет именованную взаимоисключающую аренду (lease)
// для сериализации конкурирующих созданий. Реализация на Redis даёт настоящую
// межпроцессную блокировку; деградированная реализация используется там, где
// Redis недоступен, и блокировку не гарантирует.
package locker

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotAcquired - аренду не удалось получить за отведённое время ожидания.
	ErrNotAcquired = errors.New("lock not acquired within wait timeout")
	// ErrUnavailable - в этом развёртывании механизма блокировок нет.
	ErrUnavailable = errors.New("locking backend is not available")
)

// Lock - удерживаемая аренда. Unlock снимает её досрочно; по истечении TTL
// аренда снимается сама, поэтому упавший держатель ключ навсегда не запирает.
type Lock interface {
	Unlock(ctx context.Context) error
}

// Locker выдаёт аренды по ключу с ограниченным ожиданием и сроком владения.
type Locker interface {
	// Available сообщает, обеспечивает ли реализация настоящее взаимное
	// исключение. Вызывающий код обязан выбирать деградированный путь,
	// когда Available() == false, а не игнорировать ошибку Acquire.
	Available() bool
	// Acquire блокирует вызывающего до wait в ожидании аренды key,
	// удерживаемой затем не дольше ttl.
	Acquire(ctx context.Context, key string, wait, ttl time.Duration) (Lock, error)
}
