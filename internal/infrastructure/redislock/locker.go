// Package redislock implementa el puerto Locker sobre Redis con bsm/redislock.
// El lock es consultivo: serializa los posteos concurrentes sobre un mismo
// producto o documento entre instancias del servicio.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/costing-engine/internal/application/costing"
	"github.com/jhoicas/costing-engine/internal/domain"
)

var _ costing.Locker = (*Locker)(nil)

// Valores por defecto: espera acotada (10 reintentos cada 100ms) y TTL mayor
// que cualquier transacción razonable del motor.
const (
	defaultTTL          = 30 * time.Second
	defaultRetryBackoff = 100 * time.Millisecond
	defaultRetryCount   = 10
)

// Locker adquiere locks distribuidos con clave por recurso.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewLocker construye el locker sobre un cliente Redis.
func NewLocker(rdb *redis.Client) *Locker {
	return &Locker{client: redislock.New(rdb), ttl: defaultTTL}
}

// Acquire obtiene el lock de la clave con reintentos y backoff lineal. Si
// tras la espera acotada el lock sigue tomado, devuelve domain.ErrConflict
// sin efecto alguno: el caller puede reintentar la operación completa.
func (l *Locker) Acquire(ctx context.Context, key string) (costing.Unlocker, error) {
	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(defaultRetryBackoff), defaultRetryCount),
	})
	if err != nil {
		if errors.Is(err, redislock.ErrNotObtained) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("obtener lock %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("liberar lock %s: %w", key, err)
		}
		return nil
	}, nil
}

// NewClient crea el cliente Redis y verifica conectividad.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}
