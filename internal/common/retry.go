// Package common — retry.go реализует политику повтора при сбоях хранилища:
// не больше одного повтора с паузой, и только для ErrTransientStore.
package common

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	log "github.com/sirupsen/logrus"
)

// RetryTransient выполняет op и при временной ошибке хранилища повторяет её
// ровно один раз. op должна заново читать состояние: повторяется всё решение,
// а не его середина. Если повтор тоже упал — возвращается ErrServiceUnavailable.
func RetryTransient[T any](ctx context.Context, pause time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	attempt := 0
	res, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		v, err := op(ctx)
		if err != nil && !IsTransient(err) {
			return v, backoff.Permanent(err)
		}
		if err != nil {
			log.WithError(err).WithField("attempt", attempt).Warn("временная ошибка хранилища")
		}
		return v, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(pause)),
		backoff.WithMaxTries(2),
	)
	if err != nil && IsTransient(err) {
		return res, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return res, err
}
