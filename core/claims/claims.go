package claims

import (
	"context"
	"errors"
	"time"
)

var ErrMissing = errors.New("no claims in context")

type Claims struct {
	UserID  string
	Email   string
	Expires time.Time
}

type key struct{}

func Set(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, key{}, c)
}

func Get(ctx context.Context) (Claims, error) {
	if c, ok := ctx.Value(key{}).(Claims); ok {
		return c, nil
	}
	return Claims{}, ErrMissing
}
