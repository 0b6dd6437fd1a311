package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jacksonlee411/approvals/pkg/composables"
	"github.com/jacksonlee411/approvals/pkg/configuration"
)

// withPool opens a pool from the DB_* configuration and hands fn a context carrying it.
func withPool(ctx context.Context, fn func(context.Context) error) error {
	conf, err := configuration.Load(".env", ".env.local")
	if err != nil {
		return withCode(exitUsage, err)
	}
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return withCode(exitDB, fmt.Errorf("connect: %w", err))
	}
	defer pool.Close()
	return fn(composables.WithPool(ctx, pool))
}
