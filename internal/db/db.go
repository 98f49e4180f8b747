package db

import (
	"context"
	"errors"
	"strings"

	"github.com/mithrel/medic/pkg/api"
)

// Store records exchanges and serves the history and analysis cache.
type Store interface {
	Record(ctx context.Context, e api.Exchange) error
	Get(ctx context.Context, id string) (api.Exchange, error)
	FindByHash(ctx context.Context, kind api.Kind, hash string) (api.Exchange, error)
	List(ctx context.Context, q api.ListQuery) ([]api.Exchange, api.Page, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

const defaultListLimit = 50

// Open returns a Store for url: "memory://" (or empty) keeps everything in
// process, "sqlite://path" or a bare path opens a SQLite file.
func Open(ctx context.Context, url string) (Store, error) {
	url = strings.TrimSpace(url)
	if url == "" || url == "memory://" {
		return NewMemStore(), nil
	}
	s, err := openSQLite(ctx, url)
	if err != nil {
		return nil, err
	}
	return s, nil
}
