package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Adonis4U/house-of-venus-astrocalc/natal/domain"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS geocodes (
	place_key    TEXT PRIMARY KEY,
	latitude     DOUBLE PRECISION NOT NULL,
	longitude    DOUBLE PRECISION NOT NULL,
	display_name TEXT NOT NULL,
	source       TEXT NOT NULL,
	created_at   BIGINT NOT NULL
)`

type geocodeRow struct {
	PlaceKey    string  `db:"place_key"`
	Latitude    float64 `db:"latitude"`
	Longitude   float64 `db:"longitude"`
	DisplayName string  `db:"display_name"`
	Source      string  `db:"source"`
	CreatedAt   int64   `db:"created_at"`
}

// GeocodeStore é a camada persistente do cache de geocoding.
//
// Linhas mais velhas que o TTL são ignoradas na leitura e sobrescritas na
// escrita. Erros de banco são logados e tratados como miss.
type GeocodeStore struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
	log zerolog.Logger
}

type Option func(*GeocodeStore)

func WithClock(now func() time.Time) Option {
	return func(s *GeocodeStore) {
		if now != nil {
			s.now = now
		}
	}
}

// Open conecta com driver "sqlite" ou "postgres" e cria a tabela se preciso.
func Open(ctx context.Context, driver, dsn string, ttl time.Duration, log zerolog.Logger, opts ...Option) (*GeocodeStore, error) {
	switch driver {
	case "sqlite", "postgres":
	default:
		return nil, fmt.Errorf("unsupported geocode store driver %q", driver)
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// sqlite serializa escritas; uma conexão evita SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate geocodes: %w", err)
	}

	s := &GeocodeStore{
		db:  db,
		ttl: ttl,
		now: time.Now,
		log: log.With().Str("component", "geocode_sql").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *GeocodeStore) Close() error { return s.db.Close() }

// cutoff é o created_at mínimo de uma linha ainda válida.
func (s *GeocodeStore) cutoff() int64 {
	return s.now().Add(-s.ttl).Unix()
}

// Get devolve a linha válida e quanto falta para ela vencer.
func (s *GeocodeStore) Get(ctx context.Context, key string) (domain.GeocodeResult, time.Duration, bool) {
	query := s.db.Rebind(`
		SELECT place_key, latitude, longitude, display_name, source, created_at
		FROM geocodes
		WHERE place_key = ? AND created_at >= ?`)

	var row geocodeRow
	if err := s.db.GetContext(ctx, &row, query, key, s.cutoff()); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Warn().Err(err).Str("key", key).Msg("geocode lookup failed")
		}
		return domain.GeocodeResult{}, 0, false
	}

	res := domain.GeocodeResult{
		Latitude:    row.Latitude,
		Longitude:   row.Longitude,
		DisplayName: row.DisplayName,
		Source:      row.Source,
	}
	if !res.Valid() {
		return domain.GeocodeResult{}, 0, false
	}
	remaining := time.Unix(row.CreatedAt, 0).Add(s.ttl).Sub(s.now())
	if remaining < 0 {
		remaining = 0
	}
	return res, remaining, true
}

func (s *GeocodeStore) Set(ctx context.Context, key string, res domain.GeocodeResult) {
	query := s.db.Rebind(`
		INSERT INTO geocodes (place_key, latitude, longitude, display_name, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (place_key) DO UPDATE SET
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			display_name = excluded.display_name,
			source = excluded.source,
			created_at = excluded.created_at`)

	_, err := s.db.ExecContext(ctx, query,
		key,
		res.Latitude, res.Longitude,
		res.DisplayName,
		res.Source,
		s.now().Unix(),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("geocode store failed")
	}
}

// Prune apaga linhas expiradas. Chamado na subida do serviço.
func (s *GeocodeStore) Prune(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM geocodes WHERE created_at < ?`), s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("prune geocodes: %w", err)
	}
	return res.RowsAffected()
}

// Len conta linhas ainda válidas; usado no /status.
func (s *GeocodeStore) Len(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT COUNT(*) FROM geocodes WHERE created_at >= ?`), s.cutoff())
	if err != nil {
		return 0, fmt.Errorf("count geocodes: %w", err)
	}
	return n, nil
}
