// Package pgstore stores forms as JSONB documents in PostgreSQL.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/formapi/formapi/internal/model"
	"github.com/formapi/formapi/internal/store"
)

// Driver is the STORE_DRIVER value for this adapter.
const Driver = "postgres"

// DefaultTable holds the form documents.
const DefaultTable = "forms"

const pgQueryCanceled = "57014"

// Config describes how to reach the table.
type Config struct {
	DatabaseURL string
	Table       string
	Options     store.Options
}

// Store is a PostgreSQL-backed form repository.
type Store struct {
	pool    *pgxpool.Pool
	table   string
	tracker *store.Tracker
	logger  *slog.Logger
	info    store.Info
	url     string

	mu          sync.Mutex
	schemaReady bool

	stop chan struct{}
	done chan struct{}
}

// Connect builds the pool and starts the health loop.
//
// An error is returned only when the pool cannot be configured. An
// unreachable server leaves the store disconnected; the health loop keeps
// pinging and reports the reconnect.
func Connect(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := cfg.Options
	if opts.ConnectTimeout <= 0 {
		opts = store.DefaultOptions()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %s", store.Redact(err.Error(), cfg.DatabaseURL))
	}
	if opts.MaxPoolSize > 0 {
		poolCfg.MaxConns = int32(opts.MaxPoolSize)
	}
	poolCfg.MinConns = 0
	poolCfg.ConnConfig.ConnectTimeout = opts.ConnectTimeout
	if opts.SocketTimeout > 0 {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(opts.SocketTimeout.Milliseconds(), 10)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %s", store.Redact(err.Error(), cfg.DatabaseURL))
	}

	table := cfg.Table
	if table == "" {
		table = DefaultTable
	}

	s := &Store{
		pool:    pool,
		table:   pgx.Identifier{table}.Sanitize(),
		tracker: store.NewTracker(Driver, logger),
		logger:  logger,
		info: store.Info{
			Driver:   Driver,
			Database: poolCfg.ConnConfig.Database,
			Host:     poolCfg.ConnConfig.Host,
		},
		url:  cfg.DatabaseURL,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	s.tracker.Set(store.StateConnecting)

	checkCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	err = s.check(checkCtx)
	cancel()
	if err != nil {
		logger.Error("store connection failed",
			slog.String("driver", Driver),
			slog.String("error", store.Redact(err.Error(), cfg.DatabaseURL)),
			slog.String("hint", store.ConnectHint(err)),
		)
		logger.Warn("server will continue running; API endpoints report the store as unavailable until it is reachable")
	} else {
		logger.Info("store ready",
			slog.String("driver", Driver),
			slog.String("database", s.info.Database),
			slog.String("host", s.info.Host),
		)
	}

	interval := opts.HealthInterval
	if interval <= 0 {
		interval = store.DefaultOptions().HealthInterval
	}
	go s.watch(interval, opts.ConnectTimeout)

	return s, nil
}

// check pings the server, creates the table on first success and updates
// readiness.
func (s *Store) check(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		s.tracker.Set(store.StateDisconnected)
		return err
	}
	if err := s.ensureSchema(ctx); err != nil {
		s.tracker.Set(store.StateDisconnected)
		return err
	}
	s.tracker.Set(store.StateConnected)
	return nil
}

// watch re-checks the server until Close.
func (s *Store) watch(interval, timeout time.Duration) {
	defer close(s.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			if err := s.check(ctx); err != nil {
				s.logger.Debug("store health check failed",
					slog.String("driver", Driver),
					slog.String("error", store.Redact(err.Error(), s.url)),
				)
			}
			cancel()
		}
	}
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schemaReady {
		return nil
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id         TEXT PRIMARY KEY,
			doc        JSONB NOT NULL CHECK (
				coalesce(doc->>'name', '') <> '' AND
				coalesce(doc->>'email', '') <> '' AND
				coalesce(doc->>'message', '') <> ''
			),
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)
	`, s.table)

	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create forms table: %w", err)
	}
	s.schemaReady = true
	return nil
}

// ReadyState implements store.StateSource.
func (s *Store) ReadyState() store.State {
	return s.tracker.ReadyState()
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return classify(s.pool.Ping(ctx))
}

// Info implements store.Store.
func (s *Store) Info() store.Info {
	return s.info
}

// Close stops the health loop and closes the pool.
func (s *Store) Close(ctx context.Context) error {
	s.tracker.Set(store.StateDisconnecting)
	close(s.stop)

	select {
	case <-s.done:
	case <-ctx.Done():
	}

	s.pool.Close()
	s.tracker.Set(store.StateDisconnected)
	return nil
}

// document is the JSONB payload of a row.
type document struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Store) columns() string {
	return "id, doc->>'name', doc->>'email', doc->>'message', created_at, updated_at"
}

// Insert implements store.FormRepository.
func (s *Store) Insert(ctx context.Context, f *model.Form) (*model.Form, error) {
	if err := store.CheckInsert(f); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(document{Name: f.Name, Email: f.Email, Message: f.Message})
	if err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}

	now := timestamp()
	stored := &model.Form{
		ID:        ulid.Make().String(),
		Name:      f.Name,
		Email:     f.Email,
		Message:   f.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, doc, created_at, updated_at) VALUES ($1, $2, $3, $4)`, s.table)
	if _, err := s.pool.Exec(ctx, query, stored.ID, payload, now, now); err != nil {
		return nil, fmt.Errorf("failed to insert form: %w", classify(err))
	}

	return stored, nil
}

// FindAll implements store.FormRepository. Rows come back in creation order.
func (s *Store) FindAll(ctx context.Context) ([]*model.Form, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at, id`, s.columns(), s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", classify(err))
	}
	defer rows.Close()

	forms := make([]*model.Form, 0)
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan form: %w", classify(err))
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate forms: %w", classify(err))
	}

	return forms, nil
}

// FindByID implements store.FormRepository.
func (s *Store) FindByID(ctx context.Context, id string) (*model.Form, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, s.columns(), s.table)
	f, err := scanForm(s.pool.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("failed to get form: %w", classify(err))
	}
	return f, nil
}

// UpdateByID implements store.FormRepository. The JSONB merge runs as one
// statement so concurrent updates never interleave fields.
func (s *Store) UpdateByID(ctx context.Context, id string, patch model.FormPatch) (*model.Form, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}
	if err := store.CheckPatch(patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return s.FindByID(ctx, key)
	}

	payload, err := patchDocument(patch)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		UPDATE %s SET doc = doc || $2::jsonb, updated_at = $3
		WHERE id = $1
		RETURNING %s
	`, s.table, s.columns())

	f, err := scanForm(s.pool.QueryRow(ctx, query, key, payload, timestamp()))
	if err != nil {
		return nil, fmt.Errorf("failed to update form: %w", classify(err))
	}
	return f, nil
}

// DeleteByID implements store.FormRepository.
func (s *Store) DeleteByID(ctx context.Context, id string) (*model.Form, error) {
	key, err := parseID(id)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 RETURNING %s`, s.table, s.columns())
	f, err := scanForm(s.pool.QueryRow(ctx, query, key))
	if err != nil {
		return nil, fmt.Errorf("failed to delete form: %w", classify(err))
	}
	return f, nil
}

func scanForm(row pgx.Row) (*model.Form, error) {
	var f model.Form
	if err := row.Scan(&f.ID, &f.Name, &f.Email, &f.Message, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.CreatedAt = f.CreatedAt.UTC()
	f.UpdatedAt = f.UpdatedAt.UTC()
	return &f, nil
}

// patchDocument encodes only the present fields for a JSONB merge.
func patchDocument(patch model.FormPatch) ([]byte, error) {
	payload, err := json.Marshal(patch.Fields())
	if err != nil {
		return nil, fmt.Errorf("failed to encode patch: %w", err)
	}
	return payload, nil
}

// parseID validates a ULID and returns its canonical form.
func parseID(id string) (string, error) {
	parsed, err := ulid.ParseStrict(id)
	if err != nil {
		return "", fmt.Errorf("%w: %q", store.ErrInvalidID, id)
	}
	return parsed.String(), nil
}

// classify maps pgx errors onto store sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return store.ErrNotFound
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %w", store.ErrTimeout, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgQueryCanceled {
		return fmt.Errorf("%w: %w", store.ErrTimeout, err)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %w", store.ErrUnavailable, err)
	}
	return err
}

// timestamp returns now at the precision TIMESTAMPTZ keeps.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
