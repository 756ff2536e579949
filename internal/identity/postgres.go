package identity

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const pgUniqueViolation = "23505"

const postgresSchema = `CREATE TABLE IF NOT EXISTS identities (
	id              UUID        PRIMARY KEY,
	realm           TEXT        NOT NULL,
	wallet_address  TEXT        NOT NULL,
	display_name    TEXT        NOT NULL,
	github_username TEXT,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL,
	CONSTRAINT uq_identities_realm_wallet UNIQUE (realm, wallet_address)
)`

const postgresColumns = `id, realm, wallet_address, display_name, github_username, created_at, updated_at`

// PostgresStore implements Store on PostgreSQL via pgxpool
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// Compile-time interface compliance check
var _ Store = (*PostgresStore)(nil)

// NewPostgresStore creates a Postgres-backed store
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, logger: logger}
}

// Migrate creates the identities table if it does not exist
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate identities: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByWallet(ctx context.Context, realm Realm, address string) (*Identity, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM identities WHERE realm = $1 AND wallet_address = $2`,
		string(realm), strings.ToLower(address))
	return scanPostgres(row)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*Identity, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		// not a key this store could have issued
		return nil, nil
	}
	row := s.pool.QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM identities WHERE id = $1`, parsed)
	return scanPostgres(row)
}

func (s *PostgresStore) Create(ctx context.Context, in NewIdentity) (*Identity, error) {
	in, err := prepare(in)
	if err != nil {
		return nil, err
	}

	ts := now()
	var github *string
	if in.GithubUsername != "" {
		github = &in.GithubUsername
	}

	row := s.pool.QueryRow(ctx,
		`INSERT INTO identities (`+postgresColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+postgresColumns,
		uuid.New(), string(in.Realm), in.WalletAddress, in.DisplayName, github, ts, ts)

	created, err := scanPostgres(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateWallet
		}
		s.logger.Error("failed to create identity",
			zap.String("address", in.WalletAddress),
			zap.String("realm", string(in.Realm)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("create identity: %w", err)
	}

	s.logger.Info("identity created",
		zap.String("id", created.ID),
		zap.String("address", created.WalletAddress),
		zap.String("realm", string(created.Realm)),
	)
	return created, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

func scanPostgres(row pgx.Row) (*Identity, error) {
	var (
		identity Identity
		id       uuid.UUID
		realm    string
		github   *string
	)
	err := row.Scan(&id, &realm, &identity.WalletAddress, &identity.DisplayName,
		&github, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	identity.ID = id.String()
	identity.Realm = Realm(realm)
	if github != nil {
		identity.GithubUsername = *github
	}
	identity.CreatedAt = identity.CreatedAt.UTC()
	identity.UpdatedAt = identity.UpdatedAt.UTC()
	return &identity, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return stderrors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
