package identity

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	pkgdb "github.com/Soul-Brews-Studio/shrimp-oracle/pkg/db"
)

const mysqlErrDuplicateEntry = 1062

const mysqlSchema = `CREATE TABLE IF NOT EXISTS identities (
	id              CHAR(36)    NOT NULL,
	realm           VARCHAR(16) NOT NULL,
	wallet_address  CHAR(42)    NOT NULL,
	display_name    VARCHAR(64) NOT NULL,
	github_username VARCHAR(64) NULL,
	created_at      DATETIME(6) NOT NULL,
	updated_at      DATETIME(6) NOT NULL,
	PRIMARY KEY (id),
	UNIQUE KEY uq_identities_realm_wallet (realm, wallet_address)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const mysqlColumns = `id, realm, wallet_address, display_name, github_username, created_at, updated_at`

// MySQLStore implements Store on MySQL
type MySQLStore struct {
	txRunner *pkgdb.TxRunner
	logger   *zap.Logger
}

// Compile-time interface compliance check
var _ Store = (*MySQLStore)(nil)

// NewMySQLStore creates a MySQL-backed store
func NewMySQLStore(txRunner *pkgdb.TxRunner, logger *zap.Logger) *MySQLStore {
	return &MySQLStore{txRunner: txRunner, logger: logger}
}

// Migrate creates the identities table if it does not exist
func (s *MySQLStore) Migrate(ctx context.Context) error {
	if _, err := s.txRunner.DB().ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("migrate identities: %w", err)
	}
	return nil
}

func (s *MySQLStore) FindByWallet(ctx context.Context, realm Realm, address string) (*Identity, error) {
	row := s.txRunner.DB().QueryRowContext(ctx,
		`SELECT `+mysqlColumns+` FROM identities WHERE realm = ? AND wallet_address = ?`,
		string(realm), strings.ToLower(address))
	return scanMySQL(row)
}

func (s *MySQLStore) Get(ctx context.Context, id string) (*Identity, error) {
	row := s.txRunner.DB().QueryRowContext(ctx,
		`SELECT `+mysqlColumns+` FROM identities WHERE id = ?`, id)
	return scanMySQL(row)
}

// Create inserts and reads back the row in one transaction
func (s *MySQLStore) Create(ctx context.Context, in NewIdentity) (*Identity, error) {
	in, err := prepare(in)
	if err != nil {
		return nil, err
	}

	ts := now()
	id := uuid.NewString()

	created, err := pkgdb.WithTxResult(ctx, s.txRunner, func(tx *sql.Tx) (*Identity, error) {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO identities (`+mysqlColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, string(in.Realm), in.WalletAddress, in.DisplayName,
			nullString(in.GithubUsername), ts, ts)
		if err != nil {
			return nil, err
		}
		return scanMySQL(tx.QueryRowContext(ctx,
			`SELECT `+mysqlColumns+` FROM identities WHERE id = ?`, id))
	})
	if err != nil {
		if isDuplicateEntryError(err) {
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

func (s *MySQLStore) Ping(ctx context.Context) error {
	return pkgdb.Ping(ctx, s.txRunner.DB())
}

func scanMySQL(row *sql.Row) (*Identity, error) {
	var (
		identity Identity
		realm    string
		github   sql.NullString
	)
	err := row.Scan(&identity.ID, &realm, &identity.WalletAddress, &identity.DisplayName,
		&github, &identity.CreatedAt, &identity.UpdatedAt)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	identity.Realm = Realm(realm)
	identity.GithubUsername = github.String
	identity.CreatedAt = identity.CreatedAt.UTC()
	identity.UpdatedAt = identity.UpdatedAt.UTC()
	return &identity, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isDuplicateEntryError checks if the error is a MySQL duplicate entry error
func isDuplicateEntryError(err error) bool {
	if err == nil {
		return false
	}
	var mysqlErr *mysql.MySQLError
	if stderrors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return strings.Contains(err.Error(), "Duplicate entry")
}
