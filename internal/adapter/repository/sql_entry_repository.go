package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/wordbook/internal/adapter/repository/migrations"
	"github.com/eslsoft/wordbook/internal/entity"
	"github.com/eslsoft/wordbook/internal/repository"
)

const (
	entriesTable = "entries"
	// keeps a single INSERT well under SQLite's bound-variable limit
	insertBatchSize = 500
)

type sqlEntryRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	logger  logrus.FieldLogger
}

// NewSQLEntryRepository stores entries in an "entries" table keyed by position,
// applying pending migrations first. driver selects the goose dialect and the
// placeholder style ("postgres" uses $n, everything else ?).
func NewSQLEntryRepository(ctx context.Context, db *sql.DB, driver string, logger logrus.FieldLogger) (repository.EntryRepository, error) {
	if err := migrate(ctx, db, driver); err != nil {
		return nil, fmt.Errorf("%w: migrate: %w", entity.ErrPersistence, err)
	}
	format := sq.PlaceholderFormat(sq.Question)
	if driver == "postgres" {
		format = sq.Dollar
	}
	return &sqlEntryRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(format),
		logger:  logger.WithFields(logrus.Fields{"component": "sql_repository", "driver": driver}),
	}, nil
}

func (r *sqlEntryRepository) Load(ctx context.Context) ([]entity.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrPersistence, err)
	}
	query, args, err := r.builder.
		Select("english", "japanese", "example").
		From(entriesTable).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query entries: %w", entity.ErrPersistence, err)
	}
	defer rows.Close()

	entries := []entity.Entry{}
	for rows.Next() {
		var (
			english, japanese string
			example           sql.NullString
		)
		if err := rows.Scan(&english, &japanese, &example); err != nil {
			return nil, fmt.Errorf("%w: scan entry: %w", entity.ErrPersistence, err)
		}
		e := entity.NewEntry(english, japanese, example.String)
		if err := e.Validate(); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", entity.ErrPersistence, len(entries), err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate entries: %w", entity.ErrPersistence, err)
	}
	return entries, nil
}

func (r *sqlEntryRepository) Save(ctx context.Context, entries []entity.Entry) (err error) {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrPersistence, err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", entity.ErrPersistence, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query, args, err := r.builder.Delete(entriesTable).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: clear entries: %w", entity.ErrPersistence, err)
	}

	for chunkNo, chunk := range lo.Chunk(entries, insertBatchSize) {
		insert := r.builder.Insert(entriesTable).Columns("position", "english", "japanese", "example")
		for i, e := range chunk {
			insert = insert.Values(chunkNo*insertBatchSize+i, e.English, e.Japanese, e.Example)
		}
		query, args, err = insert.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: insert entries: %w", entity.ErrPersistence, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", entity.ErrPersistence, err)
	}
	r.logger.WithField("entries", len(entries)).Debug("entries saved")
	return nil
}

func migrate(ctx context.Context, db *sql.DB, driver string) error {
	dialect := goose.DialectSQLite3
	if driver == "postgres" {
		dialect = goose.DialectPostgres
	}
	provider, err := goose.NewProvider(dialect, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
