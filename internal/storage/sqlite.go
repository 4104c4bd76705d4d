package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"postkeeper/internal/model"
	"postkeeper/internal/query"
	"postkeeper/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
// The connection pool is capped at one connection, which serializes all
// writes into a single logical sequence.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=OFF"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("disable foreign keys: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// InsertPosts inserts all given posts in a single transaction. If any link
// is already stored, or appears twice within the batch, the whole batch is
// rolled back and the returned error wraps ErrDuplicateLink.
func (s *SQLite) InsertPosts(ctx context.Context, posts []model.Post) error {
	if len(posts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)
	for _, p := range posts {
		var count int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM posts WHERE link = ?`, p.Link,
		).Scan(&count); err != nil {
			return fmt.Errorf("check link %q: %w", p.Link, err)
		}
		if count > 0 {
			return fmt.Errorf("insert post %q: %w", p.Link, ErrDuplicateLink)
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO posts (link, title, pub_date, active, favourite, seen, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.Link, p.Title, p.PubDate.UTC().Format(timeLayout),
			flagToDB(p.Active), flagToDB(p.Favourite), flagToDB(p.Seen), now,
		)
		if err != nil {
			return fmt.Errorf("insert post %q: %w", p.Link, err)
		}

		for _, name := range p.Categories {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO post_categories (link, name) VALUES (?, ?)`,
				p.Link, name,
			); err != nil {
				return fmt.Errorf("insert category %q for %q: %w", name, p.Link, err)
			}
		}
		for i, name := range p.Authors {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO post_authors (link, position, name) VALUES (?, ?, ?)`,
				p.Link, i, name,
			); err != nil {
				return fmt.Errorf("insert author %q for %q: %w", name, p.Link, err)
			}
		}
	}

	return tx.Commit()
}

// SetActive updates the active flag of the post identified by link.
// Updating a link that is not stored succeeds without effect.
func (s *SQLite) SetActive(ctx context.Context, link string, active bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE posts SET active = ? WHERE link = ?`, boolToInt(active), link,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return nil
}

// ToggleFavourite flips the favourite flag of the post identified by link
// and returns the new value. The current value is looked up fresh inside
// the transaction, with NULL read as false. A missing link is a no-op.
func (s *SQLite) ToggleFavourite(ctx context.Context, link string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var cur sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT favourite FROM posts WHERE link = ?`, link,
	).Scan(&cur)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read favourite: %w", err)
	}

	next := !(cur.Valid && cur.Int64 == 1)
	if _, err := tx.ExecContext(ctx,
		`UPDATE posts SET favourite = ? WHERE link = ?`, boolToInt(next), link,
	); err != nil {
		return false, fmt.Errorf("write favourite: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return next, nil
}

// MarkAllSeen sets seen on every stored post, regardless of current value.
func (s *SQLite) MarkAllSeen(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE posts SET seen = 1`); err != nil {
		return fmt.Errorf("mark all seen: %w", err)
	}
	return nil
}

// Exists checks whether a post with the given link is stored.
func (s *SQLite) Exists(ctx context.Context, link string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts WHERE link = ?`, link,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check link: %w", err)
	}
	return count > 0, nil
}

// ListPosts returns the posts matching q ordered by pub date descending,
// with insertion order breaking ties. The tri-state reading of the flags is
// encoded here: an unset active flag counts as not archived, an unset
// favourite as not favourited, an unset seen as not seen.
func (s *SQLite) ListPosts(ctx context.Context, q query.Query) ([]model.Post, error) {
	var where []string
	var args []any

	switch q.Archived {
	case query.Yes:
		where = append(where, "active = 0")
	case query.No:
		where = append(where, "(active IS NULL OR active = 1)")
	}
	switch q.Favourite {
	case query.Yes:
		where = append(where, "favourite = 1")
	case query.No:
		where = append(where, "(favourite IS NULL OR favourite = 0)")
	}
	switch q.Seen {
	case query.Yes:
		where = append(where, "seen = 1")
	case query.No:
		where = append(where, "(seen IS NULL OR seen = 0)")
	}
	if q.Category != "" {
		where = append(where, "link IN (SELECT link FROM post_categories WHERE name = ?)")
		args = append(args, q.Category)
	}

	stmt := `SELECT link, title, pub_date, active, favourite, seen, created_at FROM posts`
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY pub_date DESC, rowid ASC"

	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var posts []model.Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	for i := range posts {
		if err := s.loadChildren(ctx, &posts[i]); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (s *SQLite) loadChildren(ctx context.Context, p *model.Post) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM post_categories WHERE link = ? ORDER BY name`, p.Link,
	)
	if err != nil {
		return fmt.Errorf("query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan category: %w", err)
		}
		p.Categories = append(p.Categories, name)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate categories: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT name FROM post_authors WHERE link = ? ORDER BY position`, p.Link,
	)
	if err != nil {
		return fmt.Errorf("query authors: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return fmt.Errorf("scan author: %w", err)
		}
		p.Authors = append(p.Authors, name)
	}
	return rows.Err()
}

func scanPost(row scannable) (model.Post, error) {
	var p model.Post
	var pubDate, created string
	var active, favourite, seen sql.NullInt64
	err := row.Scan(&p.Link, &p.Title, &pubDate, &active, &favourite, &seen, &created)
	if err != nil {
		return p, fmt.Errorf("scan post: %w", err)
	}
	p.PubDate, _ = time.Parse(timeLayout, pubDate)
	p.CreatedAt, _ = time.Parse(timeLayout, created)
	p.Active = dbToFlag(active)
	p.Favourite = dbToFlag(favourite)
	p.Seen = dbToFlag(seen)
	return p, nil
}

type scannable interface {
	Scan(dest ...any) error
}

func flagToDB(f model.Flag) any {
	switch f {
	case model.FlagFalse:
		return 0
	case model.FlagTrue:
		return 1
	default:
		return nil
	}
}

func dbToFlag(v sql.NullInt64) model.Flag {
	if !v.Valid {
		return model.FlagUnset
	}
	return model.FlagOf(v.Int64 == 1)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
