package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/tagpipe/pkg/tagpipe/corpus"
	"github.com/cognicore/tagpipe/pkg/tagpipe/internalerr"
	"github.com/cognicore/tagpipe/pkg/tagpipe/store"
	"github.com/cognicore/tagpipe/pkg/tagpipe/vocab"
)

const (
	kindWord = "word"
	kindTag  = "tag"
)

// sqliteStore implements the Store interface using SQLite
type sqliteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode and foreign keys enabled.
func OpenSQLite(ctx context.Context, path string) (store.Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%v: %w", err, internalerr.ErrStoreUnavailable)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%v: %w", err, internalerr.ErrStoreUnavailable)
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStore{db: db}, nil
}

// Close closes the database connection
func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS corpora (
	id TEXT PRIMARY KEY,
	name TEXT UNIQUE NOT NULL,
	format TEXT NOT NULL,
	path TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS vocab (
	corpus_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	id INTEGER NOT NULL,
	token TEXT NOT NULL,
	PRIMARY KEY(corpus_id, kind, id),
	UNIQUE(corpus_id, kind, token),
	FOREIGN KEY(corpus_id) REFERENCES corpora(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS sentences (
	corpus_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	words TEXT NOT NULL,
	tags TEXT NOT NULL,
	PRIMARY KEY(corpus_id, seq),
	FOREIGN KEY(corpus_id) REFERENCES corpora(id) ON DELETE CASCADE
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// SaveCorpus replaces any corpus with the same name and writes c in one
// transaction.
func (s *sqliteStore) SaveCorpus(ctx context.Context, c store.Corpus) (string, error) {
	if c.Name == "" {
		return "", fmt.Errorf("sqlite: corpus name is required: %w", internalerr.ErrInvalidInput)
	}
	if c.ID == "" {
		c.ID = store.NewID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := deleteCorpora(ctx, tx, `name = ? OR id = ?`, c.Name, c.ID); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO corpora (id, name, format, path, created_at)
VALUES (?, ?, ?, ?, ?);
`, c.ID, c.Name, string(c.Format), c.Path, c.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
		return "", err
	}

	if err := insertVocab(ctx, tx, c.ID, kindWord, c.Words); err != nil {
		return "", err
	}
	if err := insertVocab(ctx, tx, c.ID, kindTag, c.Tags); err != nil {
		return "", err
	}
	if err := insertSentences(ctx, tx, c.ID, c.Sentences); err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return c.ID, nil
}

func insertVocab(ctx context.Context, tx *sql.Tx, corpusID, kind string, idx *vocab.Index) error {
	if idx == nil || idx.Len() == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO vocab (corpus_id, kind, id, token) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for id, tok := range idx.Tokens() {
		if _, err := stmt.ExecContext(ctx, corpusID, kind, id, tok); err != nil {
			return err
		}
	}
	return nil
}

func insertSentences(ctx context.Context, tx *sql.Tx, corpusID string, sentences []corpus.Sentence) error {
	if len(sentences) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO sentences (corpus_id, seq, words, tags) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for seq, sent := range sentences {
		words, err := json.Marshal(sent.Words)
		if err != nil {
			return err
		}
		tags, err := json.Marshal(sent.Tags)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, corpusID, seq, string(words), string(tags)); err != nil {
			return err
		}
	}
	return nil
}

// GetCorpus loads a corpus with its sentences and indices.
func (s *sqliteStore) GetCorpus(ctx context.Context, id string) (store.Corpus, bool, error) {
	info, found, err := s.loadInfo(ctx, `WHERE c.id = ?`, id)
	if err != nil || !found {
		return store.Corpus{}, found, err
	}
	c, err := s.loadContent(ctx, info)
	if err != nil {
		return store.Corpus{}, false, err
	}
	return c, true, nil
}

// GetCorpusByName loads a corpus by its unique name.
func (s *sqliteStore) GetCorpusByName(ctx context.Context, name string) (store.Corpus, bool, error) {
	info, found, err := s.loadInfo(ctx, `WHERE c.name = ?`, name)
	if err != nil || !found {
		return store.Corpus{}, found, err
	}
	c, err := s.loadContent(ctx, info)
	if err != nil {
		return store.Corpus{}, false, err
	}
	return c, true, nil
}

const infoQuery = `
SELECT c.id, c.name, c.format, c.path, c.created_at,
	(SELECT COUNT(*) FROM sentences s WHERE s.corpus_id = c.id),
	(SELECT COUNT(*) FROM vocab v WHERE v.corpus_id = c.id AND v.kind = 'word'),
	(SELECT COUNT(*) FROM vocab v WHERE v.corpus_id = c.id AND v.kind = 'tag')
FROM corpora c
`

type scanner interface {
	Scan(dest ...any) error
}

func scanInfo(row scanner) (store.CorpusInfo, error) {
	var (
		info      store.CorpusInfo
		format    string
		path      sql.NullString
		createdAt string
	)
	if err := row.Scan(&info.ID, &info.Name, &format, &path, &createdAt, &info.Sentences, &info.Words, &info.Tags); err != nil {
		return store.CorpusInfo{}, err
	}
	info.Format = corpus.Format(format)
	info.Path = path.String
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return store.CorpusInfo{}, fmt.Errorf("corpus %s created_at: %w", info.ID, err)
	}
	info.CreatedAt = t
	return info, nil
}

func (s *sqliteStore) loadInfo(ctx context.Context, where string, arg any) (store.CorpusInfo, bool, error) {
	info, err := scanInfo(s.db.QueryRowContext(ctx, infoQuery+where, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return store.CorpusInfo{}, false, nil
	}
	if err != nil {
		return store.CorpusInfo{}, false, err
	}
	return info, true, nil
}

func (s *sqliteStore) loadContent(ctx context.Context, info store.CorpusInfo) (store.Corpus, error) {
	c := store.Corpus{
		ID:        info.ID,
		Name:      info.Name,
		Format:    info.Format,
		Path:      info.Path,
		CreatedAt: info.CreatedAt,
	}

	var err error
	if c.Words, err = s.loadVocab(ctx, info.ID, kindWord); err != nil {
		return store.Corpus{}, err
	}
	if c.Tags, err = s.loadVocab(ctx, info.ID, kindTag); err != nil {
		return store.Corpus{}, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT words, tags FROM sentences WHERE corpus_id = ? ORDER BY seq`, info.ID)
	if err != nil {
		return store.Corpus{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var words, tags string
		if err := rows.Scan(&words, &tags); err != nil {
			return store.Corpus{}, err
		}
		var sent corpus.Sentence
		if err := json.Unmarshal([]byte(words), &sent.Words); err != nil {
			return store.Corpus{}, err
		}
		if err := json.Unmarshal([]byte(tags), &sent.Tags); err != nil {
			return store.Corpus{}, err
		}
		sent.WordCount = len(sent.Words)
		if err := sent.Validate(); err != nil {
			return store.Corpus{}, err
		}
		c.Sentences = append(c.Sentences, sent)
	}
	return c, rows.Err()
}

func (s *sqliteStore) loadVocab(ctx context.Context, corpusID, kind string) (*vocab.Index, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, token FROM vocab WHERE corpus_id = ? AND kind = ?`, corpusID, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	m := make(map[string]int)
	for rows.Next() {
		var (
			id  int
			tok string
		)
		if err := rows.Scan(&id, &tok); err != nil {
			return nil, err
		}
		m[tok] = id
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return vocab.FromMap(m)
}

// ListCorpora returns metadata for all corpora ordered by name.
func (s *sqliteStore) ListCorpora(ctx context.Context) ([]store.CorpusInfo, error) {
	rows, err := s.db.QueryContext(ctx, infoQuery+`ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.CorpusInfo
	for rows.Next() {
		info, err := scanInfo(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteCorpus removes a corpus with its vocab and sentences.
func (s *sqliteStore) DeleteCorpus(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM corpora WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("sqlite: corpus %s: %w", id, internalerr.ErrNotFound)
	}
	if err := deleteCorpora(ctx, tx, `id = ?`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// deleteCorpora removes the corpora matching cond and their child rows.
func deleteCorpora(ctx context.Context, tx *sql.Tx, cond string, args ...any) error {
	for _, child := range []string{"vocab", "sentences"} {
		stmt := fmt.Sprintf(`DELETE FROM %s WHERE corpus_id IN (SELECT id FROM corpora WHERE %s)`, child, cond)
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return err
		}
	}
	_, err := tx.ExecContext(ctx, `DELETE FROM corpora WHERE `+cond, args...)
	return err
}
