package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/gcbaptista/go-natex/internal/errors"
	"github.com/gcbaptista/go-natex/model"
)

const schema = `
    create table if not exists sentences (
        seq            integer primary key autoincrement,
        id             text unique not NULL,
        text           text not NULL,
        language       text not NULL,
        annotator      text not NULL,
        tokens         text not NULL,
        representation text not NULL default '',
        created_at     integer not NULL
    );
`

// SQLiteStore keeps sentences in a SQLite database. Tokens are stored as JSON.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path. Use
// ":memory:" for a throwaway database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			return nil, fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	// a :memory: database lives per connection
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create sentences table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Put(sentence *model.Sentence) error {
	if sentence == nil || sentence.ID == "" {
		return errors.NewValidationError("id", "sentence ID cannot be empty")
	}
	tokens, err := json.Marshal(sentence.Tokens)
	if err != nil {
		return fmt.Errorf("failed to encode tokens of sentence %s: %w", sentence.ID, err)
	}
	_, err = s.db.Exec(`
        insert into sentences (id, text, language, annotator, tokens, representation, created_at)
        values (?, ?, ?, ?, ?, ?, ?)
        on conflict(id) do update set
            text = excluded.text,
            language = excluded.language,
            annotator = excluded.annotator,
            tokens = excluded.tokens,
            representation = excluded.representation,
            created_at = excluded.created_at`,
		sentence.ID, sentence.Text, sentence.Language, sentence.Annotator,
		string(tokens), sentence.Representation, sentence.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to store sentence %s: %w", sentence.ID, err)
	}
	return nil
}

func (s *SQLiteStore) Get(id string) (*model.Sentence, error) {
	row := s.db.QueryRow(`
        select id, text, language, annotator, tokens, representation, created_at
        from sentences where id = ?`, id)
	sentence, err := scanSentence(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewSentenceNotFoundError(id)
	}
	return sentence, err
}

func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(`delete from sentences where id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sentence %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete sentence %s: %w", id, err)
	}
	if n == 0 {
		return errors.NewSentenceNotFoundError(id)
	}
	return nil
}

// List returns a page of sentences in insertion order and the total count.
func (s *SQLiteStore) List(offset, limit int) ([]*model.Sentence, int, error) {
	var total int
	if err := s.db.QueryRow(`select count(*) from sentences`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count sentences: %w", err)
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = -1 // sqlite: no limit
	}

	rows, err := s.db.Query(`
        select id, text, language, annotator, tokens, representation, created_at
        from sentences order by seq limit ? offset ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list sentences: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	sentences := []*model.Sentence{}
	for rows.Next() {
		sentence, err := scanSentence(rows)
		if err != nil {
			return nil, 0, err
		}
		sentences = append(sentences, sentence)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list sentences: %w", err)
	}
	return sentences, total, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSentence(row scanner) (*model.Sentence, error) {
	var (
		sentence  model.Sentence
		tokens    string
		createdAt int64
	)
	err := row.Scan(&sentence.ID, &sentence.Text, &sentence.Language, &sentence.Annotator,
		&tokens, &sentence.Representation, &createdAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tokens), &sentence.Tokens); err != nil {
		return nil, fmt.Errorf("failed to decode tokens of sentence %s: %w", sentence.ID, err)
	}
	sentence.CreatedAt = time.Unix(0, createdAt).UTC()
	return &sentence, nil
}
