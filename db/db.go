package db

import (
	"database/sql"
	"os"

	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

type DB struct {
	*sql.DB
}

func NewDB() (*DB, error) {
	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = "./gptgames.db" // Fallback for local development
	}
	log.Infof("Opening database at: %s", dbPath)
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Initialize tables
	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS quiz_results (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id TEXT,
            username TEXT,
            game TEXT,
            topic TEXT,
            score INTEGER,
            total INTEGER,
            played_at TIMESTAMP
        );
    `)
	if err != nil {
		return nil, err
	}

	return &DB{db}, nil
}

func (db *DB) RecordResult(r Result) error {
	_, err := db.Exec(
		"INSERT INTO quiz_results (user_id, username, game, topic, score, total, played_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		r.UserID, r.Username, r.Game, r.Topic, r.Score, r.Total, r.PlayedAt,
	)
	return err
}

// TopScores returns the best finished runs, highest score first, earlier runs
// winning ties.
func (db *DB) TopScores(limit int) ([]Result, error) {
	rows, err := db.Query(
		"SELECT id, user_id, username, game, topic, score, total, played_at FROM quiz_results ORDER BY score DESC, played_at ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.UserID, &r.Username, &r.Game, &r.Topic, &r.Score, &r.Total, &r.PlayedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (db *DB) Stats(userID string) (PlayerStats, error) {
	var stats PlayerStats
	err := db.QueryRow(
		"SELECT COUNT(*), COALESCE(SUM(score), 0), COALESCE(SUM(total), 0) FROM quiz_results WHERE user_id = ?",
		userID,
	).Scan(&stats.Games, &stats.Correct, &stats.Asked)
	return stats, err
}
