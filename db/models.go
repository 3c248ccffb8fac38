package db

import "time"

type Result struct {
	ID       int
	UserID   string
	Username string
	Game     string
	Topic    string
	Score    int
	Total    int
	PlayedAt time.Time
}

type PlayerStats struct {
	Games   int
	Correct int
	Asked   int
}
