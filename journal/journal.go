// Package journal persists operator-visible history to SQLite: a daily event
// file recording every parameter transition, and a preset store for named
// panel snapshots.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Event types recorded in the daily files.
const (
	TypeInitialState = "INITIAL_STATE"
	TypeFieldChange  = "FIELD_CHANGE"
	TypeMeasurement  = "MEASUREMENT"
	TypeScript       = "SCRIPT"
	TypePreset       = "PRESET"
	TypeSweep        = "SWEEP"
)

// Event is a single journaled panel action or parameter transition.
type Event struct {
	Timestamp time.Time
	Source    string
	Previous  string
	Value     string
	Unit      string
	Type      string
}

const createEventsSQL = `
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp TEXT NOT NULL,
    source TEXT NOT NULL,
    previous_value TEXT,
    new_value TEXT,
    units TEXT,
    event_type TEXT NOT NULL
);`

// Writer is a long-running goroutine that listens for events and writes them
// to a daily SQLite database under dir.
func Writer(ctx context.Context, wg *sync.WaitGroup, eventChan <-chan Event, logger *log.Logger, dir string) {
	defer wg.Done()
	logger.Println("Journal Writer Goroutine Started.")
	dbConnections := make(map[string]*sql.DB)
	defer func() {
		for _, db := range dbConnections {
			db.Close()
		}
		logger.Println("Journal Writer Goroutine Shutting Down.")
	}()

	// writeEvent is a helper closure to avoid duplicating code.
	writeEvent := func(event Event) {
		dateStr := event.Timestamp.Format("2006-01-02")
		db, ok := dbConnections[dateStr]
		if !ok {
			var err error
			fileName := filepath.Join(dir, fmt.Sprintf("fygen_events_%s.db", dateStr))
			db, err = sql.Open("sqlite", fileName)
			if err != nil {
				logger.Printf("FATAL: Could not open/create database %s: %v", fileName, err)
				return // Can't write if we can't open DB
			}
			dbConnections[dateStr] = db

			_, err = db.Exec(createEventsSQL)
			if err != nil {
				logger.Printf("FATAL: Could not create table in %s: %v", fileName, err)
				db.Close()
				delete(dbConnections, dateStr)
				return
			}
			logger.Printf("Successfully opened and verified database: %s", fileName)
		}

		stmt, err := db.Prepare("INSERT INTO events(timestamp, source, previous_value, new_value, units, event_type) VALUES(?, ?, ?, ?, ?, ?)")
		if err != nil {
			logger.Printf("ERROR: Failed to prepare SQL statement: %v", err)
			return
		}
		defer stmt.Close()

		timestampStr := event.Timestamp.Format("2006-01-02 15:04:05.000")
		_, err = stmt.Exec(timestampStr, event.Source, event.Previous, event.Value, event.Unit, event.Type)
		if err != nil {
			logger.Printf("ERROR: Failed to insert event into database: %v", err)
		}
	}

	for {
		select {
		case event, ok := <-eventChan:
			if !ok { // Channel has been closed from a clean shutdown
				return
			}
			writeEvent(event)

		case <-ctx.Done(): // Cancelled, e.g. by Ctrl-C
			logger.Println("Shutdown signal received. Writing remaining events to database...")
			// Drain whatever is still buffered before shutting down
			for len(eventChan) > 0 {
				event := <-eventChan
				writeEvent(event)
			}
			return
		}
	}
}
