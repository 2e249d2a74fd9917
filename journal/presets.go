package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// ChannelPreset is one channel's saved parameter set, stored in raw field
// space so save/load round-trips are exact.
type ChannelPreset struct {
	Waveform     int
	FrequencyRaw int64
	DutyRaw      int64
	AmplitudeRaw int64
	OffsetRaw    int64
}

// Preset is a named snapshot of the whole panel.
type Preset struct {
	Name     string
	PhaseRaw int64
	Channels []ChannelPreset
}

const createPresetsSQL = `
CREATE TABLE IF NOT EXISTS presets (
    name TEXT PRIMARY KEY,
    phase_raw INTEGER NOT NULL,
    saved_at TEXT NOT NULL
);`

const createPresetChannelsSQL = `
CREATE TABLE IF NOT EXISTS preset_channels (
    name TEXT NOT NULL,
    channel INTEGER NOT NULL,
    waveform INTEGER NOT NULL,
    frequency_raw INTEGER NOT NULL,
    duty_raw INTEGER NOT NULL,
    amplitude_raw INTEGER NOT NULL,
    offset_raw INTEGER NOT NULL,
    PRIMARY KEY (name, channel),
    FOREIGN KEY (name) REFERENCES presets (name)
);`

// PresetStore keeps named panel snapshots in a single SQLite file.
type PresetStore struct {
	db *sql.DB
}

// OpenPresets opens or creates the preset database at path.
func OpenPresets(path string) (*PresetStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open preset database %s: %w", path, err)
	}
	if _, err := db.Exec(createPresetsSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create presets table: %w", err)
	}
	if _, err := db.Exec(createPresetChannelsSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not create preset_channels table: %w", err)
	}
	return &PresetStore{db: db}, nil
}

func (s *PresetStore) Close() error {
	return s.db.Close()
}

// Save stores a preset, replacing any previous snapshot of the same name.
func (s *PresetStore) Save(p Preset) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}

	savedAt := time.Now().Format("2006-01-02 15:04:05.000")
	if _, err := tx.Exec(`INSERT OR REPLACE INTO presets(name, phase_raw, saved_at) VALUES(?, ?, ?)`,
		p.Name, p.PhaseRaw, savedAt); err != nil {
		tx.Rollback()
		return fmt.Errorf("could not save preset %s: %w", p.Name, err)
	}
	if _, err := tx.Exec(`DELETE FROM preset_channels WHERE name = ?`, p.Name); err != nil {
		tx.Rollback()
		return fmt.Errorf("could not clear old channels for %s: %w", p.Name, err)
	}

	chanStmt, err := tx.Prepare(`INSERT INTO preset_channels(name, channel, waveform, frequency_raw, duty_raw, amplitude_raw, offset_raw) VALUES(?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("could not prepare channel statement: %w", err)
	}
	defer chanStmt.Close()

	for i, ch := range p.Channels {
		if _, err := chanStmt.Exec(p.Name, i, ch.Waveform, ch.FrequencyRaw, ch.DutyRaw, ch.AmplitudeRaw, ch.OffsetRaw); err != nil {
			tx.Rollback()
			return fmt.Errorf("could not save channel %d of %s: %w", i+1, p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit transaction: %w", err)
	}
	return nil
}

// Load retrieves a preset by name.
func (s *PresetStore) Load(name string) (Preset, error) {
	p := Preset{Name: name}
	err := s.db.QueryRow(`SELECT phase_raw FROM presets WHERE name = ?`, name).Scan(&p.PhaseRaw)
	if err == sql.ErrNoRows {
		return p, fmt.Errorf("no preset named %s", name)
	}
	if err != nil {
		return p, fmt.Errorf("could not load preset %s: %w", name, err)
	}

	rows, err := s.db.Query(`SELECT waveform, frequency_raw, duty_raw, amplitude_raw, offset_raw FROM preset_channels WHERE name = ? ORDER BY channel`, name)
	if err != nil {
		return p, fmt.Errorf("could not load channels for %s: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var ch ChannelPreset
		if err := rows.Scan(&ch.Waveform, &ch.FrequencyRaw, &ch.DutyRaw, &ch.AmplitudeRaw, &ch.OffsetRaw); err != nil {
			return p, fmt.Errorf("could not scan channel row for %s: %w", name, err)
		}
		p.Channels = append(p.Channels, ch)
	}
	if err := rows.Err(); err != nil {
		return p, fmt.Errorf("could not read channel rows for %s: %w", name, err)
	}
	return p, nil
}

// List returns the stored preset names in alphabetical order.
func (s *PresetStore) List() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("could not list presets: %w", err)
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("could not scan preset name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("could not read preset names: %w", err)
	}
	return names, nil
}
