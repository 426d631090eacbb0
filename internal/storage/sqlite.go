// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mcp-tpn-planner/internal/models"
)

// ErrNotFound is returned when no schedule has the requested id.
var ErrNotFound = errors.New("schedule not found")

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// one writer; also keeps the foreign_keys pragma on the only connection
	db.SetMaxOpenConns(1)

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    PRAGMA foreign_keys = ON;

    CREATE TABLE IF NOT EXISTS schedules (
        id TEXT PRIMARY KEY,
        patient_name TEXT NOT NULL,
        variant TEXT NOT NULL,
        age REAL NOT NULL,
        age_unit TEXT NOT NULL,
        height_cm REAL NOT NULL,
        weight_kg REAL NOT NULL,
        sex TEXT NOT NULL,
        ideal_body_weight REAL NOT NULL,
        body_mass_index REAL NOT NULL,
        percent_ideal_body_weight REAL NOT NULL,
        reference_value REAL NOT NULL,
        conditions TEXT NOT NULL,
        total_days INTEGER NOT NULL,
        created_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS schedule_rows (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        schedule_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        category TEXT NOT NULL,
        nutrient TEXT NOT NULL,
        unit TEXT NOT NULL,
        dose_unit TEXT NOT NULL,
        guidelines TEXT NOT NULL,
        annotations TEXT NOT NULL,
        FOREIGN KEY (schedule_id) REFERENCES schedules(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS schedule_cells (
        row_id INTEGER NOT NULL,
        day INTEGER NOT NULL,
        value REAL,
        unit TEXT NOT NULL,
        PRIMARY KEY (row_id, day),
        FOREIGN KEY (row_id) REFERENCES schedule_rows(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS schedule_notes (
        schedule_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        note TEXT NOT NULL,
        FOREIGN KEY (schedule_id) REFERENCES schedules(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS schedule_warnings (
        schedule_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        code TEXT NOT NULL,
        category TEXT NOT NULL,
        nutrient TEXT NOT NULL,
        conditions TEXT NOT NULL,
        message TEXT NOT NULL,
        FOREIGN KEY (schedule_id) REFERENCES schedules(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_schedules_created_at ON schedules(created_at);
    CREATE INDEX IF NOT EXISTS idx_schedules_patient ON schedules(patient_name);
    CREATE INDEX IF NOT EXISTS idx_rows_schedule_id ON schedule_rows(schedule_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// createdAtLayout is fixed width so created_at text sorts chronologically.
const createdAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveSchedule stores a resolved schedule, assigning an id when it has none.
func (s *SQLiteStorage) SaveSchedule(sched *models.Schedule) error {
	if sched.ID == "" {
		sched.ID = uuid.NewString()
	}
	if sched.CreatedAt.IsZero() {
		sched.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	p := sched.Patient
	_, err = tx.Exec(`
        INSERT INTO schedules (id, patient_name, variant, age, age_unit, height_cm, weight_kg, sex,
            ideal_body_weight, body_mass_index, percent_ideal_body_weight, reference_value,
            conditions, total_days, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		sched.ID, p.Name, p.Variant, p.Age, p.AgeUnit, p.HeightCM, p.WeightKG, p.Sex,
		p.IdealBodyWeight, p.BodyMassIndex, p.PercentIdealBodyWeight, p.ReferenceValue,
		encodeList(p.Conditions), sched.TotalDays, sched.CreatedAt.UTC().Format(createdAtLayout))
	if err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}

	for i, row := range sched.Rows {
		res, err := tx.Exec(`
            INSERT INTO schedule_rows (schedule_id, position, category, nutrient, unit, dose_unit, guidelines, annotations)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?)
        `,
			sched.ID, i, row.Category, row.Nutrient, row.Unit, row.DoseUnit,
			encodeList(row.Guidelines), encodeList(row.Annotations))
		if err != nil {
			return fmt.Errorf("failed to insert row %s/%s: %w", row.Category, row.Nutrient, err)
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read row id: %w", err)
		}
		for _, cell := range row.Cells {
			var value sql.NullFloat64
			if cell.Value != nil {
				value = sql.NullFloat64{Float64: *cell.Value, Valid: true}
			}
			if _, err := tx.Exec(`INSERT INTO schedule_cells (row_id, day, value, unit) VALUES (?, ?, ?, ?)`,
				rowID, cell.Day, value, cell.Unit); err != nil {
				return fmt.Errorf("failed to insert cell: %w", err)
			}
		}
	}

	for i, note := range sched.Notes {
		if _, err := tx.Exec(`INSERT INTO schedule_notes (schedule_id, position, note) VALUES (?, ?, ?)`,
			sched.ID, i, note); err != nil {
			return fmt.Errorf("failed to insert note: %w", err)
		}
	}

	for i, w := range sched.Warnings {
		if _, err := tx.Exec(`
            INSERT INTO schedule_warnings (schedule_id, position, code, category, nutrient, conditions, message)
            VALUES (?, ?, ?, ?, ?, ?, ?)
        `, sched.ID, i, string(w.Code), w.Category, w.Nutrient, encodeList(w.Conditions), w.Message); err != nil {
			return fmt.Errorf("failed to insert warning: %w", err)
		}
	}

	return tx.Commit()
}

const scheduleColumns = `
        id, patient_name, variant, age, age_unit, height_cm, weight_kg, sex,
        ideal_body_weight, body_mass_index, percent_ideal_body_weight, reference_value,
        conditions, total_days, created_at`

// GetSchedule loads one schedule with all of its rows.
func (s *SQLiteStorage) GetSchedule(id string) (*models.Schedule, error) {
	row := s.db.QueryRow(`SELECT `+scheduleColumns+` FROM schedules WHERE id = ?`, id)
	sched, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadDetails(sched); err != nil {
		return nil, fmt.Errorf("failed to load schedule %s: %w", id, err)
	}
	return sched, nil
}

// ListSchedules returns the newest schedules first, optionally filtered by
// patient name and variant.
func (s *SQLiteStorage) ListSchedules(patientName, variant string, limit int) ([]*models.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
        FROM schedules
        WHERE 1=1
    `
	args := []interface{}{}

	if patientName != "" {
		query += " AND patient_name = ?"
		args = append(args, patientName)
	}
	if variant != "" {
		query += " AND variant = ?"
		args = append(args, variant)
	}

	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query schedules: %w", err)
	}

	var schedules []*models.Schedule
	for rows.Next() {
		sched, err := scanSchedule(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		schedules = append(schedules, sched)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate schedules: %w", err)
	}
	// details need the single connection, so release the cursor first
	rows.Close()

	for _, sched := range schedules {
		if err := s.loadDetails(sched); err != nil {
			return nil, fmt.Errorf("failed to load schedule %s: %w", sched.ID, err)
		}
	}
	return schedules, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(sc scanner) (*models.Schedule, error) {
	sched := &models.Schedule{}
	p := &sched.Patient
	var conditionsJSON, createdAtStr string

	err := sc.Scan(
		&sched.ID, &p.Name, &p.Variant, &p.Age, &p.AgeUnit, &p.HeightCM, &p.WeightKG, &p.Sex,
		&p.IdealBodyWeight, &p.BodyMassIndex, &p.PercentIdealBodyWeight, &p.ReferenceValue,
		&conditionsJSON, &sched.TotalDays, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan schedule: %w", err)
	}

	if sched.CreatedAt, err = time.Parse(createdAtLayout, createdAtStr); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.Conditions, err = decodeList(conditionsJSON); err != nil {
		return nil, fmt.Errorf("failed to decode conditions: %w", err)
	}
	return sched, nil
}

func (s *SQLiteStorage) loadDetails(sched *models.Schedule) error {
	if err := s.loadRows(sched); err != nil {
		return err
	}
	if err := s.loadNotes(sched); err != nil {
		return err
	}
	return s.loadWarnings(sched)
}

func (s *SQLiteStorage) loadRows(sched *models.Schedule) error {
	rows, err := s.db.Query(`
        SELECT r.id, r.category, r.nutrient, r.unit, r.dose_unit, r.guidelines, r.annotations,
               c.day, c.value, c.unit
        FROM schedule_rows r
        LEFT JOIN schedule_cells c ON c.row_id = r.id
        WHERE r.schedule_id = ?
        ORDER BY r.position, c.day
    `, sched.ID)
	if err != nil {
		return fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var out []models.Row
	lastID := int64(-1)
	for rows.Next() {
		var (
			rowID                   int64
			category, nutrient      string
			unit, doseUnit          string
			guidelines, annotations string
			day                     sql.NullInt64
			value                   sql.NullFloat64
			cellUnit                sql.NullString
		)
		if err := rows.Scan(&rowID, &category, &nutrient, &unit, &doseUnit, &guidelines, &annotations,
			&day, &value, &cellUnit); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}

		if rowID != lastID {
			r := models.Row{Category: category, Nutrient: nutrient, Unit: unit, DoseUnit: doseUnit}
			if r.Guidelines, err = decodeList(guidelines); err != nil {
				return fmt.Errorf("failed to decode guidelines: %w", err)
			}
			if r.Annotations, err = decodeList(annotations); err != nil {
				return fmt.Errorf("failed to decode annotations: %w", err)
			}
			out = append(out, r)
			lastID = rowID
		}
		if !day.Valid {
			continue
		}
		cell := models.Cell{Day: int(day.Int64), Unit: cellUnit.String}
		if value.Valid {
			v := value.Float64
			cell.Value = &v
		}
		current := &out[len(out)-1]
		current.Cells = append(current.Cells, cell)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate rows: %w", err)
	}

	sched.Rows = out
	return nil
}

func (s *SQLiteStorage) loadNotes(sched *models.Schedule) error {
	rows, err := s.db.Query(`SELECT note FROM schedule_notes WHERE schedule_id = ? ORDER BY position`, sched.ID)
	if err != nil {
		return fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var notes []string
	for rows.Next() {
		var note string
		if err := rows.Scan(&note); err != nil {
			return fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, note)
	}
	sched.Notes = notes
	return rows.Err()
}

func (s *SQLiteStorage) loadWarnings(sched *models.Schedule) error {
	rows, err := s.db.Query(`
        SELECT code, category, nutrient, conditions, message
        FROM schedule_warnings
        WHERE schedule_id = ?
        ORDER BY position
    `, sched.ID)
	if err != nil {
		return fmt.Errorf("failed to query warnings: %w", err)
	}
	defer rows.Close()

	var warnings []models.Warning
	for rows.Next() {
		var w models.Warning
		var code, conditionsJSON string
		if err := rows.Scan(&code, &w.Category, &w.Nutrient, &conditionsJSON, &w.Message); err != nil {
			return fmt.Errorf("failed to scan warning: %w", err)
		}
		w.Code = models.WarningCode(code)
		if w.Conditions, err = decodeList(conditionsJSON); err != nil {
			return fmt.Errorf("failed to decode warning conditions: %w", err)
		}
		warnings = append(warnings, w)
	}
	sched.Warnings = warnings
	return rows.Err()
}

func encodeList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, _ := json.Marshal(items)
	return string(b)
}

func decodeList(s string) ([]string, error) {
	var items []string
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
