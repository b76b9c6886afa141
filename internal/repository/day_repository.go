package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mutabaah/backend/internal/model"
)

const dayColumns = `user_id, date, fajr_status, dhuhr_status, asr_status,
		        maghrib_status, isha_status, zikr_count, quran_minutes,
		        created_at, updated_at`

type DayRepository struct {
	db *sql.DB
}

func NewDayRepository(db *sql.DB) *DayRepository {
	return &DayRepository{db: db}
}

func (r *DayRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return tx, nil
}

func (r *DayRepository) Get(ctx context.Context, userID, date string) (*model.DayRecord, error) {
	row := r.db.QueryRowContext(
		ctx,
		`SELECT `+dayColumns+` FROM day_records WHERE user_id = ? AND date = ?`,
		userID,
		date,
	)
	return scanDayRecord(row)
}

func (r *DayRepository) GetTx(ctx context.Context, tx *sql.Tx, userID, date string) (*model.DayRecord, error) {
	row := tx.QueryRowContext(
		ctx,
		`SELECT `+dayColumns+` FROM day_records WHERE user_id = ? AND date = ?`,
		userID,
		date,
	)
	return scanDayRecord(row)
}

// GetRange returns the records with start <= date <= end, sorted ascending by
// date. Dates without a record are simply absent from the result.
func (r *DayRepository) GetRange(ctx context.Context, userID, start, end string) ([]model.DayRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+dayColumns+`
		 FROM day_records
		 WHERE user_id = ? AND date >= ? AND date <= ?
		 ORDER BY date ASC`,
		userID,
		start,
		end,
	)
	if err != nil {
		return nil, fmt.Errorf("query day range: %w", err)
	}
	defer rows.Close()

	records := make([]model.DayRecord, 0)
	for rows.Next() {
		record, scanErr := scanDayRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day range: %w", err)
	}

	return records, nil
}

// GetAll returns every record for a user, sorted ascending by date.
func (r *DayRepository) GetAll(ctx context.Context, userID string) ([]model.DayRecord, error) {
	rows, err := r.db.QueryContext(
		ctx,
		`SELECT `+dayColumns+`
		 FROM day_records
		 WHERE user_id = ?
		 ORDER BY date ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query days: %w", err)
	}
	defer rows.Close()

	records := make([]model.DayRecord, 0)
	for rows.Next() {
		record, scanErr := scanDayRecord(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate days: %w", err)
	}

	return records, nil
}

// DaySummary is a cheap aggregate of one user's records, used to fingerprint
// the table state without loading it.
type DaySummary struct {
	UserID      string
	Records     int
	ZikrTotal   int
	QuranTotal  int
	LastUpdated string
}

func (r *DayRepository) Summary(ctx context.Context, userID string) (*DaySummary, error) {
	summary := DaySummary{UserID: userID}
	err := r.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1),
		        COALESCE(SUM(zikr_count), 0),
		        COALESCE(SUM(quran_minutes), 0),
		        COALESCE(MAX(updated_at), '')
		 FROM day_records
		 WHERE user_id = ?`,
		userID,
	).Scan(&summary.Records, &summary.ZikrTotal, &summary.QuranTotal, &summary.LastUpdated)
	if err != nil {
		return nil, fmt.Errorf("summarize day records: %w", err)
	}
	return &summary, nil
}

// Create inserts a new record. A duplicate (user, date) pair yields
// ErrAlreadyExists; callers racing on day creation treat that as non-fatal
// and re-fetch.
func (r *DayRepository) Create(ctx context.Context, record *model.DayRecord) error {
	return createDay(ctx, r.db, record)
}

func (r *DayRepository) CreateTx(ctx context.Context, tx *sql.Tx, record *model.DayRecord) error {
	return createDay(ctx, tx, record)
}

func (r *DayRepository) UpdateTx(ctx context.Context, tx *sql.Tx, record *model.DayRecord) error {
	result, err := tx.ExecContext(
		ctx,
		`UPDATE day_records
		 SET fajr_status = ?,
		     dhuhr_status = ?,
			 asr_status = ?,
			 maghrib_status = ?,
			 isha_status = ?,
			 zikr_count = ?,
			 quran_minutes = ?,
			 updated_at = ?
		 WHERE user_id = ? AND date = ?`,
		record.FajrStatus,
		record.DhuhrStatus,
		record.AsrStatus,
		record.MaghribStatus,
		record.IshaStatus,
		record.ZikrCount,
		record.QuranMinutes,
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
		record.UserID,
		record.Date,
	)
	if err != nil {
		return fmt.Errorf("update day record: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update day record: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func createDay(ctx context.Context, db execer, record *model.DayRecord) error {
	_, err := db.ExecContext(
		ctx,
		`INSERT INTO day_records (`+dayColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.UserID,
		record.Date,
		record.FajrStatus,
		record.DhuhrStatus,
		record.AsrStatus,
		record.MaghribStatus,
		record.IshaStatus,
		record.ZikrCount,
		record.QuranMinutes,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
		record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create day record: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDayRecord(s scanner) (*model.DayRecord, error) {
	record := model.DayRecord{}
	var createdAt string
	var updatedAt string
	err := s.Scan(
		&record.UserID,
		&record.Date,
		&record.FajrStatus,
		&record.DhuhrStatus,
		&record.AsrStatus,
		&record.MaghribStatus,
		&record.IshaStatus,
		&record.ZikrCount,
		&record.QuranMinutes,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan day record: %w", err)
	}

	parsedCreatedAt, parseErr := parseTime(createdAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parse day created_at: %w", parseErr)
	}
	record.CreatedAt = parsedCreatedAt

	parsedUpdatedAt, parseErr := parseTime(updatedAt)
	if parseErr != nil {
		return nil, fmt.Errorf("parse day updated_at: %w", parseErr)
	}
	record.UpdatedAt = parsedUpdatedAt

	return &record, nil
}
