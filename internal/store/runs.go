// Package store journals completed runs to sqlite so they can be
// inspected later. Execution never reads from it.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/proxilabs/proxi/internal/plan"
)

type RunStore struct {
	DB *sql.DB
}

func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			prompt TEXT,
			goal TEXT,
			steps INTEGER,
			success INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS step_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT,
			step INTEGER,
			action TEXT,
			status TEXT,
			result TEXT,
			error TEXT
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &RunStore{DB: db}, nil
}

// SaveRun records a finished run and its per-step results.
func (s *RunStore) SaveRun(runID, prompt string, report *plan.ExecutionReport) error {
	success := 0
	if report.Success {
		success = 1
	}

	query := `INSERT INTO runs (id, prompt, goal, steps, success) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.DB.Exec(query, runID, prompt, report.Plan.Goal, len(report.Results), success); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}

	for _, r := range report.Results {
		payload := ""
		if r.Result != nil {
			b, err := json.Marshal(r.Result)
			if err == nil {
				payload = string(b)
			}
		}
		query := `INSERT INTO step_results (run_id, step, action, status, result, error) VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := s.DB.Exec(query, runID, r.Index, r.Action, string(r.Status), payload, r.Error); err != nil {
			return fmt.Errorf("saving step result: %w", err)
		}
	}
	return nil
}

// RunSummary is one row of the run journal.
type RunSummary struct {
	ID        string
	Prompt    string
	Goal      string
	Steps     int
	Success   bool
	CreatedAt time.Time
}

// ListRuns returns the most recent runs, newest first.
func (s *RunStore) ListRuns(limit int) ([]RunSummary, error) {
	query := `SELECT id, prompt, goal, steps, success, created_at FROM runs ORDER BY created_at DESC LIMIT ?`
	rows, err := s.DB.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var success int
		if err := rows.Scan(&r.ID, &r.Prompt, &r.Goal, &r.Steps, &success, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Success = success == 1
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetStepResults returns the recorded step outcomes of one run in
// step order. Result payloads stay in their JSON form.
func (s *RunStore) GetStepResults(runID string) ([]plan.StepResult, error) {
	query := `SELECT step, action, status, result, error FROM step_results WHERE run_id = ? ORDER BY step`
	rows, err := s.DB.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []plan.StepResult
	for rows.Next() {
		var r plan.StepResult
		var status, payload string
		if err := rows.Scan(&r.Index, &r.Action, &status, &payload, &r.Error); err != nil {
			return nil, err
		}
		r.Status = plan.Status(status)
		if payload != "" {
			var v any
			if err := json.Unmarshal([]byte(payload), &v); err == nil {
				r.Result = v
			} else {
				r.Result = payload
			}
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *RunStore) Close() error {
	return s.DB.Close()
}
