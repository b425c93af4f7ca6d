package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/anunag86/InterviewGenius-sub002/internal/prep"
)

// PostgresStore is the durable Store implementation. It expects the jobs,
// job_trace and job_artifacts tables to exist; schema bootstrap is owned by
// deployment tooling, not this package.
type PostgresStore struct {
	pool      *pgxpool.Pool
	retention time.Duration
}

// ConnectPostgres establishes a connection pool and verifies it.
func ConnectPostgres(ctx context.Context, databaseURL string, retention time.Duration) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &PostgresStore{pool: pool, retention: retention}, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Create records a new pending job.
func (s *PostgresStore) Create(ctx context.Context, inputs prep.Inputs) (*Job, error) {
	id := uuid.New().String()
	var createdAt, expiresAt time.Time
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (id, status, stage, job_posting, profile_reference, resume_text, expires_at)
		 VALUES ($1, 'pending', 0, $2, $3, $4, NOW() + $5::interval)
		 RETURNING created_at, expires_at`,
		id, inputs.JobPosting, inputs.ProfileReference, inputs.ResumeText,
		fmt.Sprintf("%d seconds", int(s.retention.Seconds())),
	).Scan(&createdAt, &expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return &Job{
		ID:        id,
		Status:    StatusPending,
		Stage:     StageCreated,
		Inputs:    inputs,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
		ExpiresAt: expiresAt,
		Artifacts: make(map[string]json.RawMessage),
	}, nil
}

// Get assembles a consistent snapshot inside a read-only transaction so the
// status row, trace and artifacts always belong to the same moment.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Job, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("failed to begin read transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	job := &Job{ID: id, Artifacts: make(map[string]json.RawMessage)}
	var resultRaw []byte
	var errMsg *string
	err = tx.QueryRow(ctx,
		`SELECT status, stage, job_posting, profile_reference, resume_text,
		        created_at, updated_at, expires_at, result, error
		 FROM jobs WHERE id = $1 AND expires_at > NOW()`,
		id,
	).Scan(&job.Status, &job.Stage, &job.Inputs.JobPosting, &job.Inputs.ProfileReference,
		&job.Inputs.ResumeText, &job.CreatedAt, &job.UpdatedAt, &job.ExpiresAt, &resultRaw, &errMsg)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	if errMsg != nil {
		job.Error = *errMsg
	}
	if len(resultRaw) > 0 {
		var result prep.InterviewPrep
		if err := json.Unmarshal(resultRaw, &result); err != nil {
			return nil, fmt.Errorf("failed to decode job result: %w", err)
		}
		job.Result = &result
	}

	rows, err := tx.Query(ctx,
		`SELECT ts, agent_name, thought, sources
		 FROM job_trace WHERE job_id = $1 ORDER BY seq`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entry prep.ReasoningEntry
		var sourcesRaw []byte
		if err := rows.Scan(&entry.Timestamp, &entry.AgentName, &entry.Thought, &sourcesRaw); err != nil {
			return nil, fmt.Errorf("failed to scan trace entry: %w", err)
		}
		if len(sourcesRaw) > 0 {
			if err := json.Unmarshal(sourcesRaw, &entry.SourcesConsulted); err != nil {
				return nil, fmt.Errorf("failed to decode trace sources: %w", err)
			}
		}
		job.Trace = append(job.Trace, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	artRows, err := tx.Query(ctx,
		`SELECT step, content FROM job_artifacts WHERE job_id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}
	defer artRows.Close()
	for artRows.Next() {
		var step string
		var content []byte
		if err := artRows.Scan(&step, &content); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		job.Artifacts[step] = json.RawMessage(content)
	}
	if err := artRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read artifacts: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit read transaction: %w", err)
	}
	return job, nil
}

// AppendTrace appends one reasoning entry.
func (s *PostgresStore) AppendTrace(ctx context.Context, id string, entry prep.ReasoningEntry) error {
	sources, err := json.Marshal(entry.SourcesConsulted)
	if err != nil {
		return fmt.Errorf("failed to marshal trace sources: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO job_trace (job_id, ts, agent_name, thought, sources)
		 SELECT id, $2, $3, $4, $5 FROM jobs WHERE id = $1`,
		id, entry.Timestamp, entry.AgentName, entry.Thought, sources,
	)
	if err != nil {
		return fmt.Errorf("failed to append trace: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	_, err = s.pool.Exec(ctx, `UPDATE jobs SET updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to touch job: %w", err)
	}
	return nil
}

// AdvanceStage moves the completed-stage marker forward.
func (s *PostgresStore) AdvanceStage(ctx context.Context, id string, newStage Stage) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET stage = $2,
		     status = CASE WHEN status = 'pending' THEN 'running' ELSE status END,
		     updated_at = NOW()
		 WHERE id = $1 AND stage <= $2 AND status IN ('pending', 'running')`,
		id, int(newStage),
	)
	if err != nil {
		return fmt.Errorf("failed to advance stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyRejection(ctx, id, newStage)
	}
	return nil
}

// SetResult completes a running job.
func (s *PostgresStore) SetResult(ctx context.Context, id string, result *prep.InterviewPrep) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET status = 'completed', stage = $3, result = $2, error = NULL, updated_at = NOW()
		 WHERE id = $1 AND status = 'running'`,
		id, raw, int(StageDone),
	)
	if err != nil {
		return fmt.Errorf("failed to set result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyRejection(ctx, id, StageDone)
	}
	return nil
}

// SetError fails a non-terminal job.
func (s *PostgresStore) SetError(ctx context.Context, id string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE jobs
		 SET status = 'failed', result = NULL, error = $2, updated_at = NOW()
		 WHERE id = $1 AND status IN ('pending', 'running')`,
		id, message,
	)
	if err != nil {
		return fmt.Errorf("failed to set error: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.classifyRejection(ctx, id, StageCreated)
	}
	return nil
}

// SaveArtifact stores (or replaces) a stage's diagnostic output.
func (s *PostgresStore) SaveArtifact(ctx context.Context, id, step string, content any) error {
	raw, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact %s: %w", step, err)
	}
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO job_artifacts (job_id, step, content)
		 SELECT id, $2, $3 FROM jobs WHERE id = $1
		 ON CONFLICT (job_id, step) DO UPDATE SET content = $3, created_at = NOW()`,
		id, step, raw,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s: %w", step, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Expire removes jobs past their retention window.
func (s *PostgresStore) Expire(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM jobs WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire jobs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// MarkStale fails non-terminal jobs that have not advanced within olderThan.
func (s *PostgresStore) MarkStale(ctx context.Context, olderThan time.Duration, message string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`UPDATE jobs
		 SET status = 'failed', result = NULL, error = $2, updated_at = NOW()
		 WHERE status IN ('pending', 'running')
		   AND updated_at < NOW() - $1::interval
		 RETURNING id`,
		fmt.Sprintf("%d seconds", int(olderThan.Seconds())), message,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark stale jobs: %w", err)
	}
	defer rows.Close()

	var failed []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan stale job id: %w", err)
		}
		failed = append(failed, id)
	}
	return failed, rows.Err()
}

// classifyRejection distinguishes a missing job from an illegal transition
// after a guarded UPDATE matched no rows.
func (s *PostgresStore) classifyRejection(ctx context.Context, id string, newStage Stage) error {
	var status Status
	var stage int
	err := s.pool.QueryRow(ctx, `SELECT status, stage FROM jobs WHERE id = $1`, id).Scan(&status, &stage)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to inspect job: %w", err)
	}
	if Stage(stage) > newStage {
		return fmt.Errorf("%w: %s -> %s", ErrStageRegression, Stage(stage), newStage)
	}
	return fmt.Errorf("%w: job is %s", ErrIllegalTransition, status)
}
