package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskhub/internal/models"
)

// TaskPatch mirrors UserPatch: nil means leave the column alone.
type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
}

const taskColumns = "id, owner_id, title, description, completed"

func scanTask(row rowScanner) (*models.Task, error) {
	var t models.Task
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Completed); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTask inserts a task owned by ownerID. Completed is always false at
// creation, whatever the caller was sent over the wire.
func (s *Store) CreateTask(ctx context.Context, title string, description *string, ownerID int) (*models.Task, error) {
	t := models.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: description,
		Completed:   false,
	}
	err := s.db.QueryRowContext(ctx,
		s.q("INSERT INTO tasks (owner_id, title, description, completed) VALUES ($1, $2, $3, FALSE) RETURNING id"),
		ownerID, title, description,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("inserting task: %w", err)
	}
	return &t, nil
}

// GetTask is owner-agnostic; the HTTP layer decides who may see the result.
func (s *Store) GetTask(ctx context.Context, id int) (*models.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx,
		s.q("SELECT "+taskColumns+" FROM tasks WHERE id = $1"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting task %d: %w", id, err)
	}
	return t, nil
}

// ListTasks returns ownerID's tasks in insertion order.
func (s *Store) ListTasks(ctx context.Context, ownerID, skip, limit int) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		s.q("SELECT "+taskColumns+" FROM tasks WHERE owner_id = $1 ORDER BY id LIMIT $2 OFFSET $3"),
		ownerID, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}

// UpdateTask applies the non-nil fields of patch and returns the updated row.
func (s *Store) UpdateTask(ctx context.Context, id int, patch TaskPatch) (*models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning update: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, s.q(`
        UPDATE tasks
        SET title = COALESCE($1, title),
            description = COALESCE($2, description),
            completed = COALESCE($3, completed)
        WHERE id = $4`),
		patch.Title, patch.Description, patch.Completed, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("updating task %d: %w", id, err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	t, err := scanTask(tx.QueryRowContext(ctx,
		s.q("SELECT "+taskColumns+" FROM tasks WHERE id = $1"), id))
	if err != nil {
		return nil, fmt.Errorf("rereading task %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing update: %w", err)
	}
	return t, nil
}

// DeleteTask removes the task and returns the pre-deletion row.
func (s *Store) DeleteTask(ctx context.Context, id int) (*models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning delete: %w", err)
	}
	defer tx.Rollback()

	t, err := scanTask(tx.QueryRowContext(ctx,
		s.q("SELECT "+taskColumns+" FROM tasks WHERE id = $1"), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting task %d: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx, s.q("DELETE FROM tasks WHERE id = $1"), id); err != nil {
		return nil, fmt.Errorf("deleting task %d: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing delete: %w", err)
	}
	return t, nil
}
