package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/hrygo/kronos/store"
)

func (d *DB) CreatePendingResolution(ctx context.Context, create *store.PendingResolution) (*store.PendingResolution, error) {
	fields := []string{"id", "text", "reference_ts", "payload", "created_ts"}
	args := []any{create.ID, create.Text, create.ReferenceTs, create.Payload, create.CreatedTs}
	stmt := `INSERT INTO pending_resolution (` + strings.Join(fields, ", ") + `) VALUES (` + placeholders(len(args)) + `)`
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, fmt.Errorf("failed to create pending_resolution: %w", err)
	}
	return create, nil
}

func (d *DB) ListPendingResolutions(ctx context.Context, find *store.FindPendingResolution) ([]*store.PendingResolution, error) {
	where, args := []string{"1 = 1"}, []any{}
	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}

	query := `SELECT id, text, reference_ts, payload, created_ts FROM pending_resolution WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_ts DESC, id`
	if find.Limit != nil {
		query += fmt.Sprintf(" LIMIT %d", *find.Limit)
	}
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending_resolutions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.PendingResolution, 0)
	for rows.Next() {
		p := &store.PendingResolution{}
		if err := rows.Scan(&p.ID, &p.Text, &p.ReferenceTs, &p.Payload, &p.CreatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan pending_resolution: %w", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending_resolutions: %w", err)
	}
	return list, nil
}

func (d *DB) DeletePendingResolution(ctx context.Context, delete *store.DeletePendingResolution) (int64, error) {
	where, args := []string{}, []any{}
	if delete.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *delete.ID)
	}
	if delete.CreatedTsBefore != nil {
		where, args = append(where, "created_ts < "+placeholder(len(args)+1)), append(args, *delete.CreatedTsBefore)
	}
	if len(where) == 0 {
		return 0, fmt.Errorf("delete pending_resolution requires a condition")
	}

	result, err := d.db.ExecContext(ctx, `DELETE FROM pending_resolution WHERE `+strings.Join(where, " AND "), args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete pending_resolution: %w", err)
	}
	return result.RowsAffected()
}
