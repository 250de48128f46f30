package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/corveoperu/cuervo-blanco-web/internal/content/domain"
	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListProjects(ctx context.Context) ([]domain.Project, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, summary, level, topics, image_url FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		var p domain.Project
		var topicsJSON []byte
		if err := rows.Scan(&p.ID, &p.Title, &p.Summary, &p.Level, &topicsJSON, &p.ImageURL); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		if len(topicsJSON) > 0 {
			if err := json.Unmarshal(topicsJSON, &p.Topics); err != nil {
				return nil, fmt.Errorf("failed to unmarshal project topics: %w", err)
			}
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return projects, nil
}

func (r *PostgresRepository) CreateRepairRequest(ctx context.Context, req *domain.RepairRequest) error {
	query := `INSERT INTO repair_requests
	          (ticket_code, device_type, device_brand, device_model, fault, condition, name, phone, email, stage, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	          RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		req.TicketCode, req.DeviceType, req.DeviceBrand, req.DeviceModel,
		req.Fault, req.Condition, req.Name, req.Phone, req.Email, req.Stage,
	).Scan(&req.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateTicket
		}
		return fmt.Errorf("insert repair request: %w", err)
	}
	return nil
}

const repairColumns = `id, ticket_code, device_type, device_brand, device_model, fault, condition, name, phone, email, stage, created_at, updated_at`

func (r *PostgresRepository) GetRepairByTicket(ctx context.Context, ticketCode string) (*domain.RepairRequest, error) {
	query := `SELECT ` + repairColumns + ` FROM repair_requests WHERE ticket_code = $1`

	req, err := scanRepair(r.db.QueryRowContext(ctx, query, ticketCode))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	return req, err
}

func (r *PostgresRepository) ListRepairRequests(ctx context.Context) ([]domain.RepairRequest, error) {
	query := `SELECT ` + repairColumns + ` FROM repair_requests ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query repair requests: %w", err)
	}
	defer rows.Close()

	var requests []domain.RepairRequest
	for rows.Next() {
		req, err := scanRepair(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return requests, nil
}

func (r *PostgresRepository) UpdateRepairStage(ctx context.Context, id int64, stage int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE repair_requests SET stage = $1, updated_at = NOW() WHERE id = $2`, stage, id)
	if err != nil {
		return fmt.Errorf("update repair stage: %w", err)
	}
	return checkAffected(res, ErrTicketNotFound)
}

func (r *PostgresRepository) CreateCommission(ctx context.Context, c *domain.Commission) error {
	query := `INSERT INTO commissions (name, phone, email, work_type, budget, details, status, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	          RETURNING id`

	err := r.db.QueryRowContext(ctx, query,
		c.Name, c.Phone, c.Email, c.WorkType, c.Budget, c.Details, c.Status,
	).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("insert commission: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListCommissions(ctx context.Context) ([]domain.Commission, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, phone, email, work_type, budget, details, status, created_at
		 FROM commissions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query commissions: %w", err)
	}
	defer rows.Close()

	var commissions []domain.Commission
	for rows.Next() {
		var c domain.Commission
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.WorkType,
			&c.Budget, &c.Details, &c.Status, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan commission: %w", err)
		}
		commissions = append(commissions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return commissions, nil
}

func (r *PostgresRepository) UpdateCommissionStatus(ctx context.Context, id int64, status domain.CommissionStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE commissions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update commission status: %w", err)
	}
	return checkAffected(res, ErrCommissionNotFound)
}

func checkAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRepair(row rowScanner) (*domain.RepairRequest, error) {
	req := &domain.RepairRequest{}
	err := row.Scan(
		&req.ID,
		&req.TicketCode,
		&req.DeviceType,
		&req.DeviceBrand,
		&req.DeviceModel,
		&req.Fault,
		&req.Condition,
		&req.Name,
		&req.Phone,
		&req.Email,
		&req.Stage,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("failed to scan repair request: %w", err)
	}
	return req, nil
}
