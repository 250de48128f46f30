package repository

import (
	"context"
	"errors"

	"github.com/corveoperu/cuervo-blanco-web/internal/content/domain"
)

var (
	ErrTicketNotFound     = errors.New("repair ticket not found")
	ErrCommissionNotFound = errors.New("commission not found")
	ErrDuplicateTicket    = errors.New("ticket code already exists")
)

type ContentRepository interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)

	CreateRepairRequest(ctx context.Context, req *domain.RepairRequest) error
	GetRepairByTicket(ctx context.Context, ticketCode string) (*domain.RepairRequest, error)
	ListRepairRequests(ctx context.Context) ([]domain.RepairRequest, error)
	UpdateRepairStage(ctx context.Context, id int64, stage int) error

	CreateCommission(ctx context.Context, c *domain.Commission) error
	ListCommissions(ctx context.Context) ([]domain.Commission, error)
	UpdateCommissionStatus(ctx context.Context, id int64, status domain.CommissionStatus) error
}
