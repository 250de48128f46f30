package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"github.com/corveoperu/cuervo-blanco-web/internal/content/domain"
	"github.com/corveoperu/cuervo-blanco-web/internal/content/repository"
	"go.uber.org/zap"
)

var (
	ErrMissingFields     = errors.New("required fields are missing")
	ErrTicketDelivered   = errors.New("ticket already delivered, no further stages")
	ErrInvalidCommission = errors.New("unknown commission status")
)

// ticketAlphabet has no 0/O or 1/I, codes get read over the phone.
const ticketAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
const ticketLength = 6

type ContentService struct {
	repo   repository.ContentRepository
	logger *zap.Logger
}

func NewContentService(repo repository.ContentRepository, logger *zap.Logger) *ContentService {
	return &ContentService{repo: repo, logger: logger}
}

// ProjectsByLevel returns the academy library grouped for display, one slice
// per level in iniciado→maestro order. Levels with no projects get an empty
// slice, not a missing key.
func (s *ContentService) ProjectsByLevel(ctx context.Context) (map[domain.ProjectLevel][]domain.Project, error) {
	projects, err := s.repo.ListProjects(ctx)
	if err != nil {
		return nil, err
	}

	grouped := make(map[domain.ProjectLevel][]domain.Project, len(domain.Levels))
	for _, level := range domain.Levels {
		grouped[level] = []domain.Project{}
	}
	for _, p := range projects {
		grouped[p.Level] = append(grouped[p.Level], p)
	}
	return grouped, nil
}

// SubmitRepairRequest persists the wizard payload and returns it with a
// fresh ticket code. The code is retried on the unlikely collision.
func (s *ContentService) SubmitRepairRequest(ctx context.Context, req *domain.RepairRequest) (*domain.RepairRequest, error) {
	if anyEmpty(req.DeviceType, req.Fault, req.Name, req.Phone) {
		return nil, ErrMissingFields
	}
	req.Stage = 0

	for attempt := 0; attempt < 3; attempt++ {
		code, err := newTicketCode()
		if err != nil {
			return nil, err
		}
		req.TicketCode = code

		err = s.repo.CreateRepairRequest(ctx, req)
		if err == nil {
			s.logger.Info("repair request submitted", zap.String("ticket_code", req.TicketCode))
			return req, nil
		}
		if !errors.Is(err, repository.ErrDuplicateTicket) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("failed to allocate a unique ticket code")
}

// TrackRepair looks a ticket up by code, case-insensitively.
func (s *ContentService) TrackRepair(ctx context.Context, ticketCode string) (*domain.RepairRequest, error) {
	code := strings.ToUpper(strings.TrimSpace(ticketCode))
	return s.repo.GetRepairByTicket(ctx, code)
}

func (s *ContentService) ListRepairRequests(ctx context.Context) ([]domain.RepairRequest, error) {
	return s.repo.ListRepairRequests(ctx)
}

// AdvanceRepairStage moves a ticket one step along the timeline.
func (s *ContentService) AdvanceRepairStage(ctx context.Context, ticketCode string) (*domain.RepairRequest, error) {
	req, err := s.TrackRepair(ctx, ticketCode)
	if err != nil {
		return nil, err
	}
	if req.Delivered() {
		return nil, ErrTicketDelivered
	}

	req.Stage++
	if err := s.repo.UpdateRepairStage(ctx, req.ID, req.Stage); err != nil {
		return nil, err
	}

	s.logger.Info("repair stage advanced",
		zap.String("ticket_code", req.TicketCode),
		zap.String("stage", string(req.StageName())))
	return req, nil
}

// SubmitCommission records an encargo from the intake form.
func (s *ContentService) SubmitCommission(ctx context.Context, c *domain.Commission) error {
	if anyEmpty(c.Name, c.Phone, c.WorkType) {
		return ErrMissingFields
	}
	c.Status = domain.CommissionNew
	if err := s.repo.CreateCommission(ctx, c); err != nil {
		return err
	}
	s.logger.Info("commission submitted", zap.Int64("commission_id", c.ID))
	return nil
}

func (s *ContentService) ListCommissions(ctx context.Context) ([]domain.Commission, error) {
	return s.repo.ListCommissions(ctx)
}

func (s *ContentService) UpdateCommissionStatus(ctx context.Context, id int64, status domain.CommissionStatus) error {
	if !domain.ValidCommissionStatus(status) {
		return ErrInvalidCommission
	}
	return s.repo.UpdateCommissionStatus(ctx, id, status)
}

func anyEmpty(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}

func newTicketCode() (string, error) {
	buf := make([]byte, ticketLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate ticket code: %w", err)
	}
	code := make([]byte, ticketLength)
	for i, b := range buf {
		code[i] = ticketAlphabet[int(b)%len(ticketAlphabet)]
	}
	return "CRV-" + string(code), nil
}
