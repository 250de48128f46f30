package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	d "github.com/corveoperu/cuervo-blanco-web/internal/checkout/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProofUpload carries the payment screenshot as received from the handler.
type ProofUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

var allowedProofExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// AttachProof uploads the Yape/Plin screenshot for an order the caller owns
// and finishes the checkout session. Returns the public URL of the stored
// image. If completion fails after the upload the session stays in
// PROOF_ATTACHED and the outbox poller finishes it.
func (s *CheckoutServiceImpl) AttachProof(
	ctx context.Context,
	userKey string,
	orderID uuid.UUID,
	upload *ProofUpload) (string, error) {

	ext := strings.ToLower(filepath.Ext(upload.Filename))
	contentType, ok := allowedProofExtensions[ext]
	if !ok {
		return "", ErrUnsupportedImage
	}

	session, err := s.repo.GetSessionByOrderID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if session.UserKey != userKey {
		// Do not reveal that the order exists
		return "", ErrProofNotExpected
	}
	// Only ORDER_CREATED may move to PROOF_ATTACHED; a completed or failed
	// session never accepts another proof
	if !d.CanTransitionTo(session.Status, d.CheckoutStatusProofAttached) {
		return "", ErrProofNotExpected
	}

	key := fmt.Sprintf("vouchers/%s-%d%s", orderID, time.Now().UnixNano(), ext)
	url, err := s.blobs.Upload(ctx, key, contentType, upload.Body)
	if err != nil {
		return "", fmt.Errorf("failed to upload payment proof: %w", err)
	}

	if err := s.orders.SetPaymentProof(ctx, orderID, url); err != nil {
		return "", fmt.Errorf("failed to save payment proof reference: %w", err)
	}

	if err := s.repo.UpdateSessionStatus(ctx, session.ID, d.CheckoutStatusProofAttached); err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]interface{}{
		"checkout_id": session.ID.String(),
		"order_id":    orderID.String(),
		"proof_url":   url,
		"attached_at": time.Now(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal proof payload: %w", err)
	}

	if err := s.repo.CompleteSession(ctx, session.ID, payload); err != nil {
		// Proof is saved; the recovery loop will complete the session
		s.logger.Error("failed to complete checkout session",
			zap.String("checkout_id", session.ID.String()), zap.Error(err))
	}

	return url, nil
}
