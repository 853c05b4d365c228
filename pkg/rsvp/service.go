// Package rsvp holds the guest self-service response rules.
package rsvp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"wedding-site/pkg/database"
	"wedding-site/pkg/models"
)

// ErrInvalidStatus is returned when the submitted status is not attending or declining.
var ErrInvalidStatus = errors.New("invalid rsvp status")

// Submission is the guest-supplied part of an RSVP.
type Submission struct {
	Status           string  `json:"status"`
	PartnerAttending *bool   `json:"partnerAttending"`
	Message          *string `json:"message"`
}

// Store is the subset of the database used by the service.
type Store interface {
	GetGuestByToken(ctx context.Context, token string, withWedding bool) (*models.Guest, error)
	RecordRSVP(ctx context.Context, guestID int64, resp database.RSVPUpdate) error
}

// Service 处理宾客 RSVP
type Service struct {
	store Store
	log   zerolog.Logger
	now   func() time.Time
}

// NewService 创建 RSVP 服务
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{store: store, log: log, now: time.Now}
}

// Lookup 根据 token 返回宾客公开视图
func (s *Service) Lookup(ctx context.Context, token string) (models.GuestProjection, error) {
	g, err := s.store.GetGuestByToken(ctx, token, true)
	if err != nil {
		return models.GuestProjection{}, err
	}
	return g.Project(), nil
}

// SubmitRSVP validates and stores a response. It is a full overwrite of the
// previous answer; only the id and new status are returned.
func (s *Service) SubmitRSVP(ctx context.Context, token string, sub Submission) (*models.RSVPResult, error) {
	status := models.RSVPStatus(sub.Status)
	if !status.IsSubmittable() {
		return nil, ErrInvalidStatus
	}

	guest, err := s.store.GetGuestByToken(ctx, token, false)
	if err != nil {
		return nil, err
	}

	update := database.RSVPUpdate{
		Status:           status,
		PartnerAttending: partnerAnswer(guest, status, sub.PartnerAttending),
		Message:          CleanMessage(sub.Message),
		RespondedAt:      s.now(),
	}

	if err := s.store.RecordRSVP(ctx, guest.ID, update); err != nil {
		return nil, fmt.Errorf("record rsvp for guest %d: %w", guest.ID, err)
	}

	s.log.Info().
		Int64("guest_id", guest.ID).
		Str("status", string(status)).
		Msg("rsvp recorded")

	return &models.RSVPResult{ID: guest.ID, Status: status}, nil
}

// partnerAnswer keeps partnerAttending only where the invitation asked for it:
// a couple invitation with asking enabled, answered as attending.
func partnerAnswer(g *models.Guest, status models.RSVPStatus, given *bool) *bool {
	if given == nil || status != models.RSVPAttending || g.Name2 == "" || !g.AskPartnerAttendance {
		return nil
	}
	v := *given
	return &v
}

// CleanMessage cuts the message to MaxMessageLength runes, then trims it.
// Empty results become nil.
func CleanMessage(msg *string) *string {
	if msg == nil {
		return nil
	}
	runes := []rune(*msg)
	if len(runes) > models.MaxMessageLength {
		runes = runes[:models.MaxMessageLength]
	}
	cleaned := strings.TrimSpace(string(runes))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
