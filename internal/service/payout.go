package service

import (
	"context"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository"
	"gearshare-backend/internal/utils"
)

type payoutService struct {
	payoutRepo        repository.PayoutRepository
	identityRepo      repository.IdentityRepository
	emailSvc          EmailService
	feeRate           float64
	minimumBatchCents int64
	notifier          *notifier
}

func NewPayoutService(
	payoutRepo repository.PayoutRepository,
	noteRepo repository.NotificationRepository,
	identityRepo repository.IdentityRepository,
	emailSvc EmailService,
	feeRate float64,
	minimumBatchCents int64,
) PayoutService {
	return &payoutService{
		payoutRepo:        payoutRepo,
		identityRepo:      identityRepo,
		emailSvc:          emailSvc,
		feeRate:           feeRate,
		minimumBatchCents: minimumBatchCents,
		notifier:          newNotifier(noteRepo, identityRepo, emailSvc),
	}
}

func (s *payoutService) PendingEarnings(ctx context.Context, ownerID int64) (int64, int32, error) {
	rentals, err := s.payoutRepo.ListEligible(ctx, ownerID)
	if err != nil {
		return 0, 0, err
	}
	var total int64
	for i := range rentals {
		total += utils.EarningsCents(&rentals[i])
	}
	return total, int32(len(rentals)), nil
}

func (s *payoutService) CreatePayout(ctx context.Context, ownerID int64) (*domain.Payout, error) {
	p, err := s.payoutRepo.CreateForOwner(ctx, ownerID, s.feeRate, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.notifier.notify(ownerID, "Payout Created",
		"A payout of "+formatCents(p.NetCents)+" has been created for your completed rentals",
		map[string]string{"type": "PAYOUT_CREATED", "payout_reference": p.Reference},
		nil)
	return p, nil
}

func (s *payoutService) MarkProcessing(ctx context.Context, payoutID int64) error {
	return s.payoutRepo.TransitionStatus(ctx, payoutID, domain.PayoutStatusPending, domain.PayoutStatusProcessing, nil)
}

func (s *payoutService) MarkPaid(ctx context.Context, payoutID int64) error {
	now := time.Now().UTC()
	return s.payoutRepo.TransitionStatus(ctx, payoutID, domain.PayoutStatusProcessing, domain.PayoutStatusPaid, &now)
}

func (s *payoutService) MarkFailed(ctx context.Context, payoutID int64) error {
	return s.payoutRepo.TransitionStatus(ctx, payoutID, domain.PayoutStatusProcessing, domain.PayoutStatusFailed, nil)
}

func (s *payoutService) Get(ctx context.Context, ownerID, payoutID int64) (*domain.Payout, error) {
	p, err := s.payoutRepo.GetByID(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, apperr.Authorization("this payout belongs to another owner")
	}
	return p, nil
}

func (s *payoutService) List(ctx context.Context, ownerID int64, page, pageSize int32) ([]domain.Payout, int64, error) {
	return s.payoutRepo.ListByOwner(ctx, ownerID, page, pageSize)
}

// BatchEligibleOwners runs the nightly settlement sweep: one payout per
// owner whose pending earnings meet the configured minimum. Owners below
// the minimum wait for the next run.
func (s *payoutService) BatchEligibleOwners(ctx context.Context) (int, error) {
	owners, err := s.payoutRepo.ListOwnersWithEligible(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, ownerID := range owners {
		total, _, err := s.PendingEarnings(ctx, ownerID)
		if err != nil {
			logger.Error("failed to compute pending earnings", "owner_id", ownerID, "error", err)
			continue
		}
		if total < s.minimumBatchCents {
			continue
		}
		if _, err := s.CreatePayout(ctx, ownerID); err != nil {
			if apperr.IsKind(err, apperr.KindNoEarnings) {
				// A concurrent batch got there first.
				continue
			}
			logger.Error("failed to create payout", "owner_id", ownerID, "error", err)
			continue
		}
		created++
	}
	return created, nil
}

func (s *payoutService) SendPendingNotices(ctx context.Context) (int, error) {
	payouts, err := s.payoutRepo.ListUnnotified(ctx)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range payouts {
		p := &payouts[i]
		contact, err := s.identityRepo.GetContact(ctx, p.OwnerID)
		if err != nil {
			logger.Warn("failed to resolve payout contact", "payout_id", p.ID, "owner_id", p.OwnerID, "error", err)
			continue
		}
		if err := s.emailSvc.SendPayoutNotification(ctx, contact.Email, contact.Name, p.Reference, p.NetCents); err != nil {
			logger.Warn("failed to send payout notice", "payout_id", p.ID, "error", err)
			continue
		}
		if err := s.payoutRepo.MarkNotified(ctx, p.ID, time.Now().UTC()); err != nil {
			logger.Warn("failed to mark payout notified", "payout_id", p.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}
