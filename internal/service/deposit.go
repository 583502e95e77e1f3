package service

import (
	"context"
	"fmt"
	"strings"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
)

type depositService struct {
	rentalRepo  repository.RentalRepository
	depositRepo repository.DepositRepository
	gearRepo    repository.GearRepository
	notifier    *notifier
}

func NewDepositService(
	rentalRepo repository.RentalRepository,
	depositRepo repository.DepositRepository,
	gearRepo repository.GearRepository,
	noteRepo repository.NotificationRepository,
	identityRepo repository.IdentityRepository,
	emailSvc EmailService,
) DepositService {
	return &depositService{
		rentalRepo:  rentalRepo,
		depositRepo: depositRepo,
		gearRepo:    gearRepo,
		notifier:    newNotifier(noteRepo, identityRepo, emailSvc),
	}
}

func (s *depositService) Charge(ctx context.Context, ownerID, rentalID int64, amountCents int64, reason, notes string) (*domain.DepositTransaction, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, apperr.Authorization("only the listing owner may charge the deposit")
	}
	if reason == "" {
		return nil, apperr.Validation("a charge reason is required")
	}

	tx, err := s.depositRepo.Charge(ctx, rentalID, ownerID, amountCents, reason, notes)
	if err != nil {
		return nil, err
	}

	s.notifyRenter(ctx, rt, "Deposit Charged", "charge", amountCents,
		fmt.Sprintf("%s of your deposit was charged: %s", formatCents(amountCents), reason))
	return tx, nil
}

func (s *depositService) Release(ctx context.Context, ownerID, rentalID int64, notes string) (*domain.DepositTransaction, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, apperr.Authorization("only the listing owner may release the deposit")
	}

	tx, err := s.depositRepo.Release(ctx, rentalID, &ownerID, notes)
	if err != nil {
		return nil, err
	}

	s.notifyRenter(ctx, rt, "Deposit Released", "release", tx.AmountCents,
		fmt.Sprintf("Your deposit of %s was released", formatCents(tx.AmountCents)))
	return tx, nil
}

func (s *depositService) Transactions(ctx context.Context, actorID, rentalID int64) ([]domain.DepositTransaction, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RoleOf(actorID) == domain.RoleNone {
		return nil, apperr.Authorization("you are not a party to this rental")
	}
	return s.depositRepo.ListTransactions(ctx, rentalID)
}

func (s *depositService) Aggregate(ctx context.Context, actorID, rentalID int64) (*domain.DepositAggregate, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RoleOf(actorID) == domain.RoleNone {
		return nil, apperr.Authorization("you are not a party to this rental")
	}
	txs, err := s.depositRepo.ListTransactions(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	agg := domain.ReplayDeposit(rt.DepositCents, txs)
	return &agg, nil
}

func (s *depositService) notifyRenter(ctx context.Context, rt *domain.RentalRequest, title, event string, amountCents int64, message string) {
	gearTitle := "the gear"
	if gear, err := s.gearRepo.GetByID(ctx, rt.GearID); err == nil {
		gearTitle = gear.Title
	}
	s.notifier.notify(rt.RenterID, title, message, rentalAttrs("DEPOSIT_"+strings.ToUpper(event), rt.ID),
		func(ctx context.Context, c *domain.Contact) error {
			return s.notifier.emailSvc.SendDepositNotification(ctx, c.Email, c.Name, gearTitle, event, amountCents)
		})
}
