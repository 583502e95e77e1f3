package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository"
)

type rentalService struct {
	rentalRepo    repository.RentalRepository
	bookingRepo   repository.BookingRepository
	depositRepo   repository.DepositRepository
	extensionRepo repository.ExtensionRepository
	gearRepo      repository.GearRepository
	notifier      *notifier
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	bookingRepo repository.BookingRepository,
	depositRepo repository.DepositRepository,
	extensionRepo repository.ExtensionRepository,
	gearRepo repository.GearRepository,
	noteRepo repository.NotificationRepository,
	identityRepo repository.IdentityRepository,
	emailSvc EmailService,
) RentalService {
	return &rentalService{
		rentalRepo:    rentalRepo,
		bookingRepo:   bookingRepo,
		depositRepo:   depositRepo,
		extensionRepo: extensionRepo,
		gearRepo:      gearRepo,
		notifier:      newNotifier(noteRepo, identityRepo, emailSvc),
	}
}

func (s *rentalService) Create(ctx context.Context, renterID int64, in CreateRentalInput) (*domain.RentalRequest, error) {
	if !in.EndTime.After(in.StartTime) {
		return nil, apperr.Validation("end time must be after start time")
	}
	if !in.Protection.Valid() {
		return nil, apperr.Validation("protection must be standard or premium")
	}

	gear, err := s.gearRepo.GetByID(ctx, in.GearID)
	if err != nil {
		return nil, err
	}
	if gear.OwnerID == renterID {
		return nil, apperr.Validation("you cannot rent your own gear")
	}

	rt := &domain.RentalRequest{
		RenterID:   renterID,
		GearID:     in.GearID,
		StartTime:  in.StartTime,
		EndTime:    in.EndTime,
		Location:   in.Location,
		Protection: in.Protection,
	}
	// Snapshotting, the overlap check and the availability flip all happen
	// inside the booking transaction.
	if err := s.rentalRepo.CreateReserved(ctx, rt); err != nil {
		return nil, err
	}

	s.notifier.notify(rt.OwnerID, "New Rental Request",
		fmt.Sprintf("You have a new rental request for %s", gear.Title),
		rentalAttrs("RENTAL_REQUESTED", rt.ID),
		func(ctx context.Context, c *domain.Contact) error {
			renter, err := s.notifier.identityRepo.GetContact(ctx, renterID)
			if err != nil {
				return err
			}
			return s.notifier.emailSvc.SendRentalRequestNotification(ctx, c.Email, c.Name, renter.Name, gear.Title)
		})

	return rt, nil
}

func (s *rentalService) Approve(ctx context.Context, ownerID, rentalID int64) (*domain.RentalRequest, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, apperr.Authorization("only the listing owner may approve this request")
	}

	if err := s.rentalRepo.TransitionStatus(ctx, rentalID, domain.RentalStatusPending, domain.RentalStatusActive, false); err != nil {
		return nil, err
	}

	// The hold runs after the approval has committed. A failed hold leaves
	// the deposit PENDING for the escrow ledger to retry; it does not undo
	// the approval.
	if rt.Protection == domain.ProtectionStandard && rt.DepositCents > 0 {
		if _, err := s.depositRepo.Hold(ctx, rentalID, nil); err != nil {
			logger.Error("deposit hold failed after approval", "rental_id", rentalID, "error", err)
		}
	}

	rt, err = s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, rt, "approved")
	return rt, nil
}

func (s *rentalService) Decline(ctx context.Context, ownerID, rentalID int64) (*domain.RentalRequest, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, apperr.Authorization("only the listing owner may decline this request")
	}

	if err := s.rentalRepo.TransitionStatus(ctx, rentalID, domain.RentalStatusPending, domain.RentalStatusDeclined, true); err != nil {
		return nil, err
	}
	rt.Status = domain.RentalStatusDeclined

	s.notifyDecision(ctx, rt, "declined")
	return rt, nil
}

func (s *rentalService) Cancel(ctx context.Context, renterID, rentalID int64) (*domain.RentalRequest, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RenterID != renterID {
		return nil, apperr.Authorization("only the renter may cancel this request")
	}

	if err := s.rentalRepo.TransitionStatus(ctx, rentalID, domain.RentalStatusPending, domain.RentalStatusCancelled, true); err != nil {
		return nil, err
	}
	rt.Status = domain.RentalStatusCancelled

	gear, gearErr := s.gearRepo.GetByID(ctx, rt.GearID)
	title := "your gear"
	if gearErr == nil {
		title = gear.Title
	}
	s.notifier.notify(rt.OwnerID, "Rental Cancelled",
		fmt.Sprintf("The rental request for %s was cancelled by the renter", title),
		rentalAttrs("RENTAL_CANCELLED", rt.ID),
		func(ctx context.Context, c *domain.Contact) error {
			return s.notifier.emailSvc.SendRentalDecisionNotification(ctx, c.Email, c.Name, title, "cancelled")
		})

	return rt, nil
}

func (s *rentalService) Complete(ctx context.Context, rentalID int64) (*domain.RentalRequest, error) {
	err := s.rentalRepo.TransitionStatus(ctx, rentalID, domain.RentalStatusActive, domain.RentalStatusCompleted, true)
	if err != nil && apperr.IsKind(err, apperr.KindState) {
		// Completing twice is a no-op.
		rt, getErr := s.rentalRepo.GetByID(ctx, rentalID)
		if getErr == nil && rt.Status == domain.RentalStatusCompleted {
			return rt, nil
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *rentalService) Get(ctx context.Context, actorID, rentalID int64) (*RentalView, error) {
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
	exts, err := s.extensionRepo.ListByRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	return &RentalView{
		Rental:     rt,
		Deposit:    domain.ReplayDeposit(rt.DepositCents, txs),
		Extensions: exts,
	}, nil
}

func (s *rentalService) ListRentals(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error) {
	return s.rentalRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *rentalService) ListLendings(ctx context.Context, ownerID int64, status string, page, pageSize int32) ([]domain.RentalRequest, int64, error) {
	return s.rentalRepo.ListByOwner(ctx, ownerID, status, page, pageSize)
}

func (s *rentalService) ReservedRanges(ctx context.Context, gearID int64) ([]domain.ReservedRange, error) {
	return s.bookingRepo.ListReservedRanges(ctx, gearID)
}

func (s *rentalService) CheckAvailability(ctx context.Context, gearID int64, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, apperr.Validation("end time must be after start time")
	}
	return s.bookingRepo.IsAvailable(ctx, gearID, start, end)
}

func (s *rentalService) notifyDecision(ctx context.Context, rt *domain.RentalRequest, decision string) {
	gear, err := s.gearRepo.GetByID(ctx, rt.GearID)
	title := "the gear"
	if err == nil {
		title = gear.Title
	}
	s.notifier.notify(rt.RenterID, "Rental "+decision,
		fmt.Sprintf("Your rental request for %s was %s", title, decision),
		rentalAttrs("RENTAL_"+strings.ToUpper(decision), rt.ID),
		func(ctx context.Context, c *domain.Contact) error {
			return s.notifier.emailSvc.SendRentalDecisionNotification(ctx, c.Email, c.Name, title, decision)
		})
}
