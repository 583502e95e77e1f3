package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/repository"
	"gearshare-backend/internal/utils"
)

type extensionService struct {
	rentalRepo    repository.RentalRepository
	extensionRepo repository.ExtensionRepository
	gearRepo      repository.GearRepository
	notifier      *notifier
}

func NewExtensionService(
	rentalRepo repository.RentalRepository,
	extensionRepo repository.ExtensionRepository,
	gearRepo repository.GearRepository,
	noteRepo repository.NotificationRepository,
	identityRepo repository.IdentityRepository,
	emailSvc EmailService,
) ExtensionService {
	return &extensionService{
		rentalRepo:    rentalRepo,
		extensionRepo: extensionRepo,
		gearRepo:      gearRepo,
		notifier:      newNotifier(noteRepo, identityRepo, emailSvc),
	}
}

func (s *extensionService) Request(ctx context.Context, renterID, rentalID int64, additionalDays int32, notes string) (*domain.ExtensionRequest, error) {
	if additionalDays <= 0 {
		return nil, apperr.Validation("additional days must be positive")
	}

	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RenterID != renterID {
		return nil, apperr.Authorization("only the renter may request an extension")
	}
	if rt.Status != domain.RentalStatusActive {
		return nil, apperr.Statef("extensions require an active rental, status is %s", rt.Status)
	}

	ext := &domain.ExtensionRequest{
		RentalID:       rentalID,
		RequesterID:    renterID,
		AdditionalDays: additionalDays,
		NewEndTime:     rt.EndTime.AddDate(0, 0, int(additionalDays)),
		CostCents:      utils.ExtensionCostCents(rt, additionalDays),
		Status:         domain.ExtensionStatusPending,
		Notes:          notes,
		RequestedAt:    time.Now().UTC(),
	}
	if err := s.extensionRepo.Create(ctx, ext); err != nil {
		return nil, err
	}

	s.notifyExtension(ctx, rt, rt.OwnerID, "Extension Requested", ext.ID,
		fmt.Sprintf("The renter requested %d more days for %s", additionalDays, formatCents(ext.CostCents)))
	return ext, nil
}

func (s *extensionService) Approve(ctx context.Context, ownerID, extensionID int64) (*domain.ExtensionRequest, error) {
	ext, err := s.extensionRepo.GetByID(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	rt, err := s.rentalRepo.GetByID(ctx, ext.RentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, apperr.Authorization("only the listing owner may approve this extension")
	}

	ext, err = s.extensionRepo.Approve(ctx, extensionID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.notifyExtension(ctx, rt, rt.RenterID, "Extension Approved", ext.ID,
		fmt.Sprintf("Your extension was approved, the rental now ends %s", ext.NewEndTime.Format("Jan 2, 2006")))
	return ext, nil
}

func (s *extensionService) Reject(ctx context.Context, ownerID, extensionID int64, notes string) (*domain.ExtensionRequest, error) {
	ext, err := s.extensionRepo.GetByID(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	rt, err := s.rentalRepo.GetByID(ctx, ext.RentalID)
	if err != nil {
		return nil, err
	}
	if rt.OwnerID != ownerID {
		return nil, apperr.Authorization("only the listing owner may reject this extension")
	}

	ext, err = s.extensionRepo.Reject(ctx, extensionID, notes, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	s.notifyExtension(ctx, rt, rt.RenterID, "Extension Rejected", ext.ID,
		"Your extension request was rejected")
	return ext, nil
}

func (s *extensionService) ListByRental(ctx context.Context, actorID, rentalID int64) ([]domain.ExtensionRequest, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RoleOf(actorID) == domain.RoleNone {
		return nil, apperr.Authorization("you are not a party to this rental")
	}
	return s.extensionRepo.ListByRental(ctx, rentalID)
}

func (s *extensionService) notifyExtension(ctx context.Context, rt *domain.RentalRequest, userID int64, title string, extensionID int64, message string) {
	gearTitle := "the gear"
	if gear, err := s.gearRepo.GetByID(ctx, rt.GearID); err == nil {
		gearTitle = gear.Title
	}
	attrs := rentalAttrs("EXTENSION", rt.ID)
	attrs["extension_id"] = strconv.FormatInt(extensionID, 10)
	s.notifier.notify(userID, title, message, attrs,
		func(ctx context.Context, c *domain.Contact) error {
			return s.notifier.emailSvc.SendExtensionNotification(ctx, c.Email, c.Name, gearTitle, message)
		})
}
