package service

import (
	"context"
	"fmt"
	"time"

	"gearshare-backend/internal/apperr"
	"gearshare-backend/internal/domain"
	"gearshare-backend/internal/logger"
	"gearshare-backend/internal/repository"
)

type returnService struct {
	rentalRepo  repository.RentalRepository
	depositRepo repository.DepositRepository
	reviewRepo  repository.ReviewRepository
	gearRepo    repository.GearRepository
	rentalSvc   RentalService
	notifier    *notifier
}

func NewReturnService(
	rentalRepo repository.RentalRepository,
	depositRepo repository.DepositRepository,
	reviewRepo repository.ReviewRepository,
	gearRepo repository.GearRepository,
	rentalSvc RentalService,
	noteRepo repository.NotificationRepository,
	identityRepo repository.IdentityRepository,
	emailSvc EmailService,
) ReturnService {
	return &returnService{
		rentalRepo:  rentalRepo,
		depositRepo: depositRepo,
		reviewRepo:  reviewRepo,
		gearRepo:    gearRepo,
		rentalSvc:   rentalSvc,
		notifier:    newNotifier(noteRepo, identityRepo, emailSvc),
	}
}

// activeRental loads the rental and rejects the call when the return
// workflow cannot run on it.
func (s *returnService) activeRental(ctx context.Context, rentalID int64) (*domain.RentalRequest, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.Status != domain.RentalStatusActive {
		return nil, apperr.Statef("rental is %s, the return workflow requires an active rental", rt.Status)
	}
	return rt, nil
}

func (s *returnService) Schedule(ctx context.Context, actorID, rentalID int64, proposedAt time.Time) (*domain.RentalRequest, error) {
	if proposedAt.IsZero() {
		return nil, apperr.Validation("a proposed return time is required")
	}

	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextReturnStatus(rt.ReturnStatus, domain.ActionSchedule, rt.RoleOf(actorID))
	if err != nil {
		return nil, err
	}

	change := domain.ReturnStateChange{
		Next:             next,
		ProposedReturnAt: &proposedAt,
		ProposedBy:       &actorID,
	}
	if err := s.rentalRepo.SetReturnState(ctx, rentalID, rt.ReturnStatus, change); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, rt, actorID, "Return Scheduled",
		fmt.Sprintf("A return time of %s was proposed", proposedAt.Format(time.RFC1123)),
		"RETURN_SCHEDULED")
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *returnService) ConfirmMeeting(ctx context.Context, actorID, rentalID int64) (*domain.RentalRequest, error) {
	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextReturnStatus(rt.ReturnStatus, domain.ActionConfirmMeeting, rt.RoleOf(actorID))
	if err != nil {
		return nil, err
	}
	if rt.ReturnProposedBy != nil && *rt.ReturnProposedBy == actorID {
		return nil, apperr.Authorization("you cannot confirm your own proposed return time")
	}

	if err := s.rentalRepo.SetReturnState(ctx, rentalID, rt.ReturnStatus, domain.ReturnStateChange{Next: next}); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, rt, actorID, "Return Meeting Confirmed",
		"The proposed return time was confirmed", "RETURN_CONFIRMED")
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *returnService) RequestDifferentTime(ctx context.Context, actorID, rentalID int64) (*domain.RentalRequest, error) {
	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextReturnStatus(rt.ReturnStatus, domain.ActionRequestTimeChange, rt.RoleOf(actorID))
	if err != nil {
		return nil, err
	}
	if rt.ReturnProposedBy != nil && *rt.ReturnProposedBy == actorID {
		return nil, apperr.Authorization("you cannot reject your own proposed return time")
	}

	change := domain.ReturnStateChange{Next: next, ClearProposal: true}
	if err := s.rentalRepo.SetReturnState(ctx, rentalID, rt.ReturnStatus, change); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, rt, actorID, "Return Time Declined",
		"The proposed return time does not work, please propose another", "RETURN_TIME_CHANGE")
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *returnService) MarkReadyForPickup(ctx context.Context, renterID, rentalID int64, notes string) (*domain.RentalRequest, error) {
	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextReturnStatus(rt.ReturnStatus, domain.ActionMarkReady, rt.RoleOf(renterID))
	if err != nil {
		return nil, err
	}

	change := domain.ReturnStateChange{Next: next}
	if notes != "" {
		change.InspectionNotes = &notes
	}
	if err := s.rentalRepo.SetReturnState(ctx, rentalID, rt.ReturnStatus, change); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, rt, renterID, "Gear Ready For Pickup",
		"The gear has been staged at the agreed handoff location", "RETURN_READY")
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *returnService) SubmitInspection(ctx context.Context, actorID, rentalID int64, notes string, hasDamage bool, photos []string) (*domain.RentalRequest, error) {
	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.ReturnStatus != domain.ReturnStatusMeetingConfirmed {
		return nil, apperr.Statef("inspection requires a confirmed meeting, return status is %q", string(rt.ReturnStatus))
	}
	return s.finalInspection(ctx, rt, actorID, hasDamage, notes, photos)
}

func (s *returnService) ConfirmReceipt(ctx context.Context, ownerID, rentalID int64, hasDamage bool, description string, photos []string) (*domain.RentalRequest, error) {
	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	return s.finalInspection(ctx, rt, ownerID, hasDamage, description, photos)
}

// finalInspection is the shared tail of SubmitInspection and ConfirmReceipt:
// a clean inspection completes the rental and releases the deposit, a damage
// report parks the return at DAMAGE_REPORTED until a dispute is opened.
func (s *returnService) finalInspection(ctx context.Context, rt *domain.RentalRequest, actorID int64, hasDamage bool, notes string, photos []string) (*domain.RentalRequest, error) {
	action := domain.ActionCompleteReturn
	if hasDamage {
		action = domain.ActionReportDamage
		if notes == "" {
			return nil, apperr.Validation("a damage description is required")
		}
	}
	next, err := domain.NextReturnStatus(rt.ReturnStatus, action, rt.RoleOf(actorID))
	if err != nil {
		return nil, err
	}

	change := domain.ReturnStateChange{Next: next}
	if notes != "" {
		change.InspectionNotes = &notes
	}
	if hasDamage && len(photos) > 0 {
		change.DamagePhotos = &photos
	}
	if err := s.rentalRepo.SetReturnState(ctx, rt.ID, rt.ReturnStatus, change); err != nil {
		return nil, err
	}

	if hasDamage {
		s.notifyCounterparty(ctx, rt, actorID, "Damage Reported",
			"Damage was reported during the return inspection", "RETURN_DAMAGE_REPORTED")
		return s.rentalRepo.GetByID(ctx, rt.ID)
	}

	s.releaseDepositIfHeld(ctx, rt, "returned in good condition")
	if _, err := s.rentalSvc.Complete(ctx, rt.ID); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, rt, actorID, "Return Completed",
		"The return was completed, thanks for using GearShare", "RETURN_COMPLETED")
	return s.rentalRepo.GetByID(ctx, rt.ID)
}

func (s *returnService) OpenDispute(ctx context.Context, actorID, rentalID int64, description string, photos []string) (*domain.RentalRequest, error) {
	if description == "" {
		return nil, apperr.Validation("a dispute description is required")
	}

	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	next, err := domain.NextReturnStatus(rt.ReturnStatus, domain.ActionOpenDispute, rt.RoleOf(actorID))
	if err != nil {
		return nil, err
	}

	change := domain.ReturnStateChange{Next: next, DisputeNotes: &description}
	if len(photos) > 0 {
		change.DamagePhotos = &photos
	}
	if err := s.rentalRepo.SetReturnState(ctx, rentalID, rt.ReturnStatus, change); err != nil {
		return nil, err
	}

	s.notifyCounterparty(ctx, rt, actorID, "Dispute Opened",
		"A dispute was opened over the reported damage", "RETURN_DISPUTE_OPENED")
	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *returnService) ResolveDispute(ctx context.Context, adminID, rentalID int64, chargeCents int64, notes string) (*domain.RentalRequest, error) {
	rt, err := s.activeRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	// An earlier resolution that settled the ledger and consumed the
	// workflow state but failed before completing the rental is finished
	// here instead of dead-ending.
	if rt.ReturnStatus == domain.ReturnStatusCompleted {
		if _, err := s.rentalSvc.Complete(ctx, rentalID); err != nil {
			return nil, err
		}
		return s.rentalRepo.GetByID(ctx, rentalID)
	}
	next, err := domain.NextReturnStatus(rt.ReturnStatus, domain.ActionResolveDispute, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	if chargeCents < 0 {
		return nil, apperr.Validation("charge amount cannot be negative")
	}
	if chargeCents > 0 {
		held := rt.DepositStatus == domain.DepositStatusHeld || rt.DepositStatus == domain.DepositStatusPartiallyCharged
		if !held {
			return nil, apperr.Statef("no deposit is held, deposit status is %s", rt.DepositStatus)
		}
		if chargeCents > rt.DepositRemaining() {
			return nil, apperr.Newf(apperr.KindValidation, "charge of %d cents exceeds the %d cents remaining on deposit", chargeCents, rt.DepositRemaining())
		}
	}

	// The ledger settles before the workflow state is consumed: if the
	// charge fails, the dispute stays open and the resolution can be
	// retried.
	if chargeCents > 0 {
		if _, err := s.depositRepo.Charge(ctx, rentalID, adminID, chargeCents, "damage settlement", notes); err != nil {
			return nil, err
		}
	} else {
		s.releaseDepositIfHeld(ctx, rt, "dispute resolved in renter's favor")
	}

	change := domain.ReturnStateChange{Next: next}
	if notes != "" {
		change.DisputeNotes = &notes
	}
	if err := s.rentalRepo.SetReturnState(ctx, rentalID, rt.ReturnStatus, change); err != nil {
		return nil, err
	}

	if _, err := s.rentalSvc.Complete(ctx, rentalID); err != nil {
		return nil, err
	}

	outcome := "in the renter's favor"
	if chargeCents > 0 {
		outcome = fmt.Sprintf("with a %s deposit charge", formatCents(chargeCents))
	}
	msg := "The dispute was resolved " + outcome
	attrs := rentalAttrs("RETURN_DISPUTE_RESOLVED", rentalID)
	s.notifyParty(ctx, rt, rt.RenterID, "Dispute Resolved", msg, attrs)
	s.notifyParty(ctx, rt, rt.OwnerID, "Dispute Resolved", msg, attrs)

	return s.rentalRepo.GetByID(ctx, rentalID)
}

func (s *returnService) Rate(ctx context.Context, raterID, rentalID int64, rating int32, review string) (*domain.Review, error) {
	rt, err := s.rentalRepo.GetByID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rt.RoleOf(raterID) == domain.RoleNone {
		return nil, apperr.Authorization("only a party to the rental may rate it")
	}
	if rt.Status != domain.RentalStatusCompleted {
		return nil, apperr.Statef("rating requires a completed rental, status is %s", rt.Status)
	}
	if rating < 1 || rating > 5 {
		return nil, apperr.Validation("rating must be between 1 and 5")
	}

	rv := &domain.Review{
		RentalID: rentalID,
		RaterID:  raterID,
		Rating:   rating,
		Review:   review,
	}
	if err := s.reviewRepo.Create(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}

// releaseDepositIfHeld releases whatever deposit remains held. A failure is
// logged and swallowed: the escrow ledger stays consistent and the release
// can be retried, while the return itself has already committed.
func (s *returnService) releaseDepositIfHeld(ctx context.Context, rt *domain.RentalRequest, notes string) {
	if rt.DepositStatus != domain.DepositStatusHeld && rt.DepositStatus != domain.DepositStatusPartiallyCharged {
		return
	}
	if _, err := s.depositRepo.Release(ctx, rt.ID, nil, notes); err != nil {
		logger.Error("deposit release failed", "rental_id", rt.ID, "error", err)
	}
}

func (s *returnService) notifyCounterparty(ctx context.Context, rt *domain.RentalRequest, actorID int64, title, message, eventType string) {
	target := rt.OwnerID
	if actorID == rt.OwnerID {
		target = rt.RenterID
	}
	s.notifyParty(ctx, rt, target, title, message, rentalAttrs(eventType, rt.ID))
}

func (s *returnService) notifyParty(ctx context.Context, rt *domain.RentalRequest, userID int64, title, message string, attrs map[string]string) {
	gearTitle := "the gear"
	if gear, err := s.gearRepo.GetByID(ctx, rt.GearID); err == nil {
		gearTitle = gear.Title
	}
	s.notifier.notify(userID, title, message, attrs,
		func(ctx context.Context, c *domain.Contact) error {
			return s.notifier.emailSvc.SendReturnUpdateNotification(ctx, c.Email, c.Name, gearTitle, message)
		})
}
