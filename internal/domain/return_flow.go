package domain

import (
	"time"

	"gearshare-backend/internal/apperr"
)

// ReturnStatus is the sub-state machine nested inside an ACTIVE rental. The
// zero value means the return workflow has not started.
type ReturnStatus string

const (
	ReturnStatusNone                ReturnStatus = ""
	ReturnStatusScheduled           ReturnStatus = "SCHEDULED"
	ReturnStatusMeetingConfirmed    ReturnStatus = "MEETING_CONFIRMED"
	ReturnStatusTimeChangeRequested ReturnStatus = "TIME_CHANGE_REQUESTED"
	ReturnStatusReadyForPickup      ReturnStatus = "READY_FOR_PICKUP"
	ReturnStatusDamageReported      ReturnStatus = "DAMAGE_REPORTED"
	ReturnStatusDisputeOpen         ReturnStatus = "DISPUTE_OPEN"
	ReturnStatusCompleted           ReturnStatus = "COMPLETED"
)

type ActorRole string

const (
	RoleNone   ActorRole = ""
	RoleRenter ActorRole = "renter"
	RoleOwner  ActorRole = "owner"
	RoleAdmin  ActorRole = "admin"
)

// ReturnAction names one transition of the return workflow. The two
// inspection entry points (SubmitInspection, ConfirmReceipt) resolve to
// CompleteReturn or ReportDamage depending on the inspection outcome, so
// every action in the table has exactly one next state.
type ReturnAction string

const (
	ActionSchedule          ReturnAction = "schedule"
	ActionConfirmMeeting    ReturnAction = "confirm_meeting"
	ActionRequestTimeChange ReturnAction = "request_time_change"
	ActionMarkReady         ReturnAction = "mark_ready_for_pickup"
	ActionCompleteReturn    ReturnAction = "complete_return"
	ActionReportDamage      ReturnAction = "report_damage"
	ActionOpenDispute       ReturnAction = "open_dispute"
	ActionResolveDispute    ReturnAction = "resolve_dispute"
)

type transitionKey struct {
	from   ReturnStatus
	action ReturnAction
	role   ActorRole
}

// returnTransitions is the single source of truth for the return workflow.
// An absent entry means the transition is rejected; the two parties see
// different legal actions at the same state through the role component.
var returnTransitions = map[transitionKey]ReturnStatus{
	// Either party proposes a handoff time, from scratch or after a
	// time-change request bounced the schedule back.
	{ReturnStatusNone, ActionSchedule, RoleRenter}:                ReturnStatusScheduled,
	{ReturnStatusNone, ActionSchedule, RoleOwner}:                 ReturnStatusScheduled,
	{ReturnStatusTimeChangeRequested, ActionSchedule, RoleRenter}: ReturnStatusScheduled,
	{ReturnStatusTimeChangeRequested, ActionSchedule, RoleOwner}:  ReturnStatusScheduled,

	// Only the counterparty of the proposer may confirm or reject the
	// proposed time; that half of the rule lives in the service because it
	// depends on who proposed, not only on the role.
	{ReturnStatusScheduled, ActionConfirmMeeting, RoleRenter}:    ReturnStatusMeetingConfirmed,
	{ReturnStatusScheduled, ActionConfirmMeeting, RoleOwner}:     ReturnStatusMeetingConfirmed,
	{ReturnStatusScheduled, ActionRequestTimeChange, RoleRenter}: ReturnStatusTimeChangeRequested,
	{ReturnStatusScheduled, ActionRequestTimeChange, RoleOwner}:  ReturnStatusTimeChangeRequested,

	// Borrower-confirms-first variant: the renter stages the item, the
	// owner inspects on pickup.
	{ReturnStatusMeetingConfirmed, ActionMarkReady, RoleRenter}: ReturnStatusReadyForPickup,

	// Owner-side final inspection, from either variant.
	{ReturnStatusMeetingConfirmed, ActionCompleteReturn, RoleOwner}: ReturnStatusCompleted,
	{ReturnStatusReadyForPickup, ActionCompleteReturn, RoleOwner}:   ReturnStatusCompleted,
	{ReturnStatusMeetingConfirmed, ActionReportDamage, RoleOwner}:   ReturnStatusDamageReported,
	{ReturnStatusReadyForPickup, ActionReportDamage, RoleOwner}:     ReturnStatusDamageReported,

	{ReturnStatusDamageReported, ActionOpenDispute, RoleRenter}: ReturnStatusDisputeOpen,
	{ReturnStatusDamageReported, ActionOpenDispute, RoleOwner}:  ReturnStatusDisputeOpen,

	{ReturnStatusDisputeOpen, ActionResolveDispute, RoleAdmin}: ReturnStatusCompleted,
}

// NextReturnStatus resolves one step of the return workflow. It rejects an
// action that is never legal from the current state with a STATE error, and
// an action that is legal from the state but not for this role with an
// AUTHORIZATION error.
func NextReturnStatus(from ReturnStatus, action ReturnAction, role ActorRole) (ReturnStatus, error) {
	if next, ok := returnTransitions[transitionKey{from, action, role}]; ok {
		return next, nil
	}
	for _, other := range []ActorRole{RoleRenter, RoleOwner, RoleAdmin} {
		if other == role {
			continue
		}
		if _, ok := returnTransitions[transitionKey{from, action, other}]; ok {
			return "", apperr.Newf(apperr.KindAuthorization, "%s may not %s this return", roleName(role), action)
		}
	}
	return "", apperr.Statef("cannot %s while return status is %q", action, string(from))
}

func roleName(role ActorRole) string {
	if role == RoleNone {
		return "a third party"
	}
	return "the " + string(role)
}

// ReturnStateChange carries the fields a return transition writes alongside
// the new sub-state. Nil pointers leave the stored value untouched;
// ClearProposal wipes the proposed time and proposer in one go.
type ReturnStateChange struct {
	Next             ReturnStatus
	ProposedReturnAt *time.Time
	ProposedBy       *int64
	ClearProposal    bool
	InspectionNotes  *string
	DisputeNotes     *string
	DamagePhotos     *[]string
}
