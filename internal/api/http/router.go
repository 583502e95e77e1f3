package http

import (
	"net/http"

	"gearshare-backend/internal/security"
	"gearshare-backend/internal/service"
	"gearshare-backend/internal/storage"

	"github.com/gorilla/mux"
)

type RouterDeps struct {
	Tokens       security.TokenManager
	RentalSvc    service.RentalService
	ReturnSvc    service.ReturnService
	DepositSvc   service.DepositService
	ExtensionSvc service.ExtensionService
	PayoutSvc    service.PayoutService
	NoteSvc      service.NotificationService
	Storage      storage.Storage
}

// NewRouter wires the API surface. Everything under /api requires a bearer
// token except the mock storage endpoints, which are authorized by their
// unguessable presigned URLs.
func NewRouter(deps RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	rentals := NewRentalHandler(deps.RentalSvc)
	returns := NewReturnHandler(deps.ReturnSvc)
	deposits := NewDepositHandler(deps.DepositSvc)
	extensions := NewExtensionHandler(deps.ExtensionSvc)
	payouts := NewPayoutHandler(deps.PayoutSvc)
	notes := NewNotificationHandler(deps.NoteSvc)
	photos := NewPhotoHandler(deps.Storage)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	// Mock storage endpoints, reached through presigned URLs.
	router.HandleFunc("/api/uploads/{token}", photos.HandleMockUpload).Methods(http.MethodPut)
	router.HandleFunc("/api/downloads/{hash}", photos.HandleMockDownload).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(AuthMiddleware(deps.Tokens))

	// Rental lifecycle.
	api.HandleFunc("/rentals", rentals.Create).Methods(http.MethodPost)
	api.HandleFunc("/rentals", rentals.ListRentals).Methods(http.MethodGet)
	api.HandleFunc("/lendings", rentals.ListLendings).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}", rentals.Get).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/approve", rentals.Approve).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/decline", rentals.Decline).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/cancel", rentals.Cancel).Methods(http.MethodPost)
	api.HandleFunc("/gear/{gearId}/reserved", rentals.ReservedRanges).Methods(http.MethodGet)
	api.HandleFunc("/gear/{gearId}/availability", rentals.Availability).Methods(http.MethodGet)

	// Return workflow.
	api.HandleFunc("/rentals/{id}/return/schedule", returns.Schedule).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return/confirm-meeting", returns.ConfirmMeeting).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return/request-time-change", returns.RequestDifferentTime).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return/ready-for-pickup", returns.MarkReadyForPickup).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return/inspection", returns.SubmitInspection).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return/confirm-receipt", returns.ConfirmReceipt).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return/dispute", returns.OpenDispute).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/return/resolve-dispute", AdminOnly(returns.ResolveDispute)).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/review", returns.Rate).Methods(http.MethodPost)

	// Deposit escrow.
	api.HandleFunc("/rentals/{id}/deposit", deposits.Aggregate).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/deposit/charge", deposits.Charge).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/deposit/release", deposits.Release).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/deposit/transactions", deposits.Transactions).Methods(http.MethodGet)

	// Extensions.
	api.HandleFunc("/rentals/{id}/extensions", extensions.Request).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/extensions", extensions.ListByRental).Methods(http.MethodGet)
	api.HandleFunc("/extensions/{id}/approve", extensions.Approve).Methods(http.MethodPost)
	api.HandleFunc("/extensions/{id}/reject", extensions.Reject).Methods(http.MethodPost)

	// Payouts.
	api.HandleFunc("/payouts/pending-earnings", payouts.PendingEarnings).Methods(http.MethodGet)
	api.HandleFunc("/payouts", payouts.Create).Methods(http.MethodPost)
	api.HandleFunc("/payouts", payouts.List).Methods(http.MethodGet)
	api.HandleFunc("/payouts/{id}", payouts.Get).Methods(http.MethodGet)
	api.HandleFunc("/payouts/{id}/processing", AdminOnly(payouts.MarkProcessing)).Methods(http.MethodPost)
	api.HandleFunc("/payouts/{id}/paid", AdminOnly(payouts.MarkPaid)).Methods(http.MethodPost)
	api.HandleFunc("/payouts/{id}/failed", AdminOnly(payouts.MarkFailed)).Methods(http.MethodPost)

	// Notifications.
	api.HandleFunc("/notifications", notes.List).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", notes.MarkAsRead).Methods(http.MethodPost)

	// Evidence photos.
	api.HandleFunc("/photos/presign", photos.Presign).Methods(http.MethodPost)
	api.HandleFunc("/photos/download-url", photos.DownloadURL).Methods(http.MethodGet)

	return router
}
