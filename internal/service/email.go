package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type emailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(apiKey, fromEmail, fromName string) EmailService {
	return &emailService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
	}
}

func (s *emailService) send(ctx context.Context, toEmail, toName, subject, body string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendRentalRequestNotification(ctx context.Context, ownerEmail, ownerName, renterName, gearTitle string) error {
	subject := fmt.Sprintf("New rental request: %s", gearTitle)
	body := fmt.Sprintf("Hello %s,\n\n%s requested to rent your %s. Review the request in the app to approve or decline it.\n\nThe GearShare Team", ownerName, renterName, gearTitle)
	return s.send(ctx, ownerEmail, ownerName, subject, body)
}

func (s *emailService) SendRentalDecisionNotification(ctx context.Context, renterEmail, renterName, gearTitle, decision string) error {
	subject := fmt.Sprintf("Rental %s: %s", decision, gearTitle)
	body := fmt.Sprintf("Hello %s,\n\nYour rental request for %s was %s.\n\nThe GearShare Team", renterName, gearTitle, decision)
	return s.send(ctx, renterEmail, renterName, subject, body)
}

func (s *emailService) SendReturnUpdateNotification(ctx context.Context, email, name, gearTitle, update string) error {
	subject := fmt.Sprintf("Return update: %s", gearTitle)
	body := fmt.Sprintf("Hello %s,\n\n%s\n\nThe GearShare Team", name, update)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendDepositNotification(ctx context.Context, renterEmail, renterName, gearTitle, event string, amountCents int64) error {
	subject := fmt.Sprintf("Deposit %s: %s", event, gearTitle)
	body := fmt.Sprintf("Hello %s,\n\nA deposit %s of %s was recorded for your rental of %s.\n\nThe GearShare Team", renterName, event, formatCents(amountCents), gearTitle)
	return s.send(ctx, renterEmail, renterName, subject, body)
}

func (s *emailService) SendExtensionNotification(ctx context.Context, email, name, gearTitle, update string) error {
	subject := fmt.Sprintf("Extension update: %s", gearTitle)
	body := fmt.Sprintf("Hello %s,\n\n%s\n\nThe GearShare Team", name, update)
	return s.send(ctx, email, name, subject, body)
}

func (s *emailService) SendPayoutNotification(ctx context.Context, ownerEmail, ownerName, reference string, netCents int64) error {
	subject := "Your payout is on its way"
	body := fmt.Sprintf("Hello %s,\n\nA payout of %s (reference %s) has been created for your completed rentals.\n\nThe GearShare Team", ownerName, formatCents(netCents), reference)
	return s.send(ctx, ownerEmail, ownerName, subject, body)
}

func formatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}
