package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/model"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/export"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/monitoring"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/mailer"
	"gorm.io/gorm"
)

const defaultMaxEmailRetries = 3

type EmailService interface {
	SendInvoice(ctx context.Context, userID, invoiceID uint, input dto.SendInvoiceEmailInput) (*model.EmailLog, error)
	Retry(ctx context.Context, userID, logID uint) (*model.EmailLog, error)
	ListLogs(ctx context.Context, userID, invoiceID uint) ([]model.EmailLog, error)
}

type emailService struct {
	invoices    InvoiceService
	invoiceRepo repository.InvoiceRepository
	logRepo     repository.EmailLogRepository
	sender      mailer.Sender
	maxRetries  int
	now         Clock
}

func NewEmailService(
	invoices InvoiceService,
	invoiceRepo repository.InvoiceRepository,
	logRepo repository.EmailLogRepository,
	sender mailer.Sender,
	maxRetries int,
) EmailService {
	if maxRetries <= 0 {
		maxRetries = defaultMaxEmailRetries
	}
	return &emailService{
		invoices:    invoices,
		invoiceRepo: invoiceRepo,
		logRepo:     logRepo,
		sender:      sender,
		maxRetries:  maxRetries,
		now:         time.Now,
	}
}

// SendInvoice emails the invoice PDF and records the attempt. A delivery
// failure is recorded on the returned log rather than returned as an error,
// so the caller can offer a retry.
func (s *emailService) SendInvoice(ctx context.Context, userID, invoiceID uint, input dto.SendInvoiceEmailInput) (*model.EmailLog, error) {
	if err := validate(&input); err != nil {
		return nil, err
	}

	invoice, err := s.invoices.Get(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	recipient := input.To
	if recipient == "" && invoice.Customer != nil {
		recipient = invoice.Customer.Email
	}
	if recipient == "" {
		return nil, invalidField("to", "is required when the customer has no email")
	}

	subject := input.Subject
	if subject == "" {
		subject = fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)
		if invoice.Business != nil {
			subject += " from " + invoice.Business.Name
		}
	}

	log := &model.EmailLog{
		UserID:     userID,
		InvoiceID:  invoice.ID,
		Recipient:  recipient,
		Subject:    subject,
		Message:    input.Message,
		Status:     model.EmailStatusPending,
		MaxRetries: s.maxRetries,
	}
	if err := s.logRepo.Create(ctx, log); err != nil {
		return nil, dbError(err, "email log")
	}

	if err := s.deliver(ctx, invoice, log); err != nil {
		return nil, err
	}
	return log, nil
}

// Retry resends a failed email. Once retry_count has reached max_retries the
// request is refused and the log row is left untouched.
func (s *emailService) Retry(ctx context.Context, userID, logID uint) (*model.EmailLog, error) {
	log, err := s.logRepo.FindByID(ctx, userID, logID)
	if err != nil {
		return nil, dbError(err, "email log")
	}

	if log.Status == model.EmailStatusSent {
		return nil, apperrors.NewConflict(apperrors.ResourceConflict, "email has already been sent")
	}
	if !log.CanRetry() {
		logger.Warn("Email retry limit reached", map[string]interface{}{
			"email_log_id": log.ID,
			"retry_count":  log.RetryCount,
			"max_retries":  log.MaxRetries,
		})
		return nil, retryLimitError(log)
	}

	if err := s.logRepo.IncrementRetry(ctx, userID, log.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// a concurrent retry took the last slot
			return nil, retryLimitError(log)
		}
		return nil, dbError(err, "email log")
	}
	log.RetryCount++

	invoice, err := s.invoices.Get(ctx, userID, log.InvoiceID)
	if err != nil {
		return nil, err
	}

	logger.Info("Retrying invoice email", map[string]interface{}{
		"email_log_id": log.ID,
		"retry_count":  log.RetryCount,
	})
	if err := s.deliver(ctx, invoice, log); err != nil {
		return nil, err
	}
	return log, nil
}

func (s *emailService) ListLogs(ctx context.Context, userID, invoiceID uint) ([]model.EmailLog, error) {
	if _, err := s.invoices.Get(ctx, userID, invoiceID); err != nil {
		return nil, err
	}
	logs, err := s.logRepo.ListByInvoice(ctx, userID, invoiceID)
	if err != nil {
		return nil, dbError(err, "email log")
	}
	return logs, nil
}

// deliver renders and sends the email, then writes the outcome onto log.
// Only storage errors are returned.
func (s *emailService) deliver(ctx context.Context, invoice *model.Invoice, log *model.EmailLog) error {
	sendErr := s.send(ctx, invoice, log)

	if sendErr != nil {
		log.Status = model.EmailStatusFailed
		log.ErrorMessage = truncate(sendErr.Error(), 1000)
		monitoring.InvoiceEmailsTotal.WithLabelValues(string(model.EmailStatusFailed)).Inc()
		logger.Error("Failed to send invoice email", sendErr, map[string]interface{}{
			"email_log_id": log.ID,
			"invoice_id":   invoice.ID,
		})
	} else {
		sentAt := s.now()
		log.Status = model.EmailStatusSent
		log.ErrorMessage = ""
		log.SentAt = &sentAt
		monitoring.InvoiceEmailsTotal.WithLabelValues(string(model.EmailStatusSent)).Inc()
	}

	if err := s.logRepo.UpdateOutcome(ctx, log); err != nil {
		return dbError(err, "email log")
	}

	if sendErr == nil && invoice.Status == model.InvoiceStatusDraft {
		if err := s.invoiceRepo.UpdateStatus(ctx, log.UserID, invoice.ID, model.InvoiceStatusSent); err != nil {
			return dbError(err, "invoice")
		}
		invoice.Status = model.InvoiceStatusSent
	}

	if sendErr == nil {
		logger.Info("Invoice email sent", map[string]interface{}{
			"email_log_id": log.ID,
			"invoice_id":   invoice.ID,
			"provider_id":  log.ProviderID,
		})
	}
	return nil
}

func (s *emailService) send(ctx context.Context, invoice *model.Invoice, log *model.EmailLog) error {
	pdf, err := export.InvoicePDF(invoice)
	if err != nil {
		return err
	}

	data := mailer.InvoiceEmailData{
		InvoiceNumber: invoice.InvoiceNumber,
		InvoiceDate:   invoice.InvoiceDate.Format(dto.DateLayout),
		TotalAmount:   invoice.TotalAmount.StringFixed(2),
		Message:       log.Message,
	}
	if invoice.DueDate != nil {
		data.DueDate = invoice.DueDate.Format(dto.DateLayout)
	}
	if invoice.Customer != nil {
		data.CustomerName = invoice.Customer.Name
	}
	if invoice.Business != nil {
		data.BusinessName = invoice.Business.Name
	}
	body, err := mailer.RenderInvoiceEmail(data)
	if err != nil {
		return err
	}

	providerID, err := s.sender.Send(ctx, mailer.Message{
		To:       log.Recipient,
		Subject:  log.Subject,
		HTMLBody: body,
		Tag:      "invoice",
		Attachments: []mailer.Attachment{{
			Name:        documentName(invoice.InvoiceNumber, "pdf"),
			ContentType: ContentTypePDF,
			Data:        pdf,
		}},
	})
	if err != nil {
		return err
	}
	log.ProviderID = providerID
	return nil
}

func retryLimitError(log *model.EmailLog) error {
	return apperrors.NewRetryLimit(fmt.Sprintf("retry limit reached (%d/%d)", log.RetryCount, log.MaxRetries))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
