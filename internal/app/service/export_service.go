package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/dto"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/export"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/storage"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/logger"
)

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var errStorageDisabled = errors.New("document storage is not configured")

// Document is a rendered file ready to be streamed.
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// DocumentStore archives rendered documents.
type DocumentStore interface {
	PutInvoiceDocument(ctx context.Context, userID uint, invoiceNumber, ext, contentType string, data []byte) (*storage.ArchivedDocument, error)
}

type ExportService interface {
	InvoicePDF(ctx context.Context, userID, id uint) (*Document, error)
	InvoiceExcel(ctx context.Context, userID, id uint) (*Document, error)
	InvoiceListExcel(ctx context.Context, userID uint, filter dto.InvoiceFilter) (*Document, error)
	Archive(ctx context.Context, userID, id uint) (*storage.ArchivedDocument, error)
	ImportCatalog(ctx context.Context, userID uint, r io.Reader) (int, error)
	CatalogTemplate() (*Document, error)
}

type exportService struct {
	invoices InvoiceService
	items    ItemService
	store    DocumentStore
	now      Clock
}

// NewExportService wires the renderers. store may be nil when S3 is not
// configured; Archive then fails.
func NewExportService(invoices InvoiceService, items ItemService, store DocumentStore) ExportService {
	return &exportService{
		invoices: invoices,
		items:    items,
		store:    store,
		now:      time.Now,
	}
}

func (s *exportService) InvoicePDF(ctx context.Context, userID, id uint) (*Document, error) {
	invoice, err := s.invoices.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	data, err := export.InvoicePDF(invoice)
	if err != nil {
		logger.Error("Failed to render invoice PDF", err, map[string]interface{}{
			"invoice_id": id,
		})
		return nil, apperrors.NewDownstream(apperrors.InternalServerError, err)
	}
	return &Document{
		Filename:    documentName(invoice.InvoiceNumber, "pdf"),
		ContentType: ContentTypePDF,
		Data:        data,
	}, nil
}

func (s *exportService) InvoiceExcel(ctx context.Context, userID, id uint) (*Document, error) {
	invoice, err := s.invoices.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	data, err := export.InvoiceWorkbook(invoice)
	if err != nil {
		logger.Error("Failed to render invoice workbook", err, map[string]interface{}{
			"invoice_id": id,
		})
		return nil, apperrors.NewDownstream(apperrors.InternalServerError, err)
	}
	return &Document{
		Filename:    documentName(invoice.InvoiceNumber, "xlsx"),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

func (s *exportService) InvoiceListExcel(ctx context.Context, userID uint, filter dto.InvoiceFilter) (*Document, error) {
	invoices, err := s.invoices.ListAll(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	data, err := export.InvoiceListWorkbook(invoices)
	if err != nil {
		return nil, apperrors.NewDownstream(apperrors.InternalServerError, err)
	}

	logger.Info("Invoice list exported", map[string]interface{}{
		"user_id": userID,
		"count":   len(invoices),
	})
	return &Document{
		Filename:    fmt.Sprintf("invoices-%s.xlsx", s.now().Format("20060102")),
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

// Archive renders the PDF, uploads it and returns a presigned link.
func (s *exportService) Archive(ctx context.Context, userID, id uint) (*storage.ArchivedDocument, error) {
	if s.store == nil {
		return nil, apperrors.NewDownstream(apperrors.InternalExternalAPI, errStorageDisabled)
	}

	invoice, err := s.invoices.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	data, err := export.InvoicePDF(invoice)
	if err != nil {
		return nil, apperrors.NewDownstream(apperrors.InternalServerError, err)
	}

	archived, err := s.store.PutInvoiceDocument(ctx, userID, invoice.InvoiceNumber, "pdf", ContentTypePDF, data)
	if err != nil {
		logger.Error("Failed to archive invoice", err, map[string]interface{}{
			"invoice_id": id,
		})
		return nil, apperrors.NewDownstream(apperrors.InternalExternalAPI, err)
	}

	logger.Info("Invoice archived", map[string]interface{}{
		"user_id":    userID,
		"invoice_id": id,
		"key":        archived.Key,
	})
	return archived, nil
}

// ImportCatalog reads an item sheet and stores every row, or none.
func (s *exportService) ImportCatalog(ctx context.Context, userID uint, r io.Reader) (int, error) {
	inputs, err := export.ReadCatalog(r)
	if err != nil {
		return 0, invalidField("file", err.Error())
	}
	return s.items.BulkCreate(ctx, userID, inputs)
}

func (s *exportService) CatalogTemplate() (*Document, error) {
	data, err := export.CatalogTemplate()
	if err != nil {
		return nil, apperrors.NewDownstream(apperrors.InternalServerError, err)
	}
	return &Document{
		Filename:    "items-template.xlsx",
		ContentType: ContentTypeXLSX,
		Data:        data,
	}, nil
}

func documentName(invoiceNumber, ext string) string {
	return fmt.Sprintf("invoice-%s.%s", storage.SafeName(invoiceNumber), ext)
}
