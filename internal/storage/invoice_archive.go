package storage

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// S3Storage archives generated invoice documents and hands out
// time-limited download links.
type S3Storage struct {
	client        *s3.Client
	presigner     *s3.PresignClient
	bucket        string
	baseURL       string
	presignExpiry time.Duration
}

type ArchivedDocument struct {
	Key         string    `json:"key"`
	DownloadURL string    `json:"download_url"`
	FileURL     string    `json:"file_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func NewS3Storage(ctx context.Context, cfg config.S3Config) (*S3Storage, error) {
	var awsCfg aws.Config

	// static credentials when given, otherwise the default chain (env, profile, IAM role)
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		var err error
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
	}

	return newS3Storage(s3.NewFromConfig(awsCfg), cfg.Bucket, cfg.BaseURL, cfg.PresignExpiry), nil
}

func newS3Storage(client *s3.Client, bucket, baseURL string, presignExpiry time.Duration) *S3Storage {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &S3Storage{
		client:        client,
		presigner:     s3.NewPresignClient(client),
		bucket:        bucket,
		baseURL:       baseURL,
		presignExpiry: presignExpiry,
	}
}

// SafeName replaces characters that are unsafe in object keys and file names.
func SafeName(s string) string {
	return unsafeKeyChars.ReplaceAllString(s, "_")
}

// InvoiceKey builds invoices/<user>/<invoice number>-<uuid>.<ext>.
func InvoiceKey(userID uint, invoiceNumber, ext string) string {
	return fmt.Sprintf("invoices/%d/%s-%s.%s", userID, SafeName(invoiceNumber), uuid.New().String(), ext)
}

// PutInvoiceDocument uploads data and returns a presigned GET link for it.
func (s *S3Storage) PutInvoiceDocument(ctx context.Context, userID uint, invoiceNumber, ext, contentType string, data []byte) (*ArchivedDocument, error) {
	key := InvoiceKey(userID, invoiceNumber, ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
		Metadata: map[string]string{
			"user-id":        fmt.Sprintf("%d", userID),
			"invoice-number": invoiceNumber,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", key, err)
	}

	url, expiresAt, err := s.PresignDownload(ctx, key)
	if err != nil {
		return nil, err
	}

	return &ArchivedDocument{
		Key:         key,
		DownloadURL: url,
		FileURL:     s.fileURL(key),
		ExpiresAt:   expiresAt,
	}, nil
}

// PresignDownload returns a GET URL valid for the configured expiry.
func (s *S3Storage) PresignDownload(ctx context.Context, key string) (string, time.Time, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.presignExpiry))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, time.Now().Add(s.presignExpiry), nil
}

func (s *S3Storage) fileURL(key string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/%s", s.baseURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.client.Options().Region, key)
}
