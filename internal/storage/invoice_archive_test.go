package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T, handler http.HandlerFunc) *S3Storage {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := s3.NewFromConfig(aws.Config{
		Region:      "ap-south-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDTEST", "SECRETTEST", ""),
	}, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(srv.URL)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return newS3Storage(client, "gst-invoices", "", 10*time.Minute)
}

func TestInvoiceKey(t *testing.T) {
	key := InvoiceKey(42, "INV/2026 #7", "pdf")
	assert.True(t, strings.HasPrefix(key, "invoices/42/INV_2026_7-"), key)
	assert.True(t, strings.HasSuffix(key, ".pdf"))
}

func TestPutInvoiceDocument(t *testing.T) {
	var gotPath, gotBody, gotType string
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	})

	doc, err := s.PutInvoiceDocument(context.Background(), 7, "INV-001", "pdf", "application/pdf", []byte("%PDF-1.3"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/gst-invoices/invoices/7/INV-001-"), gotPath)
	assert.Equal(t, "application/pdf", gotType)
	assert.Equal(t, "%PDF-1.3", gotBody)

	assert.Contains(t, doc.DownloadURL, "X-Amz-Signature=")
	assert.Contains(t, doc.DownloadURL, doc.Key)
	assert.Equal(t, "https://gst-invoices.s3.ap-south-1.amazonaws.com/"+doc.Key, doc.FileURL)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), doc.ExpiresAt, time.Minute)
}

func TestPutInvoiceDocument_UploadError(t *testing.T) {
	s := newTestStorage(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`<Error><Code>AccessDenied</Code><Message>denied</Message></Error>`))
	})

	_, err := s.PutInvoiceDocument(context.Background(), 7, "INV-001", "pdf", "application/pdf", []byte("x"))
	assert.Error(t, err)
}
