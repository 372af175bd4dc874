package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/repository"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/app/service"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/db"
	apperrors "github.com/ajay-nishad/GST-Invoices-sub001/internal/errors"
	"github.com/ajay-nishad/GST-Invoices-sub001/internal/middleware"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/mailer"
	"github.com/ajay-nishad/GST-Invoices-sub001/pkg/payment/razorpay"
	rediscache "github.com/ajay-nishad/GST-Invoices-sub001/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret     = "test-secret"
	testWebhookSecret = "whsec_test"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return fmt.Sprintf("msg-%d", len(m.sent)), nil
}

type stubGateway struct {
	mu     sync.Mutex
	seq    int
	orders map[string]*razorpay.Order
}

func (g *stubGateway) KeyID() string { return "rzp_test_key" }

func (g *stubGateway) CreateOrder(_ context.Context, req razorpay.CreateOrderRequest) (*razorpay.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	order := &razorpay.Order{
		ID:       fmt.Sprintf("order_%d", g.seq),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	}
	g.orders[order.ID] = order
	return order, nil
}

func (g *stubGateway) FetchOrder(_ context.Context, orderID string) (*razorpay.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if order, ok := g.orders[orderID]; ok {
		return order, nil
	}
	return nil, razorpay.ErrNotFound
}

func (g *stubGateway) CancelSubscription(_ context.Context, id string) (*razorpay.Subscription, error) {
	return &razorpay.Subscription{ID: id, Status: "cancelled"}, nil
}

func (g *stubGateway) VerifyWebhookSignature(body []byte, signature string) error {
	return razorpay.VerifyWebhookSignature(body, signature, testWebhookSecret)
}

// apiEnv is the JSON API mounted over one in-memory database.
type apiEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	mail    *recordingMailer
	gateway *stubGateway
}

func setupAPITest(t *testing.T) *apiEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	cache := rediscache.NewFromClient(rdb, time.Minute)

	env := &apiEnv{
		db:      testDB,
		mail:    &recordingMailer{},
		gateway: &stubGateway{orders: map[string]*razorpay.Order{}},
	}

	userRepo := repository.NewUserRepository(testDB)
	businessRepo := repository.NewBusinessRepository(testDB)
	customerRepo := repository.NewCustomerRepository(testDB)
	itemRepo := repository.NewItemRepository(testDB)
	invoiceRepo := repository.NewInvoiceRepository(testDB)

	authService := service.NewAuthService(testDB, userRepo, repository.NewPasswordResetRepository(testDB), cache, env.mail, service.AuthConfig{
		JWTSecret:     testJWTSecret,
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
		AppURL:        "http://localhost:3000",
	})
	businessService := service.NewBusinessService(testDB, businessRepo)
	customerService := service.NewCustomerService(customerRepo)
	itemService := service.NewItemService(itemRepo)
	invoiceService := service.NewInvoiceService(testDB, invoiceRepo, businessRepo, customerRepo, itemRepo)
	exportService := service.NewExportService(invoiceService, itemService, nil)
	emailService := service.NewEmailService(invoiceService, invoiceRepo, repository.NewEmailLogRepository(testDB), env.mail, 3)
	subscriptionService := service.NewSubscriptionService(repository.NewSubscriptionRepository(testDB), env.gateway, cache)

	authCtrl := NewAuthController(authService, false)
	businessCtrl := NewBusinessController(businessService)
	customerCtrl := NewCustomerController(customerService)
	itemCtrl := NewItemController(itemService, exportService)
	invoiceCtrl := NewInvoiceController(invoiceService, exportService, emailService)
	analyticsCtrl := NewAnalyticsController(invoiceService, exportService)
	subscriptionCtrl := NewSubscriptionController(subscriptionService)
	pageCtrl := NewPageController(authService, invoiceService, subscriptionService)

	authMiddleware := middleware.NewAuthMiddleware(authService)
	auth := authMiddleware.Authenticate()

	router := gin.New()
	router.Use(middleware.NewRouteGate(authMiddleware, subscriptionService).Handle())
	router.GET("/dashboard", pageCtrl.Dashboard)
	router.GET("/analytics", pageCtrl.Analytics)
	router.GET("/settings", pageCtrl.Settings)
	router.GET("/pricing", pageCtrl.Pricing)

	v1 := router.Group("/api/v1")
	v1.POST("/auth/signup", authCtrl.SignUp)
	v1.POST("/auth/signin", authCtrl.SignIn)
	v1.POST("/auth/refresh", authCtrl.Refresh)
	v1.POST("/auth/forgot-password", authCtrl.ForgotPassword)
	v1.POST("/auth/signout", auth, authCtrl.SignOut)
	v1.GET("/auth/me", auth, authCtrl.Me)
	v1.POST("/webhooks/razorpay", subscriptionCtrl.Webhook)

	p := v1.Group("", auth, middleware.RequirePlan(subscriptionService))
	p.GET("/businesses", businessCtrl.List)
	p.POST("/businesses", businessCtrl.Create)
	p.GET("/businesses/:id", businessCtrl.Get)
	p.PUT("/businesses/:id", businessCtrl.Update)
	p.PUT("/businesses/:id/primary", businessCtrl.SetPrimary)
	p.DELETE("/businesses/:id", businessCtrl.Delete)
	p.GET("/customers", customerCtrl.List)
	p.POST("/customers", customerCtrl.Create)
	p.GET("/customers/:id", customerCtrl.Get)
	p.PUT("/customers/:id", customerCtrl.Update)
	p.DELETE("/customers/:id", customerCtrl.Delete)
	p.GET("/items", itemCtrl.List)
	p.POST("/items", itemCtrl.Create)
	p.POST("/items/import", itemCtrl.Import)
	p.GET("/items/import/template", itemCtrl.Template)
	p.GET("/items/:id", itemCtrl.Get)
	p.PUT("/items/:id", itemCtrl.Update)
	p.DELETE("/items/:id", itemCtrl.Delete)
	p.GET("/invoices", invoiceCtrl.List)
	p.POST("/invoices", invoiceCtrl.Create)
	p.GET("/invoices/:id", invoiceCtrl.Get)
	p.PUT("/invoices/:id", invoiceCtrl.Update)
	p.DELETE("/invoices/:id", invoiceCtrl.Delete)
	p.PUT("/invoices/:id/status", invoiceCtrl.UpdateStatus)
	p.GET("/invoices/:id/pdf", invoiceCtrl.PDF)
	p.GET("/invoices/:id/excel", invoiceCtrl.Excel)
	p.POST("/invoices/:id/archive", invoiceCtrl.Archive)
	p.POST("/invoices/:id/email", invoiceCtrl.SendEmail)
	p.GET("/invoices/:id/emails", invoiceCtrl.ListEmails)
	p.POST("/emails/:id/retry", invoiceCtrl.RetryEmail)
	p.GET("/dashboard/summary", analyticsCtrl.Summary)
	p.GET("/analytics", analyticsCtrl.Analytics)
	p.GET("/exports/invoices.xlsx", analyticsCtrl.ExportInvoices)
	p.POST("/subscriptions/checkout", subscriptionCtrl.Checkout)
	p.GET("/subscriptions/status", subscriptionCtrl.Status)
	p.POST("/subscriptions/cancel", subscriptionCtrl.Cancel)
	p.POST("/subscriptions/renew", subscriptionCtrl.Renew)

	env.router = router
	return env
}

// do sends a JSON request. body may be nil, a []byte or any value to marshal.
func (e *apiEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// signUp registers an account and returns its access token.
func (e *apiEnv) signUp(t *testing.T, email string) string {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]interface{}{
		"name":             "Owner",
		"email":            email,
		"password":         "s3cret-pass",
		"confirm_password": "s3cret-pass",
		"accept_terms":     true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Tokens struct {
			AccessToken string `json:"access_token"`
		} `json:"tokens"`
	}
	decode(t, w, &resp)
	return resp.Tokens.AccessToken
}

// createID posts body and returns the id of the created resource under key.
func (e *apiEnv) createID(t *testing.T, path, token, key string, body interface{}) uint {
	t.Helper()
	w := e.do(t, http.MethodPost, path, token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp map[string]struct {
		ID uint `json:"id"`
	}
	decode(t, w, &resp)
	require.NotZero(t, resp[key].ID)
	return resp[key].ID
}

// seedInvoice creates an intra-state business, a customer and one invoice.
func (e *apiEnv) seedInvoice(t *testing.T, token, number string) uint {
	t.Helper()
	businessID := e.createID(t, "/api/v1/businesses", token, "business", businessBody("Rao Traders"))
	customerID := e.createID(t, "/api/v1/customers", token, "customer", map[string]interface{}{
		"name":  "Meera Textiles",
		"state": "Karnataka",
		"email": "accounts@meera.example",
	})
	return e.createID(t, "/api/v1/invoices", token, "invoice", invoiceBody(businessID, customerID, number))
}

func businessBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":       name,
		"gst_number": "29AAPFU0939F1ZV",
		"address":    "12 MG Road",
		"city":       "Bengaluru",
		"state":      "Karnataka",
		"pincode":    "560001",
	}
}

func invoiceBody(businessID, customerID uint, number string) map[string]interface{} {
	return map[string]interface{}{
		"business_id":    businessID,
		"customer_id":    customerID,
		"invoice_number": number,
		"invoice_date":   "2024-04-01",
		"due_date":       "2024-04-30",
		"items": []map[string]interface{}{{
			"name":             "Steel rack",
			"hsn_code":         "9403",
			"quantity":         2,
			"unit_price":       1000,
			"tax_rate":         18,
			"discount_percent": 10,
		}},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apperrors.ErrorResponse
	decode(t, w, &resp)
	return resp.Code
}
