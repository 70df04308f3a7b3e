package e2e

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tripmarket/internal/cache"
	"tripmarket/internal/database"
	"tripmarket/internal/middleware"
	"tripmarket/internal/modules/auth"
	"tripmarket/internal/modules/booking"
	"tripmarket/internal/modules/catalog"
	"tripmarket/internal/modules/payment"
	"tripmarket/internal/notification"
	jwtsvc "tripmarket/internal/pkg/jwt"
	"tripmarket/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_e2e_test"

type E2ETestSuite struct {
	router *gin.Engine
	db     *gorm.DB
}

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, repository.Migrate(db))

	userRepo := repository.NewUserRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)

	hub := notification.NewHub()
	t.Cleanup(hub.Close)
	sender := notification.NewSender(hub)

	calCache := cache.NewCalendarCache(nil, time.Minute) // redis off in tests

	authHandler := auth.NewHandler(auth.NewService(userRepo, jwtService))
	catalogHandler := catalog.NewHandler(catalog.NewService(packageRepo))
	bookingHandler := booking.NewHandler(booking.NewService(bookingRepo, packageRepo, sender, calCache))
	paymentHandler := payment.NewHandler(payment.NewService(paymentRepo, bookingRepo, sender, webhookSecret, nil))

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1)
		catalogHandler.RegisterPublicRoutes(v1)
		bookingHandler.RegisterPublicRoutes(v1)
		paymentHandler.RegisterWebhookRoutes(v1)

		protected := v1.Group("/")
		protected.Use(middleware.Auth(jwtService))
		{
			bookingHandler.RegisterRoutes(protected)
			paymentHandler.RegisterRoutes(protected)

			vendor := protected.Group("/")
			vendor.Use(middleware.VendorOnly())
			{
				catalogHandler.RegisterVendorRoutes(vendor)
			}
		}
	}

	return &E2ETestSuite{router: r, db: db}
}

func (s *E2ETestSuite) makeRequest(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp),
		"unparseable response, status=%d body=%s", w.Code, w.Body.String())
	return &resp
}

func (s *E2ETestSuite) register(t *testing.T, email, name string, vendor bool) {
	t.Helper()
	w := s.makeRequest("POST", "/api/v1/auth/register", map[string]interface{}{
		"email":    email,
		"password": "Password123!",
		"name":     name,
		"vendor":   vendor,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, "register failed: %s", w.Body.String())
}

func (s *E2ETestSuite) login(t *testing.T, email string) string {
	t.Helper()
	w := s.makeRequest("POST", "/api/v1/auth/login", map[string]interface{}{
		"email":    email,
		"password": "Password123!",
	}, "")
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	token, _ := resp.Data["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

// createPublishedPackage creates and publishes a slot-based package, returning
// its id.
func (s *E2ETestSuite) createPublishedPackage(t *testing.T, vendorToken string, capacity int, start, end string) int64 {
	t.Helper()
	w := s.makeRequest("POST", "/api/v1/packages", map[string]interface{}{
		"title":       "Serengeti Safari",
		"destination": "Tanzania",
		"price":       1450,
		"capacity":    capacity,
		"start_date":  start,
		"end_date":    end,
	}, vendorToken)
	require.Equal(t, http.StatusCreated, w.Code, "create package failed: %s", w.Body.String())

	resp := parseResponse(t, w)
	pkg := resp.Data["package"].(map[string]interface{})
	id := int64(pkg["id"].(float64))

	w = s.makeRequest("POST", fmt.Sprintf("/api/v1/packages/%d/publish", id), nil, vendorToken)
	require.Equal(t, http.StatusOK, w.Code, "publish failed: %s", w.Body.String())
	return id
}

func signWebhook(body []byte) string {
	mac := hmac.New(sha512.New, []byte(webhookSecret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func futureDay(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

func TestBookingFlow(t *testing.T) {
	suite := setupTestSuite(t)

	suite.register(t, "vendor@test.io", "Savanna Tours", true)
	suite.register(t, "traveler@test.io", "Ada Okafor", false)
	vendorToken := suite.login(t, "vendor@test.io")
	travelerToken := suite.login(t, "traveler@test.io")

	pkgID := suite.createPublishedPackage(t, vendorToken, 10, futureDay(1), futureDay(120))
	bookDate := futureDay(30)

	t.Run("availability before any booking", func(t *testing.T) {
		w := suite.makeRequest("GET",
			fmt.Sprintf("/api/v1/packages/%d/availability?date=%s&quantity=3", pkgID, bookDate), nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		av := resp.Data["availability"].(map[string]interface{})
		assert.True(t, av["available"].(bool))
		assert.Equal(t, float64(10), av["remaining_slots"])
	})

	var bookingID int64
	t.Run("traveler books three slots", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"package_id":   pkgID,
			"quantity":     3,
			"booking_date": bookDate,
		}, travelerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})
		bookingID = int64(b["id"].(float64))
		assert.Equal(t, "pending", b["status"])
		assert.Equal(t, float64(4350), b["total_price"])
	})

	t.Run("availability reflects the booking", func(t *testing.T) {
		w := suite.makeRequest("GET",
			fmt.Sprintf("/api/v1/packages/%d/availability?date=%s&quantity=8", pkgID, bookDate), nil, "")
		require.Equal(t, http.StatusOK, w.Code)

		resp := parseResponse(t, w)
		av := resp.Data["availability"].(map[string]interface{})
		assert.False(t, av["available"].(bool))
		assert.Equal(t, float64(7), av["remaining_slots"])
	})

	t.Run("overbooking is rejected", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"package_id":   pkgID,
			"quantity":     8,
			"booking_date": bookDate,
		}, travelerToken)
		require.Equal(t, http.StatusConflict, w.Code)

		resp := parseResponse(t, w)
		assert.Equal(t, "BOOKING_CONFLICT", resp.Error.Code)
	})

	t.Run("vendor cannot book own package", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"package_id":   pkgID,
			"quantity":     1,
			"booking_date": bookDate,
		}, vendorToken)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	var paymentRef string
	t.Run("traveler opens a payment", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/payments/init", map[string]interface{}{
			"booking_id": bookingID,
		}, travelerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		resp := parseResponse(t, w)
		p := resp.Data["payment"].(map[string]interface{})
		paymentRef = p["reference"].(string)
		assert.Equal(t, float64(4350), p["amount"])
	})

	webhookBody := []byte(fmt.Sprintf(
		`{"event":"charge.success","data":{"reference":"%s","amount":435000,"currency":"USD"}}`, paymentRef))

	t.Run("webhook with a bad signature is rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader(webhookBody))
		req.Header.Set("X-Paystack-Signature", "bogus")
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	postWebhook := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/api/v1/payments/webhook", bytes.NewReader(webhookBody))
		req.Header.Set("X-Paystack-Signature", signWebhook(webhookBody))
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
		return w
	}

	t.Run("successful charge confirms the booking", func(t *testing.T) {
		w := postWebhook()
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = suite.makeRequest("GET", fmt.Sprintf("/api/v1/bookings/%d", bookingID), nil, travelerToken)
		require.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, "confirmed", b["status"])
	})

	t.Run("replayed webhook is a no-op", func(t *testing.T) {
		w := postWebhook()
		require.Equal(t, http.StatusOK, w.Code)

		w = suite.makeRequest("GET", fmt.Sprintf("/api/v1/bookings/%d", bookingID), nil, travelerToken)
		resp := parseResponse(t, w)
		b := resp.Data["booking"].(map[string]interface{})
		assert.Equal(t, "confirmed", b["status"])
	})

	t.Run("traveler cancels, slots are restored", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "cancelled", "reason": "change of plans"}, travelerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = suite.makeRequest("GET",
			fmt.Sprintf("/api/v1/packages/%d/availability?date=%s&quantity=10", pkgID, bookDate), nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		resp := parseResponse(t, w)
		av := resp.Data["availability"].(map[string]interface{})
		assert.True(t, av["available"].(bool))
		assert.Equal(t, float64(10), av["remaining_slots"])
	})

	t.Run("cancelled booking is terminal", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "confirmed"}, vendorToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRoleBoundaries(t *testing.T) {
	suite := setupTestSuite(t)

	suite.register(t, "vendor@test.io", "Savanna Tours", true)
	suite.register(t, "traveler@test.io", "Ada Okafor", false)
	vendorToken := suite.login(t, "vendor@test.io")
	travelerToken := suite.login(t, "traveler@test.io")

	t.Run("traveler cannot create packages", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/packages", map[string]interface{}{
			"title": "Fake", "price": 1,
		}, travelerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("unauthenticated booking is rejected", func(t *testing.T) {
		w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
			"package_id": 1, "quantity": 1, "booking_date": futureDay(5),
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	pkgID := suite.createPublishedPackage(t, vendorToken, 5, futureDay(1), futureDay(60))
	bookDate := futureDay(10)

	w := suite.makeRequest("POST", "/api/v1/bookings", map[string]interface{}{
		"package_id": pkgID, "quantity": 1, "booking_date": bookDate,
	}, travelerToken)
	require.Equal(t, http.StatusCreated, w.Code)
	resp := parseResponse(t, w)
	bookingID := int64(resp.Data["booking"].(map[string]interface{})["id"].(float64))

	t.Run("traveler cannot confirm own booking", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "confirmed"}, travelerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("vendor confirms the booking", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "confirmed"}, vendorToken)
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("vendor cannot refund", func(t *testing.T) {
		w := suite.makeRequest("PATCH", fmt.Sprintf("/api/v1/bookings/%d/status", bookingID),
			map[string]interface{}{"status": "refunded"}, vendorToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("another traveler cannot read the booking", func(t *testing.T) {
		suite.register(t, "other@test.io", "Other", false)
		otherToken := suite.login(t, "other@test.io")

		w := suite.makeRequest("GET", fmt.Sprintf("/api/v1/bookings/%d", bookingID), nil, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

func TestCalendarEndpoint(t *testing.T) {
	suite := setupTestSuite(t)

	suite.register(t, "vendor@test.io", "Savanna Tours", true)
	vendorToken := suite.login(t, "vendor@test.io")
	pkgID := suite.createPublishedPackage(t, vendorToken, 4, futureDay(1), futureDay(7))

	w := suite.makeRequest("GET",
		fmt.Sprintf("/api/v1/packages/%d/calendar?from=%s&to=%s", pkgID, futureDay(1), futureDay(10)), nil, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := parseResponse(t, w)
	days := resp.Data["calendar"].([]interface{})
	require.Len(t, days, 10)

	first := days[0].(map[string]interface{})
	assert.True(t, first["available"].(bool))
	assert.Equal(t, float64(4), first["remaining_slots"])

	last := days[9].(map[string]interface{})
	assert.False(t, last["available"].(bool))
	assert.True(t, last["is_blocked"].(bool))
}
