package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"weddinghub/internal/database"
	"weddinghub/internal/domain"
	"weddinghub/internal/middleware"
	"weddinghub/internal/modules/acknowledgment"
	"weddinghub/internal/modules/audit"
	"weddinghub/internal/modules/booking"
	"weddinghub/internal/modules/commission"
	"weddinghub/internal/modules/escrow"
	"weddinghub/internal/notification"
	jwtsvc "weddinghub/internal/pkg/jwt"
	"weddinghub/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type E2ETestSuite struct {
	router     *gin.Engine
	db         *gorm.DB
	jwtService *jwtsvc.Service
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

// stubGateway always succeeds with deterministic references, so tests can
// assert what the workflow persisted.
type stubGateway struct {
	charges   int
	transfers int
}

func (g *stubGateway) AuthorizeCharge(_ context.Context, _ int64, _ string, _ map[string]string) (string, error) {
	g.charges++
	return fmt.Sprintf("ch_e2e_%d", g.charges), nil
}

func (g *stubGateway) Transfer(_ context.Context, _ int64, _, _ string) (string, error) {
	g.transfers++
	return fmt.Sprintf("tr_e2e_%d", g.transfers), nil
}

func (g *stubGateway) Refund(_ context.Context, _ string, _ int64) (string, error) {
	return "rf_e2e_1", nil
}

func setupTestSuite(t *testing.T) *E2ETestSuite {
	t.Helper()

	db, err := database.Connect(filepath.Join(t.TempDir(), "e2e.db"))
	require.NoError(t, err, "Failed to connect to test database")

	require.NoError(t, db.AutoMigrate(
		&domain.Vendor{},
		&domain.Booking{},
		&domain.EscrowRelease{},
		&domain.AuditEntry{},
		&domain.Acknowledgment{},
	))

	log := logrus.New()
	log.SetOutput(io.Discard)

	bookingRepo := repository.NewBookingRepository(db)
	releaseRepo := repository.NewEscrowReleaseRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	ackRepo := repository.NewAcknowledgmentRepository(db)
	vendorRepo := repository.NewVendorRepository(db)

	jwtService := jwtsvc.New("test_secret_key_32_characters_min", 24*time.Hour)
	hub := notification.NewHub()
	t.Cleanup(hub.Close)

	gw := &stubGateway{}
	table := commission.DefaultTable()

	bookingService := booking.NewService(db, bookingRepo, table, gw, vendorRepo, hub, log)
	bookingHandler := booking.NewHandler(bookingService)

	escrowService := escrow.NewService(db, releaseRepo, auditRepo, gw, hub, log)
	escrowHandler := escrow.NewHandler(escrowService)

	auditRecorder := audit.NewRecorder(auditRepo)
	auditHandler := audit.NewHandler(auditRecorder)

	ackService := acknowledgment.NewService(ackRepo, auditRecorder, hub, log)
	ackHandler := acknowledgment.NewHandler(ackService)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(gin.Recovery())

	v1 := r.Group("/api/v1")
	protected := v1.Group("/")
	protected.Use(middleware.JWTAuth(jwtService))
	{
		bookingHandler.RegisterRoutes(protected)
		auditHandler.RegisterRoutes(protected)
		ackHandler.RegisterRoutes(protected)

		escrowOps := protected.Group("/")
		escrowOps.Use(middleware.RequireRole("vendor", "admin"))
		{
			escrowHandler.RegisterRoutes(escrowOps)
		}

		adminOps := protected.Group("/")
		adminOps.Use(middleware.AdminOnly())
		{
			escrowHandler.RegisterAdminRoutes(adminOps)
		}
	}

	return &E2ETestSuite{router: r, db: db, jwtService: jwtService}
}

func (s *E2ETestSuite) token(t *testing.T, userID int64, role, name string) string {
	t.Helper()
	token, err := s.jwtService.GenerateToken(userID, role, name)
	require.NoError(t, err)
	return token
}

func (s *E2ETestSuite) request(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, TestResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var parsed TestResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &parsed), "body: %s", w.Body.String())
	return w, parsed
}

func (s *E2ETestSuite) seedVendor(t *testing.T, tier string) *domain.Vendor {
	t.Helper()
	v := &domain.Vendor{
		UserID:           10,
		BusinessName:     "Rosewood Photography",
		Tier:             tier,
		PayoutAccountRef: "acct_rosewood",
	}
	require.NoError(t, s.db.Create(v).Error)
	return v
}

func (s *E2ETestSuite) createBooking(t *testing.T, clientToken string, vendorID int64) map[string]interface{} {
	t.Helper()
	w, resp := s.request(t, http.MethodPost, "/api/v1/bookings", clientToken, map[string]any{
		"vendor_id":    vendorID,
		"service_type": "photography",
		"event_date":   "2026-06-15T00:00:00Z",
		"gross_amount": 250000,
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	require.True(t, resp.Success)
	b, ok := resp.Data["booking"].(map[string]interface{})
	require.True(t, ok)
	return b
}

func TestBookingLifecycle_EscrowRelease(t *testing.T) {
	s := setupTestSuite(t)
	vendor := s.seedVendor(t, "premium")
	clientToken := s.token(t, 42, "client", "Emma Client")
	vendorToken := s.token(t, 10, "vendor", "Rosewood Photography")

	b := s.createBooking(t, clientToken, vendor.ID)
	bookingID := int64(b["id"].(float64))

	assert.Equal(t, float64(250000), b["gross_amount"])
	assert.Equal(t, float64(12500), b["commission_amount"])
	assert.Equal(t, float64(237500), b["vendor_net_amount"])
	assert.Equal(t, float64(71250), b["deposit_amount"])
	assert.Equal(t, float64(166250), b["escrow_amount"])
	assert.Equal(t, "pending", b["status"])
	assert.Equal(t, "held", b["escrow_status"])

	for _, status := range []string{"accepted", "completed"} {
		w, resp := s.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/status", bookingID), vendorToken,
			map[string]any{"status": status})
		require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
		assert.Equal(t, status, resp.Data["booking"].(map[string]interface{})["status"])
	}

	w, resp := s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/escrow/release", bookingID), vendorToken,
		map[string]any{"reason": "event delivered"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	release := resp.Data["release"].(map[string]interface{})
	assert.Equal(t, float64(166250), release["amount"])
	releaseID := release["id"]

	// Releasing again must be a no-op returning the same record.
	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/escrow/release", bookingID), vendorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, releaseID, resp.Data["release"].(map[string]interface{})["id"])

	w, resp = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/escrow/releases", bookingID), vendorToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp.Data["releases"].([]interface{}), 1)

	w, resp = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d", bookingID), clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	final := resp.Data["booking"].(map[string]interface{})
	assert.Equal(t, "completed", final["status"])
	assert.Equal(t, "released", final["escrow_status"])

	// Full trail, newest first: created, accepted, completed, released.
	w, resp = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/audit", bookingID), clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := resp.Data["entries"].([]interface{})
	require.GreaterOrEqual(t, len(entries), 4)
	assert.Equal(t, "escrow_released", entries[0].(map[string]interface{})["action"])
	assert.Equal(t, "booking_created", entries[len(entries)-1].(map[string]interface{})["action"])
}

func TestEscrowRefundFlow(t *testing.T) {
	s := setupTestSuite(t)
	vendor := s.seedVendor(t, "elite")
	clientToken := s.token(t, 42, "client", "Emma Client")
	adminToken := s.token(t, 1, "admin", "Ops")

	b := s.createBooking(t, clientToken, vendor.ID)
	bookingID := int64(b["id"].(float64))

	w, _ := s.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/status", bookingID), clientToken,
		map[string]any{"status": "cancelled", "reason": "wedding postponed"})
	require.Equal(t, http.StatusOK, w.Code)

	// Refunds are operator-only; vendors cannot return their own escrow.
	vendorToken := s.token(t, 10, "vendor", "Rosewood Photography")
	w, _ = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/escrow/refund", bookingID), vendorToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w, resp := s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/escrow/refund", bookingID), adminToken,
		map[string]any{"reason": "wedding postponed"})
	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "refunded", resp.Data["booking"].(map[string]interface{})["escrow_status"])

	// Refunded escrow can never be released.
	w, resp = s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/escrow/release", bookingID), adminToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ALREADY_FINALIZED", resp.Error.Code)
}

func TestInvalidStatusTransitionRejected(t *testing.T) {
	s := setupTestSuite(t)
	vendor := s.seedVendor(t, "premium")
	clientToken := s.token(t, 42, "client", "Emma Client")

	b := s.createBooking(t, clientToken, vendor.ID)
	bookingID := int64(b["id"].(float64))

	w, resp := s.request(t, http.MethodPatch, fmt.Sprintf("/api/v1/bookings/%d/status", bookingID), clientToken,
		map[string]any{"status": "completed"})
	require.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "INVALID_TRANSITION", resp.Error.Code)
}

func TestEscrowRoutesRequireVendorOrAdmin(t *testing.T) {
	s := setupTestSuite(t)
	vendor := s.seedVendor(t, "premium")
	clientToken := s.token(t, 42, "client", "Emma Client")

	b := s.createBooking(t, clientToken, vendor.ID)
	bookingID := int64(b["id"].(float64))

	w, resp := s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/escrow/release", bookingID), clientToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)
}

func TestRequestsRequireAuthentication(t *testing.T) {
	s := setupTestSuite(t)

	w, resp := s.request(t, http.MethodGet, "/api/v1/bookings", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
}

func TestAcknowledgmentTamperEvidence(t *testing.T) {
	s := setupTestSuite(t)
	vendor := s.seedVendor(t, "premium")
	clientToken := s.token(t, 42, "client", "Emma Client")

	b := s.createBooking(t, clientToken, vendor.ID)
	bookingID := int64(b["id"].(float64))

	w, resp := s.request(t, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/acknowledgments", bookingID), clientToken,
		map[string]any{
			"type":    "timeline_change",
			"method":  "checkbox",
			"content": map[string]any{"ceremony": "16:00", "reception": "18:30"},
		})
	require.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	ack := resp.Data["acknowledgment"].(map[string]interface{})
	ackID := int64(ack["id"].(float64))
	assert.Equal(t, true, ack["cannot_be_disputed"])
	assert.Len(t, ack["content_hash"].(string), 64)

	w, resp = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/acknowledgments/%d/verify", ackID), clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	verification := resp.Data["verification"].(map[string]interface{})
	assert.Equal(t, true, verification["is_valid"])

	require.NoError(t, s.db.Exec(
		"UPDATE acknowledgments SET content = ? WHERE id = ?",
		`{"ceremony":"15:00","reception":"18:30"}`, ackID,
	).Error)

	w, resp = s.request(t, http.MethodGet, fmt.Sprintf("/api/v1/acknowledgments/%d/verify", ackID), clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	verification = resp.Data["verification"].(map[string]interface{})
	assert.Equal(t, false, verification["is_valid"])
	assert.NotEqual(t, verification["stored_hash"], verification["recomputed_hash"])
}

func TestCreateBookingIdempotencyKeyReplay(t *testing.T) {
	s := setupTestSuite(t)
	vendor := s.seedVendor(t, "featured")
	clientToken := s.token(t, 42, "client", "Emma Client")

	body := map[string]any{
		"vendor_id":       vendor.ID,
		"service_type":    "florals",
		"event_date":      "2026-09-05T00:00:00Z",
		"gross_amount":    100000,
		"idempotency_key": "e2e-replay-1",
	}

	w, resp := s.request(t, http.MethodPost, "/api/v1/bookings", clientToken, body)
	require.Equal(t, http.StatusCreated, w.Code)
	firstID := resp.Data["booking"].(map[string]interface{})["id"]

	w, resp = s.request(t, http.MethodPost, "/api/v1/bookings", clientToken, body)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, firstID, resp.Data["booking"].(map[string]interface{})["id"])

	var count int64
	require.NoError(t, s.db.Model(&domain.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
