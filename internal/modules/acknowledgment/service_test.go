package acknowledgment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"weddinghub/internal/database"
	"weddinghub/internal/domain"
	"weddinghub/internal/modules/audit"
	"weddinghub/internal/repository"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (*Service, *audit.Recorder, *gorm.DB) {
	t.Helper()
	db, err := database.Connect(filepath.Join(t.TempDir(), "ack_test.db"))
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Acknowledgment{}, &domain.AuditEntry{}))

	log := logrus.New()
	log.SetOutput(io.Discard)

	recorder := audit.NewRecorder(repository.NewAuditRepository(db))
	svc := NewService(repository.NewAcknowledgmentRepository(db), recorder, nil, log)
	return svc, recorder, db
}

func clientActor() domain.Actor {
	return domain.Actor{ID: 42, Role: "client", Name: "Test Client"}
}

func testMeta() domain.RequestMeta {
	return domain.RequestMeta{SourceIP: "203.0.113.9", UserAgent: "go-test"}
}

func ackRequest(content string) AcknowledgeRequest {
	return AcknowledgeRequest{
		Type:    string(domain.AckTimelineChange),
		Content: json.RawMessage(content),
		Method:  "checkbox",
	}
}

func TestService_Acknowledge_StoresCanonicalContentAndHash(t *testing.T) {
	svc, _, db := setupService(t)

	ack, err := svc.Acknowledge(context.Background(), 5, ackRequest(`{"b": 2, "a": 1}`), clientActor(), testMeta())
	require.NoError(t, err)

	// Keys sorted, whitespace dropped.
	assert.Equal(t, `{"a":1,"b":2}`, ack.Content)

	sum := sha256.Sum256([]byte(ack.Content))
	assert.Equal(t, hex.EncodeToString(sum[:]), ack.ContentHash)
	assert.True(t, ack.CannotBeDisputed)
	assert.Equal(t, "203.0.113.9", ack.SourceIP)

	var entries []domain.AuditEntry
	require.NoError(t, db.Where("booking_id = ? AND action = ?", 5, domain.AuditClientAcknowledged).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].InvolvesClient)
}

func TestService_Acknowledge_HashIndependentOfKeyOrder(t *testing.T) {
	svc, _, _ := setupService(t)

	first, err := svc.Acknowledge(context.Background(), 5, ackRequest(`{"venue":"Rosewood Hall","start":"17:00"}`), clientActor(), testMeta())
	require.NoError(t, err)
	second, err := svc.Acknowledge(context.Background(), 5, ackRequest(`{"start":"17:00","venue":"Rosewood Hall"}`), clientActor(), testMeta())
	require.NoError(t, err)

	assert.Equal(t, first.ContentHash, second.ContentHash)
}

func TestService_Acknowledge_RejectsInvalidJSON(t *testing.T) {
	svc, _, db := setupService(t)

	_, err := svc.Acknowledge(context.Background(), 5, ackRequest(`{"open":`), clientActor(), testMeta())
	assert.ErrorIs(t, err, ErrValidation)

	var count int64
	require.NoError(t, db.Model(&domain.Acknowledgment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestService_Acknowledge_FlipsReferencedAuditEntry(t *testing.T) {
	svc, recorder, _ := setupService(t)

	entry, err := recorder.Record(context.Background(), audit.RecordParams{
		BookingID:      5,
		Action:         domain.AuditStatusChanged,
		Actor:          clientActor(),
		Description:    "status changed from pending to accepted",
		InvolvesClient: true,
	})
	require.NoError(t, err)

	req := ackRequest(`{"reviewed":true}`)
	req.AuditEntryID = &entry.ID
	_, err = svc.Acknowledge(context.Background(), 5, req, clientActor(), testMeta())
	require.NoError(t, err)

	reloaded, err := recorder.GetByID(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.ClientAcknowledged)
}

func TestService_Acknowledge_RejectsForeignAuditEntry(t *testing.T) {
	svc, recorder, db := setupService(t)

	entry, err := recorder.Record(context.Background(), audit.RecordParams{
		BookingID: 99,
		Action:    domain.AuditStatusChanged,
		Actor:     clientActor(),
	})
	require.NoError(t, err)

	req := ackRequest(`{"reviewed":true}`)
	req.AuditEntryID = &entry.ID
	_, err = svc.Acknowledge(context.Background(), 5, req, clientActor(), testMeta())
	assert.ErrorIs(t, err, ErrAuditEntryMismatch)

	var count int64
	require.NoError(t, db.Model(&domain.Acknowledgment{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestService_Verify_Valid(t *testing.T) {
	svc, _, _ := setupService(t)

	ack, err := svc.Acknowledge(context.Background(), 5, ackRequest(`{"reviewed":true}`), clientActor(), testMeta())
	require.NoError(t, err)

	result, err := svc.Verify(context.Background(), ack.ID)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, result.StoredHash, result.RecomputedHash)
}

func TestService_Verify_DetectsTampering(t *testing.T) {
	svc, _, db := setupService(t)

	ack, err := svc.Acknowledge(context.Background(), 5, ackRequest(`{"amount":166250}`), clientActor(), testMeta())
	require.NoError(t, err)

	// Alter the stored evidence behind the service's back.
	require.NoError(t, db.Exec(
		"UPDATE acknowledgments SET content = ? WHERE id = ?",
		`{"amount":1}`, ack.ID,
	).Error)

	result, err := svc.Verify(context.Background(), ack.ID)
	require.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Equal(t, ack.ContentHash, result.StoredHash)
	assert.NotEqual(t, result.StoredHash, result.RecomputedHash)

	// Verification reports; it never repairs.
	again, err := svc.Verify(context.Background(), ack.ID)
	require.NoError(t, err)
	assert.False(t, again.IsValid)
}

func TestService_Verify_NotFound(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.Verify(context.Background(), 404)
	assert.ErrorIs(t, err, ErrNotFound)
}
