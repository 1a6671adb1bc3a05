package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	billingrepository "github.com/thrivekit/thrivekit/internal/billing/repository"
	billingservice "github.com/thrivekit/thrivekit/internal/billing/service"
	"github.com/thrivekit/thrivekit/internal/config"
	paymentdomain "github.com/thrivekit/thrivekit/internal/providers/payment/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixedCharge struct {
	charge *paymentdomain.Charge
}

func (f fixedCharge) Retrieve(ctx context.Context, chargeID string) (*paymentdomain.Charge, error) {
	return f.charge, nil
}

// setupBillingFlow wires the real reconciler behind the gin route, so
// the request path from envelope decoding down to the period rows is
// exercised without stubs in between.
func setupBillingFlow(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:billing_flow_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&billingdomain.Plan{},
		&billingdomain.Subscription{},
		&billingdomain.BillingPeriod{},
		&billingdomain.BillingEvent{},
		&billingdomain.Notification{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	externalID := "sub_123"
	contractID := node.Generate()
	require.NoError(t, db.Create(&billingdomain.Subscription{
		ID:         node.Generate(),
		ContractID: &contractID,
		PlanID:     node.Generate(),
		ExternalID: &externalID,
		Status:     billingdomain.SubscriptionStatusActive,
	}).Error)

	charges := fixedCharge{charge: &paymentdomain.Charge{
		ID:      "ch_789",
		Amount:  2000,
		Created: 1609545600,
		Source:  paymentdomain.CardSource{Brand: "Visa", Last4: "4242", ExpMonth: 12, ExpYear: 2027},
	}}

	log := zap.NewNop()
	billingSvc := billingservice.NewService(db, billingrepository.New(db), charges, node, log)

	cfg := config.Config{Environment: "test", HTTPAddr: ":0"}
	engine := NewEngine(cfg, log)
	srv := NewServer(Params{Cfg: cfg, Log: log, BillingSvc: billingSvc, ImplSvc: &implStub{}})
	RegisterRoutes(engine, srv)
	return engine, db
}

const invoiceCreatedEnvelope = `{
	"id": "evt_created_1",
	"type": "invoice.created",
	"created": 1609459200,
	"data": {"object": {
		"id": "in_123",
		"subscription": "sub_123",
		"period_start": 1609459200,
		"period_end": 1612137600
	}}
}`

const paymentSucceededEnvelope = `{
	"id": "evt_paid_1",
	"type": "invoice.payment_succeeded",
	"created": 1609545600,
	"data": {"object": {
		"id": "in_123",
		"amount_due": 2000,
		"charge": "ch_789"
	}}
}`

func TestWebhookDeliveryCreatesPeriod(t *testing.T) {
	engine, db := setupBillingFlow(t)

	rec := postJSON(engine, "/v1/webhooks/billing", invoiceCreatedEnvelope)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var periods []billingdomain.BillingPeriod
	require.NoError(t, db.Find(&periods).Error)
	require.Len(t, periods, 1)
	assert.Equal(t, "in_123", periods[0].ExternalInvoiceID)
	assert.False(t, periods[0].Paid)

	var event billingdomain.BillingEvent
	require.NoError(t, db.Where("external_id = ?", "evt_created_1").First(&event).Error)
	assert.Equal(t, "invoice.created", event.EventType)
	// Audit payload keeps the full envelope.
	assert.Equal(t, "evt_created_1", event.Payload["id"])
	assert.Contains(t, event.Payload, "data")
}

func TestWebhookDeliveryPaysPeriod(t *testing.T) {
	engine, db := setupBillingFlow(t)

	rec := postJSON(engine, "/v1/webhooks/billing", invoiceCreatedEnvelope)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = postJSON(engine, "/v1/webhooks/billing", paymentSucceededEnvelope)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var period billingdomain.BillingPeriod
	require.NoError(t, db.Where("external_invoice_id = ?", "in_123").First(&period).Error)
	assert.True(t, period.Paid)
	require.NotNil(t, period.Amount)
	assert.Equal(t, 20.0, *period.Amount)
	require.NotNil(t, period.CardDetails)
	assert.Equal(t, "4242", period.CardDetails.Last4)

	var notifications int64
	require.NoError(t, db.Model(&billingdomain.Notification{}).Count(&notifications).Error)
	assert.Equal(t, int64(1), notifications)
}

func TestWebhookDeliveryReplayAcknowledged(t *testing.T) {
	engine, db := setupBillingFlow(t)

	rec := postJSON(engine, "/v1/webhooks/billing", invoiceCreatedEnvelope)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = postJSON(engine, "/v1/webhooks/billing", invoiceCreatedEnvelope)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"duplicate":true`)

	var periods int64
	require.NoError(t, db.Model(&billingdomain.BillingPeriod{}).Count(&periods).Error)
	assert.Equal(t, int64(1), periods)
}
