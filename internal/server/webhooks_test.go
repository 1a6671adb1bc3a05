package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"github.com/thrivekit/thrivekit/internal/config"
	implementationdomain "github.com/thrivekit/thrivekit/internal/implementation/domain"
	"go.uber.org/zap"
)

type billingStub struct {
	event *billingdomain.BillingEvent
	err   error
	last  billingdomain.IngestRequest
}

func (b *billingStub) Ingest(ctx context.Context, req billingdomain.IngestRequest) (*billingdomain.BillingEvent, error) {
	b.last = req
	if b.err != nil {
		return nil, b.err
	}
	return b.event, nil
}

type implStub struct {
	resp *implementationdomain.Response
	err  error
}

func (i *implStub) Create(ctx context.Context, req implementationdomain.CreateRequest) (*implementationdomain.Response, error) {
	return i.resp, i.err
}

func (i *implStub) Update(ctx context.Context, id string, req implementationdomain.UpdateRequest) (*implementationdomain.Response, error) {
	return i.resp, i.err
}

func (i *implStub) GetByID(ctx context.Context, id string) (*implementationdomain.Response, error) {
	return i.resp, i.err
}

func setupRouter(t *testing.T, billingSvc billingdomain.Service, implSvc implementationdomain.Service) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	cfg := config.Config{Environment: "test", HTTPAddr: ":0"}
	log := zap.NewNop()

	engine := NewEngine(cfg, log)
	srv := NewServer(Params{Cfg: cfg, Log: log, BillingSvc: billingSvc, ImplSvc: implSvc})
	RegisterRoutes(engine, srv)
	return engine
}

func postJSON(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestBillingWebhookAccepted(t *testing.T) {
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	kind := billingdomain.ResourceKindBillingPeriod
	resourceID := node.Generate()
	stub := &billingStub{event: &billingdomain.BillingEvent{
		ID:           node.Generate(),
		EventType:    billingdomain.EventTypeInvoiceCreated,
		ResourceKind: &kind,
		ResourceID:   &resourceID,
	}}
	engine := setupRouter(t, stub, &implStub{})

	rec := postJSON(engine, "/v1/webhooks/billing", `{
		"id": "evt_1",
		"type": "invoice.created",
		"created": 1609459200,
		"data": {"object": {"id": "in_1", "subscription": "sub_1", "period_start": 1609459200, "period_end": 1612137600}}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["received"])

	assert.Equal(t, "evt_1", stub.last.ExternalID)
	assert.Equal(t, "invoice.created", stub.last.EventType)
	assert.Equal(t, int64(1609459200), stub.last.OccurredAt.Unix())

	// The reconciler receives the whole envelope, not just the data
	// subtree, and the audit payload keeps the envelope fields.
	assert.Equal(t, "evt_1", stub.last.Payload["id"])
	data, ok := stub.last.Payload["data"].(map[string]any)
	require.True(t, ok)
	object, ok := data["object"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "in_1", object["id"])
}

func TestBillingWebhookDuplicateIsAcknowledged(t *testing.T) {
	stub := &billingStub{err: billingdomain.ErrDuplicateEvent}
	engine := setupRouter(t, stub, &implStub{})

	rec := postJSON(engine, "/v1/webhooks/billing", `{"id": "evt_1", "type": "invoice.created", "data": {"object": {}}}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["duplicate"])
}

func TestBillingWebhookUnrecognizedPayload(t *testing.T) {
	stub := &billingStub{err: billingdomain.ErrUnrecognizedPayload}
	engine := setupRouter(t, stub, &implStub{})

	rec := postJSON(engine, "/v1/webhooks/billing", `{"id": "evt_1", "type": "invoice.payment_succeeded", "data": {"object": {}}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestBillingWebhookAlreadyPaidConflict(t *testing.T) {
	stub := &billingStub{err: billingdomain.ErrPeriodAlreadyPaid}
	engine := setupRouter(t, stub, &implStub{})

	rec := postJSON(engine, "/v1/webhooks/billing", `{"id": "evt_2", "type": "invoice.payment_succeeded", "data": {"object": {}}}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestBillingWebhookMalformedBody(t *testing.T) {
	engine := setupRouter(t, &billingStub{}, &implStub{})

	rec := postJSON(engine, "/v1/webhooks/billing", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateImplementationCodeTaken(t *testing.T) {
	engine := setupRouter(t, &billingStub{}, &implStub{err: implementationdomain.ErrCodeTaken})

	rec := postJSON(engine, "/v1/implementations", `{"company_name": "Acme", "time_zone": "UTC", "plan_code": "standard"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"code"`)
	assert.Contains(t, rec.Body.String(), `"taken"`)
}

func TestGetImplementationNotFound(t *testing.T) {
	engine := setupRouter(t, &billingStub{}, &implStub{err: implementationdomain.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/v1/implementations/123", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateImplementationSuccess(t *testing.T) {
	engine := setupRouter(t, &billingStub{}, &implStub{resp: &implementationdomain.Response{
		ID:          "42",
		CompanyName: "Acme",
		Code:        "acme",
		TimeZone:    "UTC",
		Status:      "pending",
	}})

	rec := postJSON(engine, "/v1/implementations", `{"company_name": "Acme", "time_zone": "UTC", "plan_code": "standard"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"acme"`)
}
