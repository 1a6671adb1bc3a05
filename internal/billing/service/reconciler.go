package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/thrivekit/thrivekit/internal/billing/domain"
	paymentdomain "github.com/thrivekit/thrivekit/internal/providers/payment/domain"
	pkgdb "github.com/thrivekit/thrivekit/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	db      *gorm.DB
	repo    domain.Repository
	charges paymentdomain.ChargeRetriever
	genID   *snowflake.Node
	log     *zap.Logger
}

func NewService(db *gorm.DB, repo domain.Repository, charges paymentdomain.ChargeRetriever, genID *snowflake.Node, log *zap.Logger) domain.Service {
	return &service{
		db:      db,
		repo:    repo,
		charges: charges,
		genID:   genID,
		log:     log.Named("billing.reconciler"),
	}
}

// Ingest stores the webhook event and applies its side effects inside
// one transaction, so the audit row and the period/notification writes
// commit or roll back as a unit.
func (s *service) Ingest(ctx context.Context, req domain.IngestRequest) (*domain.BillingEvent, error) {
	if strings.TrimSpace(req.EventType) == "" || len(req.Payload) == 0 || req.OccurredAt.IsZero() {
		return nil, domain.ErrInvalidEvent
	}

	// Replays are rejected on the audit log's unique external id
	// before any reconciliation runs. The unique index is the
	// backstop for two deliveries racing past this check.
	if req.ExternalID != "" {
		exists, err := s.repo.EventExistsByExternalID(ctx, req.ExternalID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, domain.ErrDuplicateEvent
		}
	}

	event := &domain.BillingEvent{
		ID:         s.genID.Generate(),
		EventType:  req.EventType,
		Payload:    req.Payload,
		OccurredAt: req.OccurredAt.UTC(),
	}
	if req.ExternalID != "" {
		externalID := req.ExternalID
		event.ExternalID = &externalID
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		switch req.EventType {
		case domain.EventTypeInvoiceCreated:
			period, err := s.createPeriodFromInvoice(ctx, repo, req.Payload)
			if err != nil {
				return err
			}
			setResource(event, domain.ResourceKindBillingPeriod, period.ID)
		case domain.EventTypeInvoicePaymentSucceeded:
			if err := s.recordPayment(ctx, repo, event, req); err != nil {
				return err
			}
		}

		return repo.CreateEvent(ctx, event)
	})
	if err != nil {
		// Two deliveries racing past the pre-check land here; the
		// unique index on external_id lets exactly one through.
		if pkgdb.IsDuplicateKeyErr(err) {
			return nil, domain.ErrDuplicateEvent
		}
		return nil, err
	}

	s.log.Info("billing event ingested",
		zap.String("event_type", event.EventType),
		zap.String("external_id", req.ExternalID),
		zap.String("event_id", event.ID.String()))

	return event, nil
}

// createPeriodFromInvoice handles invoice.created: a new unpaid period
// for the subscription the invoice belongs to.
func (s *service) createPeriodFromInvoice(ctx context.Context, repo domain.Repository, payload map[string]any) (*domain.BillingPeriod, error) {
	invoice, err := invoiceObject(payload)
	if err != nil {
		return nil, err
	}

	externalSubscriptionID := objString(invoice, "subscription")
	externalInvoiceID := objString(invoice, "id")
	periodStart, startOK := objInt64(invoice, "period_start")
	periodEnd, endOK := objInt64(invoice, "period_end")
	if externalSubscriptionID == "" || externalInvoiceID == "" || !startOK || !endOK {
		return nil, fmt.Errorf("%w: invoice.created missing fields", domain.ErrUnrecognizedPayload)
	}

	subscription, err := repo.FindSubscriptionByExternalID(ctx, externalSubscriptionID)
	if err != nil {
		return nil, err
	}

	period := &domain.BillingPeriod{
		ID:                s.genID.Generate(),
		ContractID:        subscription.ContractID,
		SubscriptionID:    subscription.ID,
		PlanID:            subscription.PlanID,
		ExternalInvoiceID: externalInvoiceID,
		StartsAt:          time.Unix(periodStart, 0).UTC(),
		EndsAt:            time.Unix(periodEnd, 0).UTC(),
		Paid:              false,
	}
	if err := repo.CreatePeriod(ctx, period); err != nil {
		return nil, err
	}
	return period, nil
}

// recordPayment handles invoice.payment_succeeded: classify the
// invoice, mark the period paid, and for regular invoices create the
// notification that becomes the event's resource.
func (s *service) recordPayment(ctx context.Context, repo domain.Repository, event *domain.BillingEvent, req domain.IngestRequest) error {
	invoice, err := invoiceObject(req.Payload)
	if err != nil {
		return err
	}

	externalInvoiceID := objString(invoice, "id")
	if externalInvoiceID == "" {
		return fmt.Errorf("%w: payment_succeeded missing invoice id", domain.ErrUnrecognizedPayload)
	}

	period, err := repo.FindPeriodByExternalInvoiceID(ctx, externalInvoiceID)
	if err != nil {
		return err
	}
	if period.Paid {
		return fmt.Errorf("%w: invoice %s", domain.ErrPeriodAlreadyPaid, externalInvoiceID)
	}

	amountDue, ok := objInt64(invoice, "amount_due")
	if !ok {
		return fmt.Errorf("%w: amount_due missing", domain.ErrUnrecognizedPayload)
	}
	chargeID := objString(invoice, "charge")

	switch classifyInvoice(amountDue, chargeID) {
	case invoiceRegular:
		charge, err := s.charges.Retrieve(ctx, chargeID)
		if err != nil {
			return err
		}
		markPaid(period, charge)
		if err := repo.SavePeriod(ctx, period); err != nil {
			return err
		}

		notification := &domain.Notification{
			ID:           s.genID.Generate(),
			EventType:    strings.ReplaceAll(req.EventType, ".", "_"),
			ResourceKind: domain.ResourceKindBillingPeriod,
			ResourceID:   period.ID,
		}
		if err := repo.CreateNotification(ctx, notification); err != nil {
			return err
		}
		setResource(event, domain.ResourceKindNotification, notification.ID)
	case invoiceTrial:
		// Trial invoices are paid silently: zero amount, no charge,
		// no notification.
		amount := float64(0)
		period.Paid = true
		period.Amount = &amount
		if err := repo.SavePeriod(ctx, period); err != nil {
			return err
		}
		setResource(event, domain.ResourceKindBillingPeriod, period.ID)
	default:
		return fmt.Errorf("%w: amount_due=%d charge=%q", domain.ErrUnrecognizedPayload, amountDue, chargeID)
	}

	return nil
}

type invoiceClass int

const (
	invoiceUnknown invoiceClass = iota
	invoiceRegular
	invoiceTrial
)

// classifyInvoice decides between a regular invoice (positive amount,
// charge present) and a trial invoice (zero amount, no charge). Every
// other combination is an unexpected provider payload.
func classifyInvoice(amountDue int64, chargeID string) invoiceClass {
	switch {
	case amountDue > 0 && chargeID != "":
		return invoiceRegular
	case amountDue == 0 && chargeID == "":
		return invoiceTrial
	default:
		return invoiceUnknown
	}
}

func markPaid(period *domain.BillingPeriod, charge *paymentdomain.Charge) {
	amount := float64(charge.Amount) / 100
	chargedAt := time.Unix(charge.Created, 0).UTC()
	chargeRef := charge.ID

	period.Paid = true
	period.Amount = &amount
	period.ChargedAt = &chargedAt
	period.ExternalChargeID = &chargeRef
	period.CardDetails = &domain.CardDetails{
		Brand:    charge.Source.Brand,
		Last4:    charge.Source.Last4,
		ExpMonth: charge.Source.ExpMonth,
		ExpYear:  charge.Source.ExpYear,
	}
}

func setResource(event *domain.BillingEvent, kind domain.ResourceKind, id snowflake.ID) {
	event.ResourceKind = &kind
	event.ResourceID = &id
}

func invoiceObject(payload map[string]any) (map[string]any, error) {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: payload missing data", domain.ErrUnrecognizedPayload)
	}
	object, ok := data["object"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: payload missing data.object", domain.ErrUnrecognizedPayload)
	}
	return object, nil
}

func objString(object map[string]any, key string) string {
	value, ok := object[key].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// objInt64 tolerates the numeric types JSON decoding produces.
func objInt64(object map[string]any, key string) (int64, bool) {
	switch value := object[key].(type) {
	case float64:
		return int64(value), true
	case int64:
		return value, true
	case int:
		return int64(value), true
	default:
		return 0, false
	}
}
