package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/thrivekit/thrivekit/internal/billing/domain"
	"github.com/thrivekit/thrivekit/internal/observability/metrics"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// HandleBillingWebhook ingests one provider delivery. The decoded body
// is stored verbatim as the audit payload; only the envelope's id, type
// and created fields are lifted out for the ingest request, so the
// reconciler sees the same document the provider sent.
func (s *Server) HandleBillingWebhook(c *gin.Context) {
	var payload datatypes.JSONMap
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	externalID, _ := payload["id"].(string)
	eventType, _ := payload["type"].(string)

	occurredAt := time.Now().UTC()
	if created, ok := payload["created"].(float64); ok && created > 0 {
		occurredAt = time.Unix(int64(created), 0).UTC()
	}

	event, err := s.billingSvc.Ingest(c.Request.Context(), billingdomain.IngestRequest{
		ExternalID: externalID,
		EventType:  eventType,
		Payload:    payload,
		OccurredAt: occurredAt,
	})
	if err != nil {
		// A replayed delivery is acknowledged, not retried. Providers
		// treat anything but 2xx as a delivery failure and keep
		// resending.
		if errors.Is(err, billingdomain.ErrDuplicateEvent) {
			metrics.WebhookEventsTotal.WithLabelValues(eventType, metrics.OutcomeDuplicate).Inc()
			c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
			return
		}

		metrics.WebhookEventsTotal.WithLabelValues(eventType, metrics.OutcomeFailed).Inc()
		s.log.Warn("webhook ingestion failed",
			zap.String("event_id", externalID),
			zap.String("event_type", eventType),
			zap.Error(err))
		AbortWithError(c, err)
		return
	}

	outcome := metrics.OutcomeProcessed
	if event.ResourceKind == nil {
		outcome = metrics.OutcomeIgnored
	}
	metrics.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()

	c.JSON(http.StatusOK, gin.H{"received": true, "event_id": event.ID.String()})
}
