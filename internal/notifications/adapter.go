package notifications

import (
	"context"
	"log/slog"

	"itti/internal/identity"
	"itti/internal/logging"
)

// NewCustomerNotifier adapts a Service to the ingestion pass's new-identity
// callback. It respects the per-event enable flag so operators can silence
// customer announcements without losing error alerts.
type NewCustomerNotifier struct {
	service Service
	enabled bool
	logger  *slog.Logger
}

func NewCustomerNotifierFor(service Service, enabled bool, logger *slog.Logger) *NewCustomerNotifier {
	return &NewCustomerNotifier{
		service: service,
		enabled: enabled,
		logger:  logging.NewComponentLogger(logger, "notifications"),
	}
}

func (n *NewCustomerNotifier) OnNewIdentities(ctx context.Context, mappings map[identity.Identity]string) error {
	n.logger.Info("new customers detected", logging.Int("count", len(mappings)))
	if !n.enabled {
		return nil
	}
	return n.service.NotifyNewCustomers(ctx, mappings)
}
