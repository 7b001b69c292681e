package external

import (
	"log/slog"
	"net/http"

	"omc/internal/config"
)

// DeliveryClientFactory builds the delivery client for one organization.
// It is called at most once per organization by the dispatcher.
type DeliveryClientFactory func(organization string) (DeliveryClient, error)

// NewDeliveryClientFactory returns a factory appropriate for cfg. In test
// mode or local environments every organization shares one stub client;
// otherwise each organization gets a NotifyClient signed with its own key.
func NewDeliveryClientFactory(cfg *config.Config, logger *slog.Logger) (DeliveryClientFactory, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.IsTestMode || cfg.Environment == "local" {
		logger.Info("initializing delivery clients in STUB mode",
			"is_test_mode", cfg.IsTestMode,
			"environment", cfg.Environment,
		)
		stub := NewStubDeliveryClient(logger.With("mode", "stub"))
		return func(string) (DeliveryClient, error) { return stub, nil }, nil
	}

	keys, err := cfg.Notify.OrganizationKeyMap()
	if err != nil {
		return nil, err
	}

	logger.Info("initializing delivery clients in PRODUCTION mode",
		"environment", cfg.Environment,
		"organization_keys", len(keys),
	)
	httpClient := &http.Client{Timeout: cfg.Notify.Timeout}

	return func(organization string) (DeliveryClient, error) {
		client, err := NewNotifyClient(httpClient, NotifyClientConfig{
			APIKey:  cfg.Notify.KeyFor(keys, organization).Unmask(),
			BaseURL: cfg.Notify.BaseURL,
			Logger:  logger.With("client", "notifynl", "organization", organization),
		})
		if err != nil {
			return nil, err
		}
		return client, nil
	}, nil
}
