package gateway

import (
	"context"
	"fmt"

	"github.com/piresc/ridertrack/internal/pkg/constants"
	"github.com/piresc/ridertrack/internal/pkg/models"
	natspkg "github.com/piresc/ridertrack/internal/pkg/nats"
	"github.com/piresc/ridertrack/internal/pkg/newrelic"
)

// NATSGateway publishes scored events on constants.SubjectLocationScored
type NATSGateway struct {
	client *natspkg.Client
}

// NewNATSGateway creates a tracking gateway. A nil client disables publishing.
func NewNATSGateway(client *natspkg.Client) *NATSGateway {
	return &NATSGateway{client: client}
}

// Enabled reports whether events are actually published
func (g *NATSGateway) Enabled() bool {
	return g.client != nil
}

// PublishScoredEvent publishes event as JSON
func (g *NATSGateway) PublishScoredEvent(ctx context.Context, event *models.LocationEvent) error {
	if g.client == nil {
		return nil
	}
	return newrelic.WithSegment(ctx, "nats.publish."+constants.SubjectLocationScored, func() error {
		if err := g.client.PublishJSON(constants.SubjectLocationScored, event); err != nil {
			return fmt.Errorf("failed to publish scored event: %w", err)
		}
		return nil
	})
}
