package share

import (
	"context"
	"fmt"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, evt Event) error
}

// queueTarget dispatches events to a cloud queue provider.
type queueTarget struct {
	id       string
	typ      string
	provider string
	sender   queueSender
}

// newQueueTarget creates a queue target for the configured provider.
func newQueueTarget(ctx context.Context, cfg TargetConfig, log Logger) (Target, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("share target %q missing queue configuration", cfg.ID)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)

	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.AWS, log)
	case QueueProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.Queue.SNS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	case QueueProviderAzure:
		err = fmt.Errorf("queue provider %q not implemented", cfg.Queue.Provider)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queueTarget{
		id:       cfg.ID,
		typ:      cfg.Type,
		provider: cfg.Queue.Provider,
		sender:   sender,
	}, nil
}

func (q *queueTarget) ID() string   { return q.id }
func (q *queueTarget) Type() string { return q.typ }

// Share forwards the event to the configured queue provider.
func (q *queueTarget) Share(ctx context.Context, evt Event) error {
	if err := q.sender.Send(ctx, evt); err != nil {
		return fmt.Errorf("queue provider %s send failed: %w", q.provider, err)
	}
	return nil
}
