package googletasks

import (
	"context"
	"time"

	"taskverse/internal/backend"
)

// DefaultPollInterval is how often the poller checks the list for changes.
const DefaultPollInterval = 10 * time.Second

// Poller adapts the store to backend.Notifier. Google Tasks has no push
// channel, so each subscription polls the list's etag and reports a generic
// change whenever it moves; the controller's full reload does the rest.
type Poller struct {
	store    *Store
	interval time.Duration
}

// NewPoller creates a poller over the store. interval <= 0 picks the default.
func NewPoller(store *Store, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{store: store, interval: interval}
}

// Subscribe implements backend.Notifier.
func (p *Poller) Subscribe(ctx context.Context, table string) (*backend.Subscription, error) {
	stop := make(chan struct{})
	sub := backend.NewSubscription(func() { close(stop) })
	go p.poll(ctx, sub, stop)
	return sub, nil
}

func (p *Poller) poll(ctx context.Context, sub *backend.Subscription, stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			etag, err := p.etag(ctx)
			if err != nil {
				continue
			}
			if last != "" && etag != last {
				sub.Publish(backend.Change{Type: backend.ChangeUpdate, Table: backend.TasksTable})
			}
			last = etag
		}
	}
}

func (p *Poller) etag(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()
	resp, err := p.store.svc.Tasks.List(p.store.listID).MaxResults(1).Fields("etag").Context(ctx).Do()
	if err != nil {
		return "", err
	}
	return resp.Etag, nil
}
