package messaging

import (
	"log"
	"sync"
	"time"

	"github.com/Konlor08/PigOnTime/config"
	"github.com/Konlor08/PigOnTime/store"
)

const drainBatchSize = 50

// OutboxDrainer moves queued trip events from the outbox table to the
// broker. Each row carries its own topic, so milestone events and
// future message kinds share one queue. Rows stay queued across
// restarts and broker outages; a failed publish only bumps the retry
// counter.
type OutboxDrainer struct {
	db     *store.DB
	client *Client
	cfg    *config.MessagingConfig

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewOutboxDrainer creates a drainer; call Start to begin draining.
func NewOutboxDrainer(db *store.DB, client *Client, cfg *config.MessagingConfig) *OutboxDrainer {
	return &OutboxDrainer{
		db:     db,
		client: client,
		cfg:    cfg,
		quit:   make(chan struct{}),
	}
}

// Start launches the drain loop.
func (d *OutboxDrainer) Start() {
	d.wg.Add(1)
	go d.loop()
}

// Stop halts the drain loop and waits for it to exit. Safe to call twice.
func (d *OutboxDrainer) Stop() {
	d.stopOnce.Do(func() { close(d.quit) })
	d.wg.Wait()
}

func (d *OutboxDrainer) loop() {
	defer d.wg.Done()

	interval := d.cfg.OutboxDrainInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.quit:
			return
		case <-ticker.C:
			if sent, failed := d.drainBatch(); sent > 0 || failed > 0 {
				log.Printf("outbox: sent=%d failed=%d", sent, failed)
			}
		}
	}
}

// drainBatch publishes one batch of pending rows and reports how many
// went out and how many will be retried.
func (d *OutboxDrainer) drainBatch() (sent, failed int) {
	if !d.client.IsConnected() {
		return 0, 0
	}

	rows, err := d.db.ListPendingOutbox(drainBatchSize)
	if err != nil {
		log.Printf("outbox: list pending: %v", err)
		return 0, 0
	}

	for _, row := range rows {
		if err := d.client.Publish(row.Topic, row.Payload); err != nil {
			log.Printf("outbox: publish msg %d to %s: %v", row.ID, row.Topic, err)
			d.db.IncrementOutboxRetries(row.ID)
			failed++
			continue
		}
		if err := d.db.AckOutbox(row.ID); err != nil {
			log.Printf("outbox: ack msg %d: %v", row.ID, err)
		}
		sent++
	}
	return sent, failed
}
