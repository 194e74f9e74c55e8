package messaging

import (
	"encoding/json"
	"log"
	"time"

	"github.com/Konlor08/PigOnTime/config"
	"github.com/Konlor08/PigOnTime/store"
	"github.com/Konlor08/PigOnTime/tracking"
)

// Subscriber routes inbound broker messages: position reports go
// through the tracking coordinator, plan feed messages upsert plans.
type Subscriber struct {
	client  *Client
	cfg     *config.MessagingConfig
	db      *store.DB
	tracker *tracking.Coordinator
	onPlan  func(planID int64, planUID string)
}

// NewSubscriber creates an inbound message subscriber. onPlan may be
// nil; it fires after each successful plan upsert.
func NewSubscriber(client *Client, cfg *config.MessagingConfig, db *store.DB, tracker *tracking.Coordinator, onPlan func(planID int64, planUID string)) *Subscriber {
	return &Subscriber{
		client:  client,
		cfg:     cfg,
		db:      db,
		tracker: tracker,
		onPlan:  onPlan,
	}
}

// Start subscribes to the positions and plans topics.
func (s *Subscriber) Start() error {
	if err := s.client.Subscribe(s.cfg.PositionsTopic, s.handlePosition); err != nil {
		return err
	}
	return s.client.Subscribe(s.cfg.PlansTopic, s.handlePlan)
}

func (s *Subscriber) handlePosition(payload []byte) {
	var msg PositionMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("messaging: unmarshal position: %v", err)
		return
	}

	r := tracking.Reading{
		DriverID: msg.DriverID,
		Lat:      msg.Lat,
		Lng:      msg.Lng,
		Heading:  msg.Heading,
		SpeedKmh: msg.SpeedKmh,
	}
	if msg.At != "" {
		if t, err := time.Parse(time.RFC3339, msg.At); err == nil {
			r.At = t.UTC()
		}
	}
	if err := s.tracker.HandleReading(r); err != nil {
		log.Printf("messaging: position for driver %d: %v", msg.DriverID, err)
	}
}

func (s *Subscriber) handlePlan(payload []byte) {
	var msg PlanFeedMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.Printf("messaging: unmarshal plan: %v", err)
		return
	}
	if msg.PlanUID == "" || msg.DeliveryDate == "" {
		log.Printf("messaging: plan feed message missing plan_uid or delivery_date")
		return
	}
	if _, err := time.Parse("2006-01-02", msg.DeliveryDate); err != nil {
		log.Printf("messaging: plan %s: bad delivery_date %q", msg.PlanUID, msg.DeliveryDate)
		return
	}

	p := &store.DeliveryPlan{
		PlanUID:      msg.PlanUID,
		DeliveryDate: msg.DeliveryDate,
		DeliveryTime: msg.DeliveryTime,
		FarmID:       msg.FarmID,
		FarmName:     msg.FarmName,
		FactorySite:  msg.FactorySite,
		Plate:        msg.Plate,
		Quantity:     msg.Quantity,
	}
	if err := s.db.UpsertPlan(p); err != nil {
		log.Printf("messaging: upsert plan %s: %v", msg.PlanUID, err)
		return
	}
	if s.onPlan != nil {
		s.onPlan(p.ID, p.PlanUID)
	}
}
