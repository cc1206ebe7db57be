package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/lumiskin/lumiskin-api/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type Subscriber interface {
	Subscribe(subject string, handler func(msg *Message)) error
	QueueSubscribe(subject, queue string, handler func(msg *Message)) error
	Close() error
}

type EventBus interface {
	Publisher
	Subscriber
}

type Message struct {
	Subject   string
	Data      []byte
	Timestamp time.Time
	ID        string
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	_, err := n.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	_, err := n.conn.QueueSubscribe(subject, queue, func(msg *nats.Msg) {
		handler(&Message{
			Subject:   msg.Subject,
			Data:      msg.Data,
			Timestamp: time.Now(),
			ID:        fmt.Sprintf("%d", time.Now().UnixNano()),
		})
	})
	return err
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NopEventBus discards all events. Used in tests and when NATS is not configured.
type NopEventBus struct{}

func (NopEventBus) Publish(context.Context, string, interface{}) error          { return nil }
func (NopEventBus) Subscribe(string, func(msg *Message)) error                  { return nil }
func (NopEventBus) QueueSubscribe(string, string, func(msg *Message)) error     { return nil }
func (NopEventBus) Close() error                                                { return nil }

// Event subjects
const (
	CustomerRegistered  = "customer.registered"
	CustomerLoggedIn    = "customer.login"
	GuestSessionCreated = "guest.session.created"
	ReferralRedeemed    = "referral.redeemed"
	DiscountGranted     = "discount.granted"
	AnalysisCompleted   = "analysis.completed"
	StreakExtended      = "streak.extended"
	CheckoutStarted     = "checkout.started"
)

// Event payloads
type CustomerRegisteredEvent struct {
	CustomerID int64     `json:"customer_id"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"created_at"`
}

type GuestSessionCreatedEvent struct {
	SessionID int64     `json:"session_id"`
	IP        string    `json:"ip"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ReferralRedeemedEvent struct {
	ReferralCodeID     int64 `json:"referral_code_id"`
	ReferrerID         int64 `json:"referrer_id"`
	ReferredCustomerID int64 `json:"referred_customer_id"`
	DiscountID         int64 `json:"discount_id"`
}

type DiscountGrantedEvent struct {
	DiscountID int64  `json:"discount_id"`
	CustomerID int64  `json:"customer_id"`
	Code       string `json:"code"`
	Percent    int    `json:"percent"`
	Type       string `json:"type"`
}

type AnalysisCompletedEvent struct {
	AnalysisID int64     `json:"analysis_id"`
	CustomerID int64     `json:"customer_id"`
	Score      int       `json:"score"`
	CompletedAt time.Time `json:"completed_at"`
}

type StreakExtendedEvent struct {
	CustomerID    int64 `json:"customer_id"`
	CurrentStreak int   `json:"current_streak"`
}
