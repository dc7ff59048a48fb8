package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/tunitrip/internal/core/domain"
	"github.com/samirrijal/tunitrip/internal/core/ports"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn    *nats.Conn
	js      nats.JetStreamContext
	durable string
	subs    []*nats.Subscription
}

// NewSubscriber connects to NATS. When durable is empty the consumers are
// ephemeral and only receive new messages.
func NewSubscriber(url, durable string) (*Subscriber, error) {
	conn, err := connect(url)
	if err != nil {
		return nil, err
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js, durable: durable}, nil
}

func (s *Subscriber) opts(suffix string) []nats.SubOpt {
	opts := []nats.SubOpt{
		nats.BindStream(StreamName),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	}
	if s.durable != "" {
		opts = append(opts, nats.Durable(s.durable+"-"+suffix))
	} else {
		opts = append(opts, nats.DeliverNew())
	}
	return opts
}

// SubscribeQuotes delivers every computed trip cost to handler.
func (s *Subscriber) SubscribeQuotes(ctx context.Context, handler func(ctx context.Context, ev *ports.QuoteEvent) error) error {
	sub, err := s.js.Subscribe(SubjectQuote, func(msg *nats.Msg) {
		var ev ports.QuoteEvent
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &ev); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, s.opts("quotes")...)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribePrices delivers every price resolution to handler.
func (s *Subscriber) SubscribePrices(ctx context.Context, handler func(ctx context.Context, quote *domain.PriceQuote) error) error {
	sub, err := s.js.Subscribe(SubjectPrices, func(msg *nats.Msg) {
		var q domain.PriceQuote
		if err := json.Unmarshal(msg.Data, &q); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &q); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	}, s.opts("prices")...)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
