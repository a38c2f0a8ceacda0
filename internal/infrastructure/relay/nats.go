package relay

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"novatrade/internal/application/port"
	"novatrade/internal/domain"
)

const streamName = "MARKET"

// Subject builders for relayed market events.

func SubjectTrades(symbol string) string {
	return "market.trades." + strings.ToLower(symbol)
}

func SubjectCandles(symbol string) string {
	return "market.candles." + strings.ToLower(symbol)
}

// NATSSink republishes merged market events onto JetStream so consumers
// outside the process (dashboards, recorders) can tail them.
type NATSSink struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

func NewNATSSink(url string) (*NATSSink, error) {
	nc, err := nats.Connect(url,
		nats.Name("novatrade relay"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, err
	}

	ensureStream(js)
	return &NATSSink{nc: nc, js: js}, nil
}

func ensureStream(js nats.JetStreamContext) {
	config := &nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"market.>"},
		Storage:  nats.FileStorage,
		Replicas: 1,
		MaxAge:   6 * time.Hour,
		Discard:  nats.DiscardOld,
	}

	if stream, err := js.StreamInfo(streamName); stream != nil && err == nil {
		if _, err := js.UpdateStream(config); err != nil {
			log.Error().Err(err).Msg("failed to update relay stream")
		}
		return
	}
	if _, err := js.AddStream(config); err != nil {
		log.Error().Err(err).Msg("failed to create relay stream")
	}
}

func (s *NATSSink) PublishTrade(symbol string, t domain.Trade) error {
	data, _ := json.Marshal(t)
	_, err := s.js.Publish(SubjectTrades(symbol), data)
	return err
}

func (s *NATSSink) PublishCandle(symbol string, c domain.Candle) error {
	data, _ := json.Marshal(c)
	_, err := s.js.Publish(SubjectCandles(symbol), data)
	return err
}

func (s *NATSSink) Close() {
	s.nc.Close()
}

var _ port.EventSink = (*NATSSink)(nil)
