package sky

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// BeamOffsetMessage is the wire form of one beam's correction.
type BeamOffsetMessage struct {
	Beam      int     `json:"beam"`
	RA        float64 `json:"ra_offset_arcsec"`
	Dec       float64 `json:"dec_offset_arcsec"`
	Sources   int     `json:"sources"`
	Timestamp int64   `json:"timestamp"`
}

// Publisher pushes per-beam offsets and convergence series to MQTT so
// downstream dashboards can watch alignment runs.
type Publisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	offsets       map[int]*BeamOffsetMessage
	mu            sync.RWMutex
}

// NewPublisher creates an offsets publisher. An empty prefix falls back
// to the MQTT_PUBLISH_PREFIX env var, then to "beammetry". A nil client
// disables publishing (for testing).
func NewPublisher(client mqtt.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = os.Getenv("MQTT_PUBLISH_PREFIX")
	}
	if prefix == "" {
		prefix = "beammetry"
	}

	return &Publisher{
		client:        client,
		publishPrefix: prefix,
		qos:           0,    // offsets are idempotent, fire and forget
		retain:        true, // retain so late subscribers see the last run
		offsets:       make(map[int]*BeamOffsetMessage),
	}
}

// PublishOffset publishes a single beam's correction to its individual
// topic and refreshes the combined offsets topic.
func (p *Publisher) PublishOffset(beam int, off Offset, sources int) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	msg := &BeamOffsetMessage{
		Beam:      beam,
		RA:        off.RA,
		Dec:       off.Dec,
		Sources:   sources,
		Timestamp: time.Now().Unix(),
	}

	p.mu.Lock()
	p.offsets[beam] = msg
	p.mu.Unlock()

	if err := p.publishIndividual(msg); err != nil {
		log.Printf("Error publishing offset for beam %02d: %v", beam, err)
		return err
	}

	if err := p.publishCombined(); err != nil {
		log.Printf("Error publishing combined offsets: %v", err)
		return err
	}

	return nil
}

// PublishOffsets publishes every catalogue's correction in beam order.
func (p *Publisher) PublishOffsets(cats []*Catalogue) error {
	for _, c := range cats {
		if err := p.PublishOffset(c.Beam, c.Offset, c.Points.Len()); err != nil {
			return err
		}
	}
	return nil
}

// publishIndividual publishes one beam's offset to its own topic.
func (p *Publisher) publishIndividual(msg *BeamOffsetMessage) error {
	topic := fmt.Sprintf("%s/offsets/beam%02d", p.publishPrefix, msg.Beam)

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling offset: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	log.Printf("Published offset for beam %02d: (%+.2f\", %+.2f\")", msg.Beam, msg.RA, msg.Dec)
	return nil
}

// publishCombined publishes all known beam offsets to the combined topic.
func (p *Publisher) publishCombined() error {
	p.mu.RLock()
	offsets := make([]*BeamOffsetMessage, 0, len(p.offsets))
	for _, msg := range p.offsets {
		offsets = append(offsets, msg)
	}
	p.mu.RUnlock()

	if len(offsets) == 0 {
		return nil
	}

	topic := fmt.Sprintf("%s/offsets", p.publishPrefix)

	message := map[string]interface{}{
		"beams":     offsets,
		"timestamp": time.Now().Unix(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling combined offsets: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// PublishConvergence publishes the full convergence series of a run.
func (p *Publisher) PublishConvergence(stats []StepStatistics) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}
	if len(stats) == 0 {
		return nil
	}

	topic := fmt.Sprintf("%s/convergence", p.publishPrefix)

	message := map[string]interface{}{
		"steps":     stats,
		"timestamp": time.Now().Unix(),
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("marshaling convergence series: %w", err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}

	return nil
}

// GetOffset returns the last published offset message for a beam.
func (p *Publisher) GetOffset(beam int) (*BeamOffsetMessage, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	msg, ok := p.offsets[beam]
	return msg, ok
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *Publisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *Publisher) SetRetain(retain bool) {
	p.retain = retain
}
