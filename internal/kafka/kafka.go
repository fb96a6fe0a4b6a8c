package kafka

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrDisabled = errors.New("kafka disabled")

type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewWriter particiona por chave, então eventos do mesmo pedido mantêm a ordem
func (c *Client) NewWriter(topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(c.Brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// Publisher mantém um writer por tópico
type Publisher struct {
	client  *Client
	mu      sync.Mutex
	writers map[string]*kafka.Writer
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{
		client:  client,
		writers: map[string]*kafka.Writer{},
	}
}

func (p *Publisher) writer(topic string) *kafka.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.writers[topic]
	if !ok {
		w = p.client.NewWriter(topic)
		p.writers[topic] = w
	}
	return w
}

// Publish envia um payload já serializado
func (p *Publisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	if !p.client.Enabled() {
		return ErrDisabled
	}
	return p.writer(topic).WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Time:  time.Now().UTC(),
	})
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.writers, topic)
	}
	return errors.Join(errs...)
}
