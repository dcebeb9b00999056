package amqp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"expensetracker/internal/core"
	"expensetracker/internal/log"
)

// Circuit breaker states
const (
	StateClosed int32 = iota
	StateOpen
	StateHalfOpen
)

const (
	maxFailures        = 5
	openTimeout        = 30 * time.Second
	maxBackoff         = 30 * time.Second
	publishTimeout     = 5 * time.Second
	maxConnectAttempts = 3
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

// Publisher sends tracker events to a topic exchange. The connection is
// re-established lazily after a connection-level failure.
type Publisher struct {
	url          string
	exchangeName string
	routingKey   string
	logger       *log.Logger

	// mu guards conn and channel and is held across reconnects so racing
	// publishes share one connection.
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	open    func() (*amqp091.Connection, *amqp091.Channel, error)

	state        int32
	failureCount int64
	failureMu    sync.Mutex
	lastFailure  time.Time
}

// NewPublisher dials the broker, retrying connection errors with exponential
// backoff, and declares the exchange.
func NewPublisher(ctx context.Context, url, exchangeName, routingKey string, logger *log.Logger) (*Publisher, error) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	p := &Publisher{
		url:          url,
		exchangeName: exchangeName,
		routingKey:   routingKey,
		logger:       logger.WithComponent(log.ComponentAMQP),
	}
	p.open = p.dial

	var err error
	for attempt := 0; attempt < maxConnectAttempts; attempt++ {
		if _, err = p.currentChannel(); err == nil {
			p.logger.InfoContext(ctx, "Connected to AMQP broker",
				"exchange", exchangeName,
				"routing_key", routingKey)
			return p, nil
		}
		if !isConnectionError(err) {
			break
		}

		wait := exponentialBackoff(attempt)
		p.logger.WarnContext(ctx, "AMQP connection failed, retrying",
			"attempt", attempt+1,
			"backoff", wait,
			"error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("connect AMQP: %w", err)
}

// dial opens a connection and channel and declares the exchange.
func (p *Publisher) dial() (*amqp091.Connection, *amqp091.Channel, error) {
	conn, err := amqp091.Dial(p.url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		p.exchangeName, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, channel, nil
}

// currentChannel returns the open channel, reconnecting first if needed.
func (p *Publisher) currentChannel() (*amqp091.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.channel != nil && !p.channel.IsClosed() {
		return p.channel, nil
	}
	p.closeLocked()

	conn, channel, err := p.open()
	if err != nil {
		return nil, err
	}
	p.conn = conn
	p.channel = channel
	return channel, nil
}

func (p *Publisher) dropConnection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closeLocked()
}

func (p *Publisher) closeLocked() error {
	if p.channel != nil {
		p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		err := p.conn.Close()
		p.conn = nil
		return err
	}
	return nil
}

// PublishTransactionRecorded publishes a transaction.recorded event.
func (p *Publisher) PublishTransactionRecorded(ctx context.Context, tx core.Transaction) error {
	body, err := NewTransactionRecordedMessage(tx).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.publish(ctx, EventTransactionRecorded, body)
}

// PublishReportExported publishes a report.exported event.
func (p *Publisher) PublishReportExported(ctx context.Context, totals core.MonthTotals) error {
	body, err := NewReportExportedMessage(totals).ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	return p.publish(ctx, EventReportExported, body)
}

func (p *Publisher) publish(ctx context.Context, eventType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.isCircuitOpen() {
		return fmt.Errorf("publish %s: %w", eventType, ErrCircuitOpen)
	}

	ch, err := p.currentChannel()
	if err != nil {
		p.recordFailure()
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(
		ctx,
		p.exchangeName, // exchange
		p.routingKey,   // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Type:         eventType,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.recordFailure()
		if isConnectionError(err) {
			p.dropConnection()
		}
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	p.recordSuccess()
	p.logger.DebugContext(ctx, "Published event",
		"type", eventType,
		"exchange", p.exchangeName,
		"routing_key", p.routingKey)
	return nil
}

func (p *Publisher) isCircuitOpen() bool {
	if atomic.LoadInt32(&p.state) != StateOpen {
		return false
	}

	p.failureMu.Lock()
	last := p.lastFailure
	p.failureMu.Unlock()

	if time.Since(last) > openTimeout {
		atomic.CompareAndSwapInt32(&p.state, StateOpen, StateHalfOpen)
		return false
	}
	return true
}

func (p *Publisher) recordSuccess() {
	atomic.StoreInt64(&p.failureCount, 0)
	atomic.StoreInt32(&p.state, StateClosed)
}

func (p *Publisher) recordFailure() {
	p.failureMu.Lock()
	p.lastFailure = time.Now()
	p.failureMu.Unlock()

	if atomic.AddInt64(&p.failureCount, 1) >= maxFailures || atomic.LoadInt32(&p.state) == StateHalfOpen {
		if atomic.SwapInt32(&p.state, StateOpen) != StateOpen {
			p.logger.Warn("AMQP circuit breaker opened", "failures", atomic.LoadInt64(&p.failureCount))
		}
	}
}

// Close closes the channel and connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closeLocked()
}

// exponentialBackoff returns 1s, 2s, 4s, ... capped at 30s.
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt >= 5 {
		return maxBackoff
	}
	d := time.Second << attempt
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp091.ErrClosed) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"connection", "eof", "broken pipe", "closed network"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
