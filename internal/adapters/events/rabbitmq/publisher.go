package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/vncsmyrnk/tablepoll/internal/core/domain"
)

const connectAttempts = 5

// Channel is the part of *amqp.Channel the publisher needs.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Connect dials RabbitMQ, retrying a few times while the broker starts.
func Connect(url string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := range connectAttempts {
		if conn, err = amqp.Dial(url); err == nil {
			slog.Info("connected to rabbitmq")
			return conn, nil
		}
		if i < connectAttempts-1 {
			slog.Warn("failed to connect to rabbitmq, retrying", "error", err)
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("could not connect to rabbitmq after %d attempts: %w", connectAttempts, err)
}

// OpenChannel opens a channel and declares the durable vote queue.
func OpenChannel(conn *amqp.Connection, queue string) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
	}
	return ch, nil
}

type VotePublisher struct {
	channel Channel
	queue   string
	mu      sync.Mutex
}

func NewVotePublisher(ch Channel, queue string) *VotePublisher {
	return &VotePublisher{
		channel: ch,
		queue:   queue,
	}
}

type voteRecorded struct {
	VoteID    string    `json:"vote_id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishVote sends a vote-recorded event to the queue. amqp channels are
// not safe for concurrent publishing, hence the lock.
func (p *VotePublisher) PublishVote(ctx context.Context, vote *domain.Vote) error {
	body, err := json.Marshal(voteRecorded{
		VoteID:    vote.ID,
		PollID:    vote.PollID,
		OptionID:  vote.OptionID,
		Timestamp: vote.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal vote event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    vote.ID,
		Timestamp:    vote.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish vote %s: %w", vote.ID, err)
	}
	return nil
}
