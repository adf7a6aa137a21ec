package queue

import (
	"context"
	"errors"
	"time"
)

var ErrQueueFull = errors.New("queue is full")

type Message struct {
	ID         string
	CreatedAt  time.Time
	RetryCount int
	Message    any
}

func NewMessage(id string, message any) Message {
	return Message{
		ID:         id,
		CreatedAt:  time.Now(),
		RetryCount: 0,
		Message:    message,
	}
}

type Processor interface {
	Process(Message) error
}

// ErrorNotifier is told about messages that exhausted their retries.
type ErrorNotifier interface {
	NotifyError(ctx context.Context, err error) error
}

type Service struct {
	queue      chan Message
	quit       chan struct{}
	maxRetries int

	ctx context.Context
	en  ErrorNotifier
}

func NewService(maxRetries, bufferSize int, ctx context.Context, en ErrorNotifier) *Service {
	return &Service{
		queue:      make(chan Message, bufferSize),
		quit:       make(chan struct{}),
		maxRetries: maxRetries,
		ctx:        ctx,
		en:         en,
	}
}

// Enqueue never blocks. A full queue drops the message.
func (s *Service) Enqueue(message Message) error {
	select {
	case s.queue <- message:
		return nil
	default:
		return ErrQueueFull
	}
}

func (s *Service) Close() {
	close(s.quit)
}

func (s *Service) Start(p Processor) error {
	for {
		select {
		case message := <-s.queue:
			// it is up to the processor to handle the data type
			err := p.Process(message)
			if err == nil {
				continue
			}

			if message.RetryCount < s.maxRetries {
				message.RetryCount++

				if len(s.queue) == 0 {
					// nothing else to do, wait a bit to avoid a busy loop
					extraWait := time.Duration(message.RetryCount) * time.Second
					select {
					case <-time.After(extraWait):
					case <-s.quit:
						return nil
					}
				}

				if s.Enqueue(message) == nil {
					continue
				}
			}

			if s.en != nil {
				s.en.NotifyError(s.ctx, err)
			}
		case <-s.quit:
			return nil
		}
	}
}
