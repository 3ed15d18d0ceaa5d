package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Producer struct {
	w     *kafka.Writer
	log   *zap.Logger
	inbox chan kafka.Message

	closeOnce sync.Once
	doneOnce  sync.Once
	done      chan struct{}
}

func NewProducer(brokers []string, topic string, buf int, log *zap.Logger) *Producer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		log:   log.With(zap.String("topic", topic)),
		inbox: make(chan kafka.Message, buf),
		done:  make(chan struct{}),
	}
}

// Start jalanin loop publish di goroutine sendiri. Pesan dikirim
// sinkron dari loop; error cuma di-log, bukan di-retry.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer func() {
			_ = p.w.Close()
			p.doneOnce.Do(func() { close(p.done) })
		}()
		for {
			select {
			case <-ctx.Done():
				// flush sisa inbox sebelum exit
				p.Close()
				for m := range p.inbox {
					p.write(m)
				}
				return
			case m, ok := <-p.inbox:
				if !ok {
					return
				}
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.log.Error("kafka write failed", zap.Error(err))
	}
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Close nutup inbox; loop nge-flush sisa pesan lalu exit.
func (p *Producer) Close() { p.closeOnce.Do(func() { close(p.inbox) }) }

// WaitClosed nunggu loop selesai flush.
func (p *Producer) WaitClosed() { <-p.done }
