package kafka

import (
	"time"

	"github.com/IBM/sarama"
)

type Config struct {
	Addrs []string `envconfig:"KAFKA_ADDRS"`
	Topic string   `envconfig:"KAFKA_CIRCULATION_TOPIC" default:"circulation-events"`
}

// EventCirculation is the payload published on borrowing state changes.
type EventCirculation struct {
	Type        string    `json:"type"`
	BorrowingID int       `json:"borrowingId"`
	BookID      int       `json:"bookId"`
	MemberID    int       `json:"memberId"`
	FineAmount  float64   `json:"fineAmount,omitempty"`
	At          time.Time `json:"at"`
}

const (
	EventBorrowed      = "borrowed"
	EventReturned      = "returned"
	EventMarkedOverdue = "marked_overdue"
)

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}
