package messaging

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/hochlab/lab-booking/internal/models"
)

// Dispatcher decouples request handling from notification delivery: events go
// through a buffered queue and a worker goroutine writes the inbox row and
// hands the event to the broker. A full queue drops events rather than
// blocking the API.
type Dispatcher struct {
	db    *gorm.DB
	pub   Publisher
	queue chan Event
}

func NewDispatcher(db *gorm.DB, pub Publisher) *Dispatcher {
	d := &Dispatcher{
		db:    db,
		pub:   pub,
		queue: make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		if ev.UserID != nil && d.db != nil {
			msg := models.Message{
				UserID:  *ev.UserID,
				Title:   ev.Title,
				Content: ev.Content,
			}
			if err := d.db.Create(&msg).Error; err != nil {
				log.Println("messaging: inbox write failed:", err)
			}
		}

		if d.pub != nil {
			if err := d.pub.Publish(context.Background(), ev); err != nil {
				log.Println("messaging: publish failed:", err)
			}
		}
	}
}

// Dispatch enqueues ev. Safe on a nil dispatcher so tests and degraded
// deployments can skip messaging entirely.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}
	select {
	case d.queue <- ev:
	default:
		log.Println("messaging: queue full, dropping event")
	}
}
