package printer

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Job kinds
const (
	JobKOT        = "kot"
	JobReverseKOT = "reverse_kot"
	JobBill       = "bill"
	JobTest       = "test"
)

// Target identifies the physical printer a job is meant for.
type Target struct {
	Name       string `json:"name"`
	Connection string `json:"connection"`
	Address    string `json:"address,omitempty"`
	USBPath    string `json:"usb_path,omitempty"`
	Copies     int    `json:"copies"`
}

// Job is one ticket handed to a spooler. Data holds the rendered ESC/POS
// stream, Ticket the structured payload it was rendered from.
type Job struct {
	ID        string      `json:"id"`
	Kind      string      `json:"kind"`
	OutletID  string      `json:"outlet_id"`
	Reference string      `json:"reference"`
	Target    Target      `json:"target"`
	Ticket    interface{} `json:"ticket,omitempty"`
	Data      []byte      `json:"data"`
	CreatedAt time.Time   `json:"created_at"`
}

// Spooler delivers print jobs to printers.
type Spooler interface {
	Submit(ctx context.Context, job *Job) error
	Name() string
	Close() error
}

// --- Direct spooler (prints over USB/TCP from the API process) ---

type directSpooler struct{}

// NewDirectSpooler creates a spooler that prints synchronously.
func NewDirectSpooler() Spooler {
	return &directSpooler{}
}

func (s *directSpooler) Submit(ctx context.Context, job *Job) error {
	p, err := NewPrinter(job.Target.Connection, job.Target.USBPath, job.Target.Address)
	if err != nil {
		return err
	}
	copies := job.Target.Copies
	if copies < 1 {
		copies = 1
	}
	for i := 0; i < copies; i++ {
		if err := p.Print(ctx, job.Data); err != nil {
			return err
		}
	}
	return nil
}

func (s *directSpooler) Name() string { return "direct" }

func (s *directSpooler) Close() error { return nil }

// --- Null spooler (drops jobs) ---

type nullSpooler struct{}

// NewNullSpooler creates a spooler that logs and drops every job.
func NewNullSpooler() Spooler {
	return &nullSpooler{}
}

func (s *nullSpooler) Submit(ctx context.Context, job *Job) error {
	log.Printf("printer: spooler disabled, dropped %s job %s for %s", job.Kind, job.Reference, job.Target.Name)
	return nil
}

func (s *nullSpooler) Name() string { return "none" }

func (s *nullSpooler) Close() error { return nil }

// NewSpooler creates the spooler for kind: "direct", "amqp" or "none".
func NewSpooler(kind, amqpURL, queue string) (Spooler, error) {
	switch kind {
	case "direct", "":
		return NewDirectSpooler(), nil
	case "amqp":
		return NewAMQPSpooler(amqpURL, queue)
	case "none":
		return NewNullSpooler(), nil
	default:
		return nil, fmt.Errorf("printer: unknown spooler %q (use direct, amqp, or none)", kind)
	}
}
