package email

import (
	"context"
	"log"
	"sync"
	"time"
)

// Dispatcher sends email in the background for callers that must not wait
// on, or fail because of, delivery.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{sender: sender, timeout: timeout}
}

// Send delivers msg synchronously.
func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.sender.Send(ctx, msg)
}

// Go delivers msg on its own goroutine. Failures are logged only. The request
// context's values are kept but its cancellation is not, so the send outlives
// the request that triggered it.
func (d *Dispatcher) Go(ctx context.Context, msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.Send(context.WithoutCancel(ctx), msg); err != nil {
			log.Printf("ERROR [email.Dispatcher] to=%s subject=%q: %v", msg.To, msg.Subject, err)
		}
	}()
}

// Wait blocks until every background send has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
