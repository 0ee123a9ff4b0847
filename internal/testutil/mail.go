package testutil

import (
	"context"
	"html"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/dom/reader/internal/email"
)

// RecordingSender keeps every message it is asked to send. Setting Err makes
// sends fail after recording.
type RecordingSender struct {
	mu       sync.Mutex
	messages []email.Message
	err      error
}

func NewRecordingSender() *RecordingSender {
	return &RecordingSender{}
}

func (s *RecordingSender) Send(ctx context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return s.err
}

// FailWith makes later sends return err.
func (s *RecordingSender) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *RecordingSender) Messages() []email.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]email.Message(nil), s.messages...)
}

// Last returns the most recent message sent to addr.
func (s *RecordingSender) Last(t *testing.T, addr string) email.Message {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].To == addr {
			return s.messages[i]
		}
	}
	t.Fatalf("no email sent to %s", addr)
	return email.Message{}
}

// LinkQuery extracts the query of the first link in msg whose path contains
// pathFragment.
func LinkQuery(t *testing.T, msg email.Message, pathFragment string) url.Values {
	t.Helper()

	body := html.UnescapeString(msg.HTML)
	idx := strings.Index(body, pathFragment)
	if idx < 0 {
		t.Fatalf("no %s link in email %q", pathFragment, msg.Subject)
	}
	start := strings.LastIndex(body[:idx], "http")
	end := strings.IndexAny(body[idx:], "'\" <")
	if start < 0 || end < 0 {
		t.Fatalf("malformed link in email %q", msg.Subject)
	}

	link, err := url.Parse(body[start : idx+end])
	if err != nil {
		t.Fatalf("failed to parse link: %v", err)
	}
	return link.Query()
}
