package internal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSender records sent messages.
type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	from, to, subject, body string
	html                    bool
}

func (f *fakeSender) Send(ctx context.Context, from, to, subject, body string, html bool) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{from, to, subject, body, html})
	return nil
}

func TestBatcherFlushSendsOneMail(t *testing.T) {
	sender := &fakeSender{}
	b := NewBatcher(sender, "me@example.com", "me@example.com", testLogger())
	b.Add("First Video", "- point one\n- point two")
	b.Add("Second Video", "another summary")

	sent, err := b.Flush(context.Background(), "YouTube video summaries")
	require.NoError(t, err)
	assert.True(t, sent)
	require.Len(t, sender.sent, 1, "all fragments go out in a single message")

	msg := sender.sent[0]
	assert.Equal(t, "me@example.com", msg.from)
	assert.Equal(t, "me@example.com", msg.to)
	assert.Equal(t, "YouTube video summaries", msg.subject)
	assert.True(t, msg.html)
	assert.Contains(t, msg.body, "Summary for video &#39;First Video&#39;:")
	assert.Contains(t, msg.body, "Summary for video &#39;Second Video&#39;:")
	assert.Contains(t, msg.body, "<li>point one</li>")

	// Processing order is preserved in the body.
	first := indexOf(msg.body, "First Video")
	second := indexOf(msg.body, "Second Video")
	assert.Less(t, first, second)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestBatcherFlushNothingAccumulated(t *testing.T) {
	sender := &fakeSender{}
	b := NewBatcher(sender, "me@example.com", "me@example.com", testLogger())

	sent, err := b.Flush(context.Background(), "subject")
	require.NoError(t, err)
	assert.False(t, sent)
	assert.Empty(t, sender.sent, "empty batch must not send")
}

func TestBatcherFlushNoDeliveryTarget(t *testing.T) {
	b := NewBatcher(nil, "", "", testLogger())
	b.Add("Title", "body")

	sent, err := b.Flush(context.Background(), "subject")
	require.NoError(t, err)
	assert.False(t, sent)
}

func TestBatcherFlushSendError(t *testing.T) {
	sender := &fakeSender{err: errors.New("connection refused")}
	b := NewBatcher(sender, "me@example.com", "me@example.com", testLogger())
	b.Add("Title", "body")

	sent, err := b.Flush(context.Background(), "subject")
	require.Error(t, err)
	assert.False(t, sent)
}

func TestBatcherFragmentsCopy(t *testing.T) {
	b := NewBatcher(nil, "", "", testLogger())
	b.Add("One", "a")
	b.Add("Two", "b")

	frags := b.Fragments()
	require.Len(t, frags, 2)
	frags[0].Title = "mutated"

	assert.Equal(t, "One", b.Fragments()[0].Title, "callers get a copy")
}
