package sms

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosvybory/observadores/internal/metrics"
)

type stubSender struct {
	sent []Message
	err  error
}

func (s *stubSender) Send(ctx context.Context, msg Message) (string, error) {
	s.sent = append(s.sent, msg)
	if s.err != nil {
		return "", s.err
	}
	return "m-1", nil
}

type stubWorklog struct {
	items []string
}

func (s *stubWorklog) LPush(ctx context.Context, key string, values ...any) *redis.IntCmd {
	for _, v := range values {
		if b, ok := v.([]byte); ok {
			s.items = append([]string{string(b)}, s.items...)
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(s.items)))
	return cmd
}

func (s *stubWorklog) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	if int(stop+1) < len(s.items) {
		s.items = s.items[start : stop+1]
	}
	cmd := redis.NewStatusCmd(ctx)
	cmd.SetVal("OK")
	return cmd
}

func (s *stubWorklog) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	end := int(stop + 1)
	if end > len(s.items) {
		end = len(s.items)
	}
	cmd := redis.NewStringSliceCmd(ctx)
	cmd.SetVal(s.items[start:end])
	return cmd
}

func newTestService(sender Sender, worklog worklogStore) *Service {
	s := NewService(sender, worklog, "https://observadores.example/login", metrics.New(prometheus.NewRegistry()), zerolog.Nop())
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestSendPassword(t *testing.T) {
	sender := &stubSender{}
	worklog := &stubWorklog{}
	s := newTestService(sender, worklog)

	require.NoError(t, s.SendPassword(context.Background(), "9161234567", "00012345"))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "9161234567", sender.sent[0].Phone)
	assert.Contains(t, sender.sent[0].Text, "00012345")
	assert.Contains(t, sender.sent[0].Text, "https://observadores.example/login")

	entries, err := s.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "sent", entries[0].Status)
	assert.Equal(t, "******4567", entries[0].Phone)
	assert.Equal(t, "m-1", entries[0].MessageID)
	assert.NotContains(t, worklog.items[0], "00012345")
}

func TestSendPasswordFailureIsRecorded(t *testing.T) {
	sender := &stubSender{err: errors.New("timeout")}
	s := newTestService(sender, &stubWorklog{})

	err := s.SendPassword(context.Background(), "9161234567", "00012345")
	assert.Error(t, err)
	assert.Len(t, sender.sent, 1, "sem novas tentativas")

	entries, err := s.Recent(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].Status)
	assert.Equal(t, "timeout", entries[0].Error)
}

func TestSendWithoutWorklog(t *testing.T) {
	s := newTestService(&stubSender{}, nil)

	require.NoError(t, s.SendPassword(context.Background(), "9161234567", "1"))
	entries, err := s.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
