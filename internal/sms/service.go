package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rosvybory/observadores/internal/metrics"
)

const (
	worklogKey = "sms:worklog"
	worklogMax = 1000
)

// WorklogEntry registra um envio sem o texto (que pode conter senha).
type WorklogEntry struct {
	MessageID string    `json:"message_id,omitempty"`
	Phone     string    `json:"phone"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	At        time.Time `json:"at"`
}

type worklogStore interface {
	LPush(ctx context.Context, key string, values ...any) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Service envia SMS transacionais e mantém o registro dos envios.
type Service struct {
	sender   Sender
	worklog  worklogStore
	loginURL string
	metrics  *metrics.Metrics
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService cria o serviço; worklog pode ser nil.
func NewService(sender Sender, worklog worklogStore, loginURL string, m *metrics.Metrics, logger zerolog.Logger) *Service {
	return &Service{
		sender:   sender,
		worklog:  worklog,
		loginURL: loginURL,
		metrics:  m,
		logger:   logger.With().Str("component", "sms").Logger(),
		now:      time.Now,
	}
}

// SendPassword envia a senha de acesso. Falhas são registradas e devolvidas, nunca repetidas aqui.
func (s *Service) SendPassword(ctx context.Context, phone, password string) error {
	text := fmt.Sprintf("Acesso à base de observadores: %s, senha: %s", s.loginURL, password)
	if s.loginURL == "" {
		text = fmt.Sprintf("Senha de acesso à base de observadores: %s", password)
	}
	return s.send(ctx, Message{Phone: phone, Text: text}, "Senha de acesso")
}

func (s *Service) send(ctx context.Context, msg Message, title string) error {
	id, err := s.sender.Send(ctx, msg)
	s.metrics.SMS(err)

	entry := WorklogEntry{MessageID: id, Phone: maskPhone(msg.Phone), Title: title, Status: "sent", At: s.now().UTC()}
	if err != nil {
		entry.Status = "failed"
		entry.Error = err.Error()
		s.logger.Error().Err(err).Str("phone", entry.Phone).Str("title", title).Msg("falha ao enviar SMS")
	} else {
		s.logger.Info().Str("phone", entry.Phone).Str("message_id", id).Str("title", title).Msg("SMS enviado")
	}
	s.record(ctx, entry)
	return err
}

func (s *Service) record(ctx context.Context, entry WorklogEntry) {
	if s.worklog == nil {
		return
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.worklog.LPush(ctx, worklogKey, payload).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("worklog de SMS indisponível")
		return
	}
	_ = s.worklog.LTrim(ctx, worklogKey, 0, worklogMax-1).Err()
}

// Recent devolve os últimos envios, do mais novo para o mais antigo.
func (s *Service) Recent(ctx context.Context, limit int) ([]WorklogEntry, error) {
	if s.worklog == nil {
		return nil, nil
	}
	if limit <= 0 || limit > worklogMax {
		limit = 50
	}
	raw, err := s.worklog.LRange(ctx, worklogKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]WorklogEntry, 0, len(raw))
	for _, item := range raw {
		var e WorklogEntry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func maskPhone(phone string) string {
	if len(phone) < 4 {
		return phone
	}
	return "******" + phone[len(phone)-4:]
}
