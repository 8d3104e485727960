package sms

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rosvybory/observadores/internal/util"
)

var (
	// ErrNotConfigured indica gateway sem URL configurada.
	ErrNotConfigured = errors.New("gateway de SMS não configurado")
	// ErrRejected indica mensagem recusada pelo gateway.
	ErrRejected = errors.New("mensagem recusada pelo gateway de SMS")
)

// Sender entrega mensagens de texto para um telefone de 10 dígitos.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// Message é a mensagem a ser entregue.
type Message struct {
	Phone string
	Text  string
}

// GatewayOptions configura o cliente HTTP do gateway.
type GatewayOptions struct {
	BaseURL string
	Token   string
	Sender  string
	Timeout time.Duration
}

type gatewayRequest struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Text      string `json:"text"`
	ClientRef string `json:"client_ref"`
}

type gatewayResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// GatewayClient envia SMS via API HTTP do provedor.
type GatewayClient struct {
	http   *resty.Client
	sender string
}

// NewGatewayClient cria cliente; devolve nil quando BaseURL está vazio.
func NewGatewayClient(opts GatewayOptions) *GatewayClient {
	if opts.BaseURL == "" {
		return nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetAuthToken(opts.Token).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &GatewayClient{http: client, sender: opts.Sender}
}

// Send entrega a mensagem e devolve o id atribuído pelo gateway.
// O client_ref se mantém entre as tentativas.
func (c *GatewayClient) Send(ctx context.Context, msg Message) (string, error) {
	if c == nil {
		return "", ErrNotConfigured
	}

	var out gatewayResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(gatewayRequest{
			From:      c.sender,
			To:        "7" + msg.Phone,
			Text:      msg.Text,
			ClientRef: util.NewRef(),
		}).
		SetResult(&out).
		SetError(&out).
		Post("/messages")
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("%w: status %d: %s", ErrRejected, resp.StatusCode(), out.Error)
	}
	if out.Status == "rejected" {
		return "", fmt.Errorf("%w: %s", ErrRejected, out.Error)
	}
	return out.ID, nil
}
