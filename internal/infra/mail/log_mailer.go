package mail

import (
	"context"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"

	"go.uber.org/zap"
)

// 本文を作ってログに出すだけ。SMTPホスト未設定のとき使う
type LogMailer struct {
	renderer *Renderer
	logger   *zap.Logger
}

var _ usecase.Mailer = (*LogMailer)(nil)

func NewLogMailer(renderer *Renderer, logger *zap.Logger) *LogMailer {
	return &LogMailer{renderer: renderer, logger: logger}
}

func (m *LogMailer) SendOrderConfirmation(_ context.Context, order usecase.OrderEmail, email string, name string) (bool, error) {
	r, err := m.renderer.OrderConfirmation(order, name)
	if err != nil {
		return false, err
	}
	m.logger.Info("order confirmation (not sent, smtp disabled)",
		zap.String("order_number", order.OrderNumber),
		zap.String("to", email),
		zap.String("subject", r.Subject),
		zap.Int("html_bytes", len(r.HTML)))
	return true, nil
}
