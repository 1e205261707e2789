package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"sync"

	"github.com/jordan-wright/email"
	"github.com/rs/zerolog"

	"priceoye_shop_v1/internal/config"
)

// ==================== Mailer 邮件发送 ====================

// MailMessage 一封邮件
type MailMessage struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer 邮件发送接口
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// NewMailer 配置了 SMTP 时真实发送，否则只写日志
func NewMailer(cfg config.MailConfig, log zerolog.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{log: log}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer 基于 jordan-wright/email 的 SMTP 发送
type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) Send(ctx context.Context, msg MailMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := email.NewEmail()
	e.From = m.cfg.From
	e.To = msg.To
	e.Subject = msg.Subject
	e.Text = []byte(msg.Text)
	e.HTML = []byte(msg.HTML)

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	if err := e.Send(addr, auth); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// LogMailer 本地开发用，邮件内容只写日志
type LogMailer struct {
	log zerolog.Logger
}

func (m *LogMailer) Send(_ context.Context, msg MailMessage) error {
	m.log.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("text", msg.Text).
		Msg("邮件未配置 SMTP，仅记录日志")
	return nil
}

// MemoryMailer 收集发出的邮件，供测试断言
type MemoryMailer struct {
	mu   sync.Mutex
	Sent []MailMessage
}

func (m *MemoryMailer) Send(_ context.Context, msg MailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, msg)
	return nil
}

// Last 最后一封邮件
func (m *MemoryMailer) Last() (MailMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return MailMessage{}, false
	}
	return m.Sent[len(m.Sent)-1], true
}

// ==================== 邮件模板 ====================

// linkMailData 带链接的邮件模板数据
type linkMailData struct {
	Username  string
	Link      string
	ValidDays int
}

var (
	activationMailTmpl = template.Must(template.New("activation").Parse(activationMailHTML))
	resetMailTmpl      = template.Must(template.New("reset").Parse(resetMailHTML))
)

func renderMail(tmpl *template.Template, data linkMailData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("渲染邮件模板失败: %w", err)
	}
	return buf.String(), nil
}

const activationMailHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>激活账号</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>{{.Username}}，你好：</p>
    <p>感谢注册 PriceOye。请点击下方链接激活账号：</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>链接 {{.ValidDays}} 天内有效。如果不是你本人注册，请忽略这封邮件。</p>
</body>
</html>
`

const resetMailHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>重置密码</title></head>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>{{.Username}}，你好：</p>
    <p>我们收到了重置密码的请求。请点击下方链接设置新密码：</p>
    <p><a href="{{.Link}}">{{.Link}}</a></p>
    <p>链接 {{.ValidDays}} 天内有效。如果不是你本人操作，请忽略这封邮件。</p>
</body>
</html>
`
