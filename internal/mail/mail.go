package mail

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Sender TLS直连的SMTP发送器
type Sender struct {
	Host     string
	Port     string
	From     string
	Password string
}

// NewSender 端口留空时默认465
func NewSender(host, port, from, password string) *Sender {
	if port == "" {
		port = "465"
	}
	return &Sender{Host: host, Port: port, From: from, Password: password}
}

// Send 发送一封HTML邮件
func (s *Sender) Send(to, subject, body string) error {
	if s.Host == "" || s.From == "" || s.Password == "" {
		return fmt.Errorf("邮件配置不完整，请检查 smtp_server/from/password")
	}

	// 构建邮件内容
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.From, to, subject, body)

	// 使用 TLS 连接（多数国内邮箱要求SSL）
	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         s.Host,
	}

	conn, err := tls.Dial("tcp", s.Host+":"+s.Port, tlsConfig)
	if err != nil {
		return fmt.Errorf("连接邮件服务器失败: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		return fmt.Errorf("创建SMTP客户端失败: %w", err)
	}
	defer client.Close()

	// 认证
	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("邮件认证失败: %w", err)
	}

	// 设置发件人和收件人
	if err := client.Mail(s.From); err != nil {
		return fmt.Errorf("设置发件人失败: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("设置收件人失败: %w", err)
	}

	// 发送邮件内容
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("获取写入器失败: %w", err)
	}
	if _, err = w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("写入邮件内容失败: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("关闭写入器失败: %w", err)
	}

	return client.Quit()
}

// SendToAll 逐个收件人发送，记录失败并返回最后一个错误
func (s *Sender) SendToAll(recipients []string, subject, body string) error {
	var lastErr error
	for _, email := range recipients {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if err := s.Send(email, subject, body); err != nil {
			lastErr = err
			log.Printf("发送邮件到 %s 失败: %v", email, err)
		} else {
			log.Printf("邮件已发送到 %s", email)
		}
	}
	return lastErr
}
