// Package services отправляет администратору письма по уведомлениям планировщика.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/storefront/internal/lib/phone"
	"github.com/magabrotheeeer/storefront/internal/lib/sl"
	"github.com/magabrotheeeer/storefront/internal/lib/smtp"
	"github.com/magabrotheeeer/storefront/internal/models"
)

// SenderService отправка писем администратору.
type SenderService struct {
	transport smtp.TransportInterface
	adminTo   string
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(transport smtp.TransportInterface, adminEmail string, log *slog.Logger) *SenderService {
	return &SenderService{
		transport: transport,
		adminTo:   adminEmail,
		log:       log,
	}
}

// SendCredentialAlert сообщает о том, что общим учётным данным пора сменить пароль.
func (s *SenderService) SendCredentialAlert(_ context.Context, body []byte) error {
	var message models.CredentialAlertMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := fmt.Sprintf("Rotação de senha: %s (%s)", message.Service, message.Email)
	bodyText := fmt.Sprintf("Conta %s do serviço %s publicada em %s (%d dias).\n\n%s\n\nClientes usando esta conta: %d.",
		message.Email, message.Service, message.PublishedAt.Format("02/01/2006"),
		message.AgeDays, message.Alert, message.AssignedTo)

	return s.sendEmail([]string{s.adminTo}, subject, bodyText)
}

// SendExpiringClient сообщает о клиенте, у которого скоро заканчивается подписка.
func (s *SenderService) SendExpiringClient(_ context.Context, body []byte) error {
	var message models.ExpiringClientMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	name := message.ClientName
	if name == "" {
		name = "Cliente"
	}
	subject := fmt.Sprintf("Assinatura vencendo: %s (%s)", name, phone.Mask(message.PhoneNumber))
	bodyText := fmt.Sprintf("%s (%s) tem o acesso ao %s vencendo em %s, faltam %d dia(s).",
		name, message.PhoneNumber, message.Service, message.Expiry.Format("02/01/2006"), message.DaysLeft)

	return s.sendEmail([]string{s.adminTo}, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("failed to close SMTP client", sl.Err(err))
		}
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get Data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close Data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
