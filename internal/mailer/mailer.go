package mailer

import (
	"fmt"
	"log/slog"
	"strings"

	errors "github.com/goliatone/go-errors"
	"github.com/wneessen/go-mail"
)

// Config carries the SMTP connection settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      bool

	// FrontendURL is the base the verification link points at.
	FrontendURL string
}

// Sender delivers a fully composed message. Split out so tests and the
// disabled mode can swap the SMTP transport.
type Sender interface {
	Send(to, subject, body string) error
}

// Service composes and delivers account emails. Delivery runs on its own
// goroutine: signup and login latency never waits on an SMTP round trip, and
// a provider outage degrades to a logged error.
type Service struct {
	sender      Sender
	frontendURL string
	logger      *slog.Logger
}

// New builds a Service over a real SMTP sender.
func New(cfg Config, logger *slog.Logger) (*Service, error) {
	if cfg.Host == "" {
		return nil, errors.New("SMTP host is required", errors.CategoryBadInput)
	}
	if cfg.From == "" {
		return nil, errors.New("SMTP from address is required", errors.CategoryBadInput)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		sender:      &smtpSender{cfg: cfg},
		frontendURL: strings.TrimSuffix(cfg.FrontendURL, "/"),
		logger:      logger,
	}, nil
}

// NewWithSender builds a Service over a custom transport.
func NewWithSender(sender Sender, frontendURL string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		sender:      sender,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		logger:      logger,
	}
}

// SendVerificationEmail dispatches the account verification message. It
// returns immediately; failures are logged, never surfaced to the caller.
func (s *Service) SendVerificationEmail(to, name, token string) {
	verifyURL := fmt.Sprintf("%s/verify-email/%s", s.frontendURL, token)

	subject := "Verify your FilmHub account"
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to FilmHub. Confirm your email address by opening the link below:\n\n%s\n\nIf you did not sign up, you can ignore this message.\n",
		name, verifyURL,
	)

	go func() {
		if err := s.sender.Send(to, subject, body); err != nil {
			s.logger.Error("verification email delivery failed", "to", to, "error", err)
			return
		}
		s.logger.Info("verification email sent", "to", to)
	}()
}

type smtpSender struct {
	cfg Config
}

func (s *smtpSender) Send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "setting from address")
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return errors.Wrap(err, errors.CategoryBadInput, "setting from address")
		}
	}

	if err := msg.To(to); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "setting to address")
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Port 465 speaks implicit TLS, everything else uses STARTTLS.
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "creating mail client")
	}

	if err := client.DialAndSend(msg); err != nil {
		return errors.Wrap(err, errors.CategoryOperation, "sending email")
	}

	return nil
}

// Discard is a Sender that drops every message. Used when SMTP is not
// configured so the rest of the system keeps working in development.
type Discard struct{}

func (Discard) Send(_, _, _ string) error { return nil }
