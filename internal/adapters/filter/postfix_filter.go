package filter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/trustbyte/phishguard/internal/config"
	"github.com/trustbyte/phishguard/internal/core"
	"go.uber.org/zap"
)

// PostfixFilter implements a Postfix content filter that stamps phishing
// analysis headers onto passing mail
type PostfixFilter struct {
	service        *core.AnalysisService
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	blockHighRisk  bool
	headers        config.SMTPHeaderConfig
	postfixAddr    string
	postfixPort    int
	postfixEnabled bool
	subjectPrefix  string
	modifySubject  bool
}

// NewPostfixFilter creates a new Postfix content filter
func NewPostfixFilter(
	service *core.AnalysisService,
	logger *zap.Logger,
	listenAddr string,
	blockHighRisk bool,
	headers config.SMTPHeaderConfig,
	postfixAddr string,
	postfixPort int,
	postfixEnabled bool,
	subjectPrefix string,
	modifySubject bool,
) *PostfixFilter {
	// If subject prefix is not set but modify subject is enabled, use default prefix
	if subjectPrefix == "" && modifySubject {
		subjectPrefix = "[**PHISHING**] "
	}

	return &PostfixFilter{
		service:        service,
		logger:         logger,
		listenAddr:     listenAddr,
		blockHighRisk:  blockHighRisk,
		headers:        headers,
		postfixAddr:    postfixAddr,
		postfixPort:    postfixPort,
		postfixEnabled: postfixEnabled,
		subjectPrefix:  subjectPrefix,
		modifySubject:  modifySubject,
	}
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("Postfix filter starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail analyzes an email and returns the report.
// This is mainly used for testing or direct API calls.
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.AnalysisReport, error) {
	return f.service.AnalyzeEmail(ctx, email)
}

// sendToPostfix sends the processed email back to Postfix on the configured port using go-smtp
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, emailData []byte) error {
	postfixAddr := fmt.Sprintf("%s:%d", f.postfixAddr, f.postfixPort)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to Postfix: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			// Continue with other recipients even if one fails
		} else {
			recipientOK = true
		}
	}

	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	_, err = wc.Write(emailData)
	if err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
		// The email has already been sent at this point
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		filter:     b.filter,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
	data       []byte
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
	s.data = nil
}

// AuthPlain handles PLAIN authentication (not needed for our filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the email data
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.filter.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	// Keep a copy of the raw data for later reconstruction
	rawDataCopy := make([]byte, len(rawData))
	copy(rawDataCopy, rawData)

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.filter.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	textContent, err := extractTextFromMessage(msg)
	if err != nil {
		s.filter.logger.Error("Failed to extract text content", zap.Error(err))
		return err
	}

	email := &core.Email{
		Headers: make(map[string][]string),
		Body:    textContent,
		From:    s.sender,
		To:      s.recipients,
	}

	for key, values := range msg.Header {
		email.Headers[key] = values

		if strings.EqualFold(key, "Subject") && len(values) > 0 {
			email.Subject = values[0]
		}
	}

	senderDomain := "unknown"
	if parts := strings.Split(email.From, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	report, analysisErr := s.filter.service.AnalyzeEmail(ctx, email)
	if analysisErr != nil {
		s.filter.logger.Error("Failed to analyze email",
			zap.Error(analysisErr),
			zap.String("sender", email.From),
			zap.String("sender_domain", senderDomain))

		// Fall back to a pass-through verdict so mail keeps flowing
		report = &core.AnalysisReport{
			OverallAssessment: core.OverallAssessment{
				Label:      core.LabelSafe,
				Confidence: 0,
				RiskLevel:  core.RiskSafe,
				Summary:    fmt.Sprintf("Error during analysis: %v", analysisErr),
			},
		}
	}

	assessment := report.OverallAssessment
	isPhishing := report.IsPhishing()

	// Only reject when analysis actually succeeded
	if s.filter.blockHighRisk && analysisErr == nil && assessment.RiskLevel == core.RiskHigh {
		s.filter.logger.Info("Rejecting high risk email",
			zap.String("from", email.From),
			zap.String("sender_domain", senderDomain),
			zap.Int("confidence", assessment.Confidence),
			zap.Strings("red_flags", report.RedFlags))
		return fmt.Errorf("550 Rejected as phishing (confidence: %d)", assessment.Confidence)
	}

	var modifiedEmail bytes.Buffer

	// Stamp analysis headers first
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.headers.Status, assessment.Label)
	fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.headers.Risk, assessment.RiskLevel)
	fmt.Fprintf(&modifiedEmail, "%s: %d\r\n", s.filter.headers.Confidence, assessment.Confidence)
	if len(report.RedFlags) > 0 {
		fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", s.filter.headers.Flags, strings.Join(report.RedFlags, "; "))
	}

	if analysisErr != nil {
		fmt.Fprintf(&modifiedEmail, "X-Phish-Analysis-Error: %s\r\n", analysisErr.Error())
	}

	if isPhishing && s.filter.modifySubject && s.filter.subjectPrefix != "" {
		originalSubject := msg.Header.Get("Subject")

		decodedSubject, err := decodeEncodedHeader(originalSubject)
		if err != nil {
			decodedSubject = originalSubject
		}

		if !strings.HasPrefix(decodedSubject, s.filter.subjectPrefix) {
			newSubject := s.filter.subjectPrefix + decodedSubject

			fmt.Fprintf(&modifiedEmail, "Subject: %s\r\n", newSubject)

			for key, values := range msg.Header {
				if !strings.EqualFold(key, "Subject") {
					for _, value := range values {
						fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
					}
				}
			}
		} else {
			for key, values := range msg.Header {
				for _, value := range values {
					fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
				}
			}
		}
	} else {
		for key, values := range msg.Header {
			for _, value := range values {
				fmt.Fprintf(&modifiedEmail, "%s: %s\r\n", key, value)
			}
		}
	}

	fmt.Fprintf(&modifiedEmail, "\r\n")

	// Find where the original body starts in the raw data so MIME parts and
	// attachments survive untouched
	bodyStartIndex := bytes.Index(rawDataCopy, []byte("\r\n\r\n"))
	if bodyStartIndex == -1 {
		bodyStartIndex = bytes.Index(rawDataCopy, []byte("\n\n"))
		if bodyStartIndex == -1 {
			bodyBytes, err := io.ReadAll(msg.Body)
			if err != nil {
				s.filter.logger.Error("Failed to read message body", zap.Error(err))
				return err
			}
			modifiedEmail.Write(bodyBytes)
		} else {
			modifiedEmail.Write(rawDataCopy[bodyStartIndex+2:])
		}
	} else {
		modifiedEmail.Write(rawDataCopy[bodyStartIndex+4:])
	}

	if s.filter.postfixEnabled {
		if err := s.filter.sendToPostfix(s.sender, s.recipients, modifiedEmail.Bytes()); err != nil {
			s.filter.logger.Error("Failed to send email back to Postfix",
				zap.Error(err),
				zap.String("sender", email.From))
			return err
		}
	} else {
		s.filter.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
	}

	s.filter.logger.Info("Processed email",
		zap.String("from", email.From),
		zap.String("sender_domain", senderDomain),
		zap.String("label", assessment.Label),
		zap.String("risk_level", assessment.RiskLevel),
		zap.Int("confidence", assessment.Confidence))

	return nil
}

// Logout handles SMTP logout (not needed for our filter)
func (s *smtpSession) Logout() error {
	return nil
}
