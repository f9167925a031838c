package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"photo-portfolio/pkg/models"
)

const contactFromName = "Portfolio Contact Form"

var (
	// ErrInvalidSubmission is returned when a required field is missing or malformed
	ErrInvalidSubmission = errors.New("invalid contact submission")

	// ErrRelayNotConfigured is returned when no relay access key is set
	ErrRelayNotConfigured = errors.New("contact relay access key not configured")

	// ErrRelayRejected is returned when the relay answers without success
	ErrRelayRejected = errors.New("contact relay rejected submission")
)

var stripTagsPolicy = bluemonday.StrictPolicy()

type relayRequest struct {
	AccessKey string `json:"access_key"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
	FromName  string `json:"from_name"`
}

type relayResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SubmitContact validates a contact form submission and forwards it to the
// form relay. Nothing is stored locally.
func (s *Service) SubmitContact(ctx context.Context, submission models.ContactSubmission) error {
	submission, err := CleanSubmission(submission)
	if err != nil {
		return err
	}
	if s.config.RelayAccessKey == "" {
		return ErrRelayNotConfigured
	}

	body, err := json.Marshal(relayRequest{
		AccessKey: s.config.RelayAccessKey,
		Name:      submission.Name,
		Email:     submission.Email,
		Subject:   submission.Subject,
		Message:   submission.Message,
		FromName:  contactFromName,
	})
	if err != nil {
		return fmt.Errorf("encoding relay request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.RelayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach contact relay: %w", err)
	}
	defer resp.Body.Close()

	var result relayResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("%w (status %d): %s", ErrRelayRejected, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if !result.Success {
		message := result.Message
		if message == "" {
			message = "Something went wrong"
		}
		return fmt.Errorf("%w: %s", ErrRelayRejected, message)
	}

	log.Printf("Contact message relayed from %s", submission.Email)
	return nil
}

// CleanSubmission strips markup from every field and checks that all of
// them are present and that the email address parses.
func CleanSubmission(submission models.ContactSubmission) (models.ContactSubmission, error) {
	cleaned := models.ContactSubmission{
		Name:    sanitize(submission.Name),
		Email:   sanitize(submission.Email),
		Subject: sanitize(submission.Subject),
		Message: sanitize(submission.Message),
	}

	switch {
	case cleaned.Name == "":
		return cleaned, fmt.Errorf("%w: name is required", ErrInvalidSubmission)
	case cleaned.Email == "":
		return cleaned, fmt.Errorf("%w: email is required", ErrInvalidSubmission)
	case cleaned.Subject == "":
		return cleaned, fmt.Errorf("%w: subject is required", ErrInvalidSubmission)
	case cleaned.Message == "":
		return cleaned, fmt.Errorf("%w: message is required", ErrInvalidSubmission)
	}

	addr, err := mail.ParseAddress(cleaned.Email)
	if err != nil {
		return cleaned, fmt.Errorf("%w: email address is not valid", ErrInvalidSubmission)
	}
	cleaned.Email = addr.Address

	return cleaned, nil
}

// sanitize removes HTML while keeping plain text characters such as "&"
func sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripTagsPolicy.Sanitize(s)))
}
