package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"photo-portfolio/pkg/models"
	"photo-portfolio/pkg/services"
)

const (
	contactSentMessage   = "Thank you! Your message has been sent."
	contactFailedMessage = "Something went wrong. Please try again later."
)

type contactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ContactPageHandler renders the empty contact form
func (h *Handler) ContactPageHandler(w http.ResponseWriter, r *http.Request) {
	log.Println("Generating Contact Page")
	h.render(w, "contact.pug", h.contactPage(r, models.ContactSubmission{}))
}

// ContactFormHandler relays a submitted HTML form and re-renders the page
// with the outcome.
func (h *Handler) ContactFormHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form data", http.StatusBadRequest)
		return
	}

	submission := models.ContactSubmission{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	}

	page := h.contactPage(r, submission)
	if err := h.gallery.SubmitContact(r.Context(), submission); err != nil {
		page.Error = contactErrorMessage(err)
		h.renderStatus(w, contactErrorStatus(err), "contact.pug", page)
		return
	}

	page.Sent = true
	page.Form = models.ContactSubmission{}
	h.render(w, "contact.pug", page)
}

// ContactFormRejected re-renders the contact page for a rate limited form
// post, keeping what the visitor typed.
func (h *Handler) ContactFormRejected(w http.ResponseWriter, r *http.Request) {
	page := h.contactPage(r, models.ContactSubmission{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Subject: r.PostFormValue("subject"),
		Message: r.PostFormValue("message"),
	})
	page.Error = rateLimitedMessage
	h.renderStatus(w, http.StatusTooManyRequests, "contact.pug", page)
}

// ContactAPIHandler relays a JSON submission
func (h *Handler) ContactAPIHandler(w http.ResponseWriter, r *http.Request) {
	var submission models.ContactSubmission
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64*1024)).Decode(&submission); err != nil {
		writeJSON(w, http.StatusBadRequest, contactResponse{Message: "Invalid request body"})
		return
	}

	if err := h.gallery.SubmitContact(r.Context(), submission); err != nil {
		writeJSON(w, contactErrorStatus(err), contactResponse{Message: contactErrorMessage(err)})
		return
	}

	writeJSON(w, http.StatusOK, contactResponse{Success: true, Message: contactSentMessage})
}

func (h *Handler) contactPage(r *http.Request, form models.ContactSubmission) models.ContactPage {
	return models.ContactPage{
		SiteName:   h.siteName,
		Title:      "Contact | " + h.siteName,
		Navigation: h.navigation(r.Context(), ""),
		Form:       form,
	}
}

// contactErrorMessage turns a relay error into text safe to show a visitor
func contactErrorMessage(err error) string {
	if errors.Is(err, services.ErrInvalidSubmission) {
		detail := strings.TrimPrefix(err.Error(), services.ErrInvalidSubmission.Error()+": ")
		return strings.ToUpper(detail[:1]) + detail[1:]
	}
	log.Printf("Contact submission failed: %v", err)
	return contactFailedMessage
}

func contactErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrRelayNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
