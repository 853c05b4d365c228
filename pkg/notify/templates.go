package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

// RSVPNotification 宾客回复后通知组织者
type RSVPNotification struct {
	EventName        string
	GuestName        string
	Name2            string
	AskPartner       bool
	Attending        bool
	PartnerAttending *bool
	Message          string
	RespondedAt      time.Time
}

var rsvpTmpl = template.Must(template.New("rsvp").Parse(`<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto; padding: 24px;">
  <h2 style="color: #1a1a1a;">Nouvelle réponse RSVP : {{.EventName}}</h2>
  <table style="width: 100%; border-collapse: collapse; margin-top: 16px;">
    <tr><td style="padding: 8px; font-weight: bold; color: #555;">Invité</td><td style="padding: 8px;">{{.GuestName}}</td></tr>
    <tr style="background: #f9f9f9;"><td style="padding: 8px; font-weight: bold; color: #555;">Réponse</td><td style="padding: 8px;">{{.StatusLabel}}</td></tr>
    {{- if .ShowPartner}}
    <tr><td style="padding: 8px; font-weight: bold; color: #555;">{{.Name2}} présent(e) ?</td><td style="padding: 8px;">{{.PartnerLabel}}</td></tr>
    {{- end}}
    {{- if .Message}}
    <tr style="background: #f9f9f9;"><td style="padding: 8px; font-weight: bold; color: #555;">Message</td><td style="padding: 8px; font-style: italic;">"{{.Message}}"</td></tr>
    {{- end}}
  </table>
  <p style="margin-top: 24px; font-size: 13px; color: #999;">Répondu le {{.Date}}</p>
</div>`))

// Email renders the organizer notification.
func (n RSVPNotification) Email(from, to string) (Email, error) {
	event := n.EventName
	if event == "" {
		event = "Mariage"
	}

	statusLabel, subjectLabel := "❌ Absent(e)", "Absent(e)"
	if n.Attending {
		statusLabel, subjectLabel = "✅ Présent(e)", "Présent(e) 🎉"
	}

	partnerLabel := "-"
	if n.PartnerAttending != nil {
		partnerLabel = "❌ Non"
		if *n.PartnerAttending {
			partnerLabel = "✅ Oui"
		}
	}

	var buf bytes.Buffer
	err := rsvpTmpl.Execute(&buf, map[string]interface{}{
		"EventName":    event,
		"GuestName":    n.GuestName,
		"StatusLabel":  statusLabel,
		"ShowPartner":  n.AskPartner && n.Name2 != "",
		"Name2":        n.Name2,
		"PartnerLabel": partnerLabel,
		"Message":      n.Message,
		"Date":         frenchDate(n.RespondedAt),
	})
	if err != nil {
		return Email{}, fmt.Errorf("render rsvp email: %w", err)
	}

	return Email{
		From:    from,
		To:      []string{to},
		Subject: fmt.Sprintf("RSVP : %s, %s", n.GuestName, subjectLabel),
		HTML:    buf.String(),
	}, nil
}

var (
	frenchDays   = [...]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}
	frenchMonths = [...]string{"janvier", "février", "mars", "avril", "mai", "juin", "juillet", "août",
		"septembre", "octobre", "novembre", "décembre"}
)

// frenchDate formats t like "mardi 3 mars 2026".
func frenchDate(t time.Time) string {
	return fmt.Sprintf("%s %d %s %d", frenchDays[t.Weekday()], t.Day(), frenchMonths[t.Month()-1], t.Year())
}

// ContactMessage 联系表单内容，字段已做 HTML 转义
type ContactMessage struct {
	Name    string
	Email   string
	Message string
	Locale  string
	SentAt  time.Time
}

var contactOwnerTmpl = template.Must(template.New("contact-owner").Parse(`<!DOCTYPE html>
<html>
  <head><meta charset="utf-8"></head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #3b82f6; color: white; padding: 20px; border-radius: 8px 8px 0 0;">
      <h1 style="margin: 0;">Nouveau message de contact</h1>
    </div>
    <div style="background-color: #f9f9f9; padding: 20px; border: 1px solid #ddd; border-top: none;">
      <p><strong>Nom :</strong> {{.Name}}</p>
      <p><strong>Email :</strong> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
      <p><strong>Message :</strong></p>
      <div style="background-color: white; padding: 15px; white-space: pre-wrap;">{{.Message}}</div>
      <p><strong>Consentement RGPD :</strong> ✓ Accordé</p>
    </div>
    <p style="font-size: 12px; color: #666; text-align: center;">Ce message a été envoyé via le formulaire de contact du site. Date : {{.Date}}</p>
  </body>
</html>`))

// OwnerEmail renders the message forwarded to the site owner.
func (c ContactMessage) OwnerEmail(from, to string) (Email, error) {
	var buf bytes.Buffer
	err := contactOwnerTmpl.Execute(&buf, map[string]interface{}{
		"Name":    template.HTML(c.Name),
		"Email":   template.HTML(c.Email),
		"Message": template.HTML(c.Message),
		"Date":    frenchDate(c.SentAt),
	})
	if err != nil {
		return Email{}, fmt.Errorf("render contact email: %w", err)
	}
	return Email{
		From:    from,
		To:      []string{to},
		ReplyTo: c.Email,
		Subject: "Nouveau message de contact de " + c.Name,
		HTML:    buf.String(),
		Headers: map[string]string{"X-Priority": "3", "X-Mailer": "wedding-site contact form"},
	}, nil
}

type confirmationText struct {
	Subject, Title, Greeting, Body, Closing, Signature, Footer string
}

var confirmations = map[string]confirmationText{
	"fr": {
		Subject:   "Confirmation de réception de votre message",
		Title:     "Merci pour votre message !",
		Greeting:  "Bonjour",
		Body:      "Nous avons bien reçu votre message et nous vous en remercions.",
		Closing:   "Notre équipe vous répondra dans les plus brefs délais.",
		Signature: "L'équipe",
		Footer:    "Cet email est envoyé automatiquement, merci de ne pas y répondre.",
	},
	"en": {
		Subject:   "Confirmation of receipt of your message",
		Title:     "Thank you for your message!",
		Greeting:  "Hello",
		Body:      "We have received your message and thank you for it.",
		Closing:   "Our team will respond to you as soon as possible.",
		Signature: "The team",
		Footer:    "This email is sent automatically, please do not reply.",
	},
	"it": {
		Subject:   "Conferma di ricezione del tuo messaggio",
		Title:     "Grazie per il tuo messaggio!",
		Greeting:  "Ciao",
		Body:      "Abbiamo ricevuto il tuo messaggio e ti ringraziamo.",
		Closing:   "Il nostro team ti risponderà il prima possibile.",
		Signature: "Il team",
		Footer:    "Questa email viene inviata automaticamente, si prega di non rispondere.",
	},
}

var confirmationTmpl = template.Must(template.New("contact-confirmation").Parse(`<!DOCTYPE html>
<html lang="{{.Locale}}">
  <head><meta charset="utf-8"></head>
  <body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #3b82f6; color: white; padding: 20px; text-align: center;"><h1 style="margin: 0;">{{.T.Title}}</h1></div>
    <div style="background-color: #f9f9f9; padding: 30px; border: 1px solid #ddd; border-top: none;">
      <p>{{.T.Greeting}} {{.Name}},</p>
      <p>{{.T.Body}}</p>
      <p>{{.T.Closing}}</p>
      <p>{{.T.Signature}}</p>
    </div>
    <p style="font-size: 12px; color: #666; text-align: center;">{{.T.Footer}}</p>
  </body>
</html>`))

// ConfirmationEmail renders the localized acknowledgement sent back to the
// sender. Unknown locales fall back to French.
func (c ContactMessage) ConfirmationEmail(from string) (Email, error) {
	loc := c.Locale
	text, ok := confirmations[loc]
	if !ok {
		loc, text = "fr", confirmations["fr"]
	}

	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, map[string]interface{}{
		"Locale": loc,
		"T":      text,
		"Name":   template.HTML(c.Name),
	})
	if err != nil {
		return Email{}, fmt.Errorf("render confirmation email: %w", err)
	}
	return Email{
		From:    from,
		To:      []string{c.Email},
		Subject: text.Subject,
		HTML:    buf.String(),
	}, nil
}
