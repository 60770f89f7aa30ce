package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// EmailChannel sends transactional email through the Brevo HTTP API.
type EmailChannel struct {
	apiKey      string
	senderName  string
	senderEmail string
	baseURL     string
	httpClient  *http.Client
}

func NewEmailChannel(apiKey, senderName, senderEmail, baseURL string) *EmailChannel {
	return &EmailChannel{
		apiKey:      apiKey,
		senderName:  senderName,
		senderEmail: senderEmail,
		baseURL:     baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, ev Event) error {
	subject, html := c.render(ev)

	payload := map[string]any{
		"sender": map[string]string{
			"name":  c.senderName,
			"email": c.senderEmail,
		},
		"to": []map[string]string{
			{"email": ev.RecipientEmail, "name": ev.CustomerName},
		},
		"subject":     subject,
		"htmlContent": html,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email send failed with status: %d", resp.StatusCode)
	}
	return nil
}

func (c *EmailChannel) render(ev Event) (subject, html string) {
	switch ev.Kind {
	case KindWelcome:
		subject = "Welcome to IZ Security System"
		html = fmt.Sprintf(
			"<div><h2>Hello %s,</h2><p>Welcome to <strong>IZ Security System</strong>.</p><p>Your account has been successfully created.</p></div>",
			ev.CustomerName,
		)
	case KindPlaced:
		subject = fmt.Sprintf("Order Confirmation - IZ Security System (#%d)", ev.OrderID)
		html = fmt.Sprintf(
			"<div><h2>Thank you for your order, %s!</h2><p><strong>Order ID:</strong> %d</p><p><strong>Delivery Address:</strong> %s</p><p><strong>Payment Method:</strong> %s</p><h3>Products Ordered:</h3><pre>%s</pre><h3>Total Amount: ₹%.2f</h3><p>Your order is being processed.</p></div>",
			ev.CustomerName, ev.OrderID, ev.Address, ev.PaymentMethod, productList(ev.Items), ev.Total,
		)
	case KindShipped:
		subject = fmt.Sprintf("Your order #%d has been shipped", ev.OrderID)
		html = fmt.Sprintf(
			"<div><h2>Good news, %s!</h2><p>Your order #%d is on its way.</p></div>",
			ev.CustomerName, ev.OrderID,
		)
	case KindOutForDelivery:
		subject = fmt.Sprintf("Your order #%d is out for delivery", ev.OrderID)
		html = fmt.Sprintf(
			"<div><h2>%s, your order #%d is out for delivery.</h2><p>Share this code with the delivery agent to confirm receipt:</p><h3>%s</h3></div>",
			ev.CustomerName, ev.OrderID, ev.OTP,
		)
	case KindDelivered:
		subject = fmt.Sprintf("Your order #%d has been delivered", ev.OrderID)
		html = fmt.Sprintf(
			"<div><h2>Thank you, %s!</h2><p>Your order #%d has been delivered.</p></div>",
			ev.CustomerName, ev.OrderID,
		)
	case KindCancelled:
		subject = fmt.Sprintf("Your order #%d has been cancelled", ev.OrderID)
		html = fmt.Sprintf(
			"<div><h2>Hello %s,</h2><p>Your order #%d has been cancelled.</p><p><strong>Reason:</strong> %s</p></div>",
			ev.CustomerName, ev.OrderID, ev.Reason,
		)
	}
	return subject, html
}

func productList(items []Line) string {
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("%s x%d", it.Name, it.Quantity))
	}
	return strings.Join(lines, "\n")
}
