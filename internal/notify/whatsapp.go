package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WhatsAppChannel pushes admin alerts through the Twilio WhatsApp API.
type WhatsAppChannel struct {
	accountSID string
	authToken  string
	from       string
	to         string
	baseURL    string
	httpClient *http.Client
}

func NewWhatsAppChannel(accountSID, authToken, from, to, baseURL string) *WhatsAppChannel {
	return &WhatsAppChannel{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		to:         to,
		baseURL:    baseURL,
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

func (c *WhatsAppChannel) Name() string { return "whatsapp" }

func (c *WhatsAppChannel) Send(ctx context.Context, ev Event) error {
	form := url.Values{}
	form.Set("From", c.from)
	form.Set("To", c.to)
	form.Set("Body", c.render(ev))

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp send failed with status: %d", resp.StatusCode)
	}
	return nil
}

func (c *WhatsAppChannel) render(ev Event) string {
	header := "NEW ORDER"
	if ev.Kind == KindCancelled {
		header = "ORDER CANCELLED BY CUSTOMER"
	}
	return fmt.Sprintf(
		"%s\n\nOrder ID: %d\nName: %s\nPhone: %s\nAddress: %s\n\nPayment: %s\nTotal: ₹%.2f\n\nProducts:\n%s",
		header, ev.OrderID, ev.CustomerName, ev.Phone, ev.Address, ev.PaymentMethod, ev.Total, productList(ev.Items),
	)
}
