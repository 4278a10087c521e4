package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/localmarket-hq/localmarket-backend/pkg/errors"
)

const (
	defaultBaseURL              = "https://api.goshippo.com"
	requestBodyReadLimit  int64 = 1024
	transactionStatusOK         = "SUCCESS"
)

var errAPITokenRequired = errors.New("shipping api token is required")

// Client wraps the shipping provider's rates and label-purchase APIs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the configured provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds the shipping client given an API token.
func NewClient(apiToken string, opts ...Option) (*Client, error) {
	trimmedToken := strings.TrimSpace(apiToken)
	if trimmedToken == "" {
		return nil, errAPITokenRequired
	}

	client := &Client{
		apiToken:   trimmedToken,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if client.baseURL == "" {
		client.baseURL = defaultBaseURL
	}

	return client, nil
}

// ShipmentAddress is the provider-facing address payload.
type ShipmentAddress struct {
	Name    string `json:"name"`
	Street1 string `json:"street1"`
	Street2 string `json:"street2,omitempty"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

// Parcel describes one physical package in provider units.
type Parcel struct {
	Length       string `json:"length"`
	Width        string `json:"width"`
	Height       string `json:"height"`
	DistanceUnit string `json:"distance_unit"`
	Weight       string `json:"weight"`
	MassUnit     string `json:"mass_unit"`
}

// ShipmentRequest is the payload sent to the shipment-creation API.
type ShipmentRequest struct {
	AddressFrom ShipmentAddress `json:"address_from"`
	AddressTo   ShipmentAddress `json:"address_to"`
	Parcels     []Parcel        `json:"parcels"`
	Async       bool            `json:"async"`
}

// Rate is one shipping quote returned for a shipment.
type Rate struct {
	ObjectID     string
	Amount       decimal.Decimal
	Currency     string
	Provider     string
	ServiceLevel string
	EstimatedDays int
}

// Transaction is the result of a label purchase.
type Transaction struct {
	ObjectID       string
	Status         string
	LabelURL       string
	TrackingNumber string
	Messages       []string
}

// Succeeded reports whether the provider committed the purchase.
func (t Transaction) Succeeded() bool {
	return strings.EqualFold(t.Status, transactionStatusOK)
}

// CreateShipment registers a shipment and returns the quoted rates.
func (c *Client) CreateShipment(ctx context.Context, req ShipmentRequest) ([]Rate, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shipping client not configured")
	}
	if len(req.Parcels) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one parcel is required")
	}

	var apiResp struct {
		ObjectID string `json:"object_id"`
		Status   string `json:"status"`
		Rates    []struct {
			ObjectID      string `json:"object_id"`
			Amount        string `json:"amount"`
			Currency      string `json:"currency"`
			Provider      string `json:"provider"`
			ServiceLevel  struct {
				Name string `json:"name"`
			} `json:"servicelevel"`
			EstimatedDays int `json:"estimated_days"`
		} `json:"rates"`
	}
	if err := c.post(ctx, "shipments/", req, &apiResp); err != nil {
		return nil, err
	}

	rates := make([]Rate, 0, len(apiResp.Rates))
	for _, r := range apiResp.Rates {
		amount, err := decimal.NewFromString(r.Amount)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "parse rate amount")
		}
		rates = append(rates, Rate{
			ObjectID:      r.ObjectID,
			Amount:        amount,
			Currency:      r.Currency,
			Provider:      r.Provider,
			ServiceLevel:  r.ServiceLevel.Name,
			EstimatedDays: r.EstimatedDays,
		})
	}

	return rates, nil
}

// PurchaseLabel buys the given rate and returns the label transaction.
func (c *Client) PurchaseLabel(ctx context.Context, rateID string) (*Transaction, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "shipping client not configured")
	}
	if strings.TrimSpace(rateID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rate id is required")
	}

	payload := map[string]any{
		"rate":            rateID,
		"label_file_type": "PDF",
		"async":           false,
	}

	var apiResp struct {
		ObjectID       string `json:"object_id"`
		Status         string `json:"status"`
		LabelURL       string `json:"label_url"`
		TrackingNumber string `json:"tracking_number"`
		Messages       []struct {
			Text string `json:"text"`
		} `json:"messages"`
	}
	if err := c.post(ctx, "transactions/", payload, &apiResp); err != nil {
		return nil, err
	}

	messages := make([]string, 0, len(apiResp.Messages))
	for _, m := range apiResp.Messages {
		if strings.TrimSpace(m.Text) != "" {
			messages = append(messages, m.Text)
		}
	}

	return &Transaction{
		ObjectID:       apiResp.ObjectID,
		Status:         apiResp.Status,
		LabelURL:       apiResp.LabelURL,
		TrackingNumber: apiResp.TrackingNumber,
		Messages:       messages,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, dest any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal shipping request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), bytes.NewReader(payload))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build shipping request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "ShippoToken "+c.apiToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute shipping request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, requestBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "shipping request failed")
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode shipping response")
	}
	return nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
