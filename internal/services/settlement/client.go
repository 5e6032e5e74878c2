// Package settlement wraps the external disbursement gateway: request
// signing, merchant cash-out and hosted top-up links. With no gateway
// credentials configured the client runs in mock mode and returns
// deterministic success payloads, matching the demo setup.
package settlement

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// Gateway is the settlement contract consumed by the lifecycle engine.
type Gateway interface {
	Disburse(ctx context.Context, req DisbursementRequest) (*DisbursementResult, error)
	CreatePaymentLink(ctx context.Context, amount int64) (string, error)
}

// Config holds gateway credentials; all fields optional (mock mode).
type Config struct {
	BaseURL     string
	MerchantID  string
	PrivateKey  string // PEM or bare base64
	RedirectURL string
	Timeout     time.Duration
}

// Client implements Gateway over HTTP.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	merchantID  string
	key         *rsa.PrivateKey
	redirectURL string

	now       func() time.Time
	requestID func() string
}

// NewClient builds a gateway client. An unset base URL or key switches
// the client to mock mode.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	var key *rsa.PrivateKey
	if cfg.PrivateKey != "" {
		parsed, err := ParsePrivateKey(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		key = parsed
	}

	merchantID := cfg.MerchantID
	if merchantID == "" {
		merchantID = "MOCK_MERCHANT"
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		baseURL:     cfg.BaseURL,
		merchantID:  merchantID,
		key:         key,
		redirectURL: cfg.RedirectURL,
		now:         time.Now,
	}
	c.requestID = func() string { return fmt.Sprintf("%d", c.now().UnixNano()) }
	return c, nil
}

func (c *Client) mock() bool {
	return c.baseURL == "" || c.key == nil
}

// Disburse pays out merchant funds to a bank account. Failures are
// always *GatewayError so the caller can surface the gateway's text.
func (c *Client) Disburse(ctx context.Context, req DisbursementRequest) (*DisbursementResult, error) {
	if c.mock() {
		log.Info().
			Int64("amount", req.Amount).
			Str("bank", req.BankCode).
			Str("account", req.AccountNo).
			Msg("mock gateway disbursement")
		return &DisbursementResult{
			RequestNo:      fmt.Sprintf("REMIT-%d", c.now().UnixMilli()),
			Status:         "SUCCESS",
			SettlementTime: Timestamp(c.now()),
		}, nil
	}

	wire := disburseWire{
		MerchantID:  c.merchantID,
		RequestNo:   fmt.Sprintf("REMIT-%s", c.requestID()),
		Amount:      formatAmount(req.Amount),
		BankCode:    req.BankCode,
		AccountNo:   req.AccountNo,
		AccountName: req.AccountName,
	}

	resp, err := c.post(ctx, disburseEndpoint, wire)
	if err != nil {
		return nil, err
	}
	if resp.envelope.ErrCode != "0" {
		return nil, &GatewayError{
			Code:    resp.envelope.ErrCode,
			Message: resp.envelope.ErrCodeDes,
			Raw:     resp.raw,
		}
	}
	return &DisbursementResult{
		RequestNo:      resp.envelope.RequestNo,
		Status:         resp.envelope.Status,
		SettlementTime: resp.envelope.SettlementTime,
		Raw:            resp.raw,
	}, nil
}

// CreatePaymentLink requests a hosted cashier URL for a top-up.
func (c *Client) CreatePaymentLink(ctx context.Context, amount int64) (string, error) {
	requestID := c.requestID()
	if c.mock() {
		return fmt.Sprintf("https://sit-pay.example/h5/%s", requestID), nil
	}

	wire := createLinkWire{
		MerchantID:      c.merchantID,
		MerchantTradeNo: fmt.Sprintf("TOPUP-%s", requestID),
		RequestID:       requestID,
		Amount:          formatAmount(amount),
		ProductName:     "QunciPay Top Up",
		PhoneNumber:     "081234567890", // required by the HTML5 cashier
		RedirectURL:     c.redirectURL,
		Lang:            "en",
	}

	resp, err := c.post(ctx, createLinkEndpoint, wire)
	if err != nil {
		return "", err
	}
	if resp.envelope.ErrCode != "0" || resp.envelope.URL == "" {
		return "", &GatewayError{
			Code:    resp.envelope.ErrCode,
			Message: resp.envelope.ErrCodeDes,
			Raw:     resp.raw,
		}
	}
	return resp.envelope.URL, nil
}

type gatewayResponse struct {
	envelope gatewayWire
	raw      json.RawMessage
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) (*gatewayResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &GatewayError{Code: CodeBadResponse, Message: err.Error()}
	}

	timestamp := Timestamp(c.now())
	signature, err := Signature(http.MethodPost, endpoint, body, timestamp, c.key)
	if err != nil {
		return nil, &GatewayError{Code: CodeBadResponse, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &GatewayError{Code: CodeUnreachable, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json;charset=utf-8")
	req.Header.Set("X-TIMESTAMP", timestamp)
	req.Header.Set("X-SIGNATURE", signature)
	req.Header.Set("X-PARTNER-ID", c.merchantID)
	req.Header.Set("X-REQUEST-ID", c.requestID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &GatewayError{Code: CodeUnreachable, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &GatewayError{Code: CodeBadResponse, Message: err.Error()}
	}

	var envelope gatewayWire
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &GatewayError{
			Code:    CodeBadResponse,
			Message: "invalid gateway response",
			Raw:     raw,
		}
	}
	return &gatewayResponse{envelope: envelope, raw: raw}, nil
}

// formatAmount renders minor units as the gateway's "12345.00" string.
func formatAmount(amount int64) string {
	return fmt.Sprintf("%d.00", amount)
}
