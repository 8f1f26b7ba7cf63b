// Package stcpay integrates with the STC Pay direct payment API used for
// premium subscription purchases. A sandbox mode simulates the full
// authorize/confirm flow in memory so the payment path works without
// merchant credentials.
package stcpay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"colorspot-server/internal/infra"
)

var (
	// ErrMissingMerchant indicates the client has no merchant credentials.
	ErrMissingMerchant = errors.New("stcpay: merchant credentials are required")
	// ErrSessionNotFound indicates an unknown or expired payment reference.
	ErrSessionNotFound = errors.New("stcpay: payment session not found")
	// ErrDeclined indicates the payment was rejected by STC Pay.
	ErrDeclined = errors.New("stcpay: payment declined")
	// ErrInvalidOTP indicates the confirmation code did not match.
	ErrInvalidOTP = errors.New("stcpay: invalid otp")
)

// Options configures the STC Pay client.
type Options struct {
	MerchantID     string
	MerchantKey    string
	BaseURL        string
	Sandbox        bool
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs direct payment authorize/confirm calls against STC Pay.
type Client struct {
	merchantID  string
	merchantKey string
	baseURL     string
	sandbox     bool
	httpClient  *http.Client
	logger      *infra.Logger

	mu       sync.Mutex
	sessions map[string]*sandboxSession
}

type sandboxSession struct {
	otpReference string
	amountSAR    float64
	mobile       string
	createdAt    time.Time
}

// PaymentRequest starts a subscription payment.
type PaymentRequest struct {
	AmountSAR    float64
	MobileNumber string
	Description  string
}

// PaymentSession is the pending payment awaiting OTP confirmation.
type PaymentSession struct {
	PaymentRef   string
	OTPReference string
	ExpiresAt    time.Time
}

// ConfirmRequest completes a pending payment with the customer OTP.
type ConfirmRequest struct {
	PaymentRef   string
	OTPReference string
	OTPCode      string
}

type authorizeRequest struct {
	MerchantID   string  `json:"MerchantId"`
	BranchID     string  `json:"BranchId"`
	MobileNo     string  `json:"MobileNo"`
	Amount       float64 `json:"Amount"`
	MerchantNote string  `json:"MerchantNote"`
}

type authorizeResponse struct {
	DirectPaymentAuthorizeV4ResponseMessage struct {
		OtpReference     string `json:"OtpReference"`
		STCPayPmtRefence string `json:"STCPayPmtReference"`
		ExpiryDuration   int    `json:"ExpiryDuration"`
	} `json:"DirectPaymentAuthorizeV4ResponseMessage"`
	Code    string `json:"Code"`
	Message string `json:"Text"`
}

type confirmRequestBody struct {
	OtpReference     string `json:"OtpReference"`
	OtpValue         string `json:"OtpValue"`
	STCPayPmtRefence string `json:"STCPayPmtReference"`
}

type confirmResponse struct {
	DirectPaymentConfirmV4ResponseMessage struct {
		PaymentStatus int `json:"PaymentStatus"`
	} `json:"DirectPaymentConfirmV4ResponseMessage"`
	Code    string `json:"Code"`
	Message string `json:"Text"`
}

// NewClient constructs the payment client. Sandbox mode requires no
// credentials.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.stcpay.com.sa"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		merchantID:  strings.TrimSpace(opts.MerchantID),
		merchantKey: strings.TrimSpace(opts.MerchantKey),
		baseURL:     baseURL,
		sandbox:     opts.Sandbox,
		httpClient:  httpClient,
		logger:      logger,
		sessions:    make(map[string]*sandboxSession),
	}
}

// Sandbox reports whether the client simulates payments locally.
func (c *Client) Sandbox() bool {
	return c.sandbox
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.merchantID != "" && c.merchantKey != ""
}

// Authorize starts a payment. STC Pay sends the customer an OTP and the
// returned session carries the references needed to confirm it.
func (c *Client) Authorize(ctx context.Context, req PaymentRequest) (*PaymentSession, error) {
	if req.AmountSAR <= 0 {
		return nil, errors.New("stcpay: amount must be positive")
	}
	mobile := strings.TrimSpace(req.MobileNumber)
	if mobile == "" {
		return nil, errors.New("stcpay: mobile number is required")
	}
	if c.sandbox {
		return c.sandboxAuthorize(ctx, req.AmountSAR, mobile)
	}
	if !c.HasCredentials() {
		return nil, ErrMissingMerchant
	}

	payload := authorizeRequest{
		MerchantID:   c.merchantID,
		BranchID:     "main",
		MobileNo:     mobile,
		Amount:       req.AmountSAR,
		MerchantNote: strings.TrimSpace(req.Description),
	}
	var decoded authorizeResponse
	if err := c.post(ctx, "/DirectPayment/V4/DirectPaymentAuthorize", payload, &decoded); err != nil {
		return nil, err
	}
	if decoded.Code != "" && decoded.Code != "0" {
		return nil, fmt.Errorf("stcpay: authorize failed: %s (%s)", decoded.Message, decoded.Code)
	}
	msg := decoded.DirectPaymentAuthorizeV4ResponseMessage
	if msg.STCPayPmtRefence == "" {
		return nil, errors.New("stcpay: empty payment reference")
	}
	expiry := time.Duration(msg.ExpiryDuration) * time.Second
	if expiry <= 0 {
		expiry = 5 * time.Minute
	}
	c.logger.Debug().
		Str("payment_ref", msg.STCPayPmtRefence).
		Float64("amount_sar", req.AmountSAR).
		Msg("stcpay: payment authorized")
	return &PaymentSession{
		PaymentRef:   msg.STCPayPmtRefence,
		OTPReference: msg.OtpReference,
		ExpiresAt:    time.Now().Add(expiry),
	}, nil
}

// Confirm completes a pending payment with the OTP the customer received.
func (c *Client) Confirm(ctx context.Context, req ConfirmRequest) error {
	if strings.TrimSpace(req.PaymentRef) == "" {
		return errors.New("stcpay: payment reference is required")
	}
	if c.sandbox {
		return c.sandboxConfirm(ctx, req)
	}
	if !c.HasCredentials() {
		return ErrMissingMerchant
	}

	payload := confirmRequestBody{
		OtpReference:     req.OTPReference,
		OtpValue:         req.OTPCode,
		STCPayPmtRefence: req.PaymentRef,
	}
	var decoded confirmResponse
	if err := c.post(ctx, "/DirectPayment/V4/DirectPaymentConfirm", payload, &decoded); err != nil {
		return err
	}
	if decoded.Code != "" && decoded.Code != "0" {
		return fmt.Errorf("stcpay: confirm failed: %s (%s)", decoded.Message, decoded.Code)
	}
	// PaymentStatus 2 is "Paid" in the STC Pay direct payment API.
	if decoded.DirectPaymentConfirmV4ResponseMessage.PaymentStatus != 2 {
		return ErrDeclined
	}
	c.logger.Debug().Str("payment_ref", req.PaymentRef).Msg("stcpay: payment confirmed")
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("stcpay: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("stcpay: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-ClientId", c.merchantID)
	httpReq.Header.Set("X-ClientKey", c.merchantKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("stcpay: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("stcpay: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("stcpay: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("stcpay: decode response: %w", err)
	}
	return nil
}

// sandboxDeclineSuffix marks mobile numbers whose payments always decline,
// so client integrations can exercise the failure path.
const sandboxDeclineSuffix = "0000"

func (c *Client) sandboxAuthorize(ctx context.Context, amountSAR float64, mobile string) (*PaymentSession, error) {
	if err := sandboxLatency(ctx); err != nil {
		return nil, err
	}
	session := &sandboxSession{
		otpReference: uuid.NewString(),
		amountSAR:    amountSAR,
		mobile:       mobile,
		createdAt:    time.Now(),
	}
	ref := "SBX-" + uuid.NewString()
	c.mu.Lock()
	c.sessions[ref] = session
	c.mu.Unlock()
	c.logger.Debug().Str("payment_ref", ref).Msg("stcpay: sandbox payment authorized")
	return &PaymentSession{
		PaymentRef:   ref,
		OTPReference: session.otpReference,
		ExpiresAt:    session.createdAt.Add(5 * time.Minute),
	}, nil
}

func (c *Client) sandboxConfirm(ctx context.Context, req ConfirmRequest) error {
	if err := sandboxLatency(ctx); err != nil {
		return err
	}
	c.mu.Lock()
	session, ok := c.sessions[req.PaymentRef]
	if ok {
		delete(c.sessions, req.PaymentRef)
	}
	c.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	if req.OTPReference != session.otpReference {
		return ErrInvalidOTP
	}
	if len(req.OTPCode) != 6 {
		return ErrInvalidOTP
	}
	if strings.HasSuffix(session.mobile, sandboxDeclineSuffix) {
		return ErrDeclined
	}
	return nil
}

func sandboxLatency(ctx context.Context) error {
	select {
	case <-time.After(50 * time.Millisecond):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
