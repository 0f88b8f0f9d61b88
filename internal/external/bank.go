package external

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"
)

// BankClient talks to the interbank payment processor handling CIB and
// EDAHABIA instruments. Requests are signed with a SHA-256 token over the
// alphabetically sorted parameters plus the merchant secret.
type BankClient struct {
	baseURL    string
	merchantID string
	secret     string
	httpClient *http.Client
}

type BankConfig struct {
	BaseURL    string
	MerchantID string
	Secret     string
	Timeout    time.Duration
}

type AuthorizeRequest struct {
	MerchantID string `json:"merchantId"`
	Token      string `json:"token"`
	Amount     int64  `json:"amount"`
	Method     string `json:"method"`
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	CVV        string `json:"cvv"`
	Expiry     string `json:"expiry"`
	OrderID    string `json:"orderId"`
}

type AuthorizeResponse struct {
	Success       bool   `json:"success"`
	TransactionID string `json:"transactionId"`
	BankReference string `json:"bankReference"`
	DeclineCode   string `json:"declineCode,omitempty"`
	DeclineReason string `json:"declineReason,omitempty"`
}

// Decline codes returned by the processor.
const (
	DeclineInsufficientFunds = "INSUFFICIENT_FUNDS"
	DeclineCardBlocked       = "CARD_BLOCKED"
)

func NewBankClient(cfg BankConfig) *BankClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &BankClient{
		baseURL:    cfg.BaseURL,
		merchantID: cfg.MerchantID,
		secret:     cfg.Secret,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (bc *BankClient) signToken(params map[string]string) string {
	params["MerchantId"] = bc.merchantID
	params["Secret"] = bc.secret

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var tokenString string
	for _, key := range keys {
		tokenString += params[key]
	}

	hash := sha256.Sum256([]byte(tokenString))
	return hex.EncodeToString(hash[:])
}

// Authorize submits a payment authorization. A processor decline comes back
// with Success=false and a decline code; transport or gateway faults are
// returned as errors.
func (bc *BankClient) Authorize(ctx context.Context, amount int64, method, cardNumber, cardHolder, cvv, expiry, orderID string) (*AuthorizeResponse, error) {
	token := bc.signToken(map[string]string{
		"Amount":  strconv.FormatInt(amount, 10),
		"Method":  method,
		"OrderId": orderID,
	})

	req := AuthorizeRequest{
		MerchantID: bc.merchantID,
		Token:      token,
		Amount:     amount,
		Method:     method,
		CardNumber: cardNumber,
		CardHolder: cardHolder,
		CVV:        cvv,
		Expiry:     expiry,
		OrderID:    orderID,
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		bc.baseURL+"/api/v1/payments/authorize", bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := bc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize payment: %w", err)
	}
	defer resp.Body.Close()

	var result AuthorizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &result, nil
}

// Refund reverses a completed transaction with the processor.
func (bc *BankClient) Refund(ctx context.Context, transactionID string, amount int64) error {
	token := bc.signToken(map[string]string{
		"Amount":        strconv.FormatInt(amount, 10),
		"TransactionId": transactionID,
	})

	reqData := map[string]interface{}{
		"merchantId":    bc.merchantID,
		"token":         token,
		"transactionId": transactionID,
		"amount":        amount,
	}

	jsonBody, err := json.Marshal(reqData)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		bc.baseURL+"/api/v1/payments/refund", bytes.NewBuffer(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := bc.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to refund payment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}
