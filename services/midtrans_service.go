package services

import (
	"bytes"
	"context"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/utils"
)

// MidtransConfig holds Midtrans configuration
type MidtransConfig struct {
	ServerKey    string
	ClientKey    string
	IsProduction bool
	Bank         string
	// BaseURL overrides the API host; empty picks sandbox or production.
	BaseURL string
}

// MidtransService charges bank transfers through the Midtrans Core API.
type MidtransService struct {
	config     *MidtransConfig
	httpClient *http.Client
}

// MidtransResponse represents Midtrans API response
type MidtransResponse struct {
	StatusCode        string `json:"status_code"`
	StatusMessage     string `json:"status_message"`
	TransactionID     string `json:"transaction_id"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"`
	ExpiryTime        string `json:"expiry_time"`
	VANumbers         []struct {
		Bank     string `json:"bank"`
		VANumber string `json:"va_number"`
	} `json:"va_numbers"`
	PermataVANumber string `json:"permata_va_number"`
}

// VANumber returns the virtual account the customer has to pay into.
func (r *MidtransResponse) VANumber() string {
	if len(r.VANumbers) > 0 {
		return r.VANumbers[0].VANumber
	}
	return r.PermataVANumber
}

// MidtransNotification is the body Midtrans posts to the payment callback.
type MidtransNotification struct {
	OrderID           string `json:"order_id" binding:"required"`
	StatusCode        string `json:"status_code" binding:"required"`
	GrossAmount       string `json:"gross_amount" binding:"required"`
	SignatureKey      string `json:"signature_key" binding:"required"`
	TransactionStatus string `json:"transaction_status" binding:"required"`
	TransactionID     string `json:"transaction_id"`
	PaymentType       string `json:"payment_type"`
}

func NewMidtransService(config *MidtransConfig) *MidtransService {
	if config.Bank == "" {
		config.Bank = "bca"
	}
	return &MidtransService{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ValidateConfig validates Midtrans configuration
func (ms *MidtransService) ValidateConfig() error {
	if ms.config.ServerKey == "" {
		return fmt.Errorf("MIDTRANS_SERVER_KEY is not set")
	}
	if ms.config.ClientKey == "" {
		return fmt.Errorf("MIDTRANS_CLIENT_KEY is not set")
	}
	return nil
}

// ChargeBankTransfer opens a virtual account for orderID.
func (ms *MidtransService) ChargeBankTransfer(ctx context.Context, orderID string, amount float64, customerName, customerEmail string) (*MidtransResponse, error) {
	payload := map[string]interface{}{
		"payment_type": "bank_transfer",
		"transaction_details": map[string]interface{}{
			"order_id":     orderID,
			"gross_amount": int64(amount),
		},
		"bank_transfer": map[string]interface{}{
			"bank": ms.config.Bank,
		},
		"customer_details": map[string]interface{}{
			"first_name": customerName,
			"email":      customerEmail,
		},
		"item_details": []map[string]interface{}{
			{
				"id":       orderID,
				"price":    int64(amount),
				"quantity": 1,
				"name":     "Service Payment",
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ms.getBaseURL()+"/v2/charge", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := ms.do(req)
	if err != nil {
		return nil, err
	}

	var midtransResp MidtransResponse
	if err := json.Unmarshal(body, &midtransResp); err != nil {
		return nil, fmt.Errorf("error unmarshaling response: %v", err)
	}
	// Core API reports charge errors in the body with HTTP 200.
	if midtransResp.StatusCode != "" && midtransResp.StatusCode[0] != '2' {
		return nil, fmt.Errorf("Midtrans API error: %s %s", midtransResp.StatusCode, midtransResp.StatusMessage)
	}

	utils.InfoLogger.Printf("Midtrans charge created for %s (va %s)", orderID, midtransResp.VANumber())
	return &midtransResp, nil
}

// CheckTransactionStatus checks transaction status from Midtrans
func (ms *MidtransService) CheckTransactionStatus(ctx context.Context, orderID string) (models.PaymentStatus, error) {
	url := fmt.Sprintf("%s/v2/%s/status", ms.getBaseURL(), orderID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %v", err)
	}

	body, err := ms.do(req)
	if err != nil {
		return "", err
	}

	var statusResp struct {
		TransactionStatus string `json:"transaction_status"`
	}
	if err := json.Unmarshal(body, &statusResp); err != nil {
		return "", fmt.Errorf("error unmarshaling response: %v", err)
	}

	status, ok := MapTransactionStatus(statusResp.TransactionStatus)
	if !ok {
		return "", fmt.Errorf("unknown transaction status %q", statusResp.TransactionStatus)
	}
	return status, nil
}

func (ms *MidtransService) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(ms.config.ServerKey+":")))

	resp, err := ms.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %v", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		utils.ErrorLogger.Printf("Midtrans %s %s failed with %d", req.Method, req.URL.Path, resp.StatusCode)
		return nil, fmt.Errorf("Midtrans API error: %s", string(body))
	}
	return body, nil
}

// ValidateSignature validates Midtrans signature
func (ms *MidtransService) ValidateSignature(orderID, statusCode, grossAmount, signature string) bool {
	signatureString := fmt.Sprintf("%s%s%s%s", orderID, statusCode, grossAmount, ms.config.ServerKey)
	hash := sha512.New()
	hash.Write([]byte(signatureString))
	calculatedSignature := hex.EncodeToString(hash.Sum(nil))
	return calculatedSignature == signature
}

// MapTransactionStatus maps Midtrans transaction status to a payment status.
func MapTransactionStatus(status string) (models.PaymentStatus, bool) {
	switch status {
	case "capture", "settlement":
		return models.PaymentCompleted, true
	case "pending", "authorize":
		return models.PaymentPending, true
	case "deny", "cancel", "expire", "failure":
		return models.PaymentFailed, true
	case "refund", "partial_refund":
		return models.PaymentRefunded, true
	default:
		return "", false
	}
}

// getBaseURL returns the appropriate Midtrans API base URL
func (ms *MidtransService) getBaseURL() string {
	if ms.config.BaseURL != "" {
		return ms.config.BaseURL
	}
	if ms.config.IsProduction {
		return "https://api.midtrans.com"
	}
	return "https://api.sandbox.midtrans.com"
}
