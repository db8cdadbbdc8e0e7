package oxapay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Service talks to the OxaPay merchant API. All credentials and URLs come in
// through the constructor so handlers and tests never read the environment.
type Service struct {
	Client      *http.Client
	Merchant    string
	BaseURL     string
	CallbackURL string
	ReturnURL   string
}

func NewService(merchant, baseURL, callbackURL, returnURL string) *Service {
	return &Service{
		Client:      &http.Client{Timeout: 15 * time.Second},
		Merchant:    merchant,
		BaseURL:     baseURL,
		CallbackURL: callbackURL,
		ReturnURL:   returnURL,
	}
}

type paymentRequest struct {
	Merchant          string `json:"merchant"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	LifeTime          int    `json:"lifeTime"`
	FeePaidByPayer    int    `json:"feePaidByPayer"`
	UnderPaidCoverage int    `json:"underPaidCoverage"`
	CallbackURL       string `json:"callbackUrl"`
	ReturnURL         string `json:"returnUrl"`
	Description       string `json:"description"`
	OrderID           string `json:"orderId"`
	Email             string `json:"email"`
}

type paymentResponse struct {
	Result  int    `json:"result"`
	Message string `json:"message"`
	PayLink string `json:"payLink"`
	TrackID int64  `json:"trackId"`
}

// CreatePayment requests a hosted payment link for an order. The returned
// trackId identifies the payment for later inquiry calls.
func (s *Service) CreatePayment(ctx context.Context, amount, email, orderID string) (string, int64, error) {
	reqBody := paymentRequest{
		Merchant:    s.Merchant,
		Amount:      amount,
		Currency:    "USD",
		LifeTime:    30,
		CallbackURL: s.CallbackURL,
		ReturnURL:   fmt.Sprintf("%s?orderId=%s", s.ReturnURL, orderID),
		Description: "Order #" + orderID,
		OrderID:     orderID,
		Email:       email,
	}

	var apiResp paymentResponse
	if err := s.post(ctx, "/merchants/request", reqBody, &apiResp); err != nil {
		return "", 0, err
	}

	if apiResp.Result != 100 || apiResp.PayLink == "" {
		return "", 0, fmt.Errorf("oxapay error: %s", apiResp.Message)
	}
	return apiResp.PayLink, apiResp.TrackID, nil
}

type inquiryRequest struct {
	Merchant string `json:"merchant"`
	TrackID  int64  `json:"trackId"`
}

type inquiryResponse struct {
	Result  int    `json:"result"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// Inquiry polls the processor for the current payment status of a trackId.
// Statuses include Paid, Complete, Expired, Canceled.
func (s *Service) Inquiry(ctx context.Context, trackID int64) (string, error) {
	var apiResp inquiryResponse
	if err := s.post(ctx, "/merchants/inquiry", inquiryRequest{Merchant: s.Merchant, TrackID: trackID}, &apiResp); err != nil {
		return "", err
	}

	if apiResp.Result != 100 {
		return "", fmt.Errorf("oxapay error: %s", apiResp.Message)
	}
	return apiResp.Status, nil
}

func (s *Service) post(ctx context.Context, path string, body, out any) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(bodyBytes, out); err != nil {
		return fmt.Errorf("failed to parse response: %v", err)
	}
	return nil
}
