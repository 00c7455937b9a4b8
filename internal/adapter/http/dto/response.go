package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/domain"
	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// WalletResponse represents a wallet in API responses.
type WalletResponse struct {
	ID         string          `json:"id"`
	OwnerID    string          `json:"owner_id"`
	OwnerType  string          `json:"owner_type"`
	Currency   string          `json:"currency"`
	Balance    decimal.Decimal `json:"balance"`
	Visibility map[string]any  `json:"visibility,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// WalletFromDomain converts a domain wallet to a response.
func WalletFromDomain(w *domain.Wallet) *WalletResponse {
	return &WalletResponse{
		ID:         w.ID,
		OwnerID:    w.OwnerID,
		OwnerType:  string(w.OwnerType),
		Currency:   w.Currency,
		Balance:    w.Balance,
		Visibility: w.Visibility,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

// TransactionResponse represents one ledger log entry in API responses.
type TransactionResponse struct {
	ID               string          `json:"id"`
	WalletID         string          `json:"wallet_id"`
	Type             string          `json:"type"`
	Direction        string          `json:"direction"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	CounterpartyID   string          `json:"counterparty_id,omitempty"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	PaymentMethod    string          `json:"payment_method,omitempty"`
	PlatformFee      decimal.Decimal `json:"platform_fee,omitempty"`
	Note             string          `json:"note,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction to a response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		ID:               t.ID,
		WalletID:         t.WalletID,
		Type:             string(t.Type),
		Direction:        string(t.Direction),
		Amount:           t.Amount,
		Currency:         t.Currency,
		Status:           string(t.Status),
		CounterpartyID:   t.CounterpartyID,
		GatewayPaymentID: t.GatewayPaymentID,
		PaymentMethod:    t.PaymentMethod,
		PlatformFee:      t.PlatformFee,
		Note:             t.Note,
		CreatedAt:        t.CreatedAt,
	}
}

// TransactionListResponse is one page of the transaction log.
type TransactionListResponse struct {
	Items      []*TransactionResponse `json:"items"`
	NextCursor string                 `json:"next_cursor,omitempty"`
}

// TransactionListFromResult converts a use case page to a response.
func TransactionListFromResult(result *usecase.ListTransactionsResult) *TransactionListResponse {
	items := make([]*TransactionResponse, len(result.Items))
	for i, t := range result.Items {
		items[i] = TransactionFromDomain(t)
	}
	return &TransactionListResponse{Items: items, NextCursor: result.NextCursor}
}

// CreatePaymentResponse hands the client everything the browser redirect
// needs: the gateway URL and the signed form fields.
type CreatePaymentResponse struct {
	PaymentID   string            `json:"payment_id"`
	PaymentURL  string            `json:"payment_url"`
	PaymentData map[string]string `json:"payment_data"`
}

// VerifyPaymentResponse reports the reconciliation status to the client.
// PENDING is a normal answer: the webhook may land moments later.
type VerifyPaymentResponse struct {
	Status        string          `json:"status"`
	Credited      decimal.Decimal `json:"credited,omitempty"`
	Currency      string          `json:"currency,omitempty"`
	PaymentMethod string          `json:"payment_method,omitempty"`
}

// TransferResponse reports a committed peer-to-peer movement.
type TransferResponse struct {
	OutTransactionID string          `json:"out_transaction_id"`
	InTransactionID  string          `json:"in_transaction_id"`
	Balance          decimal.Decimal `json:"balance"`
}

// OrderResponse represents an order in API responses.
type OrderResponse struct {
	ID                   string          `json:"id"`
	BuyerID              string          `json:"buyer_id"`
	SellerID             string          `json:"seller_id"`
	Amount               decimal.Decimal `json:"amount"`
	Kind                 string          `json:"kind"`
	Status               string          `json:"status"`
	SettledTransactionID string          `json:"settled_transaction_id,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// OrderFromDomain converts a domain order to a response.
func OrderFromDomain(o *domain.Order) *OrderResponse {
	return &OrderResponse{
		ID:                   o.ID,
		BuyerID:              o.BuyerID,
		SellerID:             o.SellerID,
		Amount:               o.Amount,
		Kind:                 string(o.Kind),
		Status:               string(o.Status),
		SettledTransactionID: o.SettledTransactionID,
		CreatedAt:            o.CreatedAt,
		UpdatedAt:            o.UpdatedAt,
	}
}

// SettleResponse reports a settlement, including the withheld fee.
type SettleResponse struct {
	OrderID        string          `json:"order_id"`
	Payout         decimal.Decimal `json:"payout"`
	PlatformFee    decimal.Decimal `json:"platform_fee"`
	AlreadySettled bool            `json:"already_settled,omitempty"`
	TransactionID  string          `json:"transaction_id"`
}

// AdjustResponse reports the wallet balance after an admin adjustment.
type AdjustResponse struct {
	OwnerID string          `json:"owner_id"`
	Balance decimal.Decimal `json:"balance"`
}

// ConvertResponse is a best-effort FX quote.
type ConvertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Converted decimal.Decimal `json:"converted"`
	Rate      decimal.Decimal `json:"rate"`
}

// ConsistencyResponse is the ledger-wide consistency report.
type ConsistencyResponse struct {
	Wallets       int                 `json:"wallets"`
	Discrepancies []WalletDiscrepancy `json:"discrepancies"`
	CheckedAt     time.Time           `json:"checked_at"`
}

// WalletDiscrepancy is one wallet whose balance disagrees with its entries.
type WalletDiscrepancy struct {
	WalletID string          `json:"wallet_id"`
	OwnerID  string          `json:"owner_id"`
	Balance  decimal.Decimal `json:"balance"`
	EntrySum decimal.Decimal `json:"entry_sum"`
}

// ConsistencyFromReport converts a use case report to a response.
func ConsistencyFromReport(report *usecase.ConsistencyReport) *ConsistencyResponse {
	discrepancies := make([]WalletDiscrepancy, len(report.Discrepancies))
	for i, d := range report.Discrepancies {
		discrepancies[i] = WalletDiscrepancy{
			WalletID: d.WalletID,
			OwnerID:  d.OwnerID,
			Balance:  d.Balance,
			EntrySum: d.EntrySum,
		}
	}
	return &ConsistencyResponse{
		Wallets:       report.Wallets,
		Discrepancies: discrepancies,
		CheckedAt:     report.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
