package dto

import (
	"github.com/shopspring/decimal"

	"github.com/molefempho783-eng/Dayly-fiat-wallet/internal/usecase"
)

// CreatePaymentRequest starts a gateway top-up.
type CreatePaymentRequest struct {
	Amount          decimal.Decimal `json:"amount"`
	ItemName        string          `json:"item_name,omitempty"`
	ItemDescription string          `json:"item_description,omitempty"`
	Email           string          `json:"email,omitempty"`
	CellNumber      string          `json:"cell_number,omitempty"`
}

// ToUseCaseInput converts to use case input. The owner always comes from the
// verified token, never from the body.
func (r *CreatePaymentRequest) ToUseCaseInput(ownerID string) usecase.CreatePaymentInput {
	return usecase.CreatePaymentInput{
		OwnerID:         ownerID,
		Amount:          r.Amount,
		ItemName:        r.ItemName,
		ItemDescription: r.ItemDescription,
		Email:           r.Email,
		CellNumber:      r.CellNumber,
	}
}

// CreateTransferRequest moves funds to another owner's wallet.
type CreateTransferRequest struct {
	ToOwnerID string          `json:"to_owner_id"`
	Amount    decimal.Decimal `json:"amount"`
	Note      string          `json:"note,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTransferRequest) ToUseCaseInput(fromOwnerID string) usecase.TransferInput {
	return usecase.TransferInput{
		FromOwnerID: fromOwnerID,
		ToOwnerID:   r.ToOwnerID,
		Amount:      r.Amount,
		Note:        r.Note,
	}
}

// CreateOrderRequest records a completed ride or marketplace order awaiting
// settlement. The buyer is the caller.
type CreateOrderRequest struct {
	SellerID string          `json:"seller_id"`
	Amount   decimal.Decimal `json:"amount"`
	Kind     string          `json:"kind"` // ride | order
}

// AdminAdjustRequest applies a signed balance delta to a wallet.
type AdminAdjustRequest struct {
	OwnerID string          `json:"owner_id"`
	Delta   decimal.Decimal `json:"delta"`
	Reason  string          `json:"reason"`
}

// ToUseCaseInput converts to use case input.
func (r *AdminAdjustRequest) ToUseCaseInput() usecase.AdminAdjustInput {
	return usecase.AdminAdjustInput{
		TargetOwnerID: r.OwnerID,
		Delta:         r.Delta,
		Reason:        r.Reason,
	}
}
