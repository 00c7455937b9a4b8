package domain

import "errors"

var (
	// Argument errors: rejected immediately, no state change.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidAmount   = errors.New("amount must be a positive value with at most 2 decimal places")
	ErrSameWallet      = errors.New("cannot transfer to yourself")

	// Identity errors.
	ErrUnauthenticated  = errors.New("caller identity not verified")
	ErrPermissionDenied = errors.New("caller may not perform this operation")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token expired")

	// Precondition errors: rejected before any mutation.
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrGatewayNotConfigured = errors.New("payment gateway credentials not configured")
	ErrOrderNotSettleable   = errors.New("order is not in a settleable state")

	// Lookup errors.
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	// Downstream errors: the caller may retry.
	ErrGatewayUnavailable = errors.New("payment gateway request failed")
	ErrRateUnavailable    = errors.New("no exchange rate provider responded")

	// Signature errors: hard rejection, never retried.
	ErrBadSignature = errors.New("signature verification failed")
)
