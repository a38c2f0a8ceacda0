package domain

import "errors"

// Trade submission and fee estimation error taxonomy. Adapters and services
// wrap these with fmt.Errorf("...: %w", err) so callers can classify with
// errors.Is.
var (
	// ErrInvalidAmount rejects non-positive amount or price before any
	// wallet or network interaction.
	ErrInvalidAmount = errors.New("amount and price must be greater than zero")

	// ErrUnsupportedChain means no adapter is registered for the chain tag.
	// This is a configuration error, not an expected runtime condition.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrWalletUnavailable means no signer is connected for the chain.
	ErrWalletUnavailable = errors.New("wallet unavailable")

	// ErrSubmissionRejected covers a failed execution status from the chain
	// as well as a signature prompt the user cancelled.
	ErrSubmissionRejected = errors.New("trade submission rejected")

	// ErrChainUnreachable is a transport-level failure talking to the chain.
	ErrChainUnreachable = errors.New("chain unreachable")

	// ErrFeeUnavailable is non-fatal: the quote resolves to unknown.
	ErrFeeUnavailable = errors.New("fee estimation unavailable")

	// ErrSubscriptionFailed is non-fatal: the feed keeps its last snapshot
	// and flags itself degraded.
	ErrSubscriptionFailed = errors.New("market subscription failed")
)
