package schema

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")
	ErrNotFound = errors.New("not_found")

	ErrTxNotWritable = errors.New("tx_not_writable")

	// host
	ErrContractNotFound    = errors.New("contract_not_found")
	ErrCodeNotFound        = errors.New("code_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrCallDepth           = errors.New("call_depth_exceeded")
	ErrUnknownReply        = errors.New("unknown_reply_id")
	ErrInvalidAddress      = errors.New("invalid_address")
	ErrInvalidCoin         = errors.New("invalid_coin")
	ErrChainIdMismatch     = errors.New("chain_id_mismatch")
	ErrInvalidSequence     = errors.New("invalid_sequence")
	ErrTxSignature         = errors.New("invalid_tx_signature")
	ErrUnknownMsg          = errors.New("unknown_msg_variant")
	ErrMalformedMsg        = errors.New("malformed_msg")
	ErrGenesisDone         = errors.New("genesis_already_applied")

	// authorization
	ErrUnauthorized       = errors.New("unauthorized")
	ErrVerificationFailed = errors.New("verification_failed")
	ErrInvalidSignature   = errors.New("invalid_signature")

	// state preconditions
	ErrNameAlreadyRegistered = errors.New("name_already_registered")
	ErrNameNotRegistered     = errors.New("name_not_registered")
	ErrAlreadyMinted         = errors.New("token_already_minted")
	ErrTokenNotFound         = errors.New("token_not_found")
	ErrIgnoredAddress        = errors.New("address_in_ignored_address")
	ErrNotIgnoredAddress     = errors.New("address_not_in_ignored_address")
	ErrRecordNotFound        = errors.New("resolver_record_not_found")

	// funding
	ErrInsufficientFunds  = errors.New("insufficient_funds")
	ErrPriceNotConfigured = errors.New("price_not_configured")

	// policy
	ErrInvalidDuration      = errors.New("invalid_duration")
	ErrDurationExceedsLimit = errors.New("duration_exceeds_limit")
	ErrBatchTooLong         = errors.New("batch_too_long")
	ErrInvalidName          = errors.New("invalid_name")

	// encoding
	ErrInvalidTokenId   = errors.New("invalid_token_id")
	ErrMalformedPayload = errors.New("malformed_authorization_payload")
	ErrBech32           = errors.New("bech32_decode_error")
)

const (
	KindAuthorization = "authorization"
	KindState         = "state"
	KindFunding       = "funding"
	KindPolicy        = "policy"
	KindEncoding      = "encoding"
	KindNotFound      = "not_found"
	KindInternal      = "internal"
)

var errKinds = []struct {
	kind string
	errs []error
}{
	{KindAuthorization, []error{ErrUnauthorized, ErrVerificationFailed, ErrInvalidSignature, ErrTxSignature, ErrChainIdMismatch, ErrInvalidSequence}},
	{KindState, []error{ErrNameAlreadyRegistered, ErrNameNotRegistered, ErrAlreadyMinted, ErrNotIgnoredAddress, ErrGenesisDone, ErrUnknownReply}},
	{KindFunding, []error{ErrInsufficientFunds, ErrInsufficientBalance, ErrPriceNotConfigured}},
	{KindPolicy, []error{ErrInvalidDuration, ErrDurationExceedsLimit, ErrBatchTooLong, ErrInvalidName, ErrCallDepth}},
	{KindEncoding, []error{ErrInvalidTokenId, ErrMalformedPayload, ErrBech32, ErrMalformedMsg, ErrUnknownMsg, ErrInvalidAddress, ErrInvalidCoin}},
	{KindNotFound, []error{ErrIgnoredAddress, ErrNotExist, ErrNotFound, ErrTokenNotFound, ErrRecordNotFound, ErrContractNotFound, ErrCodeNotFound}},
}

// ErrKind classifies err into one of the Kind* constants.
func ErrKind(err error) string {
	for _, k := range errKinds {
		for _, e := range k.errs {
			if errors.Is(err, e) {
				return k.kind
			}
		}
	}
	return KindInternal
}
