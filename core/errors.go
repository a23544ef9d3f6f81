package core

import (
	cerrors "nftfi/core/errors"
)

var (
	ErrUnknownCode        = cerrors.New(cerrors.KindValidation, "unknown_code", "no contract code registered under this name")
	ErrContractNotFound   = cerrors.New(cerrors.KindValidation, "contract_not_found", "no contract instance at this address")
	ErrCallDepthExceeded  = cerrors.New(cerrors.KindExternal, "call_depth_exceeded", "contract call depth exceeded")
	ErrInsufficientFunds  = cerrors.New(cerrors.KindValue, "insufficient_funds", "insufficient funds")
	ErrNoReplyHandler     = cerrors.New(cerrors.KindExternal, "no_reply_handler", "contract registered a reply but does not handle replies")
	ErrUnsupportedMessage = cerrors.New(cerrors.KindValidation, "unsupported_message", "unsupported outbound message")
	ErrBadNonce           = cerrors.New(cerrors.KindAuthorization, "bad_nonce", "transaction nonce does not match the account")
)
