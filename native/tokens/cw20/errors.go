package cw20

import cerrors "nftfi/core/errors"

var (
	ErrInvalidZeroAmount    = cerrors.New(cerrors.KindValidation, "invalid_zero_amount", "invalid zero amount")
	ErrInsufficientFunds    = cerrors.New(cerrors.KindValue, "insufficient_funds", "insufficient funds")
	ErrCannotSetOwnAccount  = cerrors.New(cerrors.KindValidation, "cannot_set_own_account", "cannot set to own account")
	ErrExpired              = cerrors.New(cerrors.KindState, "allowance_expired", "allowance is expired")
	ErrNoAllowance          = cerrors.New(cerrors.KindValue, "no_allowance", "no allowance for this account")
	ErrCannotExceedCap      = cerrors.New(cerrors.KindValue, "cannot_exceed_cap", "minting cannot exceed the cap")
	ErrInvalidExpiration    = cerrors.New(cerrors.KindValidation, "invalid_expiration", "invalid expiration value")
	ErrInvalidTokenName     = cerrors.New(cerrors.KindValidation, "invalid_token_name", "name is not in the expected format (3-50 UTF-8 bytes)")
	ErrInvalidTokenSymbol   = cerrors.New(cerrors.KindValidation, "invalid_token_symbol", "ticker symbol is not in expected format [a-zA-Z\\-]{3,12}")
	ErrInvalidDecimals      = cerrors.New(cerrors.KindValidation, "invalid_decimals", "decimals must not exceed 18")
	ErrDuplicateInitialAddr = cerrors.New(cerrors.KindValidation, "duplicate_initial_balance_addresses", "duplicate initial balance addresses")
	ErrInvalidPngHeader     = cerrors.New(cerrors.KindValidation, "invalid_png_header", "invalid png header")
	ErrInvalidXmlPreamble   = cerrors.New(cerrors.KindValidation, "invalid_xml_preamble", "invalid xml preamble for SVG")
	ErrLogoTooBig           = cerrors.New(cerrors.KindValidation, "logo_too_big", "logo binary data exceeds 5KB limit")
	ErrNoMarketing          = cerrors.New(cerrors.KindState, "no_marketing", "marketing info not set")
)
