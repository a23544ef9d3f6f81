package vault

import cerrors "nftfi/core/errors"

var (
	ErrZeroDeposit                = cerrors.New(cerrors.KindValidation, "zero_deposit", "you can't deposit or withdraw 0 assets")
	ErrWrongAssetDeposited        = cerrors.New(cerrors.KindValidation, "wrong_asset_deposited", "wrong asset deposited")
	ErrInsufficientAssetDeposited = cerrors.New(cerrors.KindValue, "insufficient_asset_deposited", "insufficient asset deposited")
	ErrZeroShares                 = cerrors.New(cerrors.KindValue, "zero_shares", "deposit would mint zero shares")
	ErrZeroAssets                 = cerrors.New(cerrors.KindValue, "zero_assets", "operation would move zero assets")
	ErrEmptyVault                 = cerrors.New(cerrors.KindState, "empty_vault", "vault holds no assets")
)
