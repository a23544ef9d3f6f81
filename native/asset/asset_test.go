package asset

import (
	"encoding/json"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"nftfi/native/internal/testutil"
	"nftfi/native/tokens/cw1155"
	"nftfi/native/tokens/cw20"
	"nftfi/native/tokens/cw721"
)

func TestAssetEquality(t *testing.T) {
	a := Coin("uluna", big.NewInt(10))
	require.True(t, a.Equal(Coin("uluna", big.NewInt(10))))
	require.False(t, a.Equal(Coin("uusd", big.NewInt(10))))
	require.False(t, a.Equal(Cw20("uluna", big.NewInt(10))), "variant tag must be compared")
	require.True(t, Cw721("nft", "1").Equal(Cw721("nft", "1")))
	require.False(t, Cw721("nft", "1").Equal(Cw721("nft", "2")))
	require.False(t, Asset{}.Equal(Asset{}))
}

func TestAssetJSONShape(t *testing.T) {
	raw, err := json.Marshal(Cw721("nft", "token_id"))
	require.NoError(t, err)
	require.JSONEq(t, `{"cw721_coin":{"address":"nft","token_id":"token_id"}}`, string(raw))

	var decoded Asset
	require.NoError(t, json.Unmarshal([]byte(`{"coin":{"denom":"uluna","amount":5}}`), &decoded))
	require.Equal(t, KindCoin, decoded.Kind())
	require.Equal(t, int64(5), decoded.Amount().Int64())
}

func TestTransferAndPullMessages(t *testing.T) {
	msg, err := Coin("uluna", big.NewInt(7)).TransferMsg("self", "bob")
	require.NoError(t, err)
	require.NotNil(t, msg.Bank)
	require.Equal(t, "bob", msg.Bank.Send.ToAddress)

	_, err = Coin("uluna", big.NewInt(7)).PullMsg("alice", "self")
	require.True(t, errors.Is(err, ErrWrongAssetType))

	pull, err := Cw20("token", big.NewInt(3)).PullMsg("alice", "self")
	require.NoError(t, err)
	var cw20Msg cw20.ExecuteMsg
	require.NoError(t, json.Unmarshal(pull.Wasm.Execute.Msg, &cw20Msg))
	require.Equal(t, "alice", cw20Msg.TransferFrom.Owner)
	require.Equal(t, "self", cw20Msg.TransferFrom.Recipient)

	nft, err := Cw721("nft", "1").TransferMsg("self", "bob")
	require.NoError(t, err)
	var cw721Msg cw721.ExecuteMsg
	require.NoError(t, json.Unmarshal(nft.Wasm.Execute.Msg, &cw721Msg))
	require.Equal(t, "bob", cw721Msg.TransferNft.Recipient)

	sft, err := Cw1155("sft", "7", big.NewInt(2)).TransferMsg("self", "bob")
	require.NoError(t, err)
	var cw1155Msg cw1155.ExecuteMsg
	require.NoError(t, json.Unmarshal(sft.Wasm.Execute.Msg, &cw1155Msg))
	require.Equal(t, "self", cw1155Msg.SendFrom.From)
	require.Equal(t, int64(2), cw1155Msg.SendFrom.Value.Int64())
}

func TestValidateAndStoredForm(t *testing.T) {
	api := testutil.MockAPI{}
	require.Error(t, Asset{}.Validate(api))
	both := Cw721("nft", "1")
	both.Coin = Coin("uluna", big.NewInt(1)).Coin
	require.Error(t, both.Validate(api))
	require.NoError(t, Cw1155("sft", "1", big.NewInt(3)).Validate(api))

	original := Cw1155("sft", "1", big.NewInt(3))
	require.True(t, original.Equal(original.Stored().Asset()))

	info := Cw20Info("token")
	require.True(t, info.Stored().Info().IsCw20())
	require.Equal(t, KindCw20, info.WithAmount(big.NewInt(1)).Kind())
}
