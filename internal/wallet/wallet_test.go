package wallet

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/stretchr/testify/require"
)

const (
	keyA = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"
	keyB = "0x8a1f9a8f95be41cd7ccb6168179afb4504aefe388d1e14474d32c45c72ce7b7a"
)

func addressOf(t *testing.T, h string) common.Address {
	k, err := crypto.HexToECDSA(h[len(h)-64:])
	require.NoError(t, err)
	return crypto.PubkeyToAddress(k.PublicKey)
}

func TestAuthorization(t *testing.T) {
	ctx := context.Background()

	w, err := FromHex(big.NewInt(137), keyA, keyB)
	require.NoError(t, err)

	accounts, err := w.Accounts(ctx)
	require.NoError(t, err)
	require.Empty(t, accounts)

	_, err = w.Signer(ctx, addressOf(t, keyA))
	require.ErrorIs(t, err, governance.ErrWalletNotConnected)

	accounts, err = w.RequestAccounts(ctx)
	require.NoError(t, err)
	require.Equal(t, []common.Address{addressOf(t, keyA), addressOf(t, keyB)}, accounts)

	opts, err := w.Signer(ctx, addressOf(t, keyB))
	require.NoError(t, err)
	require.Equal(t, addressOf(t, keyB), opts.From)

	_, err = w.Signer(ctx, common.HexToAddress("0x01"))
	require.ErrorIs(t, err, ErrUnknownAccount)
}

func TestReject(t *testing.T) {
	w, err := FromHex(big.NewInt(1), keyA)
	require.NoError(t, err)

	w.SetReject(true)

	_, err = w.RequestAccounts(context.Background())
	require.ErrorIs(t, err, ErrRejected)

	_, err = New(big.NewInt(1)).RequestAccounts(context.Background())
	require.ErrorIs(t, err, ErrNoKeys)
}

func TestAccountsChanged(t *testing.T) {
	ctx := context.Background()

	w, err := FromHex(big.NewInt(1), keyA, keyB)
	require.NoError(t, err)

	ch := make(chan []common.Address, 4)
	sub := w.SubscribeAccountsChanged(ch)
	defer sub.Unsubscribe()

	_, err = w.RequestAccounts(ctx)
	require.NoError(t, err)
	require.Equal(t, addressOf(t, keyA), (<-ch)[0])

	require.NoError(t, w.Switch(1))
	require.Equal(t, addressOf(t, keyB), (<-ch)[0])

	require.Error(t, w.Switch(5))

	w.Disconnect()
	select {
	case accounts := <-ch:
		require.Empty(t, accounts)
	case <-time.After(time.Second):
		t.Fatal("no notification after disconnect")
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys")
	require.NoError(t, os.WriteFile(path, []byte("# governance keys\n"+keyA+"\n\n"+keyB+"\n"), 0o600))

	w, err := FromFile(big.NewInt(1), path)
	require.NoError(t, err)

	accounts, err := w.RequestAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	_, err = FromFile(big.NewInt(1), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, []byte("\n# nothing\n"), 0o600))
	_, err = FromFile(big.NewInt(1), empty)
	require.ErrorIs(t, err, ErrNoKeys)
}
