package sdk

import (
	"crypto/ecdsa"
	"encoding/hex"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/arname"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	chainId = "arname-sdk-1"
	prefix  = "aura"
	denom   = "uar"
)

type testNet struct {
	url     string
	admin   *ecdsa.PrivateKey
	backend *Backend
	alice   *SDK
	bob     *SDK
}

func address(t *testing.T, key *ecdsa.PrivateKey) string {
	addr, err := vm.AccountAddress(prefix, crypto.CompressPubkey(&key.PublicKey))
	require.NoError(t, err)
	return addr
}

func newKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func newTestNet(t *testing.T) *testNet {
	gin.SetMode(gin.TestMode)
	admin, backend, alice, bob := newKey(t), newKey(t), newKey(t), newKey(t)
	a, err := arname.New(schema.Config{
		ChainId:      chainId,
		Bech32Prefix: prefix,
		Memory:       true,
		Genesis: schema.Genesis{
			Registrar: schema.GenesisRegistrar{
				Admin:           address(t, admin),
				Operator:        address(t, admin),
				BackendPubkey:   hex.EncodeToString(crypto.CompressPubkey(&backend.PublicKey)),
				MaxYearRegister: 3,
				Prices:          []schema.GenesisPrice{{Length: 0, Denom: denom, Amount: "25"}},
			},
			Balances: []schema.GenesisBalance{
				{Address: address(t, alice), Denom: denom, Amount: "1000"},
				{Address: address(t, bob), Denom: denom, Amount: "1000"},
			},
		},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(a.Handler())
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})

	n := &testNet{url: srv.URL, admin: admin, backend: NewBackend(backend, chainId)}
	n.alice, err = NewSDK(srv.URL, alice)
	require.NoError(t, err)
	n.bob, err = NewSDK(srv.URL, bob)
	require.NoError(t, err)
	return n
}

func TestSignTx(t *testing.T) {
	key := newKey(t)
	body := schema.TxBody{ChainId: chainId, Sender: address(t, key), Msg: []byte(`{}`)}
	stx, err := SignTx(key, body)
	require.NoError(t, err)

	host := vm.NewHost(nil, chainId, prefix)
	sender, err := host.VerifyTx(stx)
	require.NoError(t, err)
	assert.Equal(t, body.Sender, sender)

	stx.Body.Sequence = 1
	_, err = host.VerifyTx(stx)
	assert.ErrorIs(t, err, schema.ErrTxSignature)
}

func TestNewSDK(t *testing.T) {
	n := newTestNet(t)
	assert.Equal(t, chainId, n.alice.Info.ChainId)
	assert.NotEmpty(t, n.alice.Info.Registrar)
	assert.Equal(t, address(t, n.alice.Key), n.alice.Address)

	_, err := NewSDK("http://127.0.0.1:1", n.admin)
	assert.Error(t, err)
}

func TestRegisterExtendTransfer(t *testing.T) {
	n := newTestNet(t)
	cli := n.alice.Cli
	meta := schema.Metadata{Bech32Prefixes: []string{prefix}, Durations: 2 * schema.SecondsPerYear}

	fee, err := cli.GetFee("alice", meta.Durations)
	require.NoError(t, err)
	assert.Equal(t, "50uar", fee.String())

	sig, err := n.backend.SignRegister(n.alice.Address, "alice", meta)
	require.NoError(t, err)
	res, err := n.alice.Register("alice", meta, sig)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Events)

	has, err := cli.HasRegister("alice")
	require.NoError(t, err)
	assert.True(t, has)

	reg, err := cli.GetRegistration("alice")
	require.NoError(t, err)

	addr, err := cli.AddressOf("alice", prefix)
	require.NoError(t, err)
	assert.Equal(t, n.alice.Address, addr)

	all, err := cli.AllAddressesOf("alice", "", 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, prefix, all[0].Bech32Prefix)

	// a signature for alice does not work for bob
	_, err = n.bob.Register("bobby", meta, sig)
	assert.Error(t, err)

	sig, err = n.backend.SignExtend(n.alice.Address, "alice", reg.ExpiresAt, schema.SecondsPerYear)
	require.NoError(t, err)
	_, err = n.alice.Extend("alice", schema.SecondsPerYear, sig)
	require.NoError(t, err)

	again, err := cli.GetRegistration("alice")
	require.NoError(t, err)
	assert.Equal(t, reg.ExpiresAt+schema.SecondsPerYear, again.ExpiresAt)

	tok, err := cli.GetToken("alice")
	require.NoError(t, err)
	assert.Equal(t, 3*schema.SecondsPerYear, tok.Info.Extension.Durations)

	_, err = n.alice.TransferName(n.bob.Address, "alice")
	require.NoError(t, err)
	toks, err := cli.GetTokens(n.bob.Address, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, toks)
	names, err := cli.NamesOf(n.bob.Address, "", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, names)

	bal, err := cli.GetBalance(n.alice.Address)
	require.NoError(t, err)
	assert.Equal(t, "925", bal.Balances.AmountOf(denom).String())

	acc, err := cli.GetAccount(n.alice.Address)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), acc.Sequence)
}

func TestAdminOperations(t *testing.T) {
	n := newTestNet(t)
	admin, err := NewSDK(n.url, n.admin)
	require.NoError(t, err)

	meta := schema.Metadata{Bech32Prefixes: []string{prefix}, Durations: schema.SecondsPerYear}
	sig, err := n.backend.SignRegister(n.alice.Address, "alice", meta)
	require.NoError(t, err)
	_, err = n.alice.Register("alice", meta, sig)
	require.NoError(t, err)

	_, err = n.alice.Withdraw(n.alice.Address, schema.NewCoin(denom, 25))
	assert.Error(t, err)
	_, err = admin.Withdraw(n.bob.Address, schema.NewCoin(denom, 25))
	require.NoError(t, err)
	bal, err := admin.Cli.GetBalance(n.bob.Address)
	require.NoError(t, err)
	assert.Equal(t, "1025", bal.Balances.AmountOf(denom).String())

	_, err = admin.Unregister("alice")
	require.NoError(t, err)
	has, err := admin.Cli.HasRegister("alice")
	require.NoError(t, err)
	assert.False(t, has)

	regs, err := admin.Cli.GetRegistrations("", 10)
	require.NoError(t, err)
	assert.Empty(t, regs)

	cfg, err := admin.Cli.GetRegistrarConfig()
	require.NoError(t, err)
	assert.Equal(t, admin.Address, cfg.Admin)
	prices, err := admin.Cli.GetPrices()
	require.NoError(t, err)
	assert.Len(t, prices, 1)
	v, err := admin.Cli.GetVerifier()
	require.NoError(t, err)
	assert.Equal(t, n.backend.Pubkey(), v.BackendPubkey)

	expired, err := admin.Cli.GetExpired()
	require.NoError(t, err)
	assert.Empty(t, expired.Names)

	// history is disabled without a database
	_, err = admin.Cli.GetTxs(admin.Address, 0, 10)
	assert.Error(t, err)
}
