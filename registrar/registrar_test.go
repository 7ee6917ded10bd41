package registrar

import (
	"crypto/ecdsa"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/everFinance/arname/ledger"
	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/resolver"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	registrarCode = 1
	ledgerCode    = 2
	resolverCode  = 3

	chainId = "arname-test-1"
	denom   = "uar"
	year    = schema.SecondsPerYear
)

type testEnv struct {
	t         *testing.T
	host      *vm.Host
	now       time.Time
	backend   *ecdsa.PrivateKey
	admin     string
	operator  string
	alice     string
	bob       string
	registrar string
	ledger    string
	resolver  string
}

func addr(t *testing.T, seed string) string {
	a, err := vm.EncodeAddress("aura", []byte(seed+"xxxxxxxxxxxxxxxxxxxx")[:20])
	require.NoError(t, err)
	return a
}

func coins(amount int64) schema.Coins {
	return schema.Coins{schema.NewCoin(denom, amount)}
}

func defaultPrices() []schema.PriceEntry {
	return []schema.PriceEntry{
		{Length: 0, Price: schema.NewCoin(denom, 10)},
		{Length: 3, Price: schema.NewCoin(denom, 100)},
	}
}

func setup(t *testing.T, prices []schema.PriceEntry) *testEnv {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	e := &testEnv{
		t:        t,
		now:      time.Unix(1700000000, 0),
		backend:  key,
		admin:    addr(t, "admin"),
		operator: addr(t, "operator"),
		alice:    addr(t, "alice"),
		bob:      addr(t, "bob"),
	}
	e.host = vm.NewHost(rawdb.NewMemDB(), chainId, "aura")
	e.host.Register(registrarCode, New())
	e.host.Register(ledgerCode, ledger.New())
	e.host.Register(resolverCode, resolver.New())
	e.host.SetClock(func() time.Time { return e.now })

	_, err = e.host.Genesis([]schema.GenesisBalance{
		{Address: e.admin, Denom: denom, Amount: "10000"},
		{Address: e.alice, Denom: denom, Amount: "10000"},
		{Address: e.bob, Denom: denom, Amount: "10000"},
	})
	require.NoError(t, err)

	msg, err := json.Marshal(schema.RegistrarInstantiateMsg{
		Admin:           e.admin,
		Operator:        e.operator,
		Prices:          prices,
		BackendPubkey:   crypto.CompressPubkey(&key.PublicKey),
		NameCodeId:      ledgerCode,
		ResolverCodeId:  resolverCode,
		MaxYearRegister: 5,
		MaxBatchSize:    2,
	})
	require.NoError(t, err)
	e.registrar, _, err = e.host.Instantiate(e.admin, registrarCode, msg, nil, "registrar", e.admin)
	require.NoError(t, err)

	var nc schema.AddressResponse
	e.query(schema.RegistrarQueryMsg{NameContract: &schema.Empty{}}, &nc)
	e.ledger = nc.Address
	res, err := e.host.Query(e.ledger, []byte(`{"resolver":{}}`))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(res, &nc))
	e.resolver = nc.Address
	return e
}

func (e *testEnv) exec(sender string, msg schema.RegistrarExecuteMsg, funds schema.Coins) error {
	bz, err := json.Marshal(msg)
	require.NoError(e.t, err)
	_, err = e.host.Execute(sender, e.registrar, bz, funds)
	return err
}

func (e *testEnv) query(msg schema.RegistrarQueryMsg, out interface{}) {
	require.NoError(e.t, e.tryQuery(msg, out))
}

func (e *testEnv) tryQuery(msg schema.RegistrarQueryMsg, out interface{}) error {
	bz, err := json.Marshal(msg)
	require.NoError(e.t, err)
	res, err := e.host.Query(e.registrar, bz)
	if err != nil {
		return err
	}
	return json.Unmarshal(res, out)
}

func (e *testEnv) registerSig(sender, name string, durations uint64, prefixes ...string) []byte {
	sig, err := SignVerifyMsg(e.backend, schema.VerifyMsg{Register: &schema.RegisterVerify{
		Name:           name,
		Sender:         sender,
		ChainId:        chainId,
		Bech32Prefixes: prefixes,
		Durations:      durations,
	}})
	require.NoError(e.t, err)
	return sig
}

func (e *testEnv) extendSig(sender, name string, oldExpires, durations uint64) []byte {
	sig, err := SignVerifyMsg(e.backend, schema.VerifyMsg{Extend: &schema.ExtendVerify{
		Name:       name,
		Sender:     sender,
		ChainId:    chainId,
		OldExpires: oldExpires,
		Durations:  durations,
	}})
	require.NoError(e.t, err)
	return sig
}

func (e *testEnv) register(sender, name string, durations uint64, sig []byte, funds schema.Coins) error {
	return e.exec(sender, schema.RegistrarExecuteMsg{Register: &schema.RegisterMsg{
		Name:             name,
		BackendSignature: sig,
		Metadata:         schema.Metadata{Bech32Prefixes: []string{"aura"}, Durations: durations},
	}}, funds)
}

func (e *testEnv) expires(name string) uint64 {
	var reg schema.RegistrationResponse
	e.query(schema.RegistrarQueryMsg{Registration: &schema.NameQuery{Name: name}}, &reg)
	return reg.ExpiresAt
}

func (e *testEnv) hasRegister(name string) bool {
	var b schema.BoolResponse
	e.query(schema.RegistrarQueryMsg{HasRegister: &schema.NameQuery{Name: name}}, &b)
	return b.Value
}

func (e *testEnv) owner(name string) string {
	res, err := e.host.Query(e.ledger, []byte(`{"owner_of":{"token_id":"`+name+`"}}`))
	if err != nil {
		assert.ErrorIs(e.t, err, schema.ErrTokenNotFound)
		return ""
	}
	var out schema.OwnerOfResponse
	require.NoError(e.t, json.Unmarshal(res, &out))
	return out.Owner
}

func (e *testEnv) resolved(name string) string {
	bz, err := json.Marshal(schema.ResolverQueryMsg{AddressOf: &schema.AddressOfQuery{PrimaryName: name, Bech32Prefix: "aura"}})
	require.NoError(e.t, err)
	res, err := e.host.Query(e.resolver, bz)
	if err != nil {
		return ""
	}
	var out schema.ResolvedAddress
	require.NoError(e.t, json.Unmarshal(res, &out))
	return out.Address
}

func (e *testEnv) balance(addr string) decimal.Decimal {
	bal, err := e.host.Balances(addr)
	require.NoError(e.t, err)
	return bal.AmountOf(denom)
}

func TestInstantiate(t *testing.T) {
	e := setup(t, defaultPrices())
	assert.NotEmpty(t, e.ledger)
	assert.NotEmpty(t, e.resolver)

	var cfg schema.RegistrarConfig
	e.query(schema.RegistrarQueryMsg{Config: &schema.Empty{}}, &cfg)
	assert.Equal(t, e.admin, cfg.Admin)
	assert.Equal(t, e.operator, cfg.Operator)
	assert.Equal(t, uint64(5), cfg.MaxYearRegister)

	var prices schema.PricesResponse
	e.query(schema.RegistrarQueryMsg{Prices: &schema.Empty{}}, &prices)
	require.Len(t, prices.Prices, 2)
	assert.Equal(t, uint8(0), prices.Prices[0].Length)
	assert.Equal(t, uint8(3), prices.Prices[1].Length)
	assert.True(t, prices.Prices[1].Price.Amount.Equal(decimal.NewFromInt(100)))

	var v schema.Verifier
	e.query(schema.RegistrarQueryMsg{Verifier: &schema.Empty{}}, &v)
	assert.Equal(t, crypto.CompressPubkey(&e.backend.PublicKey), v.BackendPubkey)

	res, err := e.host.Query(e.ledger, []byte(`{"minter":{}}`))
	require.NoError(t, err)
	var m schema.MinterResponse
	require.NoError(t, json.Unmarshal(res, &m))
	assert.Equal(t, e.registrar, m.Minter)
}

func TestRegisterExtendRoundTrip(t *testing.T) {
	e := setup(t, defaultPrices())
	start := uint64(e.now.Unix())

	require.NoError(t, e.register(e.alice, "abc", year, e.registerSig(e.alice, "abc", year, "aura"), coins(100)))
	assert.Equal(t, start+year, e.expires("abc"))
	assert.Equal(t, e.alice, e.owner("abc"))
	assert.Equal(t, e.alice, e.resolved("abc"))
	assert.True(t, e.balance(e.registrar).Equal(decimal.NewFromInt(100)))

	e.now = e.now.Add(24 * time.Hour)
	sig := e.extendSig(e.alice, "abc", start+year, year)
	require.NoError(t, e.exec(e.alice, schema.RegistrarExecuteMsg{Extend: &schema.ExtendMsg{Name: "abc", BackendSignature: sig, Durations: year}}, coins(100)))
	assert.Equal(t, start+2*year, e.expires("abc"))

	res, err := e.host.Query(e.ledger, []byte(`{"nft_info":{"token_id":"abc"}}`))
	require.NoError(t, err)
	var info schema.NftInfoResponse
	require.NoError(t, json.Unmarshal(res, &info))
	assert.Equal(t, start+2*year, info.Extension.ExpiresAt)
	assert.Equal(t, 2*year, info.Extension.Durations)
	assert.Equal(t, e.alice, e.resolved("abc"))

	err = e.register(e.bob, "abc", year, e.registerSig(e.bob, "abc", year, "aura"), coins(100))
	assert.ErrorIs(t, err, schema.ErrNameAlreadyRegistered)
}

func TestExtendKeepsCurrentOwner(t *testing.T) {
	e := setup(t, defaultPrices())
	start := uint64(e.now.Unix())
	require.NoError(t, e.register(e.alice, "abc", year, e.registerSig(e.alice, "abc", year, "aura"), coins(100)))

	_, err := e.host.Execute(e.alice, e.ledger, []byte(`{"transfer_nft":{"recipient":"`+e.bob+`","token_id":"abc"}}`), nil)
	require.NoError(t, err)

	sig := e.extendSig(e.alice, "abc", start+year, year)
	require.NoError(t, e.exec(e.alice, schema.RegistrarExecuteMsg{Extend: &schema.ExtendMsg{Name: "abc", BackendSignature: sig, Durations: year}}, coins(100)))
	assert.Equal(t, e.bob, e.owner("abc"))
	assert.Equal(t, e.bob, e.resolved("abc"))

	err = e.exec(e.alice, schema.RegistrarExecuteMsg{Extend: &schema.ExtendMsg{Name: "nope", Durations: year}}, coins(100))
	assert.ErrorIs(t, err, schema.ErrNameNotRegistered)
}

func TestExtendKeepsDisplayMetadata(t *testing.T) {
	e := setup(t, defaultPrices())
	royalty := uint64(5)
	meta := schema.Metadata{
		Bech32Prefixes:        []string{"aura"},
		Durations:             year,
		Name:                  "abc",
		Description:           "a name",
		Image:                 "ipfs://image",
		ExternalUrl:           "https://arname.io/abc",
		Attributes:            []schema.Trait{{TraitType: "length", Value: "3"}},
		AnimationUrl:          "ipfs://animation",
		RoyaltyPercentage:     &royalty,
		RoyaltyPaymentAddress: e.admin,
		CollectionName:        schema.LedgerName,
		CollectionSymbol:      schema.LedgerSymbol,
	}
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{Register: &schema.RegisterMsg{Name: "abc", Metadata: meta}}, coins(100)))
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{Extend: &schema.ExtendMsg{Name: "abc", Durations: year}}, coins(100)))

	res, err := e.host.Query(e.ledger, []byte(`{"nft_info":{"token_id":"abc"}}`))
	require.NoError(t, err)
	var info schema.NftInfoResponse
	require.NoError(t, json.Unmarshal(res, &info))
	meta.Durations = 2 * year
	meta.ExpiresAt = uint64(e.now.Unix()) + 2*year
	assert.Equal(t, meta, info.Extension)
}

func TestAdminBypassesSignature(t *testing.T) {
	e := setup(t, defaultPrices())
	garbage := []byte("not a signature")
	require.NoError(t, e.register(e.admin, "abc", year, garbage, coins(100)))
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{Extend: &schema.ExtendMsg{Name: "abc", BackendSignature: garbage, Durations: year}}, coins(100)))
	assert.Equal(t, uint64(e.now.Unix())+2*year, e.expires("abc"))

	// the fee still applies
	err := e.register(e.admin, "xyz", year, garbage, coins(99))
	assert.ErrorIs(t, err, schema.ErrInsufficientFunds)
}

func TestSignatureChecks(t *testing.T) {
	e := setup(t, defaultPrices())

	err := e.register(e.alice, "abc", year, []byte("garbage"), coins(100))
	assert.ErrorIs(t, err, schema.ErrInvalidSignature)

	// signed for someone else
	err = e.register(e.alice, "abc", year, e.registerSig(e.bob, "abc", year, "aura"), coins(100))
	assert.ErrorIs(t, err, schema.ErrInvalidSignature)

	// signed for other prefixes
	err = e.register(e.alice, "abc", year, e.registerSig(e.alice, "abc", year, "juno"), coins(100))
	assert.ErrorIs(t, err, schema.ErrInvalidSignature)

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	sig, err := SignVerifyMsg(other, schema.VerifyMsg{Register: &schema.RegisterVerify{
		Name: "abc", Sender: e.alice, ChainId: chainId, Bech32Prefixes: []string{"aura"}, Durations: year,
	}})
	require.NoError(t, err)
	err = e.register(e.alice, "abc", year, sig, coins(100))
	assert.ErrorIs(t, err, schema.ErrInvalidSignature)

	// a 65 byte recoverable signature is accepted
	hash, err := VerifyHash(schema.VerifyMsg{Register: &schema.RegisterVerify{
		Name: "abc", Sender: e.alice, ChainId: chainId, Bech32Prefixes: []string{"aura"}, Durations: year,
	}})
	require.NoError(t, err)
	full, err := crypto.Sign(hash, e.backend)
	require.NoError(t, err)
	require.Len(t, full, 65)
	require.NoError(t, e.register(e.alice, "abc", year, full, coins(100)))

	// rotating the key invalidates signatures from the old one
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{UpdateVerifier: &schema.UpdateVerifierMsg{BackendPubkey: crypto.CompressPubkey(&other.PublicKey)}}, nil))
	err = e.register(e.bob, "bob", year, e.registerSig(e.bob, "bob", year, "aura"), coins(100))
	assert.ErrorIs(t, err, schema.ErrInvalidSignature)

	err = e.exec(e.admin, schema.RegistrarExecuteMsg{UpdateVerifier: &schema.UpdateVerifierMsg{BackendPubkey: []byte{1, 2, 3}}}, nil)
	assert.ErrorIs(t, err, schema.ErrMalformedPayload)
	err = e.exec(e.alice, schema.RegistrarExecuteMsg{UpdateVerifier: &schema.UpdateVerifierMsg{BackendPubkey: crypto.CompressPubkey(&other.PublicKey)}}, nil)
	assert.ErrorIs(t, err, schema.ErrUnauthorized)
}

func TestVerifyHashEmptyPrefixes(t *testing.T) {
	reg := schema.RegisterVerify{Name: "abc", Sender: addr(t, "alice"), ChainId: chainId, Durations: year}
	unset, err := VerifyHash(schema.VerifyMsg{Register: &reg})
	require.NoError(t, err)
	assert.Nil(t, reg.Bech32Prefixes)

	reg.Bech32Prefixes = []string{}
	empty, err := VerifyHash(schema.VerifyMsg{Register: &reg})
	require.NoError(t, err)
	assert.Equal(t, unset, empty)

	// a register call without prefixes accepts a signature over an empty list
	e := setup(t, defaultPrices())
	sig, err := SignVerifyMsg(e.backend, schema.VerifyMsg{Register: &schema.RegisterVerify{
		Name: "abc", Sender: e.alice, ChainId: chainId, Bech32Prefixes: []string{}, Durations: year,
	}})
	require.NoError(t, err)
	require.NoError(t, e.exec(e.alice, schema.RegistrarExecuteMsg{Register: &schema.RegisterMsg{
		Name:             "abc",
		BackendSignature: sig,
		Metadata:         schema.Metadata{Durations: year},
	}}, coins(100)))
}

func TestDurationAndNamePolicy(t *testing.T) {
	e := setup(t, defaultPrices())
	for _, c := range []struct {
		name      string
		durations uint64
		err       error
	}{
		{"abc", year - 1, schema.ErrInvalidDuration},
		{"abc", 6 * year, schema.ErrDurationExceedsLimit},
		{"ABC", year, schema.ErrInvalidName},
		{"a.b", year, schema.ErrInvalidName},
		{"", year, schema.ErrInvalidName},
	} {
		err := e.register(e.admin, c.name, c.durations, nil, coins(1000))
		assert.ErrorIs(t, err, c.err, c.name)
	}
	require.NoError(t, e.register(e.admin, "abc", 5*year, nil, coins(500)))
}

func TestFees(t *testing.T) {
	e := setup(t, defaultPrices())

	var fee schema.Coin
	e.query(schema.RegistrarQueryMsg{Fee: &schema.FeeQuery{Name: "abc", Durations: 2 * year}}, &fee)
	assert.Equal(t, denom, fee.Denom)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(200)))

	// no bucket for length 7, falls back to bucket 0
	e.query(schema.RegistrarQueryMsg{Fee: &schema.FeeQuery{Name: "abcdefg", Durations: 3 * year}}, &fee)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(30)))

	// exact payment is accepted
	require.NoError(t, e.register(e.alice, "abcdefg", 3*year, e.registerSig(e.alice, "abcdefg", 3*year, "aura"), coins(30)))
	assert.True(t, e.balance(e.alice).Equal(decimal.NewFromInt(10000-30)))

	err := e.register(e.alice, "xyz", year, e.registerSig(e.alice, "xyz", year, "aura"), coins(99))
	assert.ErrorIs(t, err, schema.ErrInsufficientFunds)
	err = e.register(e.alice, "xyz", year, e.registerSig(e.alice, "xyz", year, "aura"), nil)
	assert.ErrorIs(t, err, schema.ErrInsufficientFunds)
	assert.True(t, e.balance(e.alice).Equal(decimal.NewFromInt(10000-30)))

	// upsert keeps the other buckets
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{UpdatePrices: &schema.UpdatePricesMsg{Prices: []schema.PriceEntry{
		{Length: 3, Price: schema.NewCoin(denom, 50)},
	}}}, nil))
	e.query(schema.RegistrarQueryMsg{Fee: &schema.FeeQuery{Name: "xyz", Durations: year}}, &fee)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(50)))
	e.query(schema.RegistrarQueryMsg{Fee: &schema.FeeQuery{Name: "abcd", Durations: year}}, &fee)
	assert.True(t, fee.Amount.Equal(decimal.NewFromInt(10)))

	err = e.exec(e.operator, schema.RegistrarExecuteMsg{UpdatePrices: &schema.UpdatePricesMsg{}}, nil)
	assert.ErrorIs(t, err, schema.ErrUnauthorized)
}

func TestPriceNotConfigured(t *testing.T) {
	e := setup(t, []schema.PriceEntry{{Length: 3, Price: schema.NewCoin(denom, 100)}})
	var fee schema.Coin
	err := e.tryQuery(schema.RegistrarQueryMsg{Fee: &schema.FeeQuery{Name: "abcd", Durations: year}}, &fee)
	assert.ErrorIs(t, err, schema.ErrPriceNotConfigured)
	err = e.register(e.admin, "abcd", year, nil, coins(1000))
	assert.ErrorIs(t, err, schema.ErrPriceNotConfigured)
}

func TestAtomicRollback(t *testing.T) {
	e := setup(t, defaultPrices())

	// point the ledger at an account so every resolver sync fails
	_, err := e.host.Execute(e.admin, e.ledger, []byte(`{"update_resolver":{"resolver":"`+e.bob+`"}}`), nil)
	require.NoError(t, err)

	err = e.register(e.alice, "abc", year, e.registerSig(e.alice, "abc", year, "aura"), coins(100))
	assert.ErrorIs(t, err, schema.ErrContractNotFound)
	assert.False(t, e.hasRegister("abc"))
	assert.Equal(t, "", e.owner("abc"))
	assert.True(t, e.balance(e.alice).Equal(decimal.NewFromInt(10000)))
	assert.True(t, e.balance(e.registrar).IsZero())

	_, err = e.host.Execute(e.admin, e.ledger, []byte(`{"update_resolver":{"resolver":"`+e.resolver+`"}}`), nil)
	require.NoError(t, err)
	require.NoError(t, e.register(e.alice, "abc", year, e.registerSig(e.alice, "abc", year, "aura"), coins(100)))
	assert.True(t, e.hasRegister("abc"))
	assert.Equal(t, e.alice, e.resolved("abc"))
}

func TestUnregister(t *testing.T) {
	e := setup(t, defaultPrices())
	for _, n := range []string{"aaa", "bbb", "ccc"} {
		require.NoError(t, e.register(e.admin, n, year, nil, coins(100)))
	}

	err := e.exec(e.alice, schema.RegistrarExecuteMsg{Unregister: &schema.UnregisterMsg{Names: []string{"aaa"}}}, nil)
	assert.ErrorIs(t, err, schema.ErrUnauthorized)

	err = e.exec(e.operator, schema.RegistrarExecuteMsg{Unregister: &schema.UnregisterMsg{Names: []string{"aaa", "bbb", "ccc"}}}, nil)
	assert.ErrorIs(t, err, schema.ErrBatchTooLong)
	assert.True(t, e.hasRegister("aaa"))

	err = e.exec(e.operator, schema.RegistrarExecuteMsg{Unregister: &schema.UnregisterMsg{Names: []string{"aaa", "zzz"}}}, nil)
	assert.ErrorIs(t, err, schema.ErrNameNotRegistered)
	assert.True(t, e.hasRegister("aaa"))

	require.NoError(t, e.exec(e.operator, schema.RegistrarExecuteMsg{Unregister: &schema.UnregisterMsg{Names: []string{"aaa", "bbb"}}}, nil))
	assert.False(t, e.hasRegister("aaa"))
	assert.False(t, e.hasRegister("bbb"))
	assert.Equal(t, "", e.owner("aaa"))
	assert.Equal(t, "", e.resolved("bbb"))

	// the admin outranks the operator
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{Unregister: &schema.UnregisterMsg{Names: []string{"ccc"}}}, nil))

	// a name is available again once unregistered
	require.NoError(t, e.register(e.alice, "aaa", year, e.registerSig(e.alice, "aaa", year, "aura"), coins(100)))
	assert.Equal(t, e.alice, e.owner("aaa"))
}

func TestUnregisterAfterOwnerBurn(t *testing.T) {
	e := setup(t, defaultPrices())
	require.NoError(t, e.register(e.alice, "alice", year, e.registerSig(e.alice, "alice", year, "aura"), coins(10)))

	_, err := e.host.Execute(e.alice, e.ledger, []byte(`{"burn":{"token_id":"alice"}}`), nil)
	require.NoError(t, err)
	assert.Equal(t, "", e.owner("alice"))
	assert.True(t, e.hasRegister("alice"))

	require.NoError(t, e.exec(e.operator, schema.RegistrarExecuteMsg{Unregister: &schema.UnregisterMsg{Names: []string{"alice"}}}, nil))
	assert.False(t, e.hasRegister("alice"))

	require.NoError(t, e.register(e.bob, "alice", year, e.registerSig(e.bob, "alice", year, "aura"), coins(10)))
	assert.Equal(t, e.bob, e.owner("alice"))
	assert.Equal(t, e.bob, e.resolved("alice"))
}

func TestExpiryOverflow(t *testing.T) {
	e := setup(t, []schema.PriceEntry{{Length: 0, Price: schema.NewCoin(denom, 0)}})
	var cfg schema.RegistrarConfig
	e.query(schema.RegistrarQueryMsg{Config: &schema.Empty{}}, &cfg)
	cfg.MaxYearRegister = math.MaxUint64
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{UpdateConfig: &cfg}, nil))

	err := e.register(e.admin, "abc", math.MaxUint64-100, nil, nil)
	assert.ErrorIs(t, err, schema.ErrDurationExceedsLimit)
	assert.False(t, e.hasRegister("abc"))

	require.NoError(t, e.register(e.admin, "abc", year, nil, nil))
	start := e.expires("abc")
	err = e.exec(e.admin, schema.RegistrarExecuteMsg{Extend: &schema.ExtendMsg{Name: "abc", Durations: math.MaxUint64 - year}}, nil)
	assert.ErrorIs(t, err, schema.ErrDurationExceedsLimit)
	assert.Equal(t, start, e.expires("abc"))
}

func TestExpiredNamesStayRegistered(t *testing.T) {
	e := setup(t, defaultPrices())
	require.NoError(t, e.register(e.admin, "abc", year, nil, coins(100)))
	e.now = e.now.Add(3 * 365 * 24 * time.Hour)

	assert.True(t, e.hasRegister("abc"))
	err := e.register(e.alice, "abc", year, e.registerSig(e.alice, "abc", year, "aura"), coins(100))
	assert.ErrorIs(t, err, schema.ErrNameAlreadyRegistered)
}

func TestWithdraw(t *testing.T) {
	e := setup(t, defaultPrices())
	require.NoError(t, e.register(e.alice, "abc", year, e.registerSig(e.alice, "abc", year, "aura"), coins(100)))

	w := schema.RegistrarExecuteMsg{Withdraw: &schema.WithdrawMsg{Receiver: e.bob, Coin: schema.NewCoin(denom, 60)}}
	assert.ErrorIs(t, e.exec(e.operator, w, nil), schema.ErrUnauthorized)
	require.NoError(t, e.exec(e.admin, w, nil))
	assert.True(t, e.balance(e.bob).Equal(decimal.NewFromInt(10060)))
	assert.True(t, e.balance(e.registrar).Equal(decimal.NewFromInt(40)))

	assert.ErrorIs(t, e.exec(e.admin, w, nil), schema.ErrInsufficientBalance)
}

func TestUpdateConfig(t *testing.T) {
	e := setup(t, defaultPrices())
	cfg := schema.RegistrarConfig{
		Admin:           e.bob,
		Operator:        e.alice,
		NameCodeId:      ledgerCode,
		ResolverCodeId:  resolverCode,
		MaxYearRegister: 1,
		MaxBatchSize:    5,
	}
	assert.ErrorIs(t, e.exec(e.operator, schema.RegistrarExecuteMsg{UpdateConfig: &cfg}, nil), schema.ErrUnauthorized)
	require.NoError(t, e.exec(e.admin, schema.RegistrarExecuteMsg{UpdateConfig: &cfg}, nil))

	var got schema.RegistrarConfig
	e.query(schema.RegistrarQueryMsg{Config: &schema.Empty{}}, &got)
	assert.Equal(t, cfg, got)

	err := e.register(e.bob, "abc", 2*year, nil, coins(200))
	assert.ErrorIs(t, err, schema.ErrDurationExceedsLimit)
	require.NoError(t, e.register(e.bob, "abc", year, nil, coins(100)))
}

func TestRegistrations(t *testing.T) {
	e := setup(t, defaultPrices())
	for _, n := range []string{"ccc", "aaa", "bbb"} {
		require.NoError(t, e.register(e.admin, n, year, nil, coins(100)))
	}
	var regs schema.RegistrationsResponse
	e.query(schema.RegistrarQueryMsg{Registrations: &schema.PageQuery{}}, &regs)
	require.Len(t, regs.Registrations, 3)
	assert.Equal(t, "aaa", regs.Registrations[0].Name)

	start := "aaa"
	limit := uint32(1)
	e.query(schema.RegistrarQueryMsg{Registrations: &schema.PageQuery{StartAfter: &start, Limit: &limit}}, &regs)
	require.Len(t, regs.Registrations, 1)
	assert.Equal(t, "bbb", regs.Registrations[0].Name)

	var reg schema.RegistrationResponse
	err := e.tryQuery(schema.RegistrarQueryMsg{Registration: &schema.NameQuery{Name: "zzz"}}, &reg)
	assert.ErrorIs(t, err, schema.ErrNameNotRegistered)
}
