package schema

// 365 days
const SecondsPerYear uint64 = 31536000

const (
	DefaultLimit     uint32 = 10
	MaxLimit         uint32 = 100
	DefaultBatchSize uint64 = 10
)

type RegistrarConfig struct {
	Admin           string `json:"admin"`
	Operator        string `json:"operator"`
	NameCodeId      uint64 `json:"name_code_id"`
	ResolverCodeId  uint64 `json:"resolver_code_id"`
	MaxYearRegister uint64 `json:"max_year_register"`
	MaxBatchSize    uint64 `json:"max_batch_size"`
}

func (c RegistrarConfig) Roles() Roles {
	return Roles{Admin: c.Admin, Operator: c.Operator}
}

type Verifier struct {
	BackendPubkey []byte `json:"backend_pubkey"`
}

// PriceEntry maps a name length to its yearly price.
// Length 0 is the catch-all bucket.
type PriceEntry struct {
	Length uint8 `json:"length"`
	Price  Coin  `json:"price"`
}

type RegistrarInstantiateMsg struct {
	Admin           string       `json:"admin"`
	Operator        string       `json:"operator"`
	Prices          []PriceEntry `json:"prices"`
	BackendPubkey   []byte       `json:"backend_pubkey"`
	NameCodeId      uint64       `json:"name_code_id"`
	ResolverCodeId  uint64       `json:"resolver_code_id"`
	MaxYearRegister uint64       `json:"max_year_register"`
	MaxBatchSize    uint64       `json:"max_batch_size,omitempty"`
}

type RegistrarExecuteMsg struct {
	UpdateConfig   *RegistrarConfig   `json:"update_config,omitempty"`
	UpdatePrices   *UpdatePricesMsg   `json:"update_prices,omitempty"`
	UpdateVerifier *UpdateVerifierMsg `json:"update_verifier,omitempty"`
	Register       *RegisterMsg       `json:"register,omitempty"`
	Extend         *ExtendMsg         `json:"extend,omitempty"`
	Unregister     *UnregisterMsg     `json:"unregister,omitempty"`
	Withdraw       *WithdrawMsg       `json:"withdraw,omitempty"`
}

type UpdatePricesMsg struct {
	Prices []PriceEntry `json:"prices"`
}

type UpdateVerifierMsg struct {
	BackendPubkey []byte `json:"backend_pubkey"`
}

type RegisterMsg struct {
	Name             string   `json:"name"`
	BackendSignature []byte   `json:"backend_signature"`
	Metadata         Metadata `json:"metadata"`
}

type ExtendMsg struct {
	Name             string `json:"name"`
	BackendSignature []byte `json:"backend_signature"`
	Durations        uint64 `json:"durations"`
}

type UnregisterMsg struct {
	Names []string `json:"names"`
}

type WithdrawMsg struct {
	Receiver string `json:"receiver"`
	Coin     Coin   `json:"coin"`
}

type RegistrarQueryMsg struct {
	Config        *Empty     `json:"config,omitempty"`
	Verifier      *Empty     `json:"verifier,omitempty"`
	Prices        *Empty     `json:"prices,omitempty"`
	NameContract  *Empty     `json:"name_contract,omitempty"`
	HasRegister   *NameQuery `json:"has_register,omitempty"`
	Registration  *NameQuery `json:"registration,omitempty"`
	Registrations *PageQuery `json:"registrations,omitempty"`
	Fee           *FeeQuery  `json:"fee,omitempty"`
}

type NameQuery struct {
	Name string `json:"name"`
}

type PageQuery struct {
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

// PageLimit clamps the requested limit to [1, MaxLimit].
func PageLimit(limit *uint32) int {
	l := DefaultLimit
	if limit != nil && *limit > 0 {
		l = *limit
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	return int(l)
}

type FeeQuery struct {
	Name      string `json:"name"`
	Durations uint64 `json:"durations"`
}

type PricesResponse struct {
	Prices []PriceEntry `json:"prices"`
}

type RegistrationResponse struct {
	Name      string `json:"name"`
	ExpiresAt uint64 `json:"expires_at"`
}

type RegistrationsResponse struct {
	Registrations []RegistrationResponse `json:"registrations"`
}

// VerifyMsg is the canonical payload the backend signs to authorize
// a non-admin Register or Extend.
type VerifyMsg struct {
	Register *RegisterVerify `json:"register,omitempty"`
	Extend   *ExtendVerify   `json:"extend,omitempty"`
}

type RegisterVerify struct {
	Name           string   `json:"name"`
	Sender         string   `json:"sender"`
	ChainId        string   `json:"chain_id"`
	Bech32Prefixes []string `json:"bech32_prefixes"`
	Durations      uint64   `json:"durations"`
}

type ExtendVerify struct {
	Name       string `json:"name"`
	Sender     string `json:"sender"`
	ChainId    string `json:"chain_id"`
	OldExpires uint64 `json:"old_expires"`
	Durations  uint64 `json:"durations"`
}
