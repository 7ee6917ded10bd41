package schema

const (
	LedgerName   = "arname-name"
	LedgerSymbol = "ans"
)

// Metadata is the token extension of a name.
type Metadata struct {
	Bech32Prefixes []string `json:"bech32_prefixes"`
	Durations      uint64   `json:"durations"`
	ExpiresAt      uint64   `json:"expires_at,omitempty"`

	// display
	Name                  string  `json:"name,omitempty"`
	Description           string  `json:"description,omitempty"`
	Image                 string  `json:"image,omitempty"`
	ImageData             string  `json:"image_data,omitempty"`
	ExternalUrl           string  `json:"external_url,omitempty"`
	Attributes            []Trait `json:"attributes,omitempty"`
	BackgroundColor       string  `json:"background_color,omitempty"`
	AnimationUrl          string  `json:"animation_url,omitempty"`
	YoutubeUrl            string  `json:"youtube_url,omitempty"`
	RoyaltyPercentage     *uint64 `json:"royalty_percentage,omitempty"`
	RoyaltyPaymentAddress string  `json:"royalty_payment_address,omitempty"`
	CollectionName        string  `json:"collection_name,omitempty"`
	CollectionSymbol      string  `json:"collection_symbol,omitempty"`
}

type Trait struct {
	DisplayType string `json:"display_type,omitempty"`
	TraitType   string `json:"trait_type"`
	Value       string `json:"value"`
}

type Approval struct {
	Spender string `json:"spender"`
	Expires uint64 `json:"expires,omitempty"` // unix seconds, 0 never
}

type TokenInfo struct {
	Owner     string     `json:"owner"`
	Approvals []Approval `json:"approvals"`
	TokenUri  string     `json:"token_uri,omitempty"`
	Extension Metadata   `json:"extension"`
}

type LedgerConfig struct {
	Admin        string `json:"admin"`
	MaxBatchSize uint64 `json:"max_batch_size"`
}

type NameInstantiateMsg struct {
	Admin          string `json:"admin"`
	Minter         string `json:"minter"`
	ResolverCodeId uint64 `json:"resolver_code_id"`
	MaxBatchSize   uint64 `json:"max_batch_size,omitempty"`
}

type NameExecuteMsg struct {
	Mint           *MintMsg           `json:"mint,omitempty"`
	Burn           *TokenIdMsg        `json:"burn,omitempty"`
	BurnBatch      *TokenIdsMsg       `json:"burn_batch,omitempty"`
	TransferNft    *TransferNftMsg    `json:"transfer_nft,omitempty"`
	SendNft        *SendNftMsg        `json:"send_nft,omitempty"`
	Approve        *ApproveMsg        `json:"approve,omitempty"`
	Revoke         *RevokeMsg         `json:"revoke,omitempty"`
	ExtendExpires  *ExtendExpiresMsg  `json:"extend_expires,omitempty"`
	EvictBatch     *TokenIdsMsg       `json:"evict_batch,omitempty"`
	UpdateResolver *UpdateResolverMsg `json:"update_resolver,omitempty"`
	UpdateConfig   *LedgerConfig      `json:"update_config,omitempty"`
}

type MintMsg struct {
	TokenId   string   `json:"token_id"`
	Owner     string   `json:"owner"`
	TokenUri  string   `json:"token_uri,omitempty"`
	Extension Metadata `json:"extension"`
}

type TokenIdMsg struct {
	TokenId string `json:"token_id"`
}

type TokenIdsMsg struct {
	TokenIds []string `json:"token_ids"`
}

type TransferNftMsg struct {
	Recipient string `json:"recipient"`
	TokenId   string `json:"token_id"`
}

type SendNftMsg struct {
	Contract string `json:"contract"`
	TokenId  string `json:"token_id"`
	Msg      []byte `json:"msg,omitempty"`
}

type ApproveMsg struct {
	Spender string `json:"spender"`
	TokenId string `json:"token_id"`
	Expires uint64 `json:"expires,omitempty"`
}

type RevokeMsg struct {
	Spender string `json:"spender"`
	TokenId string `json:"token_id"`
}

type ExtendExpiresMsg struct {
	TokenId    string `json:"token_id"`
	NewExpires uint64 `json:"new_expires"`
}

type UpdateResolverMsg struct {
	Resolver string `json:"resolver"`
}

// ReceiveNftMsg is delivered to the recipient component of a SendNft.
type ReceiveNftMsg struct {
	ReceiveNft *ReceiveNft `json:"receive_nft,omitempty"`
}

type ReceiveNft struct {
	Sender  string `json:"sender"`
	TokenId string `json:"token_id"`
	Msg     []byte `json:"msg,omitempty"`
}

type NameQueryMsg struct {
	ContractInfo *Empty       `json:"contract_info,omitempty"`
	Minter       *Empty       `json:"minter,omitempty"`
	Config       *Empty       `json:"config,omitempty"`
	Resolver     *Empty       `json:"resolver,omitempty"`
	OwnerOf      *TokenIdMsg  `json:"owner_of,omitempty"`
	NftInfo      *TokenIdMsg  `json:"nft_info,omitempty"`
	AllNftInfo   *TokenIdMsg  `json:"all_nft_info,omitempty"`
	NumTokens    *Empty       `json:"num_tokens,omitempty"`
	Tokens       *TokensQuery `json:"tokens,omitempty"`
	AllTokens    *PageQuery   `json:"all_tokens,omitempty"`
}

type TokensQuery struct {
	Owner      string  `json:"owner"`
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type ContractInfoResponse struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type MinterResponse struct {
	Minter string `json:"minter"`
}

type AddressResponse struct {
	Address string `json:"address"`
}

type OwnerOfResponse struct {
	Owner     string     `json:"owner"`
	Approvals []Approval `json:"approvals"`
}

type NftInfoResponse struct {
	TokenUri  string   `json:"token_uri,omitempty"`
	Extension Metadata `json:"extension"`
}

type AllNftInfoResponse struct {
	Access OwnerOfResponse `json:"access"`
	Info   NftInfoResponse `json:"info"`
}

type NumTokensResponse struct {
	Count uint64 `json:"count"`
}

type TokensResponse struct {
	Tokens []string `json:"tokens"`
}
