package schema

type ResolverConfig struct {
	Admin string `json:"admin"`
}

type ResolverInstantiateMsg struct {
	Admin string `json:"admin"`
}

type ResolverExecuteMsg struct {
	UpdateConfig        *ResolverConfig        `json:"update_config,omitempty"`
	UpdateNameContract  *UpdateNameContractMsg `json:"update_name_contract,omitempty"`
	UpdateRecord        *UpdateRecordMsg       `json:"update_record,omitempty"`
	DeleteNames         *DeleteNamesMsg        `json:"delete_names,omitempty"`
	AddIgnoreAddress    *IgnoreAddressMsg      `json:"add_ignore_address,omitempty"`
	RemoveIgnoreAddress *IgnoreAddressMsg      `json:"remove_ignore_address,omitempty"`
}

type UpdateNameContractMsg struct {
	NameContract string `json:"name_contract"`
}

type UpdateRecordMsg struct {
	Name           string   `json:"name"`
	Bech32Prefixes []string `json:"bech32_prefixes"`
	Address        string   `json:"address"`
}

type DeleteNamesMsg struct {
	Names []string `json:"names"`
}

type IgnoreAddressMsg struct {
	Address string `json:"address"`
}

type ResolverQueryMsg struct {
	Config          *Empty               `json:"config,omitempty"`
	NameContract    *Empty               `json:"name_contract,omitempty"`
	IsIgnoreAddress *IgnoreAddressMsg    `json:"is_ignore_address,omitempty"`
	AddressOf       *AddressOfQuery      `json:"address_of,omitempty"`
	AllAddressesOf  *AllAddressesOfQuery `json:"all_addresses_of,omitempty"`
	Names           *NamesQuery          `json:"names,omitempty"`
}

type AddressOfQuery struct {
	PrimaryName  string `json:"primary_name"`
	Bech32Prefix string `json:"bech32_prefix"`
}

type AllAddressesOfQuery struct {
	PrimaryName string  `json:"primary_name"`
	StartAfter  *string `json:"start_after,omitempty"`
	Limit       *uint32 `json:"limit,omitempty"`
}

type NamesQuery struct {
	Owner      string  `json:"owner"`
	StartAfter *string `json:"start_after,omitempty"`
	Limit      *uint32 `json:"limit,omitempty"`
}

type ResolvedAddress struct {
	Address      string `json:"address"`
	Bech32Prefix string `json:"bech32_prefix"`
}

type AllAddressesResponse struct {
	Addresses []ResolvedAddress `json:"addresses"`
}

type NamesResponse struct {
	Names []string `json:"names"`
}

type BoolResponse struct {
	Value bool `json:"value"`
}
