package schema

var (
	// host bucket
	ContractsBucket = "vm-contracts-bucket" // key: contract address, val: ContractInfo
	BankBucket      = "vm-bank-bucket"      // key: address+"/"+denom, val: amount
	AccountBucket   = "vm-account-bucket"   // key: address, val: sequence
	ConstantsBucket = "constants-bucket"    // key: see Key* below

	// each contract owns one bucket: ContractStorePrefix+address
	ContractStorePrefix = "contract-store-"
)

const (
	KeyHeight      = "height"
	KeyBlockTime   = "block-time"
	KeyContractSeq = "contract-seq"
	KeyGenesis     = "genesis"
)
