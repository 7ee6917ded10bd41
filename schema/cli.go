package schema

type Config struct {
	ChainId      string `yaml:"chainId"`
	Bech32Prefix string `yaml:"bech32Prefix"`
	Port         string `yaml:"port"`
	MetricPort   string `yaml:"metricPort"`
	BoltDir      string `yaml:"boltDir"`
	Memory       bool   `yaml:"memory"`
	Mysql        string `yaml:"mysql"`
	Sqlite       string `yaml:"sqlite"`
	RateLimit    string `yaml:"rateLimit"` // ulule formatted, e.g. "30-M"
	SentryDsn    string `yaml:"sentryDsn"`

	Kafka    Kafka    `yaml:"kafka"`
	S3Backup S3Backup `yaml:"s3Backup"`
	Genesis  Genesis  `yaml:"genesis"`
}

type S3Backup struct {
	Enable    bool   `yaml:"enable"`
	AccKey    string `yaml:"accKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Interval  int    `yaml:"interval"` // minutes
}

type Kafka struct {
	Start bool   `yaml:"start"`
	Uri   string `yaml:"uri"`
}

type Genesis struct {
	Registrar GenesisRegistrar `yaml:"registrar"`
	Balances  []GenesisBalance `yaml:"balances"`
}

type GenesisRegistrar struct {
	Admin           string         `yaml:"admin"`
	Operator        string         `yaml:"operator"`
	BackendPubkey   string         `yaml:"backendPubkey"` // hex, compressed secp256k1
	MaxYearRegister uint64         `yaml:"maxYearRegister"`
	MaxBatchSize    uint64         `yaml:"maxBatchSize"`
	Prices          []GenesisPrice `yaml:"prices"`
}

type GenesisPrice struct {
	Length uint8  `yaml:"length"`
	Denom  string `yaml:"denom"`
	Amount string `yaml:"amount"`
}

type GenesisBalance struct {
	Address string `yaml:"address"`
	Denom   string `yaml:"denom"`
	Amount  string `yaml:"amount"`
}
