package arname

import (
	"sync"
	"time"

	"github.com/everFinance/arname/cache"
	"github.com/everFinance/arname/common"
	"github.com/everFinance/arname/ledger"
	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/registrar"
	"github.com/everFinance/arname/resolver"
	"github.com/everFinance/arname/schema"
	"github.com/everFinance/arname/vm"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"github.com/panjf2000/ants/v2"
)

var log = common.NewLog("arname")

const (
	RegistrarCodeId uint64 = 1
	NameCodeId      uint64 = 2
	ResolverCodeId  uint64 = 3

	RegistrarLabel = "registrar"
)

type Arname struct {
	cfg       schema.Config
	db        rawdb.KeyValueDB
	host      *vm.Host
	engine    *gin.Engine
	scheduler *gocron.Scheduler
	pool      *ants.Pool
	cache     *cache.Cache
	expired   *expiredSet

	// held for writing across a delivery and the cache reset after it
	txLock sync.RWMutex

	wdb      *Wdb      // nil when history is disabled
	kWriter  *KWriter  // nil when kafka is disabled
	s3Backup *rawdb.S3Backup

	registrar    string
	nameContract string
	resolver     string
}

// NewHost registers the three components on a host over db.
func NewHost(db rawdb.KeyValueDB, chainId, prefix string) *vm.Host {
	h := vm.NewHost(db, chainId, prefix)
	h.Register(RegistrarCodeId, registrar.New())
	h.Register(NameCodeId, ledger.New())
	h.Register(ResolverCodeId, resolver.New())
	return h
}

func New(cfg schema.Config) (*Arname, error) {
	var (
		db  rawdb.KeyValueDB
		err error
	)
	if cfg.Memory {
		db = rawdb.NewMemDB()
	} else {
		db, err = rawdb.NewBoltDB(cfg.BoltDir)
		if err != nil {
			return nil, err
		}
	}

	localCache, err := cache.NewLocalCache(10 * time.Minute)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(50, ants.WithPanicHandler(func(p interface{}) {
		log.Error("post commit task panic", "err", p)
	}))
	if err != nil {
		return nil, err
	}

	a := &Arname{
		cfg:       cfg,
		db:        db,
		host:      NewHost(db, cfg.ChainId, cfg.Bech32Prefix),
		engine:    gin.Default(),
		scheduler: gocron.NewScheduler(time.UTC),
		pool:      pool,
		cache:     localCache,
		expired:   &expiredSet{},
	}

	switch {
	case cfg.Mysql != "":
		a.wdb = NewMysqlDb(cfg.Mysql)
	case cfg.Sqlite != "":
		a.wdb = NewSqliteDb(cfg.Sqlite)
	}
	if a.wdb != nil {
		if err := a.wdb.Migrate(); err != nil {
			return nil, err
		}
	}

	if cfg.Kafka.Start {
		a.kWriter, err = NewKWriter(TxTopic, cfg.Kafka.Uri)
		if err != nil {
			return nil, err
		}
	}

	if cfg.S3Backup.Enable {
		b := cfg.S3Backup
		a.s3Backup, err = rawdb.NewS3Backup(b.AccKey, b.SecretKey, b.Region, b.Bucket, b.Prefix, b.Endpoint)
		if err != nil {
			return nil, err
		}
	}

	if err := a.bootstrap(); err != nil {
		return nil, err
	}
	if err := a.setupRoutes(); err != nil {
		return nil, err
	}
	return a, nil
}

// bootstrap applies genesis on an empty store and resolves the component
// addresses.
func (a *Arname) bootstrap() error {
	if !a.host.Initialized() {
		gc, err := genesisRegistrar(a.cfg.Genesis.Registrar)
		if err != nil {
			return err
		}
		res, err := a.host.Genesis(a.cfg.Genesis.Balances, gc)
		if err != nil {
			return err
		}
		log.Info("genesis applied", "height", res.Height, "events", len(res.Events))
	}

	var err error
	if a.registrar, err = a.host.GenesisContractAddress(RegistrarLabel); err != nil {
		return err
	}
	var nc schema.AddressResponse
	if err = a.queryJSON(a.registrar, schema.RegistrarQueryMsg{NameContract: &schema.Empty{}}, &nc); err != nil {
		return err
	}
	a.nameContract = nc.Address
	if err = a.queryJSON(a.nameContract, schema.NameQueryMsg{Resolver: &schema.Empty{}}, &nc); err != nil {
		return err
	}
	a.resolver = nc.Address
	log.Info("components ready", "registrar", a.registrar, "nameContract", a.nameContract, "resolver", a.resolver)
	return nil
}

func (a *Arname) Run() {
	if a.cfg.MetricPort != "" {
		common.NewMetricServer(a.cfg.MetricPort)
	}
	go a.runAPI(a.cfg.Port)
	go a.runJobs()
}

func (a *Arname) Close() {
	a.scheduler.Stop()
	a.pool.Release()
	if a.kWriter != nil {
		a.kWriter.Close()
	}
	if a.wdb != nil {
		a.wdb.Close()
	}
	if err := a.db.Close(); err != nil {
		log.Error("a.db.Close()", "err", err)
	}
}
