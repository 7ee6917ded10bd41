package arname

import (
	"os"
	"path"

	"github.com/everFinance/arname/schema"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	sqliteName = "arname.sqlite"
)

// Wdb keeps the transaction history served by /txs.
type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	logLevel := logger.Error
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logLevel),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		panic(err)
	}
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Silent),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(&schema.TxRecord{})
}

func (w *Wdb) InsertTx(rec schema.TxRecord) error {
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rec).Error
}

// GetTxsBySender pages newest first; cursor is the last seen id, 0 for
// the first page.
func (w *Wdb) GetTxsBySender(sender string, cursor uint, limit int) ([]schema.TxRecord, error) {
	res := make([]schema.TxRecord, 0, limit)
	db := w.Db.Model(&schema.TxRecord{}).Where("sender = ?", sender)
	if cursor > 0 {
		db = db.Where("id < ?", cursor)
	}
	err := db.Order("id desc").Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) GetTx(hash string) (rec schema.TxRecord, err error) {
	err = w.Db.Where("hash = ?", hash).First(&rec).Error
	if err == gorm.ErrRecordNotFound {
		err = schema.ErrNotExist
	}
	return
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}
