package arname

import (
	"sync"
	"time"

	"github.com/everFinance/arname/rawdb"
	"github.com/everFinance/arname/schema"
)

const registrationsPageSize uint32 = 100

// expiredSet is the last view of names past their expiry, as seen by the
// watcher.
type expiredSet struct {
	sync.RWMutex
	now   int64
	names []schema.RegistrationResponse
}

func (e *expiredSet) Set(now int64, names []schema.RegistrationResponse) {
	e.Lock()
	defer e.Unlock()
	e.now = now
	e.names = names
}

func (e *expiredSet) Get() (int64, []schema.RegistrationResponse) {
	e.RLock()
	defer e.RUnlock()
	names := make([]schema.RegistrationResponse, len(e.names))
	copy(names, e.names)
	return e.now, names
}

func (a *Arname) runJobs() {
	a.scheduler.Every(1).Minute().SingletonMode().Do(a.watchExpired)
	a.scheduler.Every(30).Seconds().SingletonMode().Do(a.cacheStats)

	if a.s3Backup != nil {
		interval := a.cfg.S3Backup.Interval
		if interval <= 0 {
			interval = 60
		}
		a.scheduler.Every(interval).Minutes().SingletonMode().Do(a.backup)
	}

	a.scheduler.StartAsync()
}

// allRegistrations pages through the registrar's registry.
func (a *Arname) allRegistrations() ([]schema.RegistrationResponse, error) {
	all := make([]schema.RegistrationResponse, 0)
	limit := registrationsPageSize
	var startAfter *string
	for {
		res := schema.RegistrationsResponse{}
		err := a.queryJSON(a.registrar, schema.RegistrarQueryMsg{
			Registrations: &schema.PageQuery{StartAfter: startAfter, Limit: &limit},
		}, &res)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Registrations...)
		if uint32(len(res.Registrations)) < limit {
			return all, nil
		}
		last := res.Registrations[len(res.Registrations)-1].Name
		startAfter = &last
	}
}

func (a *Arname) watchExpired() {
	regs, err := a.allRegistrations()
	if err != nil {
		log.Error("a.allRegistrations()", "err", err)
		return
	}
	now := a.host.Now().Unix()
	expired := make([]schema.RegistrationResponse, 0)
	for _, r := range regs {
		if r.ExpiresAt <= uint64(now) {
			expired = append(expired, r)
		}
	}
	a.expired.Set(now, expired)
	metricRegistrations(len(regs)-len(expired), len(expired))
	if len(expired) > 0 {
		log.Debug("expired names", "count", len(expired))
	}
}

func (a *Arname) cacheStats() {
	st := a.cache.Stats()
	metricCache(st.Entries, st.Hits, st.Misses)
}

func (a *Arname) backup() {
	snap, ok := a.db.(rawdb.Snapshotter)
	if !ok {
		log.Warn("store does not support snapshots, skip backup")
		return
	}
	start := time.Now()
	key, err := a.s3Backup.Upload(snap, start)
	if err != nil {
		log.Error("a.s3Backup.Upload", "err", err)
		return
	}
	log.Info("backup uploaded", "key", key, "cost", time.Since(start).String())
}
