package cache

import "github.com/everFinance/arname/common"

var log = common.NewLog("cache")
