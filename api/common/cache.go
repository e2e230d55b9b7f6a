package common

import (
	"time"

	"github.com/nknorg/ballot/common"
)

const (
	rpcResultCacheExpiration      = 10 * time.Minute
	rpcResultCacheCleanupInterval = time.Minute
)

// rpcResultCache holds query results keyed by the height they were computed
// at, so an entry never goes stale.
var rpcResultCache = common.NewGoCache(rpcResultCacheExpiration, rpcResultCacheCleanupInterval)
