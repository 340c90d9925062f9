package stream

import (
	"sync/atomic"
	"time"
)

// addPlayTime and storePlayTime isolate the §3.4/§5 atomic-add
// contract for the playTime tick count from its callers.
func addPlayTime(playTime *int64, d time.Duration) {
	atomic.AddInt64(playTime, int64(d))
}

func storePlayTime(playTime *int64, d time.Duration) {
	atomic.StoreInt64(playTime, int64(d))
}
