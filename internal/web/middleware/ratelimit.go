package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ulule/limiter/v3"
	limiterhttp "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RateLimit limits each client IP to perMinute requests per minute. Limits
// created with different names are counted separately, so the stricter
// upload limit does not eat into the general one.
//
// perMinute <= 0 disables the limit.
func RateLimit(name string, perMinute int) func(http.Handler) http.Handler {
	if perMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	rate := limiter.Rate{Period: time.Minute, Limit: int64(perMinute)}
	store := memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          "controltower_" + name,
		CleanUpInterval: time.Minute,
	})
	lim := limiter.New(store, rate)

	mw := limiterhttp.NewMiddleware(lim,
		limiterhttp.WithKeyGetter(ClientIP),
		limiterhttp.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rate.Period.Seconds())))
			denyJSON(w, http.StatusTooManyRequests, "rate limit exceeded, please slow down", "RATE001")
		}),
	)
	return mw.Handler
}
