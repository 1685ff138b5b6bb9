package deps

import (
	"time"

	"github.com/ceacwatch/ceacwatch/internal/logger"
	"github.com/ceacwatch/ceacwatch/internal/orchestrator"
	"github.com/ceacwatch/ceacwatch/internal/sources/locations"
	redisstore "github.com/ceacwatch/ceacwatch/internal/store/redis"
)

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	Orchestrator  *orchestrator.Orchestrator
	Archive       *redisstore.Store // nil when Redis is not configured
	Locations     *locations.Index
	ReloadTrigger chan struct{} // trigger for manual locations reload (nil if no file configured)

	DefaultMaxRetries int // CAPTCHA retries when check-auto requests omit max_retries

	TrustProxy     bool    // true if running behind a trusted reverse proxy
	RateLimitRPS   float64 // sustained requests per second per client IP (0 = disabled)
	RateLimitBurst int     // burst allowance per client IP
}
