// Package visitor records anonymous catalog visits for the dashboard's
// visitor count.
package visitor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

// Recorder stores one visit.
type Recorder interface {
	Record(ctx context.Context, ipHash, userAgent string) error
}

type PGRecorder struct{ db *pgxpool.Pool }

func NewPGRecorder(db *pgxpool.Pool) *PGRecorder { return &PGRecorder{db: db} }

func (r *PGRecorder) Record(ctx context.Context, ipHash, userAgent string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO visitor_logs (id, ip_hash, user_agent, created_at)
		VALUES ($1, $2, $3, NOW())
	`, uuid.NewString(), ipHash, userAgent)
	return errors.Wrap(err, "record visit")
}

// HashIP returns the hex sha256 of ip, so raw addresses are never stored.
func HashIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))
	return hex.EncodeToString(sum[:])
}

// IsBot reports whether the user agent looks like a crawler.
func IsBot(userAgent string) bool {
	return strings.Contains(strings.ToLower(userAgent), "bot")
}

// maxInFlight caps background writes; visits beyond it are dropped.
const maxInFlight = 32

// Middleware records the visit once the handler has answered without an
// error status. The write runs in the background with its own timeout and
// never affects the response.
func Middleware(rec Recorder, log *slog.Logger) gin.HandlerFunc {
	return middleware(rec, log, maxInFlight)
}

func middleware(rec Recorder, log *slog.Logger, limit int64) gin.HandlerFunc {
	sem := semaphore.NewWeighted(limit)
	return func(c *gin.Context) {
		c.Next()

		ua := c.Request.UserAgent()
		if c.Writer.Status() >= http.StatusBadRequest || IsBot(ua) {
			return
		}
		if !sem.TryAcquire(1) {
			log.Debug("[VISITOR] dropped, too many pending writes")
			return
		}
		hash := HashIP(c.ClientIP())
		go func() {
			defer sem.Release(1)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rec.Record(ctx, hash, ua); err != nil {
				log.Warn("[VISITOR] record failed", "err", err)
			}
		}()
	}
}
