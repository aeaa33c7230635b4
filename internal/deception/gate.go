package deception

import (
	"context"

	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/logger"
	"github.com/rajtilak-2020/Sukraksha-Miraj-NexTech1.0/internal/metrics"
)

// BlockChecker looks a source up in the blocklist.
type BlockChecker interface {
	IsBlocked(ctx context.Context, ip string) (bool, error)
}

// Gate rejects blocklisted sources before any scoring happens.
type Gate struct {
	store BlockChecker
}

// NewGate returns a Gate backed by store.
func NewGate(store BlockChecker) *Gate {
	return &Gate{store: store}
}

// IsBlocked reports whether sourceID is blocklisted. When the store cannot
// be queried the source is treated as not blocked: the decoy front end stays
// up rather than refusing everyone.
func (g *Gate) IsBlocked(ctx context.Context, sourceID string) bool {
	blocked, err := g.store.IsBlocked(ctx, sourceID)
	if err != nil {
		metrics.IncStoreDegraded("blocklist")
		logger.ForSource("gate", sourceID).WithError(err).Warn("blocklist lookup failed, allowing source")
		return false
	}
	return blocked
}
