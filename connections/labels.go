package connections

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/xrpscan/ledgerlens/config"
	"github.com/xrpscan/ledgerlens/logger"
	"github.com/xrpscan/ledgerlens/models"
)

// LabelSource keeps a snapshot of well-known address names. The snapshot is
// replaced as a whole on each successful load and never mutated in place.
type LabelSource struct {
	url    string
	client *http.Client

	mu      sync.RWMutex
	labels  models.Labels
	loaded  bool
	loading atomic.Bool
}

func NewLabelSource(url string, client *http.Client) *LabelSource {
	if client == nil {
		client = newHTTPClient()
	}
	return &LabelSource{url: url, client: client, labels: models.Labels{}}
}

func NewLabelSourceFromEnv() *LabelSource {
	return NewLabelSource(config.EnvKnownAddressesURL(), nil)
}

type wellKnownName struct {
	Account string `json:"account"`
	Name    string `json:"name"`
}

// Load fetches the names once. Later calls are no-ops unless force is set,
// and a call made while another load is running returns immediately. On
// failure the previous snapshot is kept.
func (s *LabelSource) Load(ctx context.Context, force bool) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded && !force {
		return nil
	}
	if !s.loading.CompareAndSwap(false, true) {
		return nil
	}
	defer s.loading.Store(false)

	var names []wellKnownName
	if err := getJSON(ctx, s.client, s.url, &names); err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to load well-known addresses")
		return err
	}

	labels := make(models.Labels, len(names))
	for _, n := range names {
		if n.Account != "" && n.Name != "" {
			labels[n.Account] = n.Name
		}
	}

	s.mu.Lock()
	s.labels = labels
	s.loaded = true
	s.mu.Unlock()

	logger.Log.Info().Int("count", len(labels)).Msg("Loaded well-known addresses")
	return nil
}

// Snapshot returns the current labels. The map must not be modified.
func (s *LabelSource) Snapshot() models.Labels {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.labels
}
