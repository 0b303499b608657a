package logging

import (
	"sync"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
)

var (
	instanceMu sync.Mutex
	instance   *Service
)

// GetInstance returns the process-wide service. The first call creates it
// from cfg (or the defaults); later calls ignore cfg and return the same value.
// An instance created here has no store or console until SetInstance replaces it
// with one built by the composition root.
func GetInstance(cfg ...entity.LoggerConfig) *Service {
	instanceMu.Lock()
	defer instanceMu.Unlock()

	if instance == nil {
		seed := entity.DefaultLoggerConfig()
		if len(cfg) > 0 {
			seed = cfg[0]
		}
		instance = NewService(seed, nil, nil, nil, nil)
	}
	return instance
}

// SetInstance installs s as the process-wide service
func SetInstance(s *Service) {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	instance = s
}
