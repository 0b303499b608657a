package dto

import (
	"fmt"
	"time"

	"github.com/amirhossein-jamali/health-logger/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/health-logger/internal/domain/error"
)

// ConfigResponse is the current logger configuration
type ConfigResponse struct {
	Level             string `json:"level"`
	EnableConsole     bool   `json:"enableConsole"`
	EnableStorage     bool   `json:"enableStorage"`
	StorageTTL        string `json:"storageTTL"`
	StorageTTLMs      int64  `json:"storageTTLMs"`
	MaxStorageEntries int    `json:"maxStorageEntries"`
	CustomHandler     bool   `json:"customHandler"`
}

// ConfigPatchRequest updates the named fields and leaves the rest unchanged.
// StorageTTL is a Go duration string such as "24h" or "90m".
type ConfigPatchRequest struct {
	Level             *string `json:"level"`
	EnableConsole     *bool   `json:"enableConsole"`
	EnableStorage     *bool   `json:"enableStorage"`
	StorageTTL        *string `json:"storageTTL"`
	MaxStorageEntries *int    `json:"maxStorageEntries"`
}

// NewConfigResponse converts a configuration for the API
func NewConfigResponse(c entity.LoggerConfig) ConfigResponse {
	return ConfigResponse{
		Level:             string(c.Level),
		EnableConsole:     c.EnableConsole,
		EnableStorage:     c.EnableStorage,
		StorageTTL:        c.StorageTTL.String(),
		StorageTTLMs:      c.StorageTTL.Milliseconds(),
		MaxStorageEntries: c.MaxStorageEntries,
		CustomHandler:     c.CustomHandler != nil,
	}
}

// ToPatch converts the request into a domain patch. The custom handler cannot
// be set over HTTP.
func (r ConfigPatchRequest) ToPatch() (entity.ConfigPatch, error) {
	var patch entity.ConfigPatch

	if r.Level != nil {
		level, err := entity.ParseLogLevel(*r.Level)
		if err != nil {
			return entity.ConfigPatch{}, err
		}
		patch.Level = &level
	}
	if r.StorageTTL != nil {
		ttl, err := time.ParseDuration(*r.StorageTTL)
		if err != nil {
			return entity.ConfigPatch{}, fmt.Errorf("%w: storageTTL: %s", domainerr.ErrInvalidConfig, err.Error())
		}
		patch.StorageTTL = &ttl
	}
	patch.EnableConsole = r.EnableConsole
	patch.EnableStorage = r.EnableStorage
	patch.MaxStorageEntries = r.MaxStorageEntries

	return patch, nil
}
