package config

import (
	"errors"
	"fmt"

	supa "github.com/supabase-community/supabase-go"
)

// ErrSupabaseNotConfigured means history persistence is switched off.
var ErrSupabaseNotConfigured = errors.New("supabase url and service key are not set")

// NewSupabaseClient initializes the Supabase client from settings.
func NewSupabaseClient(cfg Supabase) (*supa.Client, error) {
	if cfg.URL == "" || cfg.ServiceKey == "" {
		return nil, ErrSupabaseNotConfigured
	}
	client, err := supa.NewClient(cfg.URL, cfg.ServiceKey, nil)
	if err != nil {
		return nil, fmt.Errorf("initialize supabase client: %w", err)
	}
	return client, nil
}
