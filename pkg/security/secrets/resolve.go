package secrets

import (
	"fmt"

	"talos-hq/console/pkg/config"
)

// Resolve fills the token of every service that has a token_file and no
// explicit token. Mock mode needs no credentials and is left alone.
func Resolve(cfg *config.Config) error {
	if cfg.Mock {
		return nil
	}
	services := []struct {
		name string
		svc  *config.ServiceConfig
	}{
		{"gateway", &cfg.Gateway},
		{"audit", &cfg.Audit},
	}
	for _, s := range services {
		if s.svc.Token != "" || s.svc.TokenFile == "" {
			continue
		}
		token, err := ReadFile(s.svc.TokenFile)
		if err != nil {
			return fmt.Errorf("%s token: %w", s.name, err)
		}
		s.svc.Token = token
	}
	return nil
}
