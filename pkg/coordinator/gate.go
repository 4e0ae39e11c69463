package coordinator

import (
	"fmt"
	"strings"

	"talos-hq/console/pkg/domain"
)

// HealthGate returns a NOT_READY error when src reported a health status
// other than ok.
func HealthGate(src domain.Source, health domain.Health) error {
	if health.OK() {
		return nil
	}
	msg := fmt.Sprintf("%s not ready", titleCase(string(src)))
	if health.Detail != "" {
		msg += ": " + health.Detail
	}
	return domain.NewError(domain.KindNotReady, msg)
}

// ContractsGate returns a CONTRACT error when the contracts major version
// of version differs from want.
func ContractsGate(version domain.VersionInfo, want string) error {
	if version.ContractsMajor() == want {
		return nil
	}
	return domain.NewError(domain.KindContract,
		fmt.Sprintf("Incompatible contracts: %s (want major %s)", version.ContractsVersion, want))
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
