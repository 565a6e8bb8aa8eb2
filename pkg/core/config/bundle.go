package config

import (
	"encoding/json"

	"github.com/msto63/kontrakt/pkg/core/kerror"
)

// NetworkBundle is the networks payload handed to a console child process.
// Every network is encoded as its own JSON string so the child can decode
// networks independently.
type NetworkBundle struct {
	Networks map[string]string `json:"networks"`
}

// EncodeNetworks serialises networks into the child process bundle
func EncodeNetworks(networks map[string]NetworkConfig) (string, error) {
	bundle := NetworkBundle{Networks: make(map[string]string, len(networks))}
	for name, n := range networks {
		data, err := json.Marshal(n)
		if err != nil {
			return "", kerror.Wrapf(err, kerror.CodeConfiguration, "cannot encode network %q", name)
		}
		bundle.Networks[name] = string(data)
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return "", kerror.Wrap(err, kerror.CodeConfiguration, "cannot encode network bundle")
	}
	return string(data), nil
}

// DecodeNetworks is the inverse of EncodeNetworks
func DecodeNetworks(raw string) (map[string]NetworkConfig, error) {
	var bundle NetworkBundle
	if err := json.Unmarshal([]byte(raw), &bundle); err != nil {
		return nil, kerror.Wrap(err, kerror.CodeConfiguration, "cannot decode network bundle")
	}

	networks := make(map[string]NetworkConfig, len(bundle.Networks))
	for name, encoded := range bundle.Networks {
		var n NetworkConfig
		if err := json.Unmarshal([]byte(encoded), &n); err != nil {
			return nil, kerror.Wrapf(err, kerror.CodeConfiguration, "cannot decode network %q", name)
		}
		networks[name] = n
	}
	return networks, nil
}
