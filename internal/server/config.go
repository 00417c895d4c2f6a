package server

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig builds the root configuration from defaults, an optional YAML
// config file, and environment variables. The NETBOX_URL, NETBOX_TOKEN, and
// SIM_FILE variables match the reference deployment; everything else can be
// overridden with a NETSEED_ prefix (e.g. NETSEED_SERVER_PORT).
func LoadConfig(path string) (*viper.Viper, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("store.path", "netseed.db")
	v.SetDefault("simdata.path", "simulated_snmp_data.json")
	v.SetDefault("netbox.timeout", "10s")
	v.SetDefault("netbox.rate_limit", 0) // requests/sec; 0 disables limiting
	v.SetDefault("discover.max_targets", 65536)

	_ = v.BindEnv("netbox.url", "NETBOX_URL")
	_ = v.BindEnv("netbox.token", "NETBOX_TOKEN")
	_ = v.BindEnv("simdata.path", "SIM_FILE")

	v.SetEnvPrefix("NETSEED")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
	}

	return v, nil
}
