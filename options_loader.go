package ygggo_session

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix OptionsFromEnv reads, e.g. YGGGO_SESSION_HOST.
const EnvPrefix = "YGGGO_SESSION"

// optionKeys lists each option with its accepted aliases, primary key first.
var optionKeys = []struct {
	keys []string
	set  func(o *ConnectionOptions, v *viper.Viper, key string)
}{
	{[]string{"uri"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.URI = v.GetString(k) }},
	{[]string{"host", "hostname"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Host = v.GetString(k) }},
	{[]string{"user", "username"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Username = v.GetString(k) }},
	{[]string{"database", "db"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Database = v.GetString(k) }},
	{[]string{"password", "pass"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Password = v.GetString(k) }},
	{[]string{"charset"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Charset = v.GetString(k) }},
	{[]string{"collation"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Collation = v.GetString(k) }},
	{[]string{"timezone"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Timezone = v.GetString(k) }},
	{[]string{"socket"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Socket = v.GetString(k) }},
	{[]string{"port"}, func(o *ConnectionOptions, v *viper.Viper, k string) { o.Port = v.GetInt(k) }},
	{[]string{"statement_cache_capacity"}, func(o *ConnectionOptions, v *viper.Viper, k string) {
		o.StatementCacheCapacity = v.GetInt(k)
	}},
}

// OptionsFromViper reads connection options from v. For every option the
// first alias that is set wins. The result is resolved and validated.
func OptionsFromViper(v *viper.Viper) (*ConnectionOptions, error) {
	opts := &ConnectionOptions{}
	for _, ok := range optionKeys {
		for _, key := range ok.keys {
			if v.IsSet(key) {
				ok.set(opts, v, key)
				break
			}
		}
	}
	return opts.Resolve()
}

// OptionsFromEnv reads options from YGGGO_SESSION_* environment variables.
func OptionsFromEnv() (*ConnectionOptions, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	for _, ok := range optionKeys {
		for _, key := range ok.keys {
			_ = v.BindEnv(key)
		}
	}
	return OptionsFromViper(v)
}
