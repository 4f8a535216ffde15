package ygggo_session

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DSN returns a go-sql-driver DSN for the options.
// Temporal columns are kept as text (parseTime=false) so the encoder sees
// the server's canonical rendering.
func (o *ConnectionOptions) DSN() string {
	params := map[string]string{"parseTime": "false"}
	if o.Charset != "" {
		params["charset"] = o.Charset
	}
	if o.Collation != "" {
		params["collation"] = o.Collation
	}
	if o.Timezone != "" {
		params["time_zone"] = "'" + o.Timezone + "'"
	}

	// stable order
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", k, url.QueryEscape(params[k])))
	}

	// the driver expects the password unescaped
	auth := ""
	if o.Username != "" {
		if o.Password != "" {
			auth = fmt.Sprintf("%s:%s@", o.Username, o.Password)
		} else {
			auth = o.Username + "@"
		}
	}
	network := "tcp"
	if o.Socket != "" {
		network = "unix"
	}
	return fmt.Sprintf("%s%s(%s)/%s?%s", auth, network, o.Addr(), url.PathEscape(o.Database), strings.Join(parts, "&"))
}
