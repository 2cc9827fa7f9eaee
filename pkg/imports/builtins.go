package imports

import "strings"

// nodeBuiltins are the core modules of Node.js. They resolve without a
// dependency entry and must never be installed from the registry.
var nodeBuiltins = map[string]struct{}{
	"assert": {}, "async_hooks": {}, "buffer": {}, "child_process": {},
	"cluster": {}, "console": {}, "constants": {}, "crypto": {}, "dgram": {},
	"diagnostics_channel": {}, "dns": {}, "domain": {}, "events": {}, "fs": {},
	"http": {}, "http2": {}, "https": {}, "inspector": {}, "module": {},
	"net": {}, "os": {}, "path": {}, "perf_hooks": {}, "process": {},
	"punycode": {}, "querystring": {}, "readline": {}, "repl": {}, "stream": {},
	"string_decoder": {}, "sys": {}, "timers": {}, "tls": {}, "trace_events": {},
	"tty": {}, "url": {}, "util": {}, "v8": {}, "vm": {}, "wasi": {},
	"worker_threads": {}, "zlib": {},
}

// IsBuiltin reports whether name is a Node.js core module.
func IsBuiltin(name string) bool {
	name = strings.TrimPrefix(name, "node:")
	if i := strings.IndexByte(name, '/'); i >= 0 {
		name = name[:i]
	}
	_, ok := nodeBuiltins[name]
	return ok
}
