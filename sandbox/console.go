package sandbox

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// captureBuffer collects console output produced by an evaluated script.
// The evaluation goroutine writes while the timeout branch may read, so
// access is serialized.
type captureBuffer struct {
	mu       sync.Mutex
	builder  strings.Builder
	maxBytes int
}

func newCaptureBuffer(maxBytes int) *captureBuffer {
	return &captureBuffer{maxBytes: maxBytes}
}

// appendLine adds one formatted output line. Writes past the byte cap are
// dropped; the cap is marked once in String.
func (b *captureBuffer) appendLine(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.maxBytes > 0 && b.builder.Len() > b.maxBytes {
		return
	}
	b.builder.WriteString(line)
	b.builder.WriteString("\n")
}

// String returns the output accumulated so far, truncated at the cap
func (b *captureBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return truncateOutput(b.builder.String(), b.maxBytes)
}

// Console channel prefixes. The log and info channels mimic a real console
// and carry no prefix; the diagnostic channels are tagged.
const (
	prefixWarn  = "[warn] "
	prefixError = "[error] "
	prefixDebug = "[debug] "
)

// bindConsole installs a console object on the runtime whose four channels
// (log/info, warn, error, debug) append to the capture buffer. This is the
// only output surface the evaluated script sees.
func bindConsole(vm *goja.Runtime, buf *captureBuffer) error {
	console := vm.NewObject()

	channels := map[string]string{
		"log":   "",
		"info":  "",
		"warn":  prefixWarn,
		"error": prefixError,
		"debug": prefixDebug,
	}

	for name, prefix := range channels {
		if err := console.Set(name, makeChannel(buf, prefix)); err != nil {
			return err
		}
	}

	return vm.Set("console", console)
}

// makeChannel builds one console channel function. Arguments are joined by
// a single space; non-string values are serialized to a readable
// structured form.
func makeChannel(buf *captureBuffer, prefix string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			parts = append(parts, formatValue(arg))
		}
		buf.appendLine(prefix + strings.Join(parts, " "))
		return goja.Undefined()
	}
}

// formatValue renders a script value for the output buffer. Strings pass
// through untouched; composite values are rendered as JSON when possible.
func formatValue(v goja.Value) string {
	exported := v.Export()

	if s, ok := exported.(string); ok {
		return s
	}

	switch exported.(type) {
	case map[string]interface{}, []interface{}:
		if data, err := json.Marshal(exported); err == nil {
			return string(data)
		}
	}

	return v.String()
}
