/*
File: args.go
Description: Command-line argument construction for the monkey exerciser. Maps the
configured monkey_params to flags with a total, deterministic translation: booleans
become presence/absence flags, verbose levels expand to repeated -v tokens, and
everything else becomes a --key value pair.
*/

package monkey

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/iuu77/MonkeyBrain/pkg/config"
)

// BuildParamArgs translates monkey_params into command-line tokens. Each entry
// maps to exactly one flag:
//
//	{"throttle": 100}        -> --throttle 100
//	{"ignore_crashes": true} -> --ignore-crashes
//	{"ignore_crashes": false}-> (omitted)
//	{"verbose": 3}           -> -v -v -v
//
// Underscores in keys become dashes. The verbose tokens are emitted after the
// other flags, and extra_args fields last, matching the exerciser's expected
// command layout. Keys are sorted so the output is deterministic.
func BuildParamArgs(params map[string]interface{}) []string {
	var args []string
	verboseLevel := 0
	extraArgs := ""

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := params[key]
		switch key {
		case "verbose", "v":
			verboseLevel = toInt(value)
			continue
		case "extra_args":
			if s, ok := value.(string); ok {
				extraArgs = s
			}
			continue
		}

		flag := "--" + strings.ReplaceAll(key, "_", "-")
		switch v := value.(type) {
		case bool:
			if v {
				args = append(args, flag)
			}
		case nil:
			args = append(args, flag)
		default:
			args = append(args, flag, formatValue(v))
		}
	}

	for i := 0; i < verboseLevel; i++ {
		args = append(args, "-v")
	}
	if extraArgs != "" {
		args = append(args, strings.Fields(extraArgs)...)
	}
	return args
}

// BuildMonkeyArgs assembles the full adb-level argument list for one invocation:
// shell monkey -p <package> <param flags> <event count>.
func BuildMonkeyArgs(cfg *config.Config) []string {
	args := []string{"shell", "monkey", "-p", cfg.TargetPackage}
	args = append(args, BuildParamArgs(cfg.MonkeyParams)...)
	return append(args, strconv.Itoa(cfg.MonkeyEvents))
}

// toInt normalizes the numeric types a JSON or viper decode can produce.
func toInt(v interface{}) int {
	switch x := v.(type) {
	case int:
		return x
	case int64:
		return int(x)
	case float64:
		return int(x)
	case string:
		if n, err := strconv.Atoi(x); err == nil {
			return n
		}
	}
	return 0
}

func formatValue(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == math.Trunc(x) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}
