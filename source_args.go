// FILE: lixenwraith/confman/source_args.go
package confman

import (
	"fmt"
	"slices"
	"strings"
)

// ArgsSource reads overrides from command-line arguments:
//
//	--server.port=9090    --server.port 9090    --debug
//
// A flag without a value is true. Non-flag arguments are ignored. Values go
// through Coerce.
type ArgsSource struct {
	args []string
}

// NewArgsSource keeps a copy of args (typically os.Args[1:]).
func NewArgsSource(args []string) *ArgsSource {
	return &ArgsSource{args: slices.Clone(args)}
}

func (s *ArgsSource) Name() string { return "args" }

// Load parses the arguments. Returns absent when no flag is present.
func (s *ArgsSource) Load() (Value, bool, error) {
	m, err := parseArgs(s.args)
	if err != nil {
		return Value{}, false, &Error{Kind: ErrMalformedContent, Op: "load", Source: s.Name(), Err: err}
	}
	if m.Len() == 0 {
		return Value{}, false, nil
	}
	return Map(m), true, nil
}

// parseArgs processes command-line arguments into a nested mapping.
func parseArgs(args []string) (*Mapping, error) {
	result := NewMapping()
	i := 0
	for i < len(args) {
		arg := args[i]
		if !strings.HasPrefix(arg, "--") {
			// Skip non-flag arguments
			i++
			continue
		}

		argContent := strings.TrimPrefix(arg, "--")
		if argContent == "" {
			// "--" ends flag parsing
			break
		}

		var keyPath string
		var valueStr string

		// Check for "--key=value" format
		if k, v, found := strings.Cut(argContent, "="); found {
			keyPath = k
			valueStr = v
			i++
		} else {
			// Handle "--key value" or "--booleanflag"
			keyPath = argContent
			if i+1 >= len(args) || strings.HasPrefix(args[i+1], "--") {
				valueStr = "true"
				i++
			} else {
				valueStr = args[i+1]
				i += 2
			}
		}

		segments := strings.Split(keyPath, ".")
		for _, segment := range segments {
			if !isValidKeySegment(segment) {
				return nil, fmt.Errorf("invalid command-line key segment %q in path %q", segment, keyPath)
			}
		}

		setNestedValue(result, segments, Coerce(valueStr))
	}

	return result, nil
}
