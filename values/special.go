package values

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Path declares a filesystem path. A leading "~" is expanded and the result is made
// absolute. Unless WithCheckExists(false) is given, the path must exist.
// An empty path is returned as is.
func Path(opts ...Option) (*Value[string], error) {
	const kind = "PathValue"
	o := newOptions(nil, opts)

	def, err := defaultOf[string](kind, o.def, nil)
	if err != nil {
		return nil, err
	}
	v, err := newValue(kind, o, ParseString, def)
	if err != nil {
		return nil, err
	}
	checkExists := o.checkExists
	v.finish = func(_ string, p string) (string, error) {
		if p == "" {
			return p, nil
		}
		expanded, err := expandHome(p)
		if err != nil {
			return "", err
		}
		if checkExists {
			if _, err = os.Stat(expanded); err != nil {
				return "", fmt.Errorf("Path %q does not exist", expanded)
			}
		}
		return filepath.Abs(expanded)
	}
	return v, nil
}

func expandHome(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Secret declares a value that only the environment may provide.
// It is always required, rejects any default and fails on an empty variable.
func Secret(opts ...Option) (*Value[string], error) {
	const kind = "SecretValue"
	o := newOptions(nil, opts)
	if o.def != nil {
		return nil, configError(kind, "%w: secret values are only allowed to be set as environment variables",
			ErrDefaultNotAllowed)
	}
	o.environ = true
	o.required = true

	v, err := newValue(kind, o, ParseString, "")
	if err != nil {
		return nil, err
	}
	v.finish = func(name string, s string) (string, error) {
		if s == "" {
			return "", fmt.Errorf("Secret value %q is not set", name)
		}
		return s, nil
	}
	return v, nil
}
