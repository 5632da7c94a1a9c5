package pipeline

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

// LoadConfig reads a TOML config file on top of [DefaultOptions]:
//
//	languages = ["plantuml", "dot"]
//	formats = ["source", "svg"]
//	renderer = "kroki"
//	kroki_url = "http://localhost:8000"
//	link_template = "https://ebd.example.com/{ebd_code}"
//	fallback_to_dot = true
//	watermark = false
//
// Unknown keys are rejected so that typos do not go unnoticed.
func LoadConfig(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Options{}, errs.Wrap(errs.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Options{}, errs.Wrap(errs.ErrCodeInvalidPath, err, "read config %s", path)
	}
	return ParseConfig(data)
}

// ParseConfig decodes TOML config data on top of [DefaultOptions].
func ParseConfig(data []byte) (Options, error) {
	opts := DefaultOptions()
	md, err := toml.Decode(string(data), &opts)
	if err != nil {
		return Options{}, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Options{}, errs.New(errs.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Options{}, err
	}
	return opts, nil
}
