package sockpool

import (
	"bytes"
	"errors"
	"io"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

// LoadSocketPoolConfig reads a YAML settings file and returns the configuration it describes.
func LoadSocketPoolConfig(path string) (*SocketPoolConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.
			Code("CONFIG_READ_FAILED").
			In("sockpool").
			With("path", path).
			Wrapf(err, "failed to read socket pool settings")
	}

	config, err := ParseSocketPoolConfigYAML(data)
	if err != nil {
		return nil, err
	}

	fields := config.Fields()
	fields["path"] = path
	log.WithFields(fields).Info("socket pool configuration loaded")
	return config, nil
}

// ParseSocketPoolConfigYAML decodes a YAML document. Durations are Go
// duration strings ("2.5s"), keep-alive values are milliseconds and missing
// keys keep their defaults. Unknown keys are rejected.
func ParseSocketPoolConfigYAML(data []byte) (*SocketPoolConfig, error) {
	var doc settingsDocument

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, oops.
			Code("INVALID_YAML").
			In("sockpool").
			Wrapf(err, "failed to decode socket pool settings")
	}

	return doc.build()
}
