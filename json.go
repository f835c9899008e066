package sockpool

import (
	"strconv"
	"time"

	"github.com/samber/oops"
	"github.com/tidwall/gjson"
)

// ParseSocketPoolConfigJSON reads the socket pool section of a JSON
// application settings document. path is a gjson path to the section,
// e.g. "cache.socketPool"; an empty path uses the document root.
// Keys and value formats match ParseSocketPoolConfigYAML.
func ParseSocketPoolConfigJSON(data []byte, path string) (*SocketPoolConfig, error) {
	if !gjson.ValidBytes(data) {
		return nil, oops.
			Code("INVALID_JSON").
			In("sockpool").
			Errorf("socket pool settings are not valid JSON")
	}

	section := gjson.ParseBytes(data)
	if path != "" {
		section = section.Get(path)
	}
	if !section.Exists() || !section.IsObject() {
		return nil, oops.
			Code("SECTION_NOT_FOUND").
			In("sockpool").
			With("path", path).
			Errorf("socket pool settings section not found")
	}

	doc, err := jsonSettingsDocument(section)
	if err != nil {
		return nil, err
	}

	return doc.build()
}

func jsonSettingsDocument(section gjson.Result) (*settingsDocument, error) {
	var (
		doc settingsDocument
		err error
	)

	if err = rejectUnknownKeys(section, "", settingKeys); err != nil {
		return nil, err
	}

	if doc.MinPoolSize, err = jsonInt(section, "min_pool_size"); err != nil {
		return nil, err
	}
	if doc.MaxPoolSize, err = jsonInt(section, "max_pool_size"); err != nil {
		return nil, err
	}
	if doc.ConnectionTimeout, err = jsonDuration(section, "connection_timeout"); err != nil {
		return nil, err
	}
	if doc.ReceiveTimeout, err = jsonDuration(section, "receive_timeout"); err != nil {
		return nil, err
	}
	if doc.DeadTimeout, err = jsonDuration(section, "dead_timeout"); err != nil {
		return nil, err
	}
	if doc.QueueTimeout, err = jsonDuration(section, "queue_timeout"); err != nil {
		return nil, err
	}
	if doc.LingerEnabled, err = jsonBool(section, "linger_enabled"); err != nil {
		return nil, err
	}
	if doc.LingerTime, err = jsonDuration(section, "linger_time"); err != nil {
		return nil, err
	}
	if doc.EnableTCPKeepAlives, err = jsonBool(section, "enable_tcp_keep_alives"); err != nil {
		return nil, err
	}
	if doc.TCPKeepAliveTime, err = jsonUint32(section, "tcp_keep_alive_time"); err != nil {
		return nil, err
	}
	if doc.TCPKeepAliveInterval, err = jsonUint32(section, "tcp_keep_alive_interval"); err != nil {
		return nil, err
	}

	if policy := section.Get("failure_policy"); policy.Exists() {
		if !policy.IsObject() {
			return nil, jsonTypeError("failure_policy", policy, "object")
		}
		if err = rejectUnknownKeys(policy, "failure_policy.", failurePolicyKeys); err != nil {
			return nil, err
		}
		policyType := policy.Get("type")
		if policyType.Exists() && policyType.Type != gjson.String {
			return nil, jsonTypeError("failure_policy.type", policyType, "string")
		}
		doc.FailurePolicy = &failurePolicyDocument{
			Type: policyType.Str,
		}
		if threshold, err := jsonInt(policy, "failure_threshold"); err != nil {
			return nil, err
		} else if threshold != nil {
			doc.FailurePolicy.FailureThreshold = *threshold
		}
		if resetAfter, err := jsonDuration(policy, "reset_after"); err != nil {
			return nil, err
		} else if resetAfter != nil {
			doc.FailurePolicy.ResetAfter = *resetAfter
		}
	}

	return &doc, nil
}

// rejectUnknownKeys fails on the first key of obj missing from known.
func rejectUnknownKeys(obj gjson.Result, prefix string, known map[string]bool) error {
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		if known[key.Str] {
			return true
		}
		err = oops.
			Code("INVALID_JSON").
			In("sockpool").
			With("key", prefix+key.Str).
			Errorf("unknown socket pool setting %q", prefix+key.Str)
		return false
	})
	return err
}

// jsonInt parses the raw token so fractions and out-of-range values are
// rejected instead of truncated.
func jsonInt(section gjson.Result, key string) (*settingInt, error) {
	r := section.Get(key)
	if !r.Exists() {
		return nil, nil
	}
	if r.Type != gjson.Number {
		return nil, jsonTypeError(key, r, "number")
	}
	n, err := strconv.Atoi(r.Raw)
	if err != nil {
		return nil, jsonTypeError(key, r, "integer")
	}
	v := settingInt(n)
	return &v, nil
}

func jsonUint32(section gjson.Result, key string) (*settingUint32, error) {
	r := section.Get(key)
	if !r.Exists() {
		return nil, nil
	}
	if r.Type != gjson.Number {
		return nil, jsonTypeError(key, r, "number")
	}
	n, err := strconv.ParseUint(r.Raw, 10, 32)
	if err != nil {
		return nil, jsonTypeError(key, r, "unsigned 32-bit integer")
	}
	v := settingUint32(n)
	return &v, nil
}

func jsonBool(section gjson.Result, key string) (*bool, error) {
	r := section.Get(key)
	if !r.Exists() {
		return nil, nil
	}
	if !r.IsBool() {
		return nil, jsonTypeError(key, r, "boolean")
	}
	v := r.Bool()
	return &v, nil
}

func jsonDuration(section gjson.Result, key string) (*time.Duration, error) {
	r := section.Get(key)
	if !r.Exists() {
		return nil, nil
	}
	if r.Type != gjson.String {
		return nil, jsonTypeError(key, r, "duration string")
	}
	d, err := time.ParseDuration(r.Str)
	if err != nil {
		return nil, oops.
			Code("INVALID_JSON").
			In("sockpool").
			With("key", key).
			With("value", r.Str).
			Wrapf(err, "invalid duration for %s", key)
	}
	return &d, nil
}

func jsonTypeError(key string, r gjson.Result, want string) error {
	return oops.
		Code("INVALID_JSON").
		In("sockpool").
		With("key", key).
		With("value", r.Raw).
		Errorf("%s must be a %s", key, want)
}
