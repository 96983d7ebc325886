// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package engines

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Constructor creates an Engine given a runtime specific configuration string (optionally empty).
type Constructor func(config string) (*Engine, error)

type registration struct {
	kind        RuntimeKind
	constructor Constructor
}

var (
	registeredConstructors = make(map[string]registration)
	firstRegistered        string
)

// Register a runtime under the given name, with a constructor that takes the runtime
// specific part of the configuration.
//
// To be safe, call Register during initialization of a package.
func Register(name string, kind RuntimeKind, constructor Constructor) {
	if len(registeredConstructors) == 0 {
		firstRegistered = name
	}
	registeredConstructors[name] = registration{kind: kind, constructor: constructor}
}

// Registered returns the RuntimeKind registered under name, and whether it was found.
func Registered(name string) (RuntimeKind, bool) {
	r, found := registeredConstructors[name]
	return r.kind, found
}

// GOMLX_ENGINE is the environment variable with the default engine configuration.
//
// The format is "<runtime_name>:<runtime_configuration>", e.g.: "cq:device=0,parallelism=4".
const GOMLX_ENGINE = "GOMLX_ENGINE"

// DefaultConfig is the engine configuration used by New if GOMLX_ENGINE is not set.
var DefaultConfig string

// New returns a new Engine built from the default configuration:
//
// 1. The environment variable GOMLX_ENGINE, if defined.
// 2. DefaultConfig, if not empty.
// 3. The first registered runtime, with an empty configuration.
func New() (*Engine, error) {
	if config, found := os.LookupEnv(GOMLX_ENGINE); found {
		return NewWithConfig(config)
	}
	return NewWithConfig(DefaultConfig)
}

// NewWithConfig creates an Engine from a "<runtime_name>:<runtime_configuration>" string.
// If the runtime name is omitted the first registered runtime is used.
func NewWithConfig(config string) (*Engine, error) {
	if len(registeredConstructors) == 0 {
		return nil, errors.New("no registered runtimes -- maybe import the command-queue one with " +
			`import _ "github.com/gomlx/interop/queue"?`)
	}
	name, runtimeConfig := firstRegistered, config
	if idx := strings.Index(config, ":"); idx != -1 {
		name, runtimeConfig = config[:idx], config[idx+1:]
	} else if _, found := registeredConstructors[config]; found {
		name, runtimeConfig = config, ""
	}
	r, found := registeredConstructors[name]
	if !found {
		return nil, errors.Errorf("can't find runtime %q for engine configuration %q", name, config)
	}
	engine, err := r.constructor(runtimeConfig)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to create engine for configuration %q", config)
	}
	if engine.Kind() != r.kind {
		return nil, errors.Errorf("runtime %q registered as %s created an engine of kind %s",
			name, r.kind, engine.Kind())
	}
	klog.V(1).Infof("created engine %s from configuration %q", engine, config)
	return engine, nil
}

// ParseConfig splits a runtime configuration "key1=value1,key2=value2,flag" into a map.
// Keys without a value map to the empty string.
func ParseConfig(config string) (map[string]string, error) {
	values := make(map[string]string)
	for _, part := range strings.Split(config, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		key = strings.TrimSpace(key)
		if key == "" {
			return nil, errors.Errorf("invalid empty key in configuration %q", config)
		}
		if _, dup := values[key]; dup {
			return nil, errors.Errorf("key %q given more than once in configuration %q", key, config)
		}
		values[key] = strings.TrimSpace(value)
	}
	return values, nil
}

// GoRuntimeName is the name of the native Go runtime, registered by this package.
const GoRuntimeName = "go"

func init() {
	Register(GoRuntimeName, RuntimeGo, func(config string) (*Engine, error) {
		values, err := ParseConfig(config)
		if err != nil {
			return nil, err
		}
		if len(values) > 0 {
			return nil, errors.Errorf("runtime %q takes no configuration, got %q", GoRuntimeName, config)
		}
		return Make(RuntimeGo, 0, nil), nil
	})
}
