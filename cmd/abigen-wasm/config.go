package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"abiwasm/bindgen"
	"abiwasm/log"
)

const (
	envPrefix = "ABIGEN"

	outKey        = "out"
	protocolKey   = "protocol"
	deployableKey = "deployable"
	generatorKey  = "generator"
	verboseKey    = "verbose"
	cleanKey      = "clean"
	configFileKey = "config"
	envKey        = "env"
	envFileKey    = "env-file"
	logFileKey    = "log.file"
	logLevelKey   = "log.level"
	logJSONKey    = "log.json"
	cacheDirKey   = "cache-dir"

	defaultOutputDir = "generated-types/bindings"
)

// runConfig 是命令行、环境变量和配置文件合并之后的运行设置。
type runConfig struct {
	Bindgen   bindgen.Config
	Generator string // 显式指定的生成器路径，空表示按默认目录查找
	CacheDir  string
	Clean     bool
	Log       log.Config
}

func addFlags(fs *pflag.FlagSet) {
	fs.StringP(outKey, "o", defaultOutputDir, "Output directory for generated bindings")
	fs.String(protocolKey, bindgen.ProtocolV1, fmt.Sprintf("Binding protocol version (%s or %s)", bindgen.ProtocolV1, bindgen.ProtocolV2))
	fs.Bool(deployableKey, false, "Generate deploy methods for artifacts that carry bytecode")
	fs.String(generatorKey, "", "Path to the generator module (abigen.wasm) or a native abigen executable")
	fs.BoolP(verboseKey, "v", false, "Print progress and debug information")
	fs.Bool(cleanKey, false, "Remove the output directory before generating")
	fs.String(configFileKey, "", "Configuration file (yaml, toml or json)")
	fs.StringToString(envKey, nil, "Extra generator environment variable as KEY=VALUE (repeatable)")
	fs.String(envFileKey, "", "Dotenv file with generator environment variables")
	fs.String(logFileKey, "", "Also write logs to this file (rotated)")
	fs.String(logLevelKey, "", "Log level (trace, debug, info, warn, error, crit), overrides --verbose")
	fs.Bool(logJSONKey, false, "Emit logs as JSON lines")
	fs.String(cacheDirKey, "", "Directory for caching the compiled generator module")
}

// newViper 绑定命令行参数和 ABIGEN_ 前缀的环境变量，并在指定时读取配置文件。
// 优先级从高到低：命令行、环境变量、配置文件、默认值。
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if v.IsSet(configFileKey) {
		v.SetConfigFile(os.ExpandEnv(v.GetString(configFileKey)))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

func configFromViper(v *viper.Viper, fs *pflag.FlagSet) (runConfig, error) {
	env, err := generatorEnv(v, fs)
	if err != nil {
		return runConfig{}, err
	}
	verbose := v.GetBool(verboseKey)
	return runConfig{
		Bindgen: bindgen.Config{
			OutputDir:  v.GetString(outKey),
			Protocol:   strings.TrimSpace(v.GetString(protocolKey)),
			Deployable: v.GetBool(deployableKey),
			Verbose:    verbose,
			Env:        env,
		},
		Generator: os.ExpandEnv(v.GetString(generatorKey)),
		CacheDir:  os.ExpandEnv(v.GetString(cacheDirKey)),
		Clean:     v.GetBool(cleanKey),
		Log: log.Config{
			Verbose: verbose,
			Level:   v.GetString(logLevelKey),
			JSON:    v.GetBool(logJSONKey),
			File:    os.ExpandEnv(v.GetString(logFileKey)),
		},
	}, nil
}

// generatorEnv 读取 --env-file，再叠加 --env 的键值对。
// --env 直接从命令行读取：viper 会把配置文件里的键转成小写，环境变量名必须保持原样。
func generatorEnv(v *viper.Viper, fs *pflag.FlagSet) (map[string]string, error) {
	env := make(map[string]string)
	if path := v.GetString(envFileKey); path != "" {
		fileEnv, err := godotenv.Read(os.ExpandEnv(path))
		if err != nil {
			return nil, fmt.Errorf("read env file: %w", err)
		}
		for k, val := range fileEnv {
			env[k] = val
		}
	}
	pairs, err := fs.GetStringToString(envKey)
	if err != nil {
		return nil, err
	}
	for k, val := range pairs {
		if k == "" {
			return nil, fmt.Errorf("invalid --%s entry %q", envKey, k+"="+val)
		}
		env[k] = val
	}
	return env, nil
}
