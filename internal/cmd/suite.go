package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/jpequegn/polybench/internal/ir"
	"github.com/jpequegn/polybench/internal/langs"
	"github.com/spf13/viper"
)

// fixtureConfig is one fixture entry in a suite file. Bytes are supplied
// as a hex string since YAML has no native binary literal.
type fixtureConfig struct {
	Name string `mapstructure:"name"`
	Hex  string `mapstructure:"hex"`
}

// benchmarkConfig is one benchmark entry in a suite file.
type benchmarkConfig struct {
	Name             string            `mapstructure:"name"`
	Mode             string            `mapstructure:"mode"`
	Iterations       int64             `mapstructure:"iterations"`
	WarmupIterations int64             `mapstructure:"warmup_iterations"`
	TargetTimeNs     int64             `mapstructure:"target_time_ns"`
	FairnessMode     string            `mapstructure:"fairness_mode"`
	FairnessSeed     *uint64           `mapstructure:"fairness_seed"`
	Count            int               `mapstructure:"count"`
	Async            bool              `mapstructure:"async"`
	Implementations  map[string]string `mapstructure:"implementations"`
}

// suiteConfig is the on-disk shape of a suite file, loaded with viper.
// This is a structured config loader, not the DSL (out of scope): it
// maps one-to-one onto ir.SuiteIR so a suite can be authored without
// the lexer/parser/lowerer this repo depends on but does not implement.
type suiteConfig struct {
	Name                    string            `mapstructure:"name"`
	Mode                    string            `mapstructure:"mode"`
	DefaultIterations       int64             `mapstructure:"default_iterations"`
	DefaultWarmupIterations int64             `mapstructure:"default_warmup_iterations"`
	DefaultTargetTimeNs     int64             `mapstructure:"default_target_time_ns"`
	SharedServices          []string          `mapstructure:"shared_services"`
	Fixtures                []fixtureConfig   `mapstructure:"fixtures"`
	Benchmarks              []benchmarkConfig `mapstructure:"benchmarks"`
}

// LoadSuiteIR reads a suite definition file (YAML or JSON, anything
// viper can decode) and lowers it into an *ir.SuiteIR.
func LoadSuiteIR(path string) (*ir.SuiteIR, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read suite file: %w", err)
	}

	var cfg suiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse suite file: %w", err)
	}

	return cfg.toSuiteIR()
}

func (cfg *suiteConfig) toSuiteIR() (*ir.SuiteIR, error) {
	suite := ir.NewSuiteIR(cfg.Name)

	if cfg.Mode == "time_based" {
		suite.Mode = ir.TimeBased
	}
	if cfg.DefaultIterations > 0 {
		suite.DefaultIterations = cfg.DefaultIterations
	}
	suite.DefaultWarmupIterations = cfg.DefaultWarmupIterations
	suite.DefaultTargetTimeNs = cfg.DefaultTargetTimeNs

	for _, svc := range cfg.SharedServices {
		suite.SharedServices = append(suite.SharedServices, ir.SharedService(svc))
	}

	for _, f := range cfg.Fixtures {
		data, err := hex.DecodeString(f.Hex)
		if err != nil {
			return nil, fmt.Errorf("fixture %q: invalid hex: %w", f.Name, err)
		}
		suite.Fixtures = append(suite.Fixtures, ir.NewFixtureIR(f.Name, data))
	}

	for _, b := range cfg.Benchmarks {
		spec := ir.NewBenchmarkSpec(suite, b.Name)

		if b.Mode == "time_based" {
			spec.Mode = ir.TimeBased
		} else if b.Mode == "fixed" {
			spec.Mode = ir.Fixed
		}
		if b.Iterations > 0 {
			spec.Iterations = b.Iterations
		}
		if b.WarmupIterations > 0 {
			spec.WarmupIterations = b.WarmupIterations
		}
		if b.TargetTimeNs > 0 {
			spec.TargetTimeNs = b.TargetTimeNs
		}
		if b.FairnessMode == "strict" {
			spec.FairnessMode = ir.Strict
		}
		spec.FairnessSeed = b.FairnessSeed
		if b.Count > 0 {
			spec.Count = b.Count
		}
		if b.Async {
			spec.Kind = ir.Async
		}

		for langName, body := range b.Implementations {
			l, err := langs.ParseLang(langName)
			if err != nil {
				return nil, fmt.Errorf("benchmark %q: %w", b.Name, err)
			}
			spec.Implementations[l] = body
		}

		spec.ExtractFixtureRefs(suite.Fixtures)
		suite.Benchmarks = append(suite.Benchmarks, spec)
	}

	if err := suite.Validate(); err != nil {
		return nil, err
	}

	return suite, nil
}
