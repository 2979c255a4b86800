package entities

import (
	"fmt"
	"strings"
)

// RiskLevel represents the security risk level of a granted permission.
type RiskLevel int

const (
	RiskNone RiskLevel = iota
	RiskLow
	RiskMedium
	RiskHigh
	RiskCritical
)

func (r RiskLevel) String() string {
	switch r {
	case RiskNone:
		return "NONE"
	case RiskLow:
		return "LOW"
	case RiskMedium:
		return "MEDIUM"
	case RiskHigh:
		return "HIGH"
	case RiskCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// MarshalText renders the level by name in JSON and YAML output.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RiskAnalyzer assesses the risk of a compiled policy.
type RiskAnalyzer interface {
	Analyze(policy PermissionPolicy) RiskReport
}

// RiskReport contains the risk assessment results.
type RiskReport struct {
	Level       RiskLevel    `json:"level" yaml:"level"`
	RiskFactors []RiskFactor `json:"factors,omitempty" yaml:"factors,omitempty"`
}

// RiskFactor describes a specific risky grant.
type RiskFactor struct {
	Level       RiskLevel `json:"level" yaml:"level"`
	Description string    `json:"description" yaml:"description"`
	// Rule is a human-readable rendering of the grant causing this risk
	Rule string `json:"rule" yaml:"rule"`
}

// SimpleRiskAnalyzer implements basic heuristic risk analysis.
type SimpleRiskAnalyzer struct{}

func NewSimpleRiskAnalyzer() RiskAnalyzer {
	return &SimpleRiskAnalyzer{}
}

func (a *SimpleRiskAnalyzer) Analyze(policy PermissionPolicy) RiskReport {
	report := RiskReport{
		Level: RiskNone,
	}

	addFactor := func(level RiskLevel, desc, rule string) {
		if level > RiskNone {
			report.RiskFactors = append(report.RiskFactors, RiskFactor{
				Level:       level,
				Description: desc,
				Rule:        rule,
			})
			if level > report.Level {
				report.Level = level
			}
		}
	}

	if run := policy.Run(); len(run) > 0 {
		addFactor(RiskCritical, "Subprocess execution", fmt.Sprintf("run: %s", strings.Join(run, ", ")))
	}

	if write := policy.Write(); len(write) > 0 {
		addFactor(RiskHigh, "Filesystem write access", fmt.Sprintf("write: %s", strings.Join(write, ", ")))
	}

	if read := policy.Read(); len(read) > 0 {
		addFactor(RiskMedium, "Filesystem read access", fmt.Sprintf("read: %s", strings.Join(read, ", ")))
	}

	if hosts := policy.Network(); len(hosts) > 0 {
		addFactor(RiskMedium, "Outbound network access", fmt.Sprintf("net: %s", strings.Join(hosts, ", ")))
	}

	if policy.EnvAccess() {
		addFactor(RiskLow, "Environment variable access", "env: all")
	}

	return report
}
