// doctor.go - Doctor command implementation for deepchat.
//
// Command: doctor
//
// Health Checks Performed:
//  1. Executable  - the ollama binary can be found
//  2. Server      - the ollama server answers on its HTTP API
//  3. Model       - the configured model has been pulled
//  4. Hardware    - GPU memory against the model's estimated need
//  5. Config      - the config file location and state
//
// Exit Codes:
//
//	0   All checks passed (warnings allowed)
//	1   One or more checks failed
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/jeranaias/deepchat/internal/config"
	"github.com/jeranaias/deepchat/internal/detect"
	"github.com/jeranaias/deepchat/internal/ollama"
	"github.com/jeranaias/deepchat/internal/ui/components"
	"github.com/jeranaias/deepchat/internal/ui/styles"
)

// ErrChecksFailed is returned when at least one doctor check failed.
var ErrChecksFailed = errors.New("health checks failed")

// =============================================================================
// HEALTH CHECK TYPES
// =============================================================================

// CheckStatus represents the status of a health check.
type CheckStatus int

const (
	// CheckPass indicates the check passed.
	CheckPass CheckStatus = iota
	// CheckWarn indicates a non-critical issue.
	CheckWarn
	// CheckFail indicates a critical issue.
	CheckFail
)

// String returns the string representation of the check status.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "Pass"
	case CheckWarn:
		return "Warn"
	case CheckFail:
		return "Fail"
	default:
		return "Unknown"
	}
}

// HealthCheck is one check result.
type HealthCheck struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     []string
}

// Resolver finds the ollama executable. *ollama.Runner implements it.
type Resolver interface {
	Resolve() (string, error)
	Command() string
}

// DoctorOptions configures RunDoctor.
type DoctorOptions struct {
	Out        io.Writer
	Theme      *styles.Theme
	Config     *config.Config
	Resolver   Resolver
	Probe      *ollama.Probe
	ConfigPath string

	// DetectGPU is usually detect.DetectGPU. Nil skips the hardware check.
	DetectGPU func(context.Context) *detect.GpuInfo
}

// =============================================================================
// HANDLE DOCTOR
// =============================================================================

// RunDoctor runs every check, prints the results and returns
// ErrChecksFailed if any check failed.
func RunDoctor(ctx context.Context, opts DoctorOptions) error {
	checks := runAllChecks(ctx, opts)
	theme := opts.Theme

	fmt.Fprintln(opts.Out, theme.Header.Render("deepchat doctor"))
	fmt.Fprintln(opts.Out)

	passed, warned, failed := 0, 0, 0
	for _, c := range checks {
		switch c.Status {
		case CheckPass:
			passed++
		case CheckWarn:
			warned++
		case CheckFail:
			failed++
		}
		fmt.Fprintln(opts.Out, renderCheck(theme, c))
	}

	fmt.Fprintln(opts.Out)
	summary := []string{theme.Success.Render(fmt.Sprintf("%d ok", passed))}
	if warned > 0 {
		summary = append(summary, theme.Warning.Render(fmt.Sprintf("%d aviso(s)", warned)))
	}
	if failed > 0 {
		summary = append(summary, theme.Error.Render(fmt.Sprintf("%d falha(s)", failed)))
	}
	fmt.Fprintln(opts.Out, strings.Join(summary, ", "))

	if failed > 0 {
		return ErrChecksFailed
	}
	return nil
}

func renderCheck(theme *styles.Theme, c HealthCheck) string {
	var symbol string
	switch c.Status {
	case CheckPass:
		symbol = theme.Success.Bold(true).Render("[OK]")
	case CheckWarn:
		symbol = theme.Warning.Bold(true).Render("[!!]")
	default:
		symbol = theme.Error.Render("[FALHA]")
	}

	line := fmt.Sprintf("%s %s: %s", symbol, theme.Bold.Render(c.Name), c.Message)
	if c.Status == CheckPass {
		return line
	}
	for _, fix := range c.Fix {
		line += "\n" + theme.ChatHistory.Render("    -> "+fix)
	}
	return line
}

func runAllChecks(ctx context.Context, opts DoctorOptions) []HealthCheck {
	server := checkServer(ctx, opts.Probe)
	checks := []HealthCheck{
		checkExecutable(opts.Resolver),
		server,
		checkModel(ctx, opts.Probe, opts.Config.Ollama.Model, server.Status == CheckPass),
	}
	if opts.DetectGPU != nil {
		checks = append(checks, checkHardware(opts.DetectGPU(ctx), opts.Config.Ollama.Model))
	}
	return append(checks, checkConfig(opts.ConfigPath))
}

// =============================================================================
// CHECKS
// =============================================================================

func checkExecutable(r Resolver) HealthCheck {
	check := HealthCheck{Name: "Executável"}

	path, err := r.Resolve()
	if err != nil {
		check.Status = CheckFail
		check.Message = err.Error()
		check.Fix = components.DefaultHintMatcher().Match(err.Error())
		return check
	}

	check.Status = CheckPass
	check.Message = path
	return check
}

func checkServer(ctx context.Context, p *ollama.Probe) HealthCheck {
	check := HealthCheck{Name: "Servidor"}

	version, err := p.Version(ctx)
	if err != nil {
		check.Status = CheckFail
		if ollama.IsNotRunning(err) {
			check.Message = "sem resposta em " + p.Host()
		} else {
			check.Message = err.Error()
		}
		check.Fix = components.DefaultHintMatcher().Match("connection refused")
		return check
	}

	check.Status = CheckPass
	check.Message = fmt.Sprintf("ollama %s em %s", version, p.Host())
	return check
}

func checkModel(ctx context.Context, p *ollama.Probe, name string, serverUp bool) HealthCheck {
	check := HealthCheck{Name: "Modelo"}

	if !serverUp {
		check.Status = CheckWarn
		check.Message = name + " não verificado (servidor indisponível)"
		return check
	}

	m, err := p.FindModel(ctx, name)
	switch {
	case err != nil:
		check.Status = CheckFail
		check.Message = err.Error()
	case m == nil:
		check.Status = CheckFail
		check.Message = name + " não encontrado"
		check.Fix = []string{"Execute: ollama pull " + name}
	default:
		check.Status = CheckPass
		details := []string{m.FormatSize()}
		if m.Details.ParameterSize != "" {
			details = append(details, m.Details.ParameterSize)
		}
		if m.Details.QuantizationLevel != "" {
			details = append(details, m.Details.QuantizationLevel)
		}
		check.Message = fmt.Sprintf("%s (%s)", m.Name, strings.Join(details, ", "))
	}
	return check
}

func checkHardware(gpu *detect.GpuInfo, model string) HealthCheck {
	check := HealthCheck{Name: "Hardware", Message: gpu.String()}
	need := humanize.IBytes(detect.EstimateModelMemory(model))

	switch {
	case gpu.Type == detect.GpuTypeCPU:
		check.Status = CheckWarn
		check.Message += fmt.Sprintf("; sem GPU, %s vai rodar na CPU (lento)", model)
		check.Fix = []string{"Use um modelo menor: deepchat -m deepseek-r1:7b"}
	case gpu.Memory > 0 && !detect.WillModelFit(model, gpu.Memory):
		check.Status = CheckWarn
		check.Message += fmt.Sprintf("; %s precisa de ~%s", model, need)
		check.Fix = []string{"Use um modelo menor: deepchat -m deepseek-r1:7b"}
	default:
		check.Status = CheckPass
	}
	return check
}

func checkConfig(path string) HealthCheck {
	check := HealthCheck{Name: "Configuração"}

	if path == "" {
		check.Status = CheckWarn
		check.Message = "diretório de configuração indisponível; usando padrões"
		return check
	}

	if _, err := os.Stat(path); err != nil {
		check.Status = CheckWarn
		check.Message = path + " não existe; usando padrões"
		check.Fix = []string{"Execute: deepchat config init"}
		return check
	}

	if _, err := config.LoadFromPath(path); err != nil {
		check.Status = CheckFail
		check.Message = err.Error()
		check.Fix = []string{"Corrija o arquivo ou recrie com: deepchat config init --force"}
		return check
	}

	check.Status = CheckPass
	check.Message = path
	return check
}
