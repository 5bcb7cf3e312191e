// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package detect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Estimates assume Q4_K_M, the default quantization of ollama tags.
const (
	bytesPerParam  = 0.56
	overheadGB     = 1.5
	unknownModelGB = 6.0
	fitMargin      = 1.2
)

// paramRegex matches the size suffix of a tag such as ":14b" or "-1.5b".
var paramRegex = regexp.MustCompile(`(?:^|[:\-_])(\d+(?:\.\d+)?)b(?:$|[\-_.])`)

// ParamCount returns the parameter count in billions read from the model
// tag, or 0 when the name carries no size.
func ParamCount(model string) float64 {
	m := paramRegex.FindStringSubmatch(strings.ToLower(model))
	if m == nil {
		return 0
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	return n
}

// EstimateModelMemory returns the memory in bytes the model needs once
// loaded, KV cache included.
func EstimateModelMemory(model string) uint64 {
	gb := unknownModelGB
	if params := ParamCount(model); params > 0 {
		gb = params*bytesPerParam + overheadGB
	}
	return uint64(gb * humanize.GiByte)
}

// WillModelFit reports whether the model fits in available bytes with a
// 20% margin.
func WillModelFit(model string, available uint64) bool {
	need := float64(EstimateModelMemory(model)) * fitMargin
	return need <= float64(available)
}
