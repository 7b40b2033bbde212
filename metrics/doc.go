// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics holds the Prometheus collectors for the voting service.
// Collectors register with the default registry at init and are exposed
// by Handler on GET /metrics.
package metrics
