// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package dist

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/distviz/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// MaxYAMLFileSize is the maximum allowed registry file size (1MB).
	MaxYAMLFileSize = 1024 * 1024

	// MaxDistributions is the maximum number of entries in a registry.
	MaxDistributions = 100

	// MaxDiscretePoints bounds the integer count of a discrete domain,
	// which is the bar count of every redraw.
	MaxDiscretePoints = 10000
)

// =============================================================================
// Embedded Default Registry
// =============================================================================

//go:embed distributions.yaml
var defaultRegistryYAML []byte

// DefaultRegistryYAML returns a copy of the embedded registry table.
func DefaultRegistryYAML() []byte {
	return append([]byte(nil), defaultRegistryYAML...)
}

// =============================================================================
// Prometheus Metrics
// =============================================================================

var (
	registryLoadErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "distviz_registry_load_errors_total",
		Help: "Total distribution registry load errors",
	})

	registryLoadDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "distviz_registry_load_duration_seconds",
		Help:    "Duration of distribution registry loading",
		Buckets: []float64{0.0001, 0.001, 0.01, 0.05, 0.1},
	})
)

var registryTracer = otel.Tracer("distviz.dist.registry")

// =============================================================================
// YAML Types
// =============================================================================

// RegistryYAML is the root structure for YAML deserialization.
type RegistryYAML struct {
	Distributions []EntryYAML `yaml:"distributions" validate:"required,min=1,dive"`
}

// EntryYAML is a single distribution entry in the YAML file.
type EntryYAML struct {
	ID       string      `yaml:"id" validate:"required"`
	Name     string      `yaml:"name" validate:"required"`
	Family   string      `yaml:"family" validate:"required"`
	Discrete bool        `yaml:"discrete,omitempty"`
	Domain   []float64   `yaml:"domain" validate:"len=2"`
	Params   []ParamYAML `yaml:"params" validate:"required,min=1,dive"`
	PDF      string      `yaml:"pdf,omitempty"`
	CDF      string      `yaml:"cdf,omitempty"`
}

// ParamYAML is one parameter of an entry.
type ParamYAML struct {
	Name    string   `yaml:"name" validate:"required"`
	Symbol  string   `yaml:"symbol" validate:"required"`
	Default float64  `yaml:"default"`
	Min     float64  `yaml:"min,omitempty"`
	Max     *float64 `yaml:"max,omitempty"`
	Steps   int      `yaml:"steps,omitempty" validate:"gte=0"`
}

var yamlValidate = validator.New()

// =============================================================================
// Registry
// =============================================================================

// Registry is the read-only table of distributions.
//
// # Description
//
// Built once at startup and passed to every consumer. There are no
// mutation methods; List order is the construction order.
//
// # Thread Safety
//
// Safe for concurrent use.
type Registry struct {
	order []*DistributionSpec
	byID  map[string]*DistributionSpec
}

// NewRegistry validates specs and builds a registry.
//
// # Description
//
// Every spec must satisfy: non-empty unique ID, at least one parameter,
// Domain.Min < Domain.Max, an oracle whose arity equals the parameter
// count and whose discreteness matches the spec, and slider ranges with
// Min < Max containing the default.
//
// # Outputs
//
//   - *Registry: Ready for lookups.
//   - error: Describes the first invalid spec.
func NewRegistry(specs ...*DistributionSpec) (*Registry, error) {
	if len(specs) == 0 {
		return nil, errors.New("registry must contain at least one distribution")
	}
	if len(specs) > MaxDistributions {
		return nil, fmt.Errorf("too many distributions: %d (max %d)", len(specs), MaxDistributions)
	}
	r := &Registry{
		order: make([]*DistributionSpec, 0, len(specs)),
		byID:  make(map[string]*DistributionSpec, len(specs)),
	}
	for i, spec := range specs {
		if err := validateSpec(spec); err != nil {
			return nil, fmt.Errorf("distribution at index %d: %w", i, err)
		}
		if _, dup := r.byID[spec.ID]; dup {
			return nil, fmt.Errorf("duplicate distribution id %q", spec.ID)
		}
		r.byID[spec.ID] = spec
		r.order = append(r.order, spec)
	}
	return r, nil
}

func validateSpec(s *DistributionSpec) error {
	if s == nil {
		return errors.New("nil spec")
	}
	if err := validation.ValidateID(s.ID); err != nil {
		return err
	}
	if len(s.Params) == 0 {
		return fmt.Errorf("%s: no parameters", s.ID)
	}
	symbols := make([]string, len(s.Params))
	for i, p := range s.Params {
		symbols[i] = p.Symbol
	}
	if err := validation.ValidateSymbols(symbols); err != nil {
		return fmt.Errorf("%s: %w", s.ID, err)
	}
	if math.IsInf(s.Domain.Min, 0) || math.IsInf(s.Domain.Max, 0) {
		return fmt.Errorf("%s: domain [%g, %g] must be finite", s.ID, s.Domain.Min, s.Domain.Max)
	}
	if !(s.Domain.Min < s.Domain.Max) {
		return fmt.Errorf("%s: domain min %g must be less than max %g", s.ID, s.Domain.Min, s.Domain.Max)
	}
	if s.Discrete && s.Domain.IntegerCount() > MaxDiscretePoints {
		return fmt.Errorf("%s: domain [%g, %g] holds %g integers (max %d)",
			s.ID, s.Domain.Min, s.Domain.Max, s.Domain.IntegerCount(), MaxDiscretePoints)
	}
	if s.Oracle == nil {
		return fmt.Errorf("%s: no oracle", s.ID)
	}
	if s.Oracle.Arity() != len(s.Params) {
		return fmt.Errorf("%s: oracle %s takes %d parameters, spec lists %d",
			s.ID, s.Oracle.Family(), s.Oracle.Arity(), len(s.Params))
	}
	if s.Oracle.Discrete() != s.Discrete {
		return fmt.Errorf("%s: discrete=%t does not match oracle %s", s.ID, s.Discrete, s.Oracle.Family())
	}
	for _, p := range s.Params {
		if !(p.Min < p.Max) {
			return fmt.Errorf("%s: parameter %q range [%g, %g] is empty", s.ID, p.Name, p.Min, p.Max)
		}
		if p.Default < p.Min || p.Default > p.Max {
			return fmt.Errorf("%s: parameter %q default %g outside [%g, %g]", s.ID, p.Name, p.Default, p.Min, p.Max)
		}
	}
	return nil
}

// Lookup returns the spec for id.
//
// # Outputs
//
//   - *DistributionSpec: The spec.
//   - error: *NotFoundError if id is unknown.
func (r *Registry) Lookup(id string) (*DistributionSpec, error) {
	spec, ok := r.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return spec, nil
}

// List returns the specs in insertion order. The returned slice is a copy.
func (r *Registry) List() []*DistributionSpec {
	return append([]*DistributionSpec(nil), r.order...)
}

// Len returns the number of distributions.
func (r *Registry) Len() int { return len(r.order) }

// IDs returns the ids in insertion order.
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	for i, s := range r.order {
		ids[i] = s.ID
	}
	return ids
}

// IndexOf returns the list position of id, or -1.
func (r *Registry) IndexOf(id string) int {
	for i, s := range r.order {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// Loading Logic
// =============================================================================

// DefaultRegistry parses the embedded registry table.
func DefaultRegistry(ctx context.Context) (*Registry, error) {
	return ParseRegistry(ctx, defaultRegistryYAML)
}

// LoadRegistry builds a registry from the YAML file at path, or from the
// embedded table when path is empty.
//
// # Description
//
// Unlike the embedded table, an external file that is missing, too large
// or invalid is an error: a user who names a file expects it to be used.
func LoadRegistry(ctx context.Context, path string) (*Registry, error) {
	if ctx == nil {
		return nil, errors.New("LoadRegistry: ctx must not be nil")
	}
	ctx, span := registryTracer.Start(ctx, "registry.Load")
	defer span.End()

	startTime := time.Now()
	defer func() {
		registryLoadDuration.Observe(time.Since(startTime).Seconds())
	}()

	data := defaultRegistryYAML
	source := "embedded"
	if path != "" {
		external, err := readRegistryFile(path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "read failed")
			registryLoadErrors.Inc()
			return nil, err
		}
		data = external
		source = path
	}
	span.SetAttributes(
		attribute.String("source", source),
		attribute.Int("yaml_size", len(data)),
	)

	reg, err := ParseRegistry(ctx, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		registryLoadErrors.Inc()
		return nil, fmt.Errorf("parsing registry %s: %w", source, err)
	}

	slog.Debug("distribution registry loaded",
		slog.String("source", source),
		slog.Int("count", reg.Len()))
	return reg, nil
}

// readRegistryFile reads an external registry with a size limit.
func readRegistryFile(path string) ([]byte, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("stat registry file: %w", err)
	}
	if info.Size() > MaxYAMLFileSize {
		return nil, fmt.Errorf("registry file too large: %d bytes (max %d)", info.Size(), MaxYAMLFileSize)
	}
	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading registry file: %w", err)
	}
	return data, nil
}

// ParseRegistry decodes a YAML table and builds a registry.
func ParseRegistry(ctx context.Context, data []byte) (*Registry, error) {
	if ctx == nil {
		return nil, errors.New("ParseRegistry: ctx must not be nil")
	}
	_, span := registryTracer.Start(ctx, "registry.Parse")
	defer span.End()

	var doc RegistryYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling YAML: %w", err)
	}
	if err := yamlValidate.Struct(doc); err != nil {
		return nil, fmt.Errorf("validating YAML: %w", err)
	}

	specs := make([]*DistributionSpec, 0, len(doc.Distributions))
	for _, entry := range doc.Distributions {
		spec, err := entry.toSpec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	span.SetAttributes(attribute.Int("distribution_count", len(specs)))
	return NewRegistry(specs...)
}

// toSpec converts a YAML entry, resolving the oracle and slider defaults.
func (e EntryYAML) toSpec() (*DistributionSpec, error) {
	oracle, ok := LookupOracle(e.Family)
	if !ok {
		return nil, fmt.Errorf("%s: unknown family %q (known: %v)", e.ID, e.Family, Families())
	}
	params := make([]ParamSpec, len(e.Params))
	for i, p := range e.Params {
		hi := DefaultSliderMax(p.Default)
		if p.Max != nil {
			hi = *p.Max
		}
		steps := p.Steps
		if steps == 0 {
			steps = DefaultSliderSteps
		}
		params[i] = ParamSpec{
			Name:    p.Name,
			Symbol:  p.Symbol,
			Default: p.Default,
			Min:     p.Min,
			Max:     hi,
			Steps:   steps,
		}
	}
	return &DistributionSpec{
		ID:          e.ID,
		DisplayName: e.Name,
		Params:      params,
		Domain:      Domain{Min: e.Domain[0], Max: e.Domain[1]},
		Discrete:    e.Discrete,
		PDFFormula:  e.PDF,
		CDFFormula:  e.CDF,
		Oracle:      oracle,
	}, nil
}
