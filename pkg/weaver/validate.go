package weaver

import (
	"fmt"
	"sync"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/metadata"
	"github.com/toyz/weaver/pkg/validation"
)

// ErrorFormatter turns a field error into the value reported to clients
type ErrorFormatter func(e validation.FieldError) interface{}

// DefaultErrorFormatter reports {parameter, message}
func DefaultErrorFormatter(e validation.FieldError) interface{} {
	return map[string]interface{}{
		"parameter": e.Param,
		"message":   e.Message,
	}
}

// ValidationOptions controls how a validation result is reported
type ValidationOptions struct {
	ErrorFormatter ErrorFormatter
	// AllErrors reports every error of a parameter instead of the first
	AllErrors bool
	// MatchedData overrides the options used to collect validated data
	MatchedData *validation.MatchedOptions
}

var (
	globalOptionsMu sync.RWMutex
	globalOptions   = ValidationOptions{ErrorFormatter: DefaultErrorFormatter}
)

// SetGlobalValidationOptions replaces the defaults used when a validation
// middleware has no options of its own. Unset fields keep their defaults.
func SetGlobalValidationOptions(opts ValidationOptions) {
	globalOptionsMu.Lock()
	defer globalOptionsMu.Unlock()
	if opts.ErrorFormatter == nil {
		opts.ErrorFormatter = DefaultErrorFormatter
	}
	globalOptions = opts
}

func resolveOptions(opts []ValidationOptions) ValidationOptions {
	globalOptionsMu.RLock()
	out := globalOptions
	globalOptionsMu.RUnlock()
	if len(opts) == 0 {
		return out
	}
	o := opts[0]
	if o.ErrorFormatter != nil {
		out.ErrorFormatter = o.ErrorFormatter
	}
	if o.AllErrors {
		out.AllErrors = true
	}
	if o.MatchedData != nil {
		out.MatchedData = o.MatchedData
	}
	return out
}

// ValidationResult is the outcome of running validators against a request
type ValidationResult struct {
	Errors     []validation.FieldError
	Data       *validation.Data
	Validators []validation.Validator
}

// IsEmpty reports whether the pass produced no errors
func (r ValidationResult) IsEmpty() bool {
	return len(r.Errors) == 0
}

// RunValidators runs validators against the input of ctx. Sanitized
// values are written back to the request.
func RunValidators(ctx RequestContext, validators []validation.Validator) (ValidationResult, error) {
	req := RequestFrom(ctx)
	sources, err := req.Sources()
	if err != nil {
		return ValidationResult{}, err
	}
	data := validation.NewData(req, sources)
	errs, err := validation.Run(req.Context(), data, validators)
	if err != nil {
		return ValidationResult{}, err
	}
	for loc := range sources {
		req.setLocation(loc, data.Get(loc))
	}
	return ValidationResult{Errors: errs, Data: data, Validators: validators}, nil
}

// HandleValidationResult fails with a validation error carrying every
// formatted error, or merges the matched data of each location into req
func HandleValidationResult(req *Request, result ValidationResult, locations []validation.Location, opts ...ValidationOptions) error {
	o := resolveOptions(opts)
	if !result.IsEmpty() {
		errs := result.Errors
		if !o.AllErrors {
			errs = validation.FirstPerParam(errs)
		}
		fields := make([]interface{}, len(errs))
		for i, e := range errs {
			fields[i] = o.ErrorFormatter(e)
		}
		return errors.NewValidation().SetFields(fields)
	}

	matched := validation.DefaultMatchedOptions()
	if o.MatchedData != nil {
		matched = *o.MatchedData
	}
	for _, loc := range locations {
		req.MergeValidated(loc, validation.MatchedData(result.Data, result.Validators, loc, result.Errors, matched))
	}
	return nil
}

// CreateValidationMiddleware runs validators and handles the result for
// locations before calling the next handler
func CreateValidationMiddleware(validators []validation.Validator, locations []validation.Location, opts ...ValidationOptions) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) error {
			result, err := RunValidators(ctx, validators)
			if err != nil {
				return err
			}
			if err := HandleValidationResult(RequestFrom(ctx), result, locations, opts...); err != nil {
				return err
			}
			return next(ctx)
		}
	}
}

// ValidatorConfig selects what UseValidatorWith validates
type ValidatorConfig struct {
	Objects []*metadata.Class
	// Chains are validated in addition to the objects. Chains without a
	// location read the first of Locations, or the body.
	Chains    []validation.Chain
	Locations []validation.Location
	Options   *ValidationOptions
}

// UseValidator builds a middleware validating the given objects
func UseValidator(objects ...*metadata.Class) (MiddlewareFunc, error) {
	return UseValidatorWith(ValidatorConfig{Objects: objects})
}

// UseValidatorWith builds a middleware validating objects and chains
func UseValidatorWith(cfg ValidatorConfig) (MiddlewareFunc, error) {
	if len(cfg.Objects) == 0 && len(cfg.Chains) == 0 {
		return nil, fmt.Errorf("validator needs objects or chains")
	}

	defaultLoc := validation.Body
	if len(cfg.Locations) > 0 {
		defaultLoc = cfg.Locations[0]
	}
	validators := validation.CompileChains(cfg.Chains, defaultLoc)
	locations := append([]validation.Location(nil), cfg.Locations...)

	if len(cfg.Objects) > 0 {
		objValidators, objLocations, err := GetSchemaValidators(cfg.Objects...)
		if err != nil {
			return nil, err
		}
		validators = append(validators, objValidators...)
		for _, loc := range objLocations {
			if !containsLocation(locations, loc) {
				locations = append(locations, loc)
			}
		}
	}

	var opts []ValidationOptions
	if cfg.Options != nil {
		opts = append(opts, *cfg.Options)
	}
	return CreateValidationMiddleware(validators, locations, opts...), nil
}

// RunValidationMiddleware validates objects against ctx imperatively
func RunValidationMiddleware(ctx RequestContext, objects []*metadata.Class, opts ...ValidationOptions) error {
	validators, locations, err := GetSchemaValidators(objects...)
	if err != nil {
		return err
	}
	result, err := RunValidators(ctx, validators)
	if err != nil {
		return err
	}
	return HandleValidationResult(RequestFrom(ctx), result, locations, opts...)
}

func containsLocation(locs []validation.Location, loc validation.Location) bool {
	for _, l := range locs {
		if l == loc {
			return true
		}
	}
	return false
}
