package validation

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// unit is the smallest piece of a pass that runs on its own goroutine
type unit interface {
	run(ctx context.Context, data *Data, dry bool) ([]FieldError, error)
}

// fieldUnit holds every constraint declared for one location and path, in
// declaration order
type fieldUnit struct {
	location    Location
	path        string
	constraints []Constraint
}

type oneOfUnit struct {
	validator *OneOfValidator
}

// Run executes validators against data. Constraints of the same field run
// sequentially in declaration order; distinct fields and OneOf groups run
// concurrently. Sanitized values are written back to data. The returned
// error is reserved for failures that are not validation results, such as a
// failing guard function or a cancelled context.
func Run(ctx context.Context, data *Data, validators []Validator) ([]FieldError, error) {
	return run(ctx, data, validators, false)
}

// DryRun executes validators like Run without writing sanitized values
func DryRun(ctx context.Context, data *Data, validators []Validator) ([]FieldError, error) {
	return run(ctx, data, validators, true)
}

func run(ctx context.Context, data *Data, validators []Validator, dry bool) ([]FieldError, error) {
	units := group(validators)
	results := make([][]FieldError, len(units))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range units {
		g.Go(func() error {
			errs, err := u.run(gctx, data, dry)
			results[i] = errs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []FieldError
	for _, errs := range results {
		out = append(out, errs...)
	}
	return out, nil
}

func group(validators []Validator) []unit {
	type fieldKey struct {
		location Location
		path     string
	}

	var units []unit
	fields := make(map[fieldKey]*fieldUnit)
	for _, v := range validators {
		switch t := v.(type) {
		case *FieldValidator:
			key := fieldKey{t.location, t.path}
			fu, ok := fields[key]
			if !ok {
				fu = &fieldUnit{location: t.location, path: t.path}
				fields[key] = fu
				units = append(units, fu)
			}
			fu.constraints = append(fu.constraints, t.constraint)
		case *OneOfValidator:
			units = append(units, &oneOfUnit{validator: t})
		}
	}
	return units
}

func (u *fieldUnit) optional() bool {
	for _, c := range u.constraints {
		if c.Rule.Kind == KindOptional && c.Guard == nil {
			return true
		}
	}
	return false
}

func (u *fieldUnit) run(ctx context.Context, data *Data, dry bool) ([]FieldError, error) {
	var errs []FieldError
	optional := u.optional()

	for _, inst := range data.expand(u.location, u.path) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if optional && !inst.present() {
			continue
		}

		meta := Meta{Location: u.location, Path: inst.path(), Request: data.Request()}
		value := inst.value
		failed := false

		for _, c := range u.constraints {
			if c.Guard != nil {
				ok, err := evalGuard(ctx, data, c.Guard, u.location, meta)
				if err != nil {
					return nil, fmt.Errorf("guard for %s: %w", meta.Path, err)
				}
				if !ok {
					continue
				}
			}

			switch {
			case c.Rule.Kind == KindOptional:
				continue
			case c.Rule.Kind.IsSanitizer():
				if failed || value == nil {
					continue
				}
				sanitized, err := sanitize(ctx, c.Rule, value, meta)
				if err != nil {
					failed = true
					errs = append(errs, fieldError(u.location, inst, c, value, err))
					continue
				}
				value = sanitized
				// later guards on this field read the sanitized value
				if !dry {
					data.set(u.location, inst.keys, value)
				}
			default:
				ok, err := check(ctx, c.Rule, value, meta)
				if err == nil && c.Negate {
					ok = !ok
				}
				if err != nil || !ok {
					failed = true
					errs = append(errs, fieldError(u.location, inst, c, value, err))
				}
			}
		}
	}
	return errs, nil
}

func fieldError(loc Location, inst instance, c Constraint, value interface{}, cause error) FieldError {
	msg := c.Message
	switch {
	case msg != "":
	case cause != nil:
		msg = cause.Error()
	case c.Rule.Kind == KindRequired && !c.Negate:
		msg = requiredMessage(inst.keys)
	default:
		msg = DefaultMessage
	}
	return FieldError{Location: loc, Param: inst.path(), Message: msg, Value: value}
}

func evalGuard(ctx context.Context, data *Data, guard Guard, loc Location, meta Meta) (bool, error) {
	switch g := guard.(type) {
	case Chain:
		errs, err := run(ctx, data, CompileChain(g, loc), true)
		if err != nil {
			return false, err
		}
		return len(errs) == 0, nil
	case GuardFunc:
		return g(ctx, data.Get(loc), meta)
	}
	return false, fmt.Errorf("unsupported guard %T", guard)
}

func (u *oneOfUnit) run(ctx context.Context, data *Data, _ bool) ([]FieldError, error) {
	alternatives := u.validator.alternatives
	results := make([][]FieldError, len(alternatives))

	// alternatives only gate, so they never sanitize
	g, gctx := errgroup.WithContext(ctx)
	for i, alt := range alternatives {
		g.Go(func() error {
			errs, err := run(gctx, data, alt, true)
			results[i] = errs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var nested []FieldError
	for _, errs := range results {
		if len(errs) == 0 {
			return nil, nil
		}
		nested = append(nested, errs...)
	}
	return []FieldError{{
		Location: u.validator.location,
		Param:    OneOfParam,
		Message:  u.validator.Message(),
		Nested:   nested,
	}}, nil
}
