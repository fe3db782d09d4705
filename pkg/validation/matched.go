package validation

// MatchedOptions controls which fields MatchedData returns
type MatchedOptions struct {
	// OnlyValidData drops fields that reported an error
	OnlyValidData bool
	// IncludeOptionals keeps absent optional fields as nil entries
	IncludeOptionals bool
}

// DefaultMatchedOptions returns the options used when none are given
func DefaultMatchedOptions() MatchedOptions {
	return MatchedOptions{OnlyValidData: true, IncludeOptionals: true}
}

// MatchedData rebuilds the declared fields of loc from the working copy,
// nested the same way as the input.
func MatchedData(data *Data, validators []Validator, loc Location, errs []FieldError, opts MatchedOptions) map[string]interface{} {
	failed := make(map[string]bool)
	if opts.OnlyValidData {
		for _, e := range errs {
			if e.Location == loc {
				failed[e.Param] = true
			}
		}
	}

	var out interface{} = map[string]interface{}{}
	for _, f := range declaredFields(validators, loc) {
		for _, inst := range data.expand(loc, f.path) {
			if failed[inst.path()] {
				continue
			}
			if !inst.exists {
				if opts.IncludeOptionals && f.optional {
					out = assign(out, inst.keys, nil)
				}
				continue
			}
			out = assign(out, inst.keys, inst.value)
		}
	}
	return out.(map[string]interface{})
}

type declaredField struct {
	path     string
	optional bool
}

func declaredFields(validators []Validator, loc Location) []declaredField {
	var out []declaredField
	index := make(map[string]int)

	var visit func(vs []Validator)
	visit = func(vs []Validator) {
		for _, v := range vs {
			switch t := v.(type) {
			case *FieldValidator:
				if t.location != loc {
					continue
				}
				i, ok := index[t.path]
				if !ok {
					i = len(out)
					index[t.path] = i
					out = append(out, declaredField{path: t.path})
				}
				if t.constraint.Rule.Kind == KindOptional {
					out[i].optional = true
				}
			case *OneOfValidator:
				for _, alt := range t.alternatives {
					visit(alt)
				}
			}
		}
	}
	visit(validators)
	return out
}

// FirstPerParam keeps only the first error reported for each parameter
func FirstPerParam(errs []FieldError) []FieldError {
	seen := make(map[string]bool, len(errs))
	out := make([]FieldError, 0, len(errs))
	for _, e := range errs {
		key := string(e.Location) + "\x00" + e.Param
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
