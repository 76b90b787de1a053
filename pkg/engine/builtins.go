package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/ice-rage/DeskPlugin-sub000/pkg/params"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms parameter script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: set-param -> set_param
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Keyword at end with no value: treat as flag with nil.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toInt extracts an integer from a Sexp. Floats are accepted when they
// carry no fractional part.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val != math.Trunc(v.Val) {
			return 0, fmt.Errorf("expected whole number, got %g", v.Val)
		}
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_worktop-length) and plain
// strings ("worktop-length").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

// toName converts a keyword or string to a parameter name.
func toName(s zygo.Sexp) (params.Name, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, fmt.Errorf("expected parameter keyword: %w", err)
	}
	return params.ParseName(name)
}

func keyword(name string) zygo.Sexp {
	return &zygo.SexpStr{S: kwPrefix + name}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the parameter builtins into a zygomys
// environment. The builtins read and write p during evaluation.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, p *params.DeskParameters) {

	// -----------------------------------------------------------------------
	// (set-param :worktop-length 900) or (set-param :worktop-length 900 :leg-height 700)
	// -----------------------------------------------------------------------
	env.AddFunction("set_param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 || len(pa.kw) == 0 {
			return zygo.SexpNull, fmt.Errorf("set-param expects :name value pairs")
		}
		keys := make([]string, 0, len(pa.kw))
		for k := range pa.kw {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var last int
		for _, k := range keys {
			n, err := params.ParseName(k)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("set-param: %w", err)
			}
			v, err := toInt(pa.kw[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("set-param: %s: %w", n, err)
			}
			if err := p.Set(n, v); err != nil {
				return zygo.SexpNull, fmt.Errorf("set-param: %w", err)
			}
			last = v
		}
		return &zygo.SexpInt{Val: int64(last)}, nil
	})

	// -----------------------------------------------------------------------
	// (param :worktop-length) or (param :worktop-width :min)
	// -----------------------------------------------------------------------
	env.AddFunction("param", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 || len(args) > 2 {
			return zygo.SexpNull, fmt.Errorf("param expects a name and an optional :min, :max or :value")
		}
		n, err := toName(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("param: %w", err)
		}
		pr, ok := p.Get(n)
		if !ok {
			return zygo.SexpNull, fmt.Errorf("param: %w: %s is inactive", params.ErrUnknownParameter, n)
		}
		field := "value"
		if len(args) == 2 {
			if field, err = toKeywordString(args[1]); err != nil {
				return zygo.SexpNull, fmt.Errorf("param: %w", err)
			}
		}
		switch field {
		case "value":
			return &zygo.SexpInt{Val: int64(pr.Value)}, nil
		case "min":
			return &zygo.SexpInt{Val: int64(pr.Min)}, nil
		case "max":
			return &zygo.SexpInt{Val: int64(pr.Max)}, nil
		}
		return zygo.SexpNull, fmt.Errorf("param: invalid field %q, expected value, min or max", field)
	})

	// -----------------------------------------------------------------------
	// (leg-type :square) or (leg-type)
	// -----------------------------------------------------------------------
	env.AddFunction("leg_type", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) > 1 {
			return zygo.SexpNull, fmt.Errorf("leg-type takes at most one argument")
		}
		if len(args) == 1 {
			s, err := toKeywordString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("leg-type: %w", err)
			}
			t, err := params.ParseLegType(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("leg-type: %w", err)
			}
			if err := p.SetLegType(t); err != nil {
				return zygo.SexpNull, fmt.Errorf("leg-type: %w", err)
			}
		}
		return keyword(p.LegType().String()), nil
	})

	// -----------------------------------------------------------------------
	// (handle-type :knob) or (handle-type)
	// -----------------------------------------------------------------------
	env.AddFunction("handle_type", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) > 1 {
			return zygo.SexpNull, fmt.Errorf("handle-type takes at most one argument")
		}
		if len(args) == 1 {
			s, err := toKeywordString(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("handle-type: %w", err)
			}
			t, err := params.ParseHandleType(s)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("handle-type: %w", err)
			}
			if err := p.SetHandleType(t); err != nil {
				return zygo.SexpNull, fmt.Errorf("handle-type: %w", err)
			}
		}
		return keyword(p.HandleType().String()), nil
	})

	// -----------------------------------------------------------------------
	// (valid)
	// -----------------------------------------------------------------------
	env.AddFunction("valid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpBool{Val: p.Valid()}, nil
	})

	// -----------------------------------------------------------------------
	// (drawer-height)
	// -----------------------------------------------------------------------
	env.AddFunction("drawer_height", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		return &zygo.SexpFloat{Val: p.DrawerHeight()}, nil
	})
}
