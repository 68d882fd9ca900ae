package domain

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	"go.trai.ch/zerr"
)

// NameConfig controls cell name synthesis.
type NameConfig struct {
	// MaxLength is the longest permitted cell name.
	MaxLength int
	// Resolution is the smallest float difference that produces a distinct
	// name. Floats are snapped to this grid before formatting, so values
	// that round to the same snapped quantity collapse to one name.
	Resolution float64
}

// DefaultNameConfig returns the default synthesis settings: 99 characters
// and a 0.001 resolution matching the default layout grid.
func DefaultNameConfig() NameConfig {
	return NameConfig{MaxLength: 99, Resolution: 0.001}
}

func (c NameConfig) maxLength() int {
	if c.MaxLength <= 0 {
		return 99
	}
	return c.MaxLength
}

func (c NameConfig) resolution() float64 {
	if c.Resolution <= 0 {
		return 0.001
	}
	return c.Resolution
}

// SynthesizeName derives the deterministic cell name for a builder call:
// the base name followed by one _<ShortKey><Value> token per parameter.
// Parameters named in order come first, in that order; the rest follow
// sorted by name. The result fails with ErrNameSynthesis if it exceeds the
// configured maximum length or contains illegal characters.
func SynthesizeName(base string, ps ParamSet, order []string, cfg NameConfig) (string, error) {
	var sb strings.Builder
	sb.WriteString(base)

	seen := make(map[string]bool, len(ps))
	for _, name := range order {
		if v, ok := ps.Get(name); ok {
			appendToken(&sb, name, v, cfg)
			seen[name] = true
		}
	}
	for _, p := range ps {
		if !seen[p.Name] {
			appendToken(&sb, p.Name, p.Value, cfg)
		}
	}

	name := sb.String()
	if len(name) > cfg.maxLength() {
		return "", zerr.With(zerr.Wrap(ErrNameSynthesis, "name exceeds maximum length"), "name", name)
	}
	for _, r := range name {
		if !legalNameRune(r) {
			return "", zerr.With(zerr.Wrap(ErrNameSynthesis, "illegal character "+strconv.Quote(string(r))), "name", name)
		}
	}
	return name, nil
}

func appendToken(sb *strings.Builder, name string, v Value, cfg NameConfig) {
	sb.WriteByte('_')
	r := []rune(name)
	sb.WriteRune(unicode.ToUpper(r[0]))
	sb.WriteString(formatValue(v, cfg))
}

func formatValue(v Value, cfg NameConfig) string {
	switch v.Kind() {
	case KindNil:
		return "nil"
	case KindBool:
		return strconv.FormatBool(v.Bool())
	case KindInt:
		return sanitizeNumber(strconv.FormatInt(v.Int(), 10))
	case KindFloat:
		return sanitizeNumber(formatFloat(v.Float(), cfg.resolution()))
	case KindString:
		return sanitizeString(v.Str())
	case KindLayer:
		li := v.Layer()
		if li.Name != "" {
			return sanitizeString(li.Name)
		}
		return strconv.Itoa(li.Layer) + "_" + strconv.Itoa(li.Datatype)
	case KindOpaque:
		return sanitizeString(v.Opaque().OpaqueID())
	case KindSeq:
		elems := make([]string, len(v.Seq()))
		for i, e := range v.Seq() {
			elems[i] = formatValue(e, cfg)
		}
		return "[" + strings.Join(elems, ",") + "]"
	case KindMap:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range v.MapKeys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			mv, _ := v.MapValue(k)
			sb.WriteString(sanitizeString(k))
			sb.WriteByte('=')
			sb.WriteString(formatValue(mv, cfg))
		}
		sb.WriteByte('}')
		return sb.String()
	}
	return ""
}

// formatFloat snaps the value to the resolution grid and prints it with
// exactly as many decimals as the resolution needs, trimming trailing
// zeros. Two inputs that snap to the same grid quantity print identically.
func formatFloat(f, res float64) string {
	snapped := math.Round(f/res) * res
	if snapped == 0 {
		// math.Round keeps IEEE negative zero; fold it onto +0 so values
		// on either side of zero that snap to zero share one token.
		snapped = 0
	}
	decimals := int(math.Ceil(-math.Log10(res)))
	if decimals < 0 {
		decimals = 0
	}
	s := strconv.FormatFloat(snapped, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	return s
}

// sanitizeNumber rewrites characters that are illegal in cell names:
// the decimal point becomes 'p' and the minus sign 'm'.
func sanitizeNumber(s string) string {
	s = strings.ReplaceAll(s, ".", "p")
	return strings.ReplaceAll(s, "-", "m")
}

func sanitizeString(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if legalNameRune(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

func legalNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '$', r == '[', r == ']', r == '{', r == '}', r == ',', r == '=':
		return true
	}
	return false
}
