package config

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Key is a custom type used as the keys in the Input map
type Key int

// Keys for Input map
const (
	GeomKey Key = iota
	GeomFileKey
	UnitKey
	BasisKey
	ChargeKey
	SpinKey
	DriverKey
	FCIDumpKey
	MolproOutKey
	SCFMaxIterKey
	FreezeKey
	RemoveKey
	MappingKey
	ReductionKey
	ThresholdKey
	ChopKey
	AnsatzKey
	DepthKey
	ActiveOccKey
	ActiveUnoccKey
	SameSpinKey
	OptimizerKey
	MaxEvalKey
	KKey
	NumKeys
)

func (k Key) String() string {
	return [...]string{
		"GeomKey",
		"GeomFileKey",
		"UnitKey",
		"BasisKey",
		"ChargeKey",
		"SpinKey",
		"DriverKey",
		"FCIDumpKey",
		"MolproOutKey",
		"SCFMaxIterKey",
		"FreezeKey",
		"RemoveKey",
		"MappingKey",
		"ReductionKey",
		"ThresholdKey",
		"ChopKey",
		"AnsatzKey",
		"DepthKey",
		"ActiveOccKey",
		"ActiveUnoccKey",
		"SameSpinKey",
		"OptimizerKey",
		"MaxEvalKey",
		"KKey",
	}[k]
}

// Regexp consists of an embedded *regexp.Regexp and an associated Key
type Regexp struct {
	*regexp.Regexp
	Name Key
}

func keyword(name string, k Key) Regexp {
	return Regexp{regexp.MustCompile(`(?i)^\s*` + name + `\s*=`), k}
}

var (
	keywords = []Regexp{
		keyword("geometry_file", GeomFileKey),
		keyword("unit", UnitKey),
		keyword("basis", BasisKey),
		keyword("charge", ChargeKey),
		keyword("spin", SpinKey),
		keyword("driver", DriverKey),
		keyword("fcidump", FCIDumpKey),
		keyword("molpro_output", MolproOutKey),
		keyword("scf_maxiter", SCFMaxIterKey),
		keyword("freeze", FreezeKey),
		keyword("remove", RemoveKey),
		keyword("mapping", MappingKey),
		keyword("two_qubit_reduction", ReductionKey),
		keyword("threshold", ThresholdKey),
		keyword("chop", ChopKey),
		keyword("ansatz", AnsatzKey),
		keyword("depth", DepthKey),
		keyword("active_occupied", ActiveOccKey),
		keyword("active_unoccupied", ActiveUnoccKey),
		keyword("same_spin_doubles", SameSpinKey),
		keyword("optimizer", OptimizerKey),
		keyword("max_eval", MaxEvalKey),
		keyword("k", KKey),
	}
	geomStart = regexp.MustCompile(`(?i)^\s*geometry\s*=\s*{`)
)

// ParseInfile reads a keyword input file and loads matching keywords
// into the returned map. Lines starting with # are comments; the
// geometry goes in a geometry={ ... } block.
func ParseInfile(r io.Reader) (map[Key]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	keymap := map[Key]string{}
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if len(line) < 1 || line[0] == '#' {
			continue
		}
		if geomStart.MatchString(line) {
			geomlines := make([]string, 0)
			// geometry={H 0 0 0; H 0 0 0.735} on one line
			rest := strings.TrimSpace(line[strings.Index(line, "{")+1:])
			for !strings.Contains(rest, "}") {
				if rest != "" {
					geomlines = append(geomlines, rest)
				}
				i++
				if i >= len(lines) {
					return nil, fmt.Errorf("%w: unterminated geometry block", ErrBadInput)
				}
				rest = strings.TrimSpace(lines[i])
			}
			if before := strings.TrimSpace(rest[:strings.Index(rest, "}")]); before != "" {
				geomlines = append(geomlines, before)
			}
			keymap[GeomKey] = strings.Join(geomlines, "\n")
			continue
		}
		matched := false
		for _, kword := range keywords {
			if kword.MatchString(line) {
				value := line[strings.Index(line, "=")+1:]
				if c := strings.Index(value, "#"); c >= 0 {
					value = value[:c]
				}
				keymap[kword.Name] = strings.TrimSpace(value)
				matched = true
				break
			}
		}
		if !matched {
			return nil, fmt.Errorf("%w: line %d: %q", ErrBadInput, i+1, line)
		}
	}
	return keymap, nil
}

// parseList reads 0,1,2 or [0, 1, 2]; an empty value is an empty list,
// which for the active space lists means every orbital
func parseList(s string) ([]int, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// apply overwrites the fields of c named in keymap
func (c *Config) apply(keymap map[Key]string) error {
	var err error
	for k := Key(0); k < NumKeys; k++ {
		v, ok := keymap[k]
		if !ok {
			continue
		}
		switch k {
		case GeomKey:
			c.Geometry = v
		case GeomFileKey:
			c.GeometryFile = v
		case UnitKey:
			c.Unit = v
		case BasisKey:
			c.Basis = v
		case ChargeKey:
			c.Charge, err = strconv.Atoi(v)
		case SpinKey:
			c.Spin, err = strconv.Atoi(v)
		case DriverKey:
			c.Driver = v
		case FCIDumpKey:
			c.FCIDump = v
		case MolproOutKey:
			c.MolproOutput = v
		case SCFMaxIterKey:
			c.SCFMaxIter, err = strconv.Atoi(v)
		case FreezeKey:
			c.Freeze, err = parseList(v)
		case RemoveKey:
			c.Remove, err = parseList(v)
		case MappingKey:
			c.Mapping = v
		case ReductionKey:
			c.TwoQubitReduction, err = strconv.ParseBool(v)
		case ThresholdKey:
			c.Threshold, err = strconv.ParseFloat(v, 64)
		case ChopKey:
			c.Chop, err = strconv.ParseFloat(v, 64)
		case AnsatzKey:
			c.Ansatz = v
		case DepthKey:
			c.Depth, err = strconv.Atoi(v)
		case ActiveOccKey:
			c.ActiveOccupied, err = parseList(v)
		case ActiveUnoccKey:
			c.ActiveUnoccupied, err = parseList(v)
		case SameSpinKey:
			c.SameSpinDoubles, err = strconv.ParseBool(v)
		case OptimizerKey:
			c.Optimizer = v
		case MaxEvalKey:
			c.MaxEval, err = strconv.Atoi(v)
		case KKey:
			c.K, err = strconv.Atoi(v)
		}
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrBadInput, k, v, err)
		}
	}
	return nil
}
