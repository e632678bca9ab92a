package xpath

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/midbel/angle/xml"
)

const (
	schemaNS = "http://www.w3.org/2001/XMLSchema"
	fnNS     = "http://www.w3.org/2005/xpath-functions"
)

// XdmType is an atomic schema type usable in cast, castable and
// instance of expressions. Implementations may come from the builtin
// set below or from a SchemaProxy.
type XdmType interface {
	Name() xml.QName
	Cast(any) (any, error)
	Castable(any) bool
	Matches(Item) bool
}

var (
	xsUntyped  = atomicType{name: "untypedAtomic", cast: castToUntyped}
	xsAtomic   = atomicType{name: "anyAtomicType", cast: castToAny}
	xsString   = atomicType{name: "string", cast: castToString}
	xsBool     = atomicType{name: "boolean", cast: castToBoolean}
	xsDecimal  = atomicType{name: "decimal", cast: castToDecimal}
	xsDouble   = atomicType{name: "double", cast: castToDecimal}
	xsFloat    = atomicType{name: "float", cast: castToDecimal}
	xsInteger  = atomicType{name: "integer", cast: castToInteger}
	xsDateTime = atomicType{name: "dateTime", cast: castToDateTime}
	xsDate     = atomicType{name: "date", cast: castToDate}
)

var atomicTypes = []atomicType{
	xsUntyped,
	xsAtomic,
	xsString,
	xsBool,
	xsDecimal,
	xsDouble,
	xsFloat,
	xsInteger,
	xsDateTime,
	xsDate,
}

type atomicType struct {
	name string
	cast func(any) (any, error)
}

func (t atomicType) Name() xml.QName {
	return xml.ExpandedName(t.name, "xs", schemaNS)
}

func (t atomicType) Cast(value any) (any, error) {
	return t.cast(value)
}

func (t atomicType) Castable(value any) bool {
	_, err := t.cast(value)
	return err == nil
}

func (t atomicType) Matches(item Item) bool {
	if !item.Atomic() {
		return false
	}
	switch t.name {
	case "anyAtomicType":
		return true
	case "untypedAtomic":
		return isUntyped(item)
	case "string":
		_, ok := item.Value().(string)
		return ok && !isUntyped(item)
	case "boolean":
		_, ok := item.Value().(bool)
		return ok
	case "decimal", "double", "float":
		return isNumeric(item)
	case "integer":
		if _, ok := item.Value().(int64); ok {
			return true
		}
		f, ok := item.Value().(float64)
		return ok && f == math.Trunc(f)
	case "dateTime", "date":
		_, ok := item.Value().(time.Time)
		return ok
	default:
		return false
	}
}

// ResolveType finds a builtin atomic type by name. The xs prefix and
// the schema namespace uri are accepted interchangeably.
func ResolveType(name xml.QName) (XdmType, error) {
	if name.Space != "" && name.Space != "xs" && name.Uri != schemaNS {
		return nil, unknownPrefix(name.Space)
	}
	for _, t := range atomicTypes {
		if t.name == name.Name {
			return t, nil
		}
	}
	return nil, errorWithCode(CodeStaticType, ErrUndefined, fmt.Sprintf("%s: unknown type", name.QualifiedName()))
}

func castToAny(value any) (any, error) {
	return value, nil
}

func castToUntyped(value any) (any, error) {
	return castToString(value)
}

func castToString(value any) (any, error) {
	return toString(value)
}

func castToBoolean(value any) (any, error) {
	return toBool(value)
}

func castToDecimal(value any) (any, error) {
	return toFloat(value)
}

func castToInteger(value any) (any, error) {
	return toInt(value)
}

func castToDateTime(value any) (any, error) {
	return toTime(value)
}

func castToDate(value any) (any, error) {
	w, err := toTime(value)
	if err != nil {
		return nil, err
	}
	y, m, d := w.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, w.Location()), nil
}

func toString(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case float64:
		if math.IsNaN(v) {
			return "NaN", nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339), nil
	case nil:
		return "", nil
	default:
		return "", typeError(fmt.Sprintf("%T can not be converted to string", value))
	}
}

func toFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int64:
		return float64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return math.NaN(), valueError(fmt.Sprintf("%q can not be converted to number", v))
		}
		return f, nil
	default:
		return 0, typeError(fmt.Sprintf("%T can not be converted to number", value))
	}
}

func toInt(value any) (int64, error) {
	switch v := value.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, valueError(fmt.Sprintf("%q can not be converted to integer", v))
		}
		return i, nil
	default:
		return 0, typeError(fmt.Sprintf("%T can not be converted to integer", value))
	}
}

func toBool(value any) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.TrimSpace(v) {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		default:
			return false, valueError(fmt.Sprintf("%q can not be converted to boolean", v))
		}
	case float64:
		return v != 0 && !math.IsNaN(v), nil
	case int64:
		return v != 0, nil
	default:
		return false, typeError(fmt.Sprintf("%T can not be converted to boolean", value))
	}
}

func toTime(value any) (time.Time, error) {
	switch v := value.(type) {
	case time.Time:
		return v, nil
	case string:
		str := strings.TrimSpace(v)
		for _, pattern := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if w, err := time.Parse(pattern, str); err == nil {
				return w, nil
			}
		}
		return time.Time{}, valueError(fmt.Sprintf("%q can not be converted to dateTime", v))
	default:
		return time.Time{}, typeError(fmt.Sprintf("%T can not be converted to dateTime", value))
	}
}
