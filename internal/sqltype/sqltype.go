// Package sqltype translates between textual SQL type descriptors and
// structured types as stored in the metastore's column records.
package sqltype

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Kind identifies a SQL data type family.
type Kind int

const (
	KindUnknown Kind = iota
	KindBoolean
	KindTinyint
	KindSmallint
	KindInteger
	KindBigint
	KindReal
	KindDouble
	KindDate
	KindTime
	KindTimestamp
	KindVarchar
	KindChar
	KindDecimal
)

// Type is a structured SQL type. It is a comparable value type: two types
// are equal iff their kind and parameters are equal.
type Type struct {
	Kind      Kind
	Length    int // varchar/char
	Precision int // decimal
	Scale     int // decimal
}

// Unknown is returned for any descriptor that cannot be parsed. Callers must
// treat it as a hard type error rather than persisting it.
var Unknown = Type{Kind: KindUnknown}

// Varchar returns a varchar type with the given length.
func Varchar(length int) Type { return Type{Kind: KindVarchar, Length: length} }

// Char returns a char type with the given length.
func Char(length int) Type { return Type{Kind: KindChar, Length: length} }

// Decimal returns a decimal type. Scale 0 is the canonical form of an
// omitted scale.
func Decimal(precision, scale int) Type {
	return Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}

var simpleTypes = map[string]Kind{
	"boolean":   KindBoolean,
	"tinyint":   KindTinyint,
	"smallint":  KindSmallint,
	"integer":   KindInteger,
	"bigint":    KindBigint,
	"real":      KindReal,
	"double":    KindDouble,
	"date":      KindDate,
	"time":      KindTime,
	"timestamp": KindTimestamp,
}

var (
	varcharPattern = regexp.MustCompile(`^varchar\(\s*(\d+)\s*\)$`)
	charPattern    = regexp.MustCompile(`^char\(\s*(\d+)\s*\)$`)
	decimalPattern = regexp.MustCompile(`^decimal\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\)$`)
)

// Parse maps a textual type descriptor to a structured type. Matching is
// case-insensitive. Parameterized forms are varchar(n), char(n) and
// decimal(p[,s]); an omitted decimal scale defaults to 0. Anything
// malformed or outside the closed set yields Unknown, never an error.
func Parse(text string) Type {
	s := strings.ToLower(strings.TrimSpace(text))

	if m := varcharPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Varchar(n)
		}
		return Unknown
	}
	if m := charPattern.FindStringSubmatch(s); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return Char(n)
		}
		return Unknown
	}
	if m := decimalPattern.FindStringSubmatch(s); m != nil {
		p, err := strconv.Atoi(m[1])
		if err != nil {
			return Unknown
		}
		if m[2] == "" {
			return Decimal(p, 0)
		}
		sc, err := strconv.Atoi(m[2])
		if err != nil {
			return Unknown
		}
		return Decimal(p, sc)
	}

	if kind, ok := simpleTypes[s]; ok {
		return Type{Kind: kind}
	}
	return Unknown
}

// IsUnknown reports whether t is the Unknown sentinel.
func (t Type) IsUnknown() bool { return t.Kind == KindUnknown }

// String renders the canonical descriptor. The result round-trips through
// Parse for every type except Unknown.
func (t Type) String() string {
	switch t.Kind {
	case KindVarchar:
		return fmt.Sprintf("varchar(%d)", t.Length)
	case KindChar:
		return fmt.Sprintf("char(%d)", t.Length)
	case KindDecimal:
		return fmt.Sprintf("decimal(%d,%d)", t.Precision, t.Scale)
	case KindUnknown:
		return "unknown"
	}
	for name, kind := range simpleTypes {
		if kind == t.Kind {
			return name
		}
	}
	return "unknown"
}
