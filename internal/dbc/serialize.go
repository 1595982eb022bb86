package dbc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// nsSymbols is the fixed new-symbols block consuming tools expect in a DBC
// header even when none of the listed record types are present.
var nsSymbols = []string{
	"NS_DESC_", "CM_", "BA_DEF_", "BA_", "VAL_", "CAT_DEF_", "CAT_",
	"FILTER", "BA_DEF_DEF_", "EV_DATA_", "ENVVAR_DATA_", "SGTYPE_",
	"SGTYPE_VAL_", "BA_DEF_SGTYPE_", "BA_SGTYPE_", "SIG_TYPE_REF_",
	"VAL_TABLE_", "SIG_GROUP_", "SIG_VALTYPE_", "SIGTYPE_VALTYPE_",
	"BO_TX_BU_", "BA_DEF_REL_", "BA_REL_", "BA_DEF_DEF_REL_",
	"BU_SG_REL_", "BU_EV_REL_", "BU_BO_REL_", "SG_MUL_VAL_",
}

// String serializes the document to DBC text re-parseable by Parse.
// Messages appear in stored order, signals in per-message insertion order,
// and value tables sorted by signal name so output is deterministic.
func (d *Document) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "VERSION %q\n\n", d.Version)

	b.WriteString("NS_ :\n")
	for _, sym := range nsSymbols {
		b.WriteByte('\t')
		b.WriteString(sym)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	b.WriteString("BS_:\n\n")
	b.WriteString("BU_: Vector__XXX\n\n")

	for _, m := range d.Messages {
		fmt.Fprintf(&b, "BO_ %d %s: %d Vector__XXX\n", m.ID, m.Name, m.Size)
		for _, s := range m.Signals {
			writeSignalLine(&b, s)
		}
		b.WriteByte('\n')
	}

	names := make([]string, 0, len(d.ValueTables))
	for name := range d.ValueTables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "VAL_ 0 %s ", name)
		for _, vd := range d.ValueTables[name] {
			fmt.Fprintf(&b, "%d %q ", vd.Value, vd.Description)
		}
		b.WriteString(";\n")
	}

	return b.String()
}

func writeSignalLine(b *strings.Builder, s *Signal) {
	order := byte('0')
	if s.ByteOrder == Intel {
		order = '1'
	}
	sign := byte('+')
	if s.ValueType == Signed {
		sign = '-'
	}
	var mux string
	if s.Mux != nil {
		if s.Mux.Selector {
			mux = "M "
		} else {
			mux = "m" + strconv.Itoa(int(s.Mux.SwitchValue)) + " "
		}
	}
	min, max := 0.0, 0.0
	if s.Minimum != nil {
		min = *s.Minimum
	}
	if s.Maximum != nil {
		max = *s.Maximum
	}
	fmt.Fprintf(b, " SG_ %s %s: %d|%d@%c%c (%s,%s) [%s|%s] %q Vector__XXX\n",
		s.Name, mux, s.StartBit, s.BitLength, order, sign,
		formatFloat(s.Factor), formatFloat(s.Offset),
		formatFloat(min), formatFloat(max), s.Unit)
}

// formatFloat renders floats the way DBC tools do: no exponent, no
// trailing zeros ("1", "0.1", "-40").
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
