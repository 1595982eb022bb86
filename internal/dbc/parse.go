package dbc

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Parse reads DBC text into a Document. Parsing is permissive and total:
// lines that do not match their record grammar are skipped, a SG_ with no
// preceding BO_ is dropped, and the parse itself never fails. Recognized
// records are VERSION, BO_, SG_ and VAL_; everything else is ignored.
//
// Duplicate BO_ IDs resolve last-definition-wins: the later record replaces
// the earlier one both in the ordered list and in the lookup index.
func Parse(text string) *Document {
	doc := New()
	var open *Message

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "VERSION"):
			v := strings.TrimPrefix(line, "VERSION")
			doc.Version = strings.Trim(strings.TrimSpace(v), `"`)
		case strings.HasPrefix(line, "BO_ "):
			if m := parseMessageLine(line); m != nil {
				doc.AddMessage(m)
				open = m
			}
		case strings.HasPrefix(line, "SG_ "):
			if open == nil {
				continue
			}
			if s := parseSignalLine(line); s != nil {
				open.AddSignal(s)
			}
		case strings.HasPrefix(line, "VAL_ "):
			if name, values := parseValLine(line); len(values) > 0 {
				doc.SetValueTable(name, values)
			}
		}
	}

	doc.reindex()
	return doc
}

// ParseReader is Parse over a stream. The only possible error is a read
// error from r.
func ParseReader(r io.Reader) (*Document, error) {
	var b strings.Builder
	br := bufio.NewReader(r)
	if _, err := io.Copy(&b, br); err != nil {
		return nil, err
	}
	return Parse(b.String()), nil
}

// parseMessageLine parses "BO_ <id> <name>: <dlc> <transmitter>".
func parseMessageLine(line string) *Message {
	parts := strings.Fields(line)
	if len(parts) < 4 || parts[0] != "BO_" {
		return nil
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return nil
	}
	name := strings.TrimSuffix(parts[2], ":")
	size, err := strconv.ParseUint(parts[3], 10, 8)
	if err != nil {
		return nil
	}
	return NewMessage(uint32(id), name, uint8(size))
}

// parseSignalLine parses
// "SG_ <name> [M|m<n>] : <start>|<len>@<order><sign> (<factor>,<offset>) [<min>|<max>] \"<unit>\" <receiver>".
func parseSignalLine(line string) *Signal {
	rest, ok := strings.CutPrefix(line, "SG_ ")
	if !ok {
		return nil
	}
	namePart, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return nil
	}

	nameFields := strings.Fields(namePart)
	if len(nameFields) == 0 {
		return nil
	}
	name := nameFields[0]
	mux := parseMuxIndicator(nameFields[1:])

	parts := strings.Fields(rest)
	if len(parts) == 0 {
		return nil
	}

	// "<start>|<len>@<order><sign>"
	bitInfo, orderType, ok := strings.Cut(parts[0], "@")
	if !ok {
		return nil
	}
	startStr, lenStr, ok := strings.Cut(bitInfo, "|")
	if !ok {
		return nil
	}
	startBit, err := strconv.ParseUint(startStr, 10, 8)
	if err != nil {
		return nil
	}
	bitLength, err := strconv.ParseUint(lenStr, 10, 8)
	if err != nil {
		return nil
	}
	order, vtype, ok := parseOrderAndType(orderType)
	if !ok {
		return nil
	}

	sig := &Signal{
		Name:      name,
		StartBit:  uint8(startBit),
		BitLength: uint8(bitLength),
		ByteOrder: order,
		ValueType: vtype,
		Factor:    1.0,
		Offset:    0.0,
		Mux:       mux,
	}

	for _, p := range parts {
		if strings.HasPrefix(p, "(") {
			fo := strings.Trim(p, "()")
			fStr, oStr, ok := strings.Cut(fo, ",")
			if !ok {
				continue
			}
			f, ferr := strconv.ParseFloat(fStr, 64)
			o, oerr := strconv.ParseFloat(oStr, 64)
			if ferr != nil || oerr != nil {
				return nil
			}
			sig.Factor, sig.Offset = f, o
			break
		}
	}

	for _, p := range parts {
		if strings.HasPrefix(p, "[") {
			sig.Minimum, sig.Maximum = parseMinMax(p)
			break
		}
	}

	for _, p := range parts {
		if strings.HasPrefix(p, `"`) {
			sig.Unit = strings.Trim(p, `"`)
			break
		}
	}

	return sig
}

// parseMuxIndicator reads an optional "M" or "m<n>" token between the
// signal name and the colon.
func parseMuxIndicator(fields []string) *Multiplexor {
	if len(fields) == 0 {
		return nil
	}
	tok := fields[0]
	if tok == "M" {
		return &Multiplexor{Selector: true}
	}
	if strings.HasPrefix(tok, "m") {
		if n, err := strconv.ParseUint(tok[1:], 10, 8); err == nil {
			return &Multiplexor{SwitchValue: uint8(n)}
		}
	}
	return nil
}

// parseOrderAndType reads the "<order><sign>" suffix, without the "@".
// Order '0' is Motorola, '1' is Intel; sign '+' unsigned, '-' signed.
func parseOrderAndType(s string) (ByteOrder, ValueType, bool) {
	if len(s) < 2 {
		return 0, 0, false
	}
	var order ByteOrder
	switch s[0] {
	case '0':
		order = Motorola
	case '1':
		order = Intel
	default:
		return 0, 0, false
	}
	var vtype ValueType
	switch s[1] {
	case '+':
		vtype = Unsigned
	case '-':
		vtype = Signed
	default:
		return 0, 0, false
	}
	return order, vtype, true
}

// parseMinMax reads "[<min>|<max>]"; unparseable halves stay unset.
func parseMinMax(s string) (*float64, *float64) {
	s = strings.Trim(s, "[]")
	minStr, maxStr, ok := strings.Cut(s, "|")
	if !ok {
		return nil, nil
	}
	var min, max *float64
	if v, err := strconv.ParseFloat(minStr, 64); err == nil {
		min = &v
	}
	if v, err := strconv.ParseFloat(maxStr, 64); err == nil {
		max = &v
	}
	return min, max
}

// parseValLine parses
// "VAL_ <id> <signal_name> <v1> \"<d1>\" <v2> \"<d2>\" ... ;".
// The message ID token is parsed past but does not participate in the key;
// tables are keyed by signal name alone.
func parseValLine(line string) (string, []ValueDescription) {
	rest, ok := strings.CutPrefix(line, "VAL_ ")
	if !ok {
		return "", nil
	}
	parts := strings.Split(rest, `"`)
	if len(parts) < 3 {
		return "", nil
	}

	head := strings.Fields(parts[0])
	if len(head) < 3 {
		return "", nil
	}
	signalName := head[1]

	var values []ValueDescription
	for i := 0; i+1 < len(parts); i += 2 {
		numTok := strings.Fields(strings.TrimSpace(parts[i]))
		if len(numTok) == 0 {
			continue
		}
		v, err := strconv.ParseInt(numTok[len(numTok)-1], 10, 64)
		if err != nil {
			continue
		}
		values = append(values, ValueDescription{Value: v, Description: parts[i+1]})
	}
	if len(values) == 0 {
		return "", nil
	}
	return signalName, values
}
